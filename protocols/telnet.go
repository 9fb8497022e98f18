package protocols

import (
	"context"
	"net"
	"net/url"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// TelnetHandler implements the telnet scheme: a bare TCP connect to
// host:port (default 23) is the entire check, since the protocol has no
// standard content to extract or verify beyond reachability (component
// design §4.2).
type TelnetHandler struct {
	DialTimeout time.Duration
}

func NewTelnetHandler() *TelnetHandler {
	return &TelnetHandler{DialTimeout: 15 * time.Second}
}

func (h *TelnetHandler) Check(ctx context.Context, item *urlitem.Item) Outcome {
	u, err := url.Parse(item.Canonical)
	if err != nil {
		return errOutcome(urlitem.WarnURLInvalid, err.Error())
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "23")
	}

	start := time.Now()
	dialer := net.Dialer{Timeout: h.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return errOutcome(classifyNetError(err), err.Error())
	}
	defer conn.Close()

	return Outcome{Valid: true, Duration: time.Since(start), Info: []string{"connection accepted"}}
}
