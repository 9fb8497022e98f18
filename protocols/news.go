package protocols

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// NewsHandler implements the news/nntp scheme over RFC 977: connect to the
// server named by the URL (or a configured default), then GROUP the
// newsgroup named by the path to confirm it exists.
type NewsHandler struct {
	DefaultServer string
	DialTimeout   time.Duration
}

func NewNewsHandler(defaultServer string) *NewsHandler {
	return &NewsHandler{DefaultServer: defaultServer, DialTimeout: 15 * time.Second}
}

func (h *NewsHandler) Check(ctx context.Context, item *urlitem.Item) Outcome {
	u, err := url.Parse(item.Canonical)
	if err != nil {
		return errOutcome(urlitem.WarnURLInvalid, err.Error())
	}

	server := u.Host
	group := strings.TrimPrefix(u.Path, "/")
	if server == "" {
		server = h.DefaultServer
		group = u.Opaque
	}
	if server == "" {
		return errOutcome(urlitem.WarnNNTPError, "no NNTP server configured")
	}
	if !strings.Contains(server, ":") {
		server = net.JoinHostPort(server, "119")
	}

	start := time.Now()
	dialer := net.Dialer{Timeout: h.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return errOutcome(classifyNetError(err), err.Error())
	}
	defer conn.Close()

	tp := textproto.NewConn(conn)
	if _, _, err := tp.ReadResponse(2); err != nil {
		return errOutcome(urlitem.WarnNNTPError, "banner: "+err.Error())
	}

	if group == "" {
		return Outcome{Valid: true, Duration: time.Since(start), Info: []string{"server reachable"}}
	}

	if err := tp.PrintfLine("GROUP %s", group); err != nil {
		return errOutcome(urlitem.WarnNNTPError, err.Error())
	}
	code, msg, err := tp.ReadResponse(0)
	if err != nil {
		return errOutcome(urlitem.WarnNNTPError, err.Error())
	}
	if code != 211 {
		return errOutcome(urlitem.WarnNNTPError, fmt.Sprintf("group %q: %s", group, msg))
	}

	return Outcome{Valid: true, Duration: time.Since(start), Info: []string{msg}}
}
