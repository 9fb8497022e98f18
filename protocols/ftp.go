package protocols

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// FTPHandler implements the ftp scheme over RFC 959 (component design
// §4.2's protocol handler table), grounded on the original Python
// implementation's use of ftplib: connect, authenticate, CWD to the
// reference's directory, then confirm the leaf exists via SIZE (files) or
// NLST (directories).
type FTPHandler struct {
	DialTimeout time.Duration
}

func NewFTPHandler() *FTPHandler {
	return &FTPHandler{DialTimeout: 15 * time.Second}
}

func (h *FTPHandler) Check(ctx context.Context, item *urlitem.Item) Outcome {
	u, err := url.Parse(item.Canonical)
	if err != nil {
		return errOutcome(urlitem.WarnURLInvalid, err.Error())
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), "21")
	}

	start := time.Now()
	dialer := net.Dialer{Timeout: h.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return errOutcome(classifyNetError(err), err.Error())
	}
	defer conn.Close()

	tp := textproto.NewConn(conn)
	if _, _, err := tp.ReadResponse(2); err != nil {
		return errOutcome(urlitem.WarnFTPError, "banner: "+err.Error())
	}

	user := "anonymous"
	pass := "linkcheck@"
	if u.User != nil {
		user = u.User.Username()
		if p, ok := u.User.Password(); ok {
			pass = p
		}
	}

	if err := tp.PrintfLine("USER %s", user); err != nil {
		return errOutcome(urlitem.WarnFTPError, err.Error())
	}
	code, msg, err := tp.ReadResponse(0)
	if err != nil {
		return errOutcome(urlitem.WarnFTPError, err.Error())
	}
	if code == 331 {
		if err := tp.PrintfLine("PASS %s", pass); err != nil {
			return errOutcome(urlitem.WarnFTPError, err.Error())
		}
		if code, msg, err = tp.ReadResponse(0); err != nil {
			return errOutcome(urlitem.WarnFTPError, err.Error())
		}
	}
	if code/100 != 2 {
		return errOutcome(urlitem.WarnAuthRequired, fmt.Sprintf("login failed: %s", msg))
	}

	dir := path.Dir(u.Path)
	leaf := path.Base(u.Path)
	isDir := strings.HasSuffix(u.Path, "/") || u.Path == ""

	if dir != "." && dir != "/" || u.Path != "" {
		if err := tp.PrintfLine("CWD %s", dirOrRoot(dir)); err == nil {
			if code, _, _ = tp.ReadResponse(0); code/100 != 2 {
				return errOutcome(urlitem.WarnFTPError, fmt.Sprintf("CWD %s: %d", dir, code))
			}
		}
	}

	duration := time.Since(start)

	if isDir || leaf == "" || leaf == "." {
		if err := tp.PrintfLine("NLST"); err != nil {
			return errOutcome(urlitem.WarnFTPError, err.Error())
		}
		if code, msg, err = tp.ReadResponse(0); err != nil || code/100 != 1 && code/100 != 2 {
			return errOutcome(urlitem.WarnFTPError, fmt.Sprintf("NLST: %s", msg))
		}
		return Outcome{Valid: true, Duration: duration, Info: []string{"directory listing available"}}
	}

	if err := tp.PrintfLine("SIZE %s", leaf); err != nil {
		return errOutcome(urlitem.WarnFTPError, err.Error())
	}
	code, msg, err = tp.ReadResponse(0)
	if err != nil {
		return errOutcome(urlitem.WarnFTPError, err.Error())
	}
	if code/100 != 2 {
		return errOutcome(urlitem.WarnUnreachable, fmt.Sprintf("%s: %s", leaf, msg))
	}

	return Outcome{Valid: true, Duration: duration, Info: []string{msg}}
}

func dirOrRoot(dir string) string {
	if dir == "" {
		return "/"
	}
	return dir
}
