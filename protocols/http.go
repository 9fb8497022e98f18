package protocols

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/linkchecker-go/linkcheck/auth"
	"github.com/linkchecker-go/linkcheck/urlitem"
	"github.com/linkchecker-go/linkcheck/urlutil"
	"golang.org/x/net/html/charset"
)

const maxBodyBytes = 10 << 20 // content-too-large ceiling, component design §4.2

var extractableTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
	"text/css":              true,
}

// HTTPHandler implements the http/https scheme (component design §4.2):
// HEAD first, GET fallback, bounded redirect-loop detection, Retry-After
// honoring, Basic/Digest negotiation, and HTML/CSS child extraction.
type HTTPHandler struct {
	Client        *http.Client
	UserAgent     string
	MaxRedirects  int
	Credentials   *auth.Store
	RetryAfterCap time.Duration
}

// NewHTTPHandler builds a handler with the teacher's redirect-loop-safe
// client defaults.
func NewHTTPHandler(client *http.Client, userAgent string, credentials *auth.Store) *HTTPHandler {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPHandler{
		Client:        client,
		UserAgent:     userAgent,
		MaxRedirects:  5,
		Credentials:   credentials,
		RetryAfterCap: 2 * time.Minute,
	}
}

// Check fetches item.Canonical.URL, honoring redirects, auth and
// content-type-gated extraction, using the handler's own default client.
func (h *HTTPHandler) Check(ctx context.Context, item *urlitem.Item) Outcome {
	return h.checkWithClient(ctx, item, h.Client)
}

// CheckWithClient is Check, but against caller-supplied client instead of
// h.Client, so a per-host pooled client (politeness.Slot.PooledConn) can be
// reused across fetches to the same host (component design §4.6).
func (h *HTTPHandler) CheckWithClient(ctx context.Context, item *urlitem.Item, client *http.Client) Outcome {
	return h.checkWithClient(ctx, item, client)
}

func (h *HTTPHandler) checkWithClient(ctx context.Context, item *urlitem.Item, baseClient *http.Client) Outcome {
	targetURL := item.Canonical
	needsBody := item.Anchor != "" || item.Intern

	loopClient, loopDetected := h.redirectSafeClient(baseClient)

	resp, err := h.do(ctx, loopClient, http.MethodHead, targetURL, item)
	if err != nil {
		return errOutcome(classifyNetError(err), err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusMethodNotAllowed || needsBody {
		resp.Body.Close()
		resp, err = h.do(ctx, loopClient, http.MethodGet, targetURL, item)
		if err != nil {
			return errOutcome(classifyNetError(err), err.Error())
		}
		defer resp.Body.Close()
	}

	if resp.StatusCode == http.StatusUnauthorized {
		retried, rerr := h.retryWithAuth(ctx, loopClient, resp, targetURL)
		if rerr == nil && retried != nil {
			resp.Body.Close()
			resp = retried
			defer resp.Body.Close()
		}
	}

	if *loopDetected {
		return errOutcome(urlitem.WarnRedirectLoop, "redirect loop detected")
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		text := fmt.Sprintf("server returned %d", resp.StatusCode)
		ra := parseRetryAfter(resp.Header.Get("Retry-After"), h.RetryAfterCap)
		if ra > 0 {
			text = fmt.Sprintf("%s, retry-after %s", text, ra)
		}
		out := errOutcome(urlitem.WarnUnreachable, text)
		out.RetryAfter = ra
		return out
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return errOutcome(urlitem.WarnAuthRequired, "authentication required")
	}

	if resp.StatusCode >= 400 {
		return errOutcome(urlitem.WarnUnreachable, fmt.Sprintf("server returned %s", resp.Status))
	}

	finalURL := resp.Request.URL.String()
	contentType := mediaType(resp.Header.Get("Content-Type"))
	out := Outcome{
		Valid:       true,
		Info:        []string{fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))},
		ContentType: contentType,
		FinalURL:    finalURL,
	}

	if !extractableTypes[contentType] {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return out
	}

	body, size, err := readLimited(resp.Body, maxBodyBytes)
	out.Size = size
	if err != nil {
		out.Warning = &urlitem.Warning{Tag: urlitem.WarnContentTooLarge, Text: err.Error()}
		out.Valid = false
		return out
	}

	reader, err := charset.NewReader(bytes.NewReader(body), resp.Header.Get("Content-Type"))
	if err != nil {
		reader = bytes.NewReader(body)
	}
	decoded, _ := io.ReadAll(reader)

	switch contentType {
	case "text/html", "application/xhtml+xml":
		out.Children = ExtractHTML(decoded)
	case "text/css":
		out.Children = ExtractCSS(decoded)
	}

	if item.Anchor != "" && contentType == "text/html" {
		if !HasAnchor(decoded, item.Anchor) {
			out.Warning = &urlitem.Warning{Tag: urlitem.WarnAnchorNotFound, Text: "anchor #" + item.Anchor + " not found"}
			out.Valid = false
		}
	}

	return out
}

// redirectSafeClient wraps baseClient with a CheckRedirect that detects
// cycles by canonical URL and enforces MaxRedirects, per component design
// §4.2 ("detecting loops by canonical-URL set"). It copies baseClient
// rather than mutating it so concurrent fetches against different hosts
// never race over a shared CheckRedirect closure.
func (h *HTTPHandler) redirectSafeClient(baseClient *http.Client) (*http.Client, *bool) {
	loop := new(bool)
	seen := make(map[string]bool)
	base := *baseClient
	client := &base
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		canon, err := urlutil.Normalize(req.URL.String(), "")
		key := req.URL.String()
		if err == nil {
			key = canon.URL
		}
		if seen[key] {
			*loop = true
			return http.ErrUseLastResponse
		}
		seen[key] = true
		if len(via) >= h.MaxRedirects {
			*loop = true
			return http.ErrUseLastResponse
		}
		return nil
	}
	return client, loop
}

func (h *HTTPHandler) do(ctx context.Context, client *http.Client, method, target string, item *urlitem.Item) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.UserAgent)
	h.applyBasicAuth(req, target)
	return client.Do(req)
}

func (h *HTTPHandler) applyBasicAuth(req *http.Request, target string) {
	if h.Credentials == nil {
		return
	}
	if user, pass, ok := h.Credentials.CredentialsFor(target); ok {
		req.SetBasicAuth(user, pass)
	}
}

// retryWithAuth negotiates Basic or Digest as offered in a 401 response's
// WWW-Authenticate header (component design §4.2).
func (h *HTTPHandler) retryWithAuth(ctx context.Context, client *http.Client, resp *http.Response, target string) (*http.Response, error) {
	if h.Credentials == nil {
		return nil, nil
	}
	user, pass, ok := h.Credentials.CredentialsFor(target)
	if !ok {
		return nil, nil
	}
	challenge := resp.Header.Get("WWW-Authenticate")
	req, err := http.NewRequestWithContext(ctx, resp.Request.Method, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", h.UserAgent)

	switch {
	case strings.HasPrefix(strings.ToLower(challenge), "digest"):
		authz, derr := digestAuthorization(challenge, req.Method, req.URL.RequestURI(), user, pass)
		if derr != nil {
			return nil, derr
		}
		req.Header.Set("Authorization", authz)
	default:
		req.SetBasicAuth(user, pass)
	}
	return client.Do(req)
}

func digestAuthorization(challenge, method, uri, user, pass string) (string, error) {
	params := parseDigestChallenge(challenge)
	realm := params["realm"]
	nonce := params["nonce"]
	qop := params["qop"]

	ha1 := md5Hex(user + ":" + realm + ":" + pass)
	ha2 := md5Hex(method + ":" + uri)

	cnonce := randomHex(8)
	nc := "00000001"

	var response string
	if qop != "" {
		response = md5Hex(strings.Join([]string{ha1, nonce, nc, cnonce, qop, ha2}, ":"))
	} else {
		response = md5Hex(strings.Join([]string{ha1, nonce, ha2}, ":"))
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, `Digest username="%s", realm="%s", nonce="%s", uri="%s", response="%s"`, user, realm, nonce, uri, response)
	if qop != "" {
		fmt.Fprintf(b, `, qop=%s, nc=%s, cnonce="%s"`, qop, nc, cnonce)
	}
	if opaque, ok := params["opaque"]; ok {
		fmt.Fprintf(b, `, opaque="%s"`, opaque)
	}
	return b.String(), nil
}

func parseDigestChallenge(challenge string) map[string]string {
	out := make(map[string]string)
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(challenge), "Digest"))
	for _, part := range strings.Split(rest, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		out[kv[0]] = strings.Trim(kv[1], `"`)
	}
	return out
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func parseRetryAfter(header string, cap time.Duration) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil {
		d := time.Duration(secs) * time.Second
		if d > cap {
			return cap
		}
		return d
	}
	if t, err := http.ParseTime(header); err == nil {
		d := time.Until(t)
		if d < 0 {
			return 0
		}
		if d > cap {
			return cap
		}
		return d
	}
	return 0
}

func mediaType(contentTypeHeader string) string {
	mt, _, err := mime.ParseMediaType(contentTypeHeader)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentTypeHeader))
	}
	return strings.ToLower(mt)
}

func readLimited(r io.Reader, limit int64) ([]byte, int64, error) {
	limited := io.LimitReader(r, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, 0, err
	}
	if int64(len(data)) > limit {
		return data[:limit], int64(len(data)), fmt.Errorf("content exceeds %d bytes", limit)
	}
	return data, int64(len(data)), nil
}
