package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// LoginConfig describes the one-shot login POST performed before crawling
// begins (component design §4.10): loginurl is form-urlencoded with the
// configured user/password field names plus any extra fields (Open
// Question resolved in favor of form-urlencoded UTF-8, §9).
type LoginConfig struct {
	URL           string
	UserField     string
	UserValue     string
	PasswordField string
	PasswordValue string
	ExtraFields   map[string]string
}

// NewJar builds a cookie jar scoped by the public suffix list, so cookies
// set for "example.test" are never sent to an unrelated domain sharing a
// suffix.
func NewJar() (*cookiejar.Jar, error) {
	return cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
}

// Login performs the one-shot login POST and populates jar with any
// cookies the server sets in response. Storing cookies implies sending
// them on subsequent requests through a client built from the same jar.
func Login(ctx context.Context, client *http.Client, cfg LoginConfig) error {
	form := url.Values{}
	form.Set(cfg.UserField, cfg.UserValue)
	form.Set(cfg.PasswordField, cfg.PasswordValue)
	for k, v := range cfg.ExtraFields {
		form.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("login POST to %s: %w", cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("login POST to %s: server returned %s", cfg.URL, resp.Status)
	}
	return nil
}
