// Package enginetest provides shared httptest fixtures for exercising the
// check engine end to end: a multi-page site, a robots.txt server, and
// slow/flaky handlers, grounded on the teacher's crawler_test.go
// newTestServer helper and extended to the fixtures the engine's tests
// need.
package enginetest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"
)

// NewSiteServer returns an httptest server with a small multi-page site:
//
//	/        -> links to /page1, /page2, an external URL
//	/page1   -> links to /page2 (dedup), /broken
//	/page2   -> no outgoing links
//	/broken  -> 404
func NewSiteServer() *httptest.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `<html><body>
			<a href="/page1">Page 1</a>
			<a href="/page2">Page 2</a>
			<a href="https://external.example.test/resource">External</a>
		</body></html>`)
	})
	mux.HandleFunc("/page1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/page2">Page 2 again</a>
			<a href="/broken">Broken link</a>
		</body></html>`)
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><p>No links here</p></body></html>`)
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	return httptest.NewServer(mux)
}

// NewRobotsServer returns an httptest server whose /robots.txt disallows
// the given paths for every user agent, and serves a plain 200 for
// anything not under Disallow.
func NewRobotsServer(disallow ...string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "User-agent: *")
		for _, p := range disallow {
			fmt.Fprintf(w, "Disallow: %s\n", p)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>ok</body></html>")
	})
	return httptest.NewServer(mux)
}

// NewSlowServer returns an httptest server whose handler sleeps delay
// before responding, for exercising request-timeout behavior.
func NewSlowServer(delay time.Duration) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delay)
		fmt.Fprint(w, "<html><body>slow</body></html>")
	}))
}

// NewFlakyServer returns an httptest server that fails the first
// failCount requests to each path with a 503, then succeeds, for
// exercising retry/backoff behavior.
func NewFlakyServer(failCount int32) *httptest.Server {
	var attempts int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= failCount {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "<html><body>recovered</body></html>")
	}))
}

// NewRedirectLoopServer returns an httptest server whose handler redirects
// every request back to itself, for exercising redirect-loop detection.
func NewRedirectLoopServer() *httptest.Server {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srv.URL+"/loop", http.StatusFound)
	}))
	return srv
}
