package robots_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/linkchecker-go/linkcheck/robots"
)

func TestAllowedDeniesDisallowedPath(t *testing.T) {
	var robotsHits int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			mu.Lock()
			robotsHits++
			mu.Unlock()
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := robots.New(srv.Client())

	allowed, err := c.Allowed(context.Background(), srv.URL+"/private/page", "linkcheck")
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if allowed {
		t.Fatal("expected /private/ to be disallowed")
	}

	allowed, err = c.Allowed(context.Background(), srv.URL+"/public/page", "linkcheck")
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if !allowed {
		t.Fatal("expected /public/ to be allowed")
	}

	mu.Lock()
	hits := robotsHits
	mu.Unlock()
	if hits != 1 {
		t.Fatalf("expected exactly one robots.txt fetch for the origin, got %d", hits)
	}
}

func TestAllowedFailsOpenOn404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := robots.New(srv.Client())
	allowed, err := c.Allowed(context.Background(), srv.URL+"/anything", "linkcheck")
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if !allowed {
		t.Fatal("missing robots.txt must default to allow-all")
	}
}

func TestAllowedFailsOpenOnNetworkError(t *testing.T) {
	c := robots.New(http.DefaultClient)
	allowed, err := c.Allowed(context.Background(), "http://127.0.0.1:1/page", "linkcheck")
	if err == nil {
		t.Fatal("expected a network error to be surfaced")
	}
	if !allowed {
		t.Fatal("network error fetching robots.txt must fail open")
	}
}

func TestAllowedConcurrentCallersShareOneFetch(t *testing.T) {
	var robotsHits int
	var mu sync.Mutex
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			<-block
			mu.Lock()
			robotsHits++
			mu.Unlock()
			_, _ = w.Write([]byte("User-agent: *\nDisallow:\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := robots.New(srv.Client())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Allowed(context.Background(), srv.URL+"/page", "linkcheck")
		}()
	}
	close(block)
	wg.Wait()

	mu.Lock()
	hits := robotsHits
	mu.Unlock()
	if hits != 1 {
		t.Fatalf("expected one robots.txt fetch shared across concurrent callers, got %d", hits)
	}
}

func TestAllowedRejectsURLsWithoutHost(t *testing.T) {
	c := robots.New(http.DefaultClient)
	allowed, err := c.Allowed(context.Background(), "mailto:user@example.test", "linkcheck")
	if err != nil {
		t.Fatalf("Allowed: %v", err)
	}
	if !allowed {
		t.Fatal("schemes without a host must default to allowed")
	}
}

func TestAllowedInvalidURL(t *testing.T) {
	c := robots.New(http.DefaultClient)
	_, err := c.Allowed(context.Background(), strings.Repeat("%", 3), "linkcheck")
	if err == nil {
		t.Fatal("expected parse error for malformed URL")
	}
}
