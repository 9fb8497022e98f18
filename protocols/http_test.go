package protocols_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/linkchecker-go/linkcheck/protocols"
	"github.com/linkchecker-go/linkcheck/urlitem"
)

func TestHTTPHandlerValidPageExtractsChildren(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body><a href="/b">B</a></body></html>`))
	}))
	defer srv.Close()

	h := protocols.NewHTTPHandler(srv.Client(), "linkcheck-test/1.0", nil)
	item := &urlitem.Item{Canonical: srv.URL + "/a", Intern: true}

	out := h.Check(context.Background(), item)
	if !out.Valid {
		t.Fatalf("expected a valid result, got warning %+v", out.Warning)
	}
	if len(out.Children) != 1 || out.Children[0].Raw != "/b" {
		t.Fatalf("expected one child /b, got %+v", out.Children)
	}
}

func TestHTTPHandlerMarksNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	h := protocols.NewHTTPHandler(srv.Client(), "linkcheck-test/1.0", nil)
	item := &urlitem.Item{Canonical: srv.URL + "/missing"}

	out := h.Check(context.Background(), item)
	if out.Valid {
		t.Fatal("expected a 404 to be invalid")
	}
	if out.Warning == nil || out.Warning.Tag != urlitem.WarnUnreachable {
		t.Fatalf("expected url-unreachable, got %+v", out.Warning)
	}
}

func TestHTTPHandlerHeadFallsBackToGetOn405(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer srv.Close()

	h := protocols.NewHTTPHandler(srv.Client(), "linkcheck-test/1.0", nil)
	item := &urlitem.Item{Canonical: srv.URL + "/x"}

	out := h.Check(context.Background(), item)
	if !out.Valid {
		t.Fatalf("expected GET fallback to succeed, got %+v", out.Warning)
	}
}

func TestHTTPHandlerDetectsRedirectLoop(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/a", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/b", http.StatusFound)
	})
	mux.HandleFunc("/b", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/a", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := protocols.NewHTTPHandler(srv.Client(), "linkcheck-test/1.0", nil)
	item := &urlitem.Item{Canonical: srv.URL + "/a"}

	out := h.Check(context.Background(), item)
	if out.Valid {
		t.Fatal("expected a redirect loop to be invalid")
	}
	if out.Warning == nil || out.Warning.Tag != urlitem.WarnRedirectLoop {
		t.Fatalf("expected url-redirect-loop, got %+v", out.Warning)
	}
}

func TestHTTPHandlerSkipsExtractionForBinaryContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	}))
	defer srv.Close()

	h := protocols.NewHTTPHandler(srv.Client(), "linkcheck-test/1.0", nil)
	item := &urlitem.Item{Canonical: srv.URL + "/img", Intern: true}

	out := h.Check(context.Background(), item)
	if !out.Valid {
		t.Fatalf("expected binary content to be valid, got %+v", out.Warning)
	}
	if len(out.Children) != 0 {
		t.Fatalf("expected no children for image content, got %+v", out.Children)
	}
}
