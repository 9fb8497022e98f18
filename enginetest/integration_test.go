package enginetest_test

import (
	"context"
	"testing"
	"time"

	"github.com/linkchecker-go/linkcheck/engine"
	"github.com/linkchecker-go/linkcheck/enginetest"
)

// TestSiteServerIntegration verifies the full crawl flow from the seed URL
// through discovered links, including detection of the broken link,
// against the shared multi-page fixture.
func TestSiteServerIntegration(t *testing.T) {
	srv := enginetest.NewSiteServer()
	defer srv.Close()

	sink := &enginetest.RecordingSink{}
	d := enginetest.NewDirector(engine.Config{MaxDepth: -1}, srv.Client(), sink)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Run(ctx, []string{srv.URL + "/"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stats := d.Snapshot()
	if stats.Checked == 0 {
		t.Fatal("expected at least one item checked")
	}
	if stats.Invalid == 0 {
		t.Fatal("expected the /broken link to be reported invalid")
	}
}

func TestRedirectLoopServerIsDetected(t *testing.T) {
	srv := enginetest.NewRedirectLoopServer()
	defer srv.Close()

	sink := &enginetest.RecordingSink{}
	d := enginetest.NewDirector(engine.Config{MaxDepth: -1}, srv.Client(), sink)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Run(ctx, []string{srv.URL + "/loop"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wires := sink.Snapshot()
	if len(wires) != 1 || wires[0].Valid {
		t.Fatalf("expected the redirect loop to be logged invalid, got %+v", wires)
	}
}

func TestFlakyServerRecoversWithRetry(t *testing.T) {
	srv := enginetest.NewFlakyServer(2)
	defer srv.Close()

	sink := &enginetest.RecordingSink{}
	d := enginetest.NewDirector(engine.Config{MaxDepth: -1, Retry: engine.DefaultRetryPolicy()}, srv.Client(), sink)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Run(ctx, []string{srv.URL + "/"}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	wires := sink.Snapshot()
	if len(wires) != 1 || !wires[0].Valid {
		t.Fatalf("expected the flaky server to recover after retries, got %+v", wires)
	}
}
