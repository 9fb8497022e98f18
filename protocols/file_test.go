package protocols_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/linkchecker-go/linkcheck/protocols"
	"github.com/linkchecker-go/linkcheck/urlitem"
)

func TestFileHandlerChecksExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.html")
	if err := os.WriteFile(path, []byte(`<html><body><a href="b.html">b</a></body></html>`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	h := protocols.NewFileHandler()
	item := &urlitem.Item{Canonical: "file://" + path}
	out := h.Check(context.Background(), item)
	if !out.Valid {
		t.Fatalf("expected existing file to be valid, got %+v", out.Warning)
	}
	if len(out.Children) != 1 || out.Children[0].Raw != "b.html" {
		t.Fatalf("expected one extracted child, got %+v", out.Children)
	}
}

func TestFileHandlerMissingFile(t *testing.T) {
	h := protocols.NewFileHandler()
	item := &urlitem.Item{Canonical: "file:///nonexistent/path/missing.html"}
	out := h.Check(context.Background(), item)
	if out.Valid {
		t.Fatal("expected a missing file to be invalid")
	}
	if out.Warning == nil || out.Warning.Tag != urlitem.WarnUnreachable {
		t.Fatalf("expected url-unreachable, got %+v", out.Warning)
	}
}

func TestFileHandlerListsDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "x.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	h := protocols.NewFileHandler()
	item := &urlitem.Item{Canonical: "file://" + dir}
	out := h.Check(context.Background(), item)
	if !out.Valid {
		t.Fatalf("expected directory to be valid, got %+v", out.Warning)
	}
	if len(out.Children) != 1 || out.Children[0].Raw != "x.txt" {
		t.Fatalf("expected directory listing to contain x.txt, got %+v", out.Children)
	}
}
