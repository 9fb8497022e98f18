package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linkchecker-go/linkcheck/engine"
	"github.com/linkchecker-go/linkcheck/result"
	"github.com/linkchecker-go/linkcheck/urlitem"
)

func TestSinkRecordsWires(t *testing.T) {
	s := NewSink()
	s.LogItem(urlitem.Wire{Canonical: "https://example.com/", Valid: true})
	s.LogItem(urlitem.Wire{Canonical: "https://example.com/missing", Valid: false})

	got := s.snapshot()
	if len(got) != 2 {
		t.Fatalf("snapshot() returned %d wires, want 2", len(got))
	}
	if got[1].Canonical != "https://example.com/missing" {
		t.Errorf("snapshot()[1].Canonical = %q", got[1].Canonical)
	}
}

func TestNewModel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	director := engine.New(engine.Config{Concurrency: 1}, nil, nil, nil, nil, NewSink(), nil, nil)
	progressCh := make(chan engine.Stats, 10)
	sink := NewSink()

	model := NewModel(ctx, cancel, director, []string{"https://example.com"}, sink, progressCh)

	if model.ctx != ctx {
		t.Error("expected ctx to be stored in model")
	}
	if model.cancel == nil {
		t.Error("expected cancel to be stored in model")
	}
	if model.director != director {
		t.Error("expected director to be stored in model")
	}
	if model.sink != sink {
		t.Error("expected sink to be stored in model")
	}
	if model.stats.Checked != 0 || model.stats.Invalid != 0 {
		t.Error("expected initial stats to be zero")
	}
	if model.done {
		t.Error("expected done to be false initially")
	}
}

func TestHasBrokenLinks(t *testing.T) {
	tests := []struct {
		name   string
		result *result.Result
		want   bool
	}{
		{name: "nil result", result: nil, want: false},
		{name: "no broken links", result: &result.Result{BrokenLinks: []result.LinkResult{}}, want: false},
		{
			name: "has broken links",
			result: &result.Result{
				BrokenLinks: []result.LinkResult{
					{URL: "https://example.com/missing", Tag: urlitem.WarnUnreachable},
				},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := Model{result: tt.result}
			if got := model.HasBrokenLinks(); got != tt.want {
				t.Errorf("HasBrokenLinks() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetResult(t *testing.T) {
	res := &result.Result{BrokenLinks: []result.LinkResult{{URL: "https://example.com/missing"}}}
	model := Model{result: res}
	if got := model.GetResult(); got != res {
		t.Errorf("GetResult() = %v, want %v", got, res)
	}
}

func TestRenderSummary_NilResult(t *testing.T) {
	output := RenderSummary(nil)
	if output == "" {
		t.Error("expected non-empty output for nil result")
	}
}

func TestRenderSummary_NoBrokenLinks(t *testing.T) {
	res := &result.Result{
		BrokenLinks: []result.LinkResult{},
		Stats: result.CrawlStats{
			TotalChecked: 10,
			BrokenCount:  0,
			Duration:     2 * time.Second,
		},
	}
	output := RenderSummary(res)
	if !strings.Contains(output, "No broken links found") {
		t.Errorf("expected success message, got: %s", output)
	}
	if !strings.Contains(output, "10") {
		t.Errorf("expected URL count in output, got: %s", output)
	}
}

func TestRenderSummary_WithBrokenLinks(t *testing.T) {
	res := &result.Result{
		BrokenLinks: []result.LinkResult{
			{URL: "https://example.com/dead", Tag: urlitem.WarnUnreachable, Message: "connection refused", ParentURL: "https://example.com"},
			{URL: "https://example.com/err", Tag: urlitem.WarnTimeout, Message: "request timed out", ParentURL: "https://example.com/about"},
		},
		Stats: result.CrawlStats{
			TotalChecked: 25,
			BrokenCount:  2,
			Duration:     3 * time.Second,
		},
	}
	output := RenderSummary(res)
	if !strings.Contains(output, "example.com/dead") {
		t.Errorf("expected broken URL in output, got: %s", output)
	}
	if !strings.Contains(output, "connection refused") {
		t.Errorf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, "Found 2 broken links") {
		t.Errorf("expected broken count in summary, got: %s", output)
	}
}

func TestUpdate_CrawlProgressMsg(t *testing.T) {
	model := Model{progress: make(chan engine.Stats)}

	msg := CrawlProgressMsg{Stats: engine.Stats{Checked: 5, Invalid: 1}}
	updatedModel, cmd := model.Update(msg)
	updated := updatedModel.(Model)

	if updated.stats.Checked != 5 {
		t.Errorf("expected checked=5, got %d", updated.stats.Checked)
	}
	if updated.stats.Invalid != 1 {
		t.Errorf("expected invalid=1, got %d", updated.stats.Invalid)
	}
	if cmd == nil {
		t.Error("expected non-nil cmd to re-subscribe to progress channel")
	}
}

func TestUpdate_CrawlDoneMsg(t *testing.T) {
	model := Model{}
	res := &result.Result{
		BrokenLinks: []result.LinkResult{{URL: "https://example.com/404", Tag: urlitem.WarnUnreachable}},
		Stats:       result.CrawlStats{TotalChecked: 10, BrokenCount: 1},
	}

	updatedModel, _ := model.Update(CrawlDoneMsg{Result: res})
	updated := updatedModel.(Model)

	if !updated.done {
		t.Error("expected done=true after CrawlDoneMsg")
	}
	if updated.result != res {
		t.Error("expected result to be stored")
	}
}

func TestUpdate_SpinnerTickMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(spinner.TickMsg{})
	_ = updatedModel.(Model) // should not panic
}

func TestUpdate_WindowSizeMsg(t *testing.T) {
	model := Model{}
	updatedModel, _ := model.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	updated := updatedModel.(Model)

	if updated.width != 120 {
		t.Errorf("expected width=120, got %d", updated.width)
	}
}

func TestView_InProgress(t *testing.T) {
	model := Model{stats: engine.Stats{Checked: 3, Invalid: 1}}
	output := model.View()
	if !strings.Contains(output, "Checking") {
		t.Errorf("expected 'Checking' in progress view, got: %s", output)
	}
	if !strings.Contains(output, "3") {
		t.Errorf("expected checked count in view, got: %s", output)
	}
}

func TestView_DoneWithResult(t *testing.T) {
	model := Model{
		done: true,
		result: &result.Result{
			BrokenLinks: []result.LinkResult{},
			Stats:       result.CrawlStats{TotalChecked: 5, Duration: time.Second},
		},
	}
	output := model.View()
	if !strings.Contains(output, "No broken links found") {
		t.Errorf("expected success message in done view, got: %s", output)
	}
}

func TestView_DoneWithError(t *testing.T) {
	model := Model{done: true, err: context.Canceled}
	output := model.View()
	if !strings.Contains(output, "Error") {
		t.Errorf("expected error message in done view, got: %s", output)
	}
}
