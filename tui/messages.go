package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/linkchecker-go/linkcheck/engine"
	"github.com/linkchecker-go/linkcheck/result"
)

// CrawlProgressMsg reports the director's latest progress snapshot.
type CrawlProgressMsg struct {
	Stats engine.Stats
}

// CrawlDoneMsg signals the run has completed.
type CrawlDoneMsg struct {
	Result *result.Result
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one snapshot from ch. When
// the channel closes (the status reporter stopped sampling), it emits no
// further message; the real completion signal is CrawlDoneMsg from
// Model.startRun.
func waitForProgress(ch <-chan engine.Stats) tea.Cmd {
	return func() tea.Msg {
		stats, ok := <-ch
		if !ok {
			return nil
		}
		return CrawlProgressMsg{Stats: stats}
	}
}
