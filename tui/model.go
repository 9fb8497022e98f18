// Package tui provides the Bubble Tea terminal UI for linkcheck,
// displaying live crawl progress and a styled summary of results.
package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/linkchecker-go/linkcheck/engine"
	"github.com/linkchecker-go/linkcheck/result"
	"github.com/linkchecker-go/linkcheck/urlitem"
)

// Sink is the engine.ResultSink the caller wires into the director before
// building the Model: it records every wire so a final result.Result can
// be rendered once the run completes.
type Sink struct {
	mu    sync.Mutex
	wires []urlitem.Wire
}

// NewSink builds an empty Sink.
func NewSink() *Sink { return &Sink{} }

func (s *Sink) LogItem(w urlitem.Wire) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wires = append(s.wires, w)
}

func (s *Sink) snapshot() []urlitem.Wire {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]urlitem.Wire, len(s.wires))
	copy(out, s.wires)
	return out
}

// Model is the Bubble Tea model for the run's progress view.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	director *engine.Director
	seeds    []string
	sink     *Sink
	spinner  spinner.Model
	progress <-chan engine.Stats
	started  time.Time

	stats    engine.Stats
	quitting bool
	done     bool
	result   *result.Result
	err      error
	width    int
}

// NewModel creates a TUI model that drives director over seeds, sampling
// progress onto progressCh (the channel engine.StatusReporter.
// WithProgressChannel was given). sink must be the same Sink the director
// was built with, so the model can read back every logged wire once the
// run completes.
func NewModel(ctx context.Context, cancel context.CancelFunc, director *engine.Director, seeds []string, sink *Sink, progressCh <-chan engine.Stats) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:      ctx,
		cancel:   cancel,
		director: director,
		seeds:    seeds,
		sink:     sink,
		spinner:  spin,
		progress: progressCh,
		started:  time.Now(),
	}
}

// Init starts the spinner, the run, and the progress listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startRun(), waitForProgress(m.progress))
}

// startRun returns a tea.Cmd that runs the director and sends CrawlDoneMsg.
func (m Model) startRun() tea.Cmd {
	return func() tea.Msg {
		err := m.director.Run(m.ctx, m.seeds)
		if err != nil {
			err = fmt.Errorf("run: %w", err)
		}
		res := result.FromWires(m.sink.snapshot(), time.Since(m.started))
		return CrawlDoneMsg{Result: res, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case CrawlProgressMsg:
		m.stats = msg.Stats
		return m, waitForProgress(m.progress)

	case CrawlDoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.result != nil {
		return RenderSummary(m.result)
	}
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	return fmt.Sprintf("%s Checking... checked %d, invalid %d, in-flight %d, queued %d\n",
		m.spinner.View(), m.stats.Checked, m.stats.Invalid, m.stats.InFlight, m.stats.QueueDepth)
}

// HasBrokenLinks reports whether the run found any broken links.
func (m Model) HasBrokenLinks() bool {
	return m.result != nil && len(m.result.BrokenLinks) > 0
}

// GetResult returns the run's result for output formatting.
func (m Model) GetResult() *result.Result {
	return m.result
}
