package enginetest

import (
	"sync"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// RecordingSink is an engine.ResultSink test double that collects every
// logged wire under a mutex, since the director's single coordinator
// goroutine writes concurrently with a test reading Snapshot.
type RecordingSink struct {
	mu    sync.Mutex
	wires []urlitem.Wire
}

func (s *RecordingSink) LogItem(w urlitem.Wire) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wires = append(s.wires, w)
}

// Snapshot returns a copy of every wire logged so far.
func (s *RecordingSink) Snapshot() []urlitem.Wire {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]urlitem.Wire, len(s.wires))
	copy(out, s.wires)
	return out
}
