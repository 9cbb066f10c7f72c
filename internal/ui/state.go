package ui

import (
	"sync"
	"time"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// StateSnapshot captures a copy of the state data for rendering without
// requiring the UI to hold locks while laying out widgets.
type StateSnapshot struct {
	Figure   *taoplot.Figure
	Selected int // panel index, -1 without a figure
	Busy     bool

	LastError error
	Status    string
	Logs      []string

	LastUpdated time.Time
}

// Panel returns the selected panel, or nil.
func (s StateSnapshot) Panel() *taoplot.Panel {
	if s.Figure == nil || s.Selected < 0 || s.Selected >= len(s.Figure.Panels) {
		return nil
	}
	return &s.Figure.Panels[s.Selected]
}

// AppState is shared between the Gio event loop and the goroutine running
// draw passes.
type AppState struct {
	mu sync.RWMutex

	figure   *taoplot.Figure
	selected int
	busy     bool

	lastError error
	status    string

	logs     []string
	logLimit int

	lastUpdated time.Time
}

// NewState returns an empty AppState.
func NewState() *AppState {
	return &AppState{
		selected:    -1,
		logLimit:    200,
		status:      "Idle",
		lastUpdated: time.Now(),
	}
}

// Snapshot returns a copy of the mutable state for rendering. The figure is
// shared; it is never modified once stored.
func (s *AppState) Snapshot() StateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logCopy := make([]string, len(s.logs))
	copy(logCopy, s.logs)

	return StateSnapshot{
		Figure:      s.figure,
		Selected:    s.selected,
		Busy:        s.busy,
		LastError:   s.lastError,
		Status:      s.status,
		Logs:        logCopy,
		LastUpdated: s.lastUpdated,
	}
}

// SetFigure replaces the figure. The selection keeps its panel name when the
// new figure still has it, otherwise it falls back to the last panel, which
// is the layout or floor plan when there is one.
func (s *AppState) SetFigure(fig *taoplot.Figure) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := ""
	if s.figure != nil && s.selected >= 0 && s.selected < len(s.figure.Panels) {
		prev = s.figure.Panels[s.selected].Name
	}
	s.figure = fig
	s.selected = -1
	if fig != nil && len(fig.Panels) > 0 {
		s.selected = len(fig.Panels) - 1
		for i, p := range fig.Panels {
			if prev != "" && p.Name == prev {
				s.selected = i
				break
			}
		}
	}
	s.lastUpdated = time.Now()
}

// SelectPanel moves the selection to idx if valid.
func (s *AppState) SelectPanel(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.figure == nil || idx < 0 || idx >= len(s.figure.Panels) {
		return
	}
	s.selected = idx
	s.lastUpdated = time.Now()
}

// SetBusy toggles the busy flag.
func (s *AppState) SetBusy(busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = busy
	s.lastUpdated = time.Now()
}

// Busy returns the current busy flag.
func (s *AppState) Busy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.busy
}

// SetStatus updates the user-facing status message.
func (s *AppState) SetStatus(status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.lastUpdated = time.Now()
}

// SetError stores the latest error surfaced to the UI.
func (s *AppState) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err
	s.lastUpdated = time.Now()
}

// AppendLog appends a log message, trimming the oldest entries past the limit.
func (s *AppState) AppendLog(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs = append(s.logs, msg)
	if s.logLimit > 0 && len(s.logs) > s.logLimit {
		offset := len(s.logs) - s.logLimit
		s.logs = append([]string(nil), s.logs[offset:]...)
	}
	s.lastUpdated = time.Now()
}
