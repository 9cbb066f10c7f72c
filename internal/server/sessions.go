package server

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// Conn is a simulator connection owned by one session.
type Conn interface {
	pipe.Pipe
	Close() error
}

// Starter opens a new simulator connection.
type Starter func(ctx context.Context) (Conn, error)

// ErrSessionLimit is returned by Create when every slot is taken.
var ErrSessionLimit = errors.New("session limit reached")

// Session is one simulator connection and the plotter that queries it.
// Passes on a session run one at a time.
type Session struct {
	ID      string
	Created time.Time

	mu       sync.Mutex
	conn     Conn
	plotter  *taoplot.Plotter
	lastUsed time.Time
}

// Plot runs a draw pass for region.
func (s *Session) Plot(ctx context.Context, region string) (*taoplot.Figure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plotter.Plot(ctx, region)
}

// Table runs a single parameter query.
func (s *Session) Table(ctx context.Context, query string) (*protocol.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plotter.Table(ctx, query)
}

// Manager tracks live sessions.
type Manager struct {
	start Starter
	opts  []taoplot.Option
	max   int
	now   func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager returns a manager allowing at most max sessions.
func NewManager(start Starter, max int, opts ...taoplot.Option) *Manager {
	return &Manager{
		start:    start,
		opts:     opts,
		max:      max,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create starts a simulator and registers a session for it.
func (m *Manager) Create(ctx context.Context) (*Session, error) {
	if m.Len() >= m.max {
		return nil, ErrSessionLimit
	}
	conn, err := m.start(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := &Session{
		ID:       uuid.New().String(),
		Created:  now,
		conn:     conn,
		plotter:  taoplot.New(conn, m.opts...),
		lastUsed: now,
	}

	m.mu.Lock()
	if len(m.sessions) >= m.max {
		m.mu.Unlock()
		_ = conn.Close()
		return nil, ErrSessionLimit
	}
	m.sessions[s.ID] = s
	m.mu.Unlock()

	taoplot.Logger().Info("session started", "id", s.ID)
	return s, nil
}

// Get returns the session and marks it used.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	s.mu.Lock()
	s.lastUsed = m.now()
	s.mu.Unlock()
	return s, true
}

// Len is the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs lists live session ids in creation order.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	m.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].Created.Before(list[j].Created) })
	ids := make([]string, len(list))
	for i, s := range list {
		ids[i] = s.ID
	}
	return ids
}

// Close ends the session and its simulator.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return false
	}
	m.closeSession(s, "closed")
	return true
}

func (m *Manager) closeSession(s *Session, reason string) {
	// Waits for a running pass.
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.Close(); err != nil {
		taoplot.Logger().Warn("closing simulator", "id", s.ID, "error", err)
	}
	taoplot.Logger().Info("session ended", "id", s.ID, "reason", reason)
}

// Sweep closes sessions unused for longer than idle and returns how many.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	var stale []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			continue // busy
		}
		last := s.lastUsed
		s.mu.Unlock()
		if last.Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		m.closeSession(s, "idle")
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(idle); n > 0 {
				taoplot.Logger().Info("swept idle sessions", "count", n)
			}
		}
	}
}

// CloseAll ends every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range all {
		m.closeSession(s, "shutdown")
	}
}
