package pipe

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// CmdHook lets a test compute a response. Returning handled=false falls back
// to the canned responses.
type CmdHook func(command string) (resp string, handled bool, err error)

// Sim is an in-memory simulator. It answers from Responses, records every
// command it receives, and can be scripted further through OnCmd.
type Sim struct {
	OnCmd CmdHook

	mu        sync.Mutex
	responses map[string]string
	failures  map[string]string
	history   []string
	closed    bool
}

// NewSim returns a simulator answering with responses, keyed by the exact
// command text.
func NewSim(responses map[string]string) *Sim {
	s := &Sim{responses: make(map[string]string), failures: make(map[string]string)}
	maps.Copy(s.responses, responses)
	return s
}

// Respond sets the canned response for command.
func (s *Sim) Respond(command, response string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[command] = response
	delete(s.failures, command)
}

// Reject makes command fail with a CommandError carrying output.
func (s *Sim) Reject(command, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[command] = output
}

// LastCommand returns the most recent command, or "" if none was sent.
func (s *Sim) LastCommand() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return ""
	}
	return s.history[len(s.history)-1]
}

// History returns every command in the order received.
func (s *Sim) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// Commands returns the sorted set of commands that have canned responses.
func (s *Sim) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.responses))
}

func (s *Sim) Cmd(ctx context.Context, command string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	s.history = append(s.history, command)
	hook := s.OnCmd
	resp, ok := s.responses[command]
	failure, failed := s.failures[command]
	s.mu.Unlock()

	Logger().Debug("sim command", "cmd", command)

	if hook != nil {
		r, handled, err := hook(command)
		if handled {
			return r, err
		}
	}
	if failed {
		return "", &CommandError{Command: command, Output: failure}
	}
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return resp, nil
}

// Close makes further commands fail with ErrClosed.
func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
