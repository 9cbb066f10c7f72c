package pipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Replay is the on-disk form of a Sim: the responses of a recorded session,
// keyed by the exact command text.
//
//	responses:
//	  python plot1 r1: |
//	    num_graphs;INT;F;1
//	    graph[1];STR;F;g
//	rejections:
//	  python plot_symbol r1.g.c1: "[ERROR | tao_python_cmd] no symbol data"
type Replay struct {
	Responses  map[string]string `yaml:"responses"`
	Rejections map[string]string `yaml:"rejections,omitempty"`
}

// ReadReplay decodes a replay document into a Sim.
func ReadReplay(r io.Reader) (*Sim, error) {
	var rp Replay
	if err := yaml.NewDecoder(r).Decode(&rp); err != nil {
		if errors.Is(err, io.EOF) {
			return NewSim(nil), nil
		}
		return nil, fmt.Errorf("pipe: replay: %w", err)
	}
	sim := NewSim(rp.Responses)
	for cmd, out := range rp.Rejections {
		sim.Reject(cmd, out)
	}
	return sim, nil
}

// OpenReplay reads a replay file.
func OpenReplay(path string) (*Sim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sim, err := ReadReplay(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sim, nil
}

// Record returns the Sim's canned responses and rejections as a Replay.
func (s *Sim) Record() Replay {
	s.mu.Lock()
	defer s.mu.Unlock()
	rp := Replay{Responses: make(map[string]string, len(s.responses))}
	for k, v := range s.responses {
		if _, failed := s.failures[k]; !failed {
			rp.Responses[k] = v
		}
	}
	if len(s.failures) > 0 {
		rp.Rejections = make(map[string]string, len(s.failures))
		for k, v := range s.failures {
			rp.Rejections[k] = v
		}
	}
	return rp
}

// WriteReplay encodes rp as YAML.
func WriteReplay(w io.Writer, rp Replay) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rp); err != nil {
		return err
	}
	return enc.Close()
}

// Recorder passes commands to another pipe and keeps every answer, so a live
// session can be saved and replayed later through a Sim.
type Recorder struct {
	Pipe Pipe
	sim  *Sim
}

// NewRecorder records the traffic of p.
func NewRecorder(p Pipe) *Recorder {
	return &Recorder{Pipe: p, sim: NewSim(nil)}
}

func (r *Recorder) Cmd(ctx context.Context, command string) (string, error) {
	resp, err := r.Pipe.Cmd(ctx, command)
	var ce *CommandError
	switch {
	case err == nil:
		r.sim.Respond(command, resp)
	case errors.As(err, &ce):
		r.sim.Reject(command, ce.Output)
	}
	return resp, err
}

// Replay returns what has been recorded so far.
func (r *Recorder) Replay() Replay { return r.sim.Record() }
