// Package pipe carries commands to a Tao simulator and returns its text
// responses. Process drives a real simulator subprocess; Sim answers from a
// table of canned responses for tests and offline rendering.
package pipe

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Pipe is a request/response channel to the simulator. Cmd blocks until the
// full response to command has been read.
type Pipe interface {
	Cmd(ctx context.Context, command string) (string, error)
}

// ErrClosed is returned by Cmd after Close.
var ErrClosed = errors.New("pipe: closed")

// ErrUnknownCommand is returned by Sim for a command with no canned response.
var ErrUnknownCommand = errors.New("pipe: unknown command")

// CommandError reports a command the simulator rejected. Output holds the
// simulator's full response, error lines included.
type CommandError struct {
	Command string
	Output  string
}

func (e *CommandError) Error() string {
	first, _, _ := strings.Cut(strings.TrimSpace(e.Output), "\n")
	return fmt.Sprintf("pipe: %q rejected: %s", e.Command, first)
}

// errorMarkers prefix the lines Tao prints when a command fails.
var errorMarkers = []string{"[ERROR", "ERROR:", "[FATAL"}

func rejected(output string) bool {
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		for _, m := range errorMarkers {
			if strings.HasPrefix(line, m) {
				return true
			}
		}
	}
	return false
}

// Prefixed wraps p so every command is sent as prefix + " " + command. Tao
// expects its machine-readable queries behind the "python" command.
func Prefixed(p Pipe, prefix string) Pipe {
	if prefix == "" {
		return p
	}
	return prefixed{p: p, prefix: prefix + " "}
}

type prefixed struct {
	p      Pipe
	prefix string
}

func (p prefixed) Cmd(ctx context.Context, command string) (string, error) {
	return p.p.Cmd(ctx, p.prefix+command)
}
