package pipe

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// DefaultPrompt is the prompt Tao prints when it is ready for a command.
const DefaultPrompt = "Tao>"

// ProcessConfig describes how to launch the simulator.
type ProcessConfig struct {
	Command string
	Args    []string
	Dir     string
	Env     []string

	// Prompt delimits responses. Defaults to DefaultPrompt.
	Prompt string
	// StartupTimeout bounds the wait for the first prompt.
	StartupTimeout time.Duration
	// QuitCommand is sent by Close before stdin is closed. Empty sends nothing.
	QuitCommand string
}

// Process drives a simulator subprocess over its standard streams. Commands
// are serialized: concurrent callers wait for each other.
type Process struct {
	cfg    ProcessConfig
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	out    *bufio.Reader
	stderr tailBuffer

	mu     sync.Mutex
	broken error
	closed bool
	reaped bool
	banner string
}

// Start launches the simulator and waits for its first prompt.
func Start(ctx context.Context, cfg ProcessConfig) (*Process, error) {
	if cfg.Command == "" {
		return nil, errors.New("pipe: no simulator command configured")
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.StartupTimeout <= 0 {
		cfg.StartupTimeout = 30 * time.Second
	}

	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Dir = cfg.Dir
	cmd.WaitDelay = time.Second
	if len(cfg.Env) > 0 {
		cmd.Env = cfg.Env
	}
	p := &Process{cfg: cfg, cmd: cmd}
	cmd.Stderr = &p.stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: stdout: %w", err)
	}
	p.stdin = stdin
	p.out = bufio.NewReader(stdout)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("pipe: start %s: %w", cfg.Command, err)
	}
	Logger().Info("simulator started", "cmd", cfg.Command, "pid", cmd.Process.Pid)

	startCtx, cancel := context.WithTimeout(ctx, cfg.StartupTimeout)
	defer cancel()
	banner, err := p.await(startCtx)
	if err != nil {
		_ = p.reap()
		return nil, fmt.Errorf("pipe: waiting for first prompt: %w", err)
	}
	p.banner = banner
	return p, nil
}

// Banner is everything the simulator printed before its first prompt.
func (p *Process) Banner() string { return p.banner }

// Cmd sends command and returns the response with the trailing prompt
// removed. A response containing a Tao error line yields a CommandError.
// If ctx ends first the process is killed, since the stream position is lost.
func (p *Process) Cmd(ctx context.Context, command string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return "", ErrClosed
	}
	if p.broken != nil {
		return "", fmt.Errorf("pipe: simulator unusable: %w", p.broken)
	}

	start := time.Now()
	if _, err := io.WriteString(p.stdin, command+"\n"); err != nil {
		p.broken = err
		return "", fmt.Errorf("pipe: write %q: %w", command, err)
	}
	resp, err := p.await(ctx)
	if err != nil {
		p.broken = err
		_ = p.reap()
		return "", fmt.Errorf("pipe: %q: %w", command, err)
	}
	resp = trimResponse(resp, command)

	Logger().Debug("simulator command", "cmd", command, "bytes", len(resp), "elapsed", time.Since(start))
	if rejected(resp) {
		return "", &CommandError{Command: command, Output: resp}
	}
	return resp, nil
}

// await reads until the prompt appears at the end of the output.
func (p *Process) await(ctx context.Context) (string, error) {
	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		var buf strings.Builder
		chunk := make([]byte, 4096)
		for {
			n, err := p.out.Read(chunk)
			buf.Write(chunk[:n])
			if text, ok := cutPrompt(buf.String(), p.cfg.Prompt); ok {
				done <- result{text: text}
				return
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = fmt.Errorf("simulator exited: %w (stderr: %s)", err, strings.TrimSpace(p.stderr.String()))
				}
				done <- result{err: err}
				return
			}
		}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// cutPrompt reports whether s ends with the prompt, ignoring trailing
// blanks, and returns the text before it.
func cutPrompt(s, prompt string) (string, bool) {
	t := strings.TrimRight(s, " \t")
	if !strings.HasSuffix(t, prompt) {
		return "", false
	}
	return strings.TrimSuffix(t, prompt), true
}

// trimResponse drops surrounding blank lines and an echoed command line.
func trimResponse(resp, command string) string {
	resp = strings.ReplaceAll(resp, "\r\n", "\n")
	resp = strings.Trim(resp, "\n")
	if first, rest, ok := strings.Cut(resp, "\n"); ok && strings.TrimSpace(first) == command {
		resp = rest
	} else if strings.TrimSpace(resp) == command {
		resp = ""
	}
	return resp
}

// Close asks the simulator to quit and waits briefly before killing it.
func (p *Process) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	if p.cfg.QuitCommand != "" && p.broken == nil {
		_, _ = io.WriteString(p.stdin, p.cfg.QuitCommand+"\n")
	}
	_ = p.stdin.Close()
	if p.reaped {
		return nil
	}
	p.reaped = true

	exited := make(chan error, 1)
	go func() { exited <- p.cmd.Wait() }()
	select {
	case err := <-exited:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return fmt.Errorf("pipe: wait: %w", err)
		}
		return nil
	case <-time.After(2 * time.Second):
		err := p.kill()
		<-exited
		return err
	}
}

// reap kills the process and waits for it to exit.
func (p *Process) reap() error {
	err := p.kill()
	if !p.reaped {
		p.reaped = true
		_ = p.cmd.Wait()
	}
	return err
}

func (p *Process) kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("pipe: kill: %w", err)
	}
	return nil
}

// tailBuffer collects stderr for error messages. It is written by the exec
// copier goroutine and read on failure.
type tailBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf.Len() > 64<<10 {
		b.buf.Reset()
	}
	return b.buf.Write(p)
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
