package pipe

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const replayDoc = `responses:
  python plot1 r1: |
    num_graphs;INT;F;1
    graph[1];STR;F;g
rejections:
  python plot_symbol r1.g.c1: "[ERROR | tao_python_cmd] no symbol data"
`

func TestReadReplay(t *testing.T) {
	sim, err := ReadReplay(strings.NewReader(replayDoc))
	if err != nil {
		t.Fatalf("ReadReplay: %v", err)
	}
	resp, err := sim.Cmd(context.Background(), "python plot1 r1")
	if err != nil {
		t.Fatalf("Cmd: %v", err)
	}
	if resp != "num_graphs;INT;F;1\ngraph[1];STR;F;g\n" {
		t.Fatalf("resp = %q", resp)
	}
	var ce *CommandError
	if _, err := sim.Cmd(context.Background(), "python plot_symbol r1.g.c1"); !errors.As(err, &ce) {
		t.Fatalf("expected CommandError, got %v", err)
	}
}

func TestReadReplayEmptyAndBad(t *testing.T) {
	sim, err := ReadReplay(strings.NewReader(""))
	if err != nil {
		t.Fatalf("empty document: %v", err)
	}
	if n := len(sim.Commands()); n != 0 {
		t.Fatalf("empty replay knows %d commands", n)
	}
	if _, err := ReadReplay(strings.NewReader("responses: [1, 2")); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestRecorderRoundTrip(t *testing.T) {
	live := NewSim(map[string]string{"python plot1 r1": "num_graphs;INT;F;0\n"})
	live.Reject("python plot1 bad", "[ERROR | tao_python_cmd] no region")
	rec := NewRecorder(live)

	ctx := context.Background()
	if _, err := rec.Cmd(ctx, "python plot1 r1"); err != nil {
		t.Fatalf("Cmd: %v", err)
	}
	if _, err := rec.Cmd(ctx, "python plot1 bad"); err == nil {
		t.Fatal("expected rejection")
	}
	if _, err := rec.Cmd(ctx, "python unknown"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "session.yaml")
	var buf bytes.Buffer
	if err := WriteReplay(&buf, rec.Replay()); err != nil {
		t.Fatalf("WriteReplay: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	sim, err := OpenReplay(path)
	if err != nil {
		t.Fatalf("OpenReplay: %v", err)
	}
	if got := sim.Commands(); len(got) != 1 || got[0] != "python plot1 r1" {
		t.Fatalf("replayed commands = %v", got)
	}
	if _, err := sim.Cmd(ctx, "python plot1 bad"); err == nil {
		t.Fatal("rejection was not replayed")
	}
	if _, err := sim.Cmd(ctx, "python unknown"); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("unknown commands are not recorded, got %v", err)
	}
}
