package cmd

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
)

const dataGraph = `graph^type;ENUM;F;data
title;STR;T;Orbit
x.min;REAL;T;0
x.max;REAL;T;100
y.min;REAL;T;-1
y.max;REAL;T;1
num_curves;INT;F;1
curve[1];STR;F;c1
`

const curveStyle = `line.color;ENUM;T;Blue
line.pattern;ENUM;T;solid
line.width;INT;T;2
symbol.color;ENUM;T;Blue
symbol.fill_pattern;ENUM;T;solid_fill
symbol.height;REAL;T;6.0
symbol.type;ENUM;T;dot
symbol.line_width;INT;T;1
draw_symbols;LOGIC;T;F
`

const layoutGraph = `graph^type;ENUM;F;lat_layout
x.min;REAL;T;0
x.max;REAL;T;100
y.min;REAL;T;-5
y.max;REAL;T;5
ix_universe;INT;F;-1
-1^ix_branch;INT;F;0
`

// writeSession saves a replay file answering a draw pass over region "top".
func writeSession(t *testing.T, dir string) string {
	t.Helper()
	sim := pipe.NewSim(map[string]string{
		"python plot1 top":              "num_graphs;INT;F;1\ngraph[1];STR;F;x\n",
		"python plot_graph top.x":       dataGraph,
		"python plot_curve top.x.c1":    curveStyle,
		"python plot_line top.x.c1":     "1;0;0.5\n2;50;-0.5\n3;100;0.25\n",
		"python plot_graph r1.g":        layoutGraph,
		"python plot_shapes lat_layout": "1;QUADRUPOLE::*;box;Blue;0.5;T;Quad\n",
		"python plot_lat_layout 1@0":    "1;10;20;1;box;1;1;blue;Q1\n",
	})
	sim.Reject("python plot1 bad", "[ERROR | tao_python_cmd] no such region")

	var buf bytes.Buffer
	if err := pipe.WriteReplay(&buf, sim.Record()); err != nil {
		t.Fatalf("WriteReplay: %v", err)
	}
	path := filepath.Join(dir, "session.yaml")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command with args and returns what it printed.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		buf.ReadFrom(r)
		close(done)
	}()

	// Reset flags to prevent accumulation between runs
	replayPath, recordPath, configPath = "", "", ""
	plotOutput, plotScene, plotWidth, plotHeight = "", "", 0, 0
	renderOutput, renderWidth, renderHeight = "", 0, 0
	layoutRegion, configForce = "", false

	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	<-done
	return buf.String(), err
}

func TestPlotAndRenderE2E(t *testing.T) {
	dir := t.TempDir()
	session := writeSession(t, dir)
	conf := filepath.Join(dir, "missing.yaml")
	pngPath := filepath.Join(dir, "top.png")
	scenePath := filepath.Join(dir, "top.scene")

	out, err := run(t, "plot", "top", "-c", conf, "--replay", session,
		"-o", pngPath, "--scene", scenePath, "--width", "320", "--height", "240")
	if err != nil {
		t.Fatalf("plot: %v", err)
	}
	if !strings.Contains(out, "top: 2 panel(s) written to "+pngPath) {
		t.Errorf("unexpected output:\n%s", out)
	}
	checkPNG(t, pngPath, 320, 240)

	data, err := os.ReadFile(scenePath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`(region "top")`, "(kind data)", "(kind lat_layout)"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("scene missing %q", want)
		}
	}

	rendered := filepath.Join(dir, "again.png")
	out, err = run(t, "render", scenePath, "-c", conf, "-o", rendered, "--width", "200", "--height", "100")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "2 panel(s) written to "+rendered) {
		t.Errorf("unexpected output:\n%s", out)
	}
	checkPNG(t, rendered, 200, 100)
}

func checkPNG(t *testing.T, path string, width, height int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("%s: %v", path, err)
	}
	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		t.Errorf("%s is %dx%d, want %dx%d", path, b.Dx(), b.Dy(), width, height)
	}
}

func TestCommandsE2E(t *testing.T) {
	dir := t.TempDir()
	session := writeSession(t, dir)
	conf := filepath.Join(dir, "missing.yaml")

	tests := []struct {
		name        string
		args        []string
		wantErr     bool
		wantContain []string
	}{
		{
			name:        "params",
			args:        []string{"params", "plot_graph", "top.x"},
			wantContain: []string{"NAME", "title", "Orbit", "num_curves"},
		},
		{
			name:        "layout",
			args:        []string{"layout", "--region", "top"},
			wantContain: []string{`(region "top")`, "(kind lat_layout)"},
		},
		{
			name:    "floorplan missing",
			args:    []string{"floorplan", "--region", "top"},
			wantErr: true,
		},
		{
			name:    "rejected region",
			args:    []string{"plot", "bad", "-o", filepath.Join(dir, "bad.png")},
			wantErr: true,
		},
		{
			name:    "bad size",
			args:    []string{"plot", "top", "-o", filepath.Join(dir, "x.png"), "--width=-5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, "-c", conf, "--replay", session)
			out, err := run(t, args...)
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			for _, want := range tt.wantContain {
				if !strings.Contains(out, want) {
					t.Errorf("Output missing %q\nGot:\n%s", want, out)
				}
			}
		})
	}
}

func TestRecordE2E(t *testing.T) {
	dir := t.TempDir()
	session := writeSession(t, dir)
	recording := filepath.Join(dir, "recording.yaml")

	_, err := run(t, "params", "plot1", "top", "-c", filepath.Join(dir, "missing.yaml"),
		"--replay", session, "--record", recording)
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	sim, err := pipe.OpenReplay(recording)
	if err != nil {
		t.Fatalf("OpenReplay: %v", err)
	}
	if got := sim.Commands(); len(got) != 1 || got[0] != "python plot1 top" {
		t.Errorf("recorded commands = %v", got)
	}
}

func TestConfigE2E(t *testing.T) {
	path := filepath.Join(t.TempDir(), "otl", "config.yaml")

	out, err := run(t, "config", "init", "-c", path)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Configuration written to "+path) {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := run(t, "config", "init", "-c", path); err == nil {
		t.Error("expected an error for an existing file")
	}
	if _, err := run(t, "config", "init", "-c", path, "--force"); err != nil {
		t.Errorf("config init --force: %v", err)
	}

	out, err = run(t, "config", "show", "-c", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"tao:", "command: tao", "region: r1", "max_sessions: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("Output missing %q\nGot:\n%s", want, out)
		}
	}
}
