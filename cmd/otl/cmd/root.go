package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceLattice/internal/config"
	"github.com/OpenTraceLab/OpenTraceLattice/internal/server"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

const version = "0.3.0"

var (
	// Global flags
	verbose    bool
	configPath string
	replayPath string
	recordPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "otl",
	Short: "OpenTraceLattice - lattice diagrams from a running Tao simulator",
	Long: `OpenTraceLattice (otl) drives a Tao simulator and draws its plot regions:
data graphs, lattice layout strips and floor plans.

Examples:
  otl plot r1 -o r1.png               # Render a region to PNG
  otl plot r1 --scene r1.scene        # Save the drawn figure as a scene file
  otl render r1.scene -o r1.png       # Render a saved scene without Tao
  otl view r1                         # Interactive viewer
  otl params plot_graph r1.g          # Show a parameter table
  otl serve                           # HTTP API
  otl plot r1 --replay session.yaml   # Answer from a recorded session`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		taoplot.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfg, err = config.Load(configFile())
		return err
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().StringVar(&replayPath, "replay", "", "answer from a recorded session instead of starting Tao")
	rootCmd.PersistentFlags().StringVar(&recordPath, "record", "", "save the session's simulator traffic to this file")
}

// session is a simulator connection for one command run.
type session struct {
	conn     server.Conn
	recorder *pipe.Recorder
}

func (s *session) Cmd(ctx context.Context, command string) (string, error) {
	if s.recorder != nil {
		return s.recorder.Cmd(ctx, command)
	}
	return s.conn.Cmd(ctx, command)
}

// Close writes the recording, if any, and stops the simulator.
func (s *session) Close() error {
	var recErr error
	if s.recorder != nil {
		recErr = writeRecording(recordPath, s.recorder.Replay())
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	return recErr
}

func writeRecording(path string, rp pipe.Replay) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save recording: %w", err)
	}
	if err := pipe.WriteReplay(f, rp); err != nil {
		f.Close()
		return fmt.Errorf("failed to save recording: %w", err)
	}
	return f.Close()
}

// startConn opens a replay or starts the configured simulator.
func startConn(ctx context.Context) (server.Conn, error) {
	if replayPath != "" {
		return pipe.OpenReplay(replayPath)
	}
	p, err := pipe.Start(ctx, cfg.ProcessConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to start simulator: %w", err)
	}
	return p, nil
}

func openSession(ctx context.Context) (*session, error) {
	conn, err := startConn(ctx)
	if err != nil {
		return nil, err
	}
	s := &session{conn: conn}
	if recordPath != "" {
		s.recorder = pipe.NewRecorder(conn)
	}
	return s, nil
}

// withPlotter runs fn against a fresh session and closes it afterwards.
func withPlotter(cmd *cobra.Command, fn func(ctx context.Context, pl *taoplot.Plotter) error) (err error) {
	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.CommandTimeout())
	defer cancel()
	return fn(ctx, taoplot.New(s, cfg.PlotOptions()...))
}

func printDiagnostics(fig *taoplot.Figure) {
	diags := fig.Diagnostics()
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%d items skipped:\n", len(diags))
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "  %s\n", d.String())
	}
}
