package taoplot

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/pipe"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger sets the logger for draw passes and for the command pipe.
// Skipped curves and elements are logged at debug level.
//
// By default nothing is logged. Pass nil to restore that.
func SetLogger(l *slog.Logger) {
	pipe.SetLogger(l)
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger.
func Logger() *slog.Logger { return loggerPtr.Load() }
