package ui

import (
	"log"
	"os"

	"gioui.org/app"
	"gioui.org/unit"
)

// Run opens the viewer window and blocks until it closes. load is called
// once at start and again on every reload. done, if not nil, runs after the
// window closes and before the process exits.
func Run(title string, load Loader, done func()) error {
	go func() {
		w := new(app.Window)
		w.Option(app.Title(title), app.Size(unit.Dp(1200), unit.Dp(800)))
		ui := New(w, NewState(), load)
		if err := ui.Run(); err != nil {
			log.Printf("ui: %v", err)
		}
		if done != nil {
			done()
		}
		os.Exit(0)
	}()

	app.Main()
	return nil
}
