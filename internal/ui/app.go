package ui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"math"
	"time"

	"gioui.org/app"
	"gioui.org/f32"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/oligo/gioview/menu"
	"github.com/oligo/gioview/theme"
	"golang.org/x/exp/shiny/materialdesign/icons"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/curve"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/markup"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/giorender"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/render/view"
	"github.com/OpenTraceLab/OpenTraceLattice/pkg/taoplot"
)

// Loader runs a draw pass for the viewer.
type Loader func(ctx context.Context) (*taoplot.Figure, error)

// loadTimeout bounds one reload.
const loadTimeout = 2 * time.Minute

var (
	canvasColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	barColor    = color.NRGBA{R: 238, G: 241, B: 251, A: 255}
	errorColor  = color.NRGBA{R: 190, G: 30, B: 45, A: 255}
)

// App shows one panel of a figure at a time with pan and zoom.
type App struct {
	Window *app.Window
	Theme  *theme.Theme
	State  *AppState

	load     Loader
	renderer *giorender.Renderer
	camera   *view.Camera

	ops op.Ops

	panelMenu    *menu.DropdownMenu
	panelMenuBtn widget.Clickable
	menuFigure   *taoplot.Figure
	fitBtn       widget.Clickable
	reloadBtn    widget.Clickable
	prevBtn      widget.Clickable
	nextBtn      widget.Clickable
	fitIcon      *widget.Icon
	reloadIcon   *widget.Icon
	prevIcon     *widget.Icon
	nextIcon     *widget.Icon

	// view bookkeeping
	shown    *taoplot.Panel
	size     image.Point
	moved    bool
	dragging bool
	last     f32.Point
	cursor   *geom.Position
}

// New wires the window, theme and state together.
func New(window *app.Window, state *AppState, load Loader) *App {
	if state == nil {
		state = NewState()
	}
	a := &App{
		Window:   window,
		Theme:    theme.NewTheme("", nil, false),
		State:    state,
		load:     load,
		renderer: giorender.New(),
		camera:   view.NewCamera(1, 1),
	}
	a.Theme.WithPalette(theme.Palette{
		Bg:         color.NRGBA{R: 245, G: 247, B: 253, A: 255},
		Fg:         color.NRGBA{R: 34, G: 37, B: 49, A: 255},
		ContrastBg: color.NRGBA{R: 80, G: 120, B: 255, A: 255},
		ContrastFg: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Bg2:        color.NRGBA{R: 225, G: 230, B: 244, A: 255},
	})
	a.fitIcon = makeIcon(icons.NavigationFullscreen, "fit")
	a.reloadIcon = makeIcon(icons.NavigationRefresh, "reload")
	a.prevIcon = makeIcon(icons.NavigationChevronLeft, "previous")
	a.nextIcon = makeIcon(icons.NavigationChevronRight, "next")
	return a
}

func makeIcon(data []byte, name string) *widget.Icon {
	icon, err := widget.NewIcon(data)
	if err != nil {
		log.Printf("ui: failed to load %s icon: %v", name, err)
		return nil
	}
	return icon
}

// Run loads the figure and processes Gio events until the window is closed.
func (a *App) Run() error {
	a.reload()
	for {
		switch ev := a.Window.Event().(type) {
		case app.DestroyEvent:
			return ev.Err
		case app.FrameEvent:
			gtx := app.NewContext(&a.ops, ev)
			if a.handleKeys(gtx) {
				return nil
			}
			a.layout(gtx)
			ev.Frame(gtx.Ops)
		}
	}
}

func (a *App) invalidate() {
	if a.Window != nil {
		a.Window.Invalidate()
	}
}

// reload runs the loader in the background. A reload while one is running is
// ignored.
func (a *App) reload() {
	if a.load == nil || a.State.Busy() {
		return
	}
	a.State.SetBusy(true)
	a.State.SetStatus("Loading...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		fig, err := a.load(ctx)
		a.State.SetError(err)
		if err != nil {
			a.State.SetStatus("Load failed")
			a.State.AppendLog(err.Error())
		} else {
			a.State.SetFigure(fig)
			a.State.SetStatus(fmt.Sprintf("Region %s: %d panels", fig.Region, len(fig.Panels)))
			for _, d := range fig.Diagnostics() {
				a.State.AppendLog(d.String())
			}
		}
		a.State.SetBusy(false)
		a.invalidate()
	}()
}

func (a *App) handleKeys(gtx layout.Context) (quit bool) {
	for {
		ev, ok := gtx.Event(
			key.Filter{Name: key.NameEscape},
			key.Filter{Name: "Q"},
			key.Filter{Name: "F"},
			key.Filter{Name: key.NameSpace},
			key.Filter{Name: "R"},
			key.Filter{Name: key.NameLeftArrow},
			key.Filter{Name: key.NameRightArrow},
		)
		if !ok {
			return false
		}
		ke, ok := ev.(key.Event)
		if !ok || ke.State != key.Press {
			continue
		}
		switch ke.Name {
		case key.NameEscape, "Q":
			return true
		case "F", key.NameSpace:
			a.moved = false
		case "R":
			a.reload()
		case key.NameLeftArrow:
			a.step(-1)
		case key.NameRightArrow:
			a.step(1)
		}
		a.invalidate()
	}
}

func (a *App) step(delta int) {
	snap := a.State.Snapshot()
	if snap.Figure == nil || len(snap.Figure.Panels) == 0 {
		return
	}
	n := len(snap.Figure.Panels)
	a.State.SelectPanel(((snap.Selected+delta)%n + n) % n)
}

func (a *App) layout(gtx layout.Context) layout.Dimensions {
	snap := a.State.Snapshot()
	if snap.Figure != a.menuFigure {
		a.panelMenu = a.buildPanelMenu(snap.Figure)
		a.menuFigure = snap.Figure
	}
	for a.fitBtn.Clicked(gtx) {
		a.moved = false
	}
	for a.reloadBtn.Clicked(gtx) {
		a.reload()
	}
	for a.prevBtn.Clicked(gtx) {
		a.step(-1)
		snap = a.State.Snapshot()
	}
	for a.nextBtn.Clicked(gtx) {
		a.step(1)
		snap = a.State.Snapshot()
	}

	paint.FillShape(gtx.Ops, barColor, clip.Rect{Max: gtx.Constraints.Max}.Op())

	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutTopBar(gtx, snap)
		}),
		layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return a.layoutCanvas(gtx, snap)
			})
		}),
		layout.Rigid(func(gtx layout.Context) layout.Dimensions {
			return a.layoutStatus(gtx, snap)
		}),
	)
}

// panelLabel names a panel in the selector.
func panelLabel(p *taoplot.Panel) string {
	switch {
	case p == nil:
		return "No panel"
	case p.Title != "":
		return fmt.Sprintf("%s: %s", p.Name, markup.Plain(p.Title))
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.Kind)
}

func (a *App) buildPanelMenu(fig *taoplot.Figure) *menu.DropdownMenu {
	if fig == nil || len(fig.Panels) == 0 {
		return nil
	}
	opts := make([]menu.MenuOption, 0, len(fig.Panels))
	for i := range fig.Panels {
		idx := i
		label := panelLabel(&fig.Panels[i])
		opts = append(opts, menu.MenuOption{
			OnClicked: func() error {
				a.State.SelectPanel(idx)
				a.invalidate()
				return nil
			},
			Layout: func(gtx menu.C, th *theme.Theme) menu.D {
				lbl := material.Body1(th.Theme, label)
				if a.State.Snapshot().Selected == idx {
					lbl.Color = th.Palette.ContrastBg
				}
				return layout.Inset{Left: unit.Dp(4), Right: unit.Dp(4)}.Layout(gtx, lbl.Layout)
			},
		})
	}
	drop := menu.NewDropdownMenu([][]menu.MenuOption{opts})
	drop.MaxWidth = unit.Dp(360)
	return drop
}

func (a *App) iconButton(gtx layout.Context, btn *widget.Clickable, icon *widget.Icon, desc string) layout.Dimensions {
	if icon == nil {
		b := material.Button(a.Theme.Theme, btn, desc)
		b.Inset = layout.UniformInset(unit.Dp(6))
		return b.Layout(gtx)
	}
	b := material.IconButton(a.Theme.Theme, btn, icon, desc)
	b.Size = unit.Dp(20)
	b.Inset = layout.UniformInset(unit.Dp(6))
	return b.Layout(gtx)
}

func (a *App) layoutTopBar(gtx layout.Context, snap StateSnapshot) layout.Dimensions {
	th := a.Theme.Theme
	return layout.Inset{
		Top: unit.Dp(8), Bottom: unit.Dp(4), Left: unit.Dp(12), Right: unit.Dp(12),
	}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.iconButton(gtx, &a.prevBtn, a.prevIcon, "Previous panel")
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				if a.panelMenuBtn.Clicked(gtx) && a.panelMenu != nil {
					a.panelMenu.ToggleVisibility(gtx)
				}
				btn := material.Button(th, &a.panelMenuBtn, panelLabel(snap.Panel()))
				btn.Inset = layout.UniformInset(unit.Dp(6))
				dims := btn.Layout(gtx)
				if a.panelMenu != nil {
					a.panelMenu.Layout(gtx, a.Theme)
				}
				return dims
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(4)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.iconButton(gtx, &a.nextBtn, a.nextIcon, "Next panel")
			}),
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				return layout.Dimensions{Size: image.Pt(gtx.Constraints.Min.X, 0)}
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.iconButton(gtx, &a.fitBtn, a.fitIcon, "Fit to window")
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(8)}.Layout),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				return a.iconButton(gtx, &a.reloadBtn, a.reloadIcon, "Reload")
			}),
		)
	})
}

func (a *App) layoutStatus(gtx layout.Context, snap StateSnapshot) layout.Dimensions {
	th := a.Theme.Theme
	return layout.Inset{
		Top: unit.Dp(2), Bottom: unit.Dp(6), Left: unit.Dp(12), Right: unit.Dp(12),
	}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
			layout.Flexed(1, func(gtx layout.Context) layout.Dimensions {
				if snap.LastError != nil {
					lbl := material.Caption(th, snap.LastError.Error())
					lbl.Color = errorColor
					lbl.MaxLines = 1
					return lbl.Layout(gtx)
				}
				return material.Caption(th, snap.Status).Layout(gtx)
			}),
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				p := snap.Panel()
				if p == nil {
					return layout.Dimensions{}
				}
				text := fmt.Sprintf("%d primitives, %d skipped", len(p.Layer.Primitives), len(p.Layer.Diagnostics))
				if a.cursor != nil {
					text = fmt.Sprintf("(%.4g, %.4g)   %s", a.cursor.X, a.cursor.Y, text)
				}
				return material.Caption(th, text).Layout(gtx)
			}),
		)
	})
}

// fitPanel frames the panel: floor plans keep one scale for both axes,
// graphs and layout strips fill the viewport.
func (a *App) fitPanel(p *taoplot.Panel) {
	frame := p.Frame()
	if p.Kind == curve.KindFloorPlan {
		a.camera.Fit(frame)
		return
	}
	a.camera.Stretch(frame)
	// leave room for labels at the edges
	a.camera.ZoomAt(a.camera.Left+a.camera.Width/2, a.camera.Top+a.camera.Height/2, 0.92)
}

func (a *App) layoutCanvas(gtx layout.Context, snap StateSnapshot) layout.Dimensions {
	size := gtx.Constraints.Max
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, a)
	a.handlePointer(gtx)

	giorender.Background(gtx, canvasColor)

	p := snap.Panel()
	if p == nil {
		msg := "No figure"
		if snap.Busy {
			msg = "Loading..."
		}
		return layout.Center.Layout(gtx, material.Body1(a.Theme.Theme, msg).Layout)
	}

	a.camera.SetViewport(0, 0, float64(size.X), float64(size.Y))
	if p != a.shown || size != a.size || !a.moved {
		if p != a.shown {
			a.moved = false
		}
		if !a.moved {
			a.fitPanel(p)
		}
		a.shown, a.size = p, size
	}
	a.renderer.DrawLayer(gtx, a.camera, &p.Layer)
	return layout.Dimensions{Size: size}
}

func (a *App) handlePointer(gtx layout.Context) {
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  a,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Move | pointer.Leave | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			return
		}
		pe, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		switch pe.Kind {
		case pointer.Press:
			if pe.Buttons == pointer.ButtonPrimary {
				a.dragging = true
				a.last = pe.Position
			}
		case pointer.Drag:
			if a.dragging {
				d := pe.Position.Sub(a.last)
				a.camera.Pan(float64(d.X), float64(d.Y))
				a.last = pe.Position
				a.moved = true
				a.invalidate()
			}
		case pointer.Release, pointer.Cancel:
			a.dragging = false
		case pointer.Move:
			pos := a.camera.ScreenToWorld(float64(pe.Position.X), float64(pe.Position.Y))
			a.cursor = &pos
			a.invalidate()
		case pointer.Leave:
			a.cursor = nil
			a.invalidate()
		case pointer.Scroll:
			factor := math.Exp(-float64(pe.Scroll.Y) * 0.01)
			a.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), factor)
			a.moved = true
			a.invalidate()
		}
	}
}
