// Package view maps world coordinates of a figure panel to screen pixels.
package view

import (
	"math"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/geom"
)

const (
	minZoom = 1e-6
	maxZoom = 1e9
)

// Camera is a viewport onto one panel. World Y grows upward, screen Y grows
// downward. The horizontal and vertical scales are independent: graphs and
// layout strips stretch to fill the viewport, floor plans keep them equal.
type Camera struct {
	// Center position in world coordinates
	CenterX float64
	CenterY float64

	// Pixels per world unit
	ZoomX float64
	ZoomY float64

	// Viewport rectangle on screen (pixels)
	Left, Top     float64
	Width, Height float64
}

// NewCamera returns a camera over a width x height viewport at the screen
// origin, one pixel per world unit.
func NewCamera(width, height float64) *Camera {
	return &Camera{ZoomX: 1, ZoomY: 1, Width: width, Height: height}
}

// SetViewport moves the viewport on screen without changing the view.
func (c *Camera) SetViewport(left, top, width, height float64) {
	c.Left, c.Top, c.Width, c.Height = left, top, width, height
}

// WorldToScreen converts world coordinates to screen pixels.
func (c *Camera) WorldToScreen(pos geom.Position) (float64, float64) {
	x := (pos.X-c.CenterX)*c.ZoomX + c.Left + c.Width/2
	y := c.Top + c.Height/2 - (pos.Y-c.CenterY)*c.ZoomY
	return x, y
}

// ScreenToWorld converts screen pixels to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float64) geom.Position {
	return geom.Position{
		X: (screenX-c.Left-c.Width/2)/c.ZoomX + c.CenterX,
		Y: (c.Top+c.Height/2-screenY)/c.ZoomY + c.CenterY,
	}
}

// Pan moves the view by a screen pixel offset, dragging the content with it.
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.CenterX -= deltaX / c.ZoomX
	c.CenterY += deltaY / c.ZoomY
}

// ZoomAt scales both axes by factor, keeping the world point under the
// given screen position fixed. factor > 1 zooms in.
func (c *Camera) ZoomAt(screenX, screenY, factor float64) {
	before := c.ScreenToWorld(screenX, screenY)
	c.ZoomX = clampZoom(c.ZoomX * factor)
	c.ZoomY = clampZoom(c.ZoomY * factor)
	after := c.ScreenToWorld(screenX, screenY)

	c.CenterX += before.X - after.X
	c.CenterY += before.Y - after.Y
}

func clampZoom(z float64) float64 {
	return math.Min(math.Max(z, minZoom), maxZoom)
}

// Fit centers bbox and picks one scale for both axes so the content fills
// 90% of the viewport.
func (c *Camera) Fit(bbox geom.BoundingBox) {
	w, h := extent(bbox)
	c.center(bbox)
	z := clampZoom(math.Min(c.Width*0.9/w, c.Height*0.9/h))
	c.ZoomX, c.ZoomY = z, z
}

// Stretch maps bbox exactly onto the viewport, scaling each axis on its own.
func (c *Camera) Stretch(bbox geom.BoundingBox) {
	w, h := extent(bbox)
	c.center(bbox)
	c.ZoomX = clampZoom(c.Width / w)
	c.ZoomY = clampZoom(c.Height / h)
}

func (c *Camera) center(bbox geom.BoundingBox) {
	if bbox.IsEmpty() {
		c.CenterX, c.CenterY = 0, 0
		return
	}
	c.CenterX, c.CenterY = bbox.Center().X, bbox.Center().Y
}

// extent is the size of bbox with flat or empty sides widened to one unit.
func extent(bbox geom.BoundingBox) (w, h float64) {
	if bbox.IsEmpty() {
		return 1, 1
	}
	w, h = bbox.Width(), bbox.Height()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return w, h
}

// Scale converts a world length along x to pixels.
func (c *Camera) Scale(length float64) float64 { return length * c.ZoomX }

// VisibleBounds returns the part of the world shown in the viewport.
func (c *Camera) VisibleBounds() geom.BoundingBox {
	bb := geom.NewBoundingBox()
	bb.Expand(c.ScreenToWorld(c.Left, c.Top))
	bb.Expand(c.ScreenToWorld(c.Left+c.Width, c.Top+c.Height))
	return bb
}
