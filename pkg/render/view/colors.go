package view

import (
	"image/color"
	"strconv"
	"strings"
)

// Tao color names. Matplotlib names cover what Tao does not define.
var namedColors = map[string]color.NRGBA{
	"white":          {R: 255, G: 255, B: 255, A: 255},
	"black":          {R: 0, G: 0, B: 0, A: 255},
	"red":            {R: 255, G: 0, B: 0, A: 255},
	"green":          {R: 0, G: 128, B: 0, A: 255},
	"blue":           {R: 0, G: 0, B: 255, A: 255},
	"cyan":           {R: 0, G: 255, B: 255, A: 255},
	"magenta":        {R: 255, G: 0, B: 255, A: 255},
	"yellow":         {R: 255, G: 255, B: 0, A: 255},
	"orange":         {R: 255, G: 165, B: 0, A: 255},
	"yellow_green":   {R: 154, G: 205, B: 50, A: 255},
	"light_green":    {R: 144, G: 238, B: 144, A: 255},
	"navy_blue":      {R: 0, G: 0, B: 128, A: 255},
	"purple":         {R: 128, G: 0, B: 128, A: 255},
	"reddish_purple": {R: 204, G: 121, B: 167, A: 255},
	"dark_grey":      {R: 64, G: 64, B: 64, A: 255},
	"light_grey":     {R: 200, G: 200, B: 200, A: 255},
	"grey":           {R: 128, G: 128, B: 128, A: 255},
	"gray":           {R: 128, G: 128, B: 128, A: 255},
	"brown":          {R: 165, G: 42, B: 42, A: 255},
	"pink":           {R: 255, G: 192, B: 203, A: 255},
	"transparent":    {},
}

// Unknown colors draw in gray.
var fallbackColor = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// Color resolves a Tao color name or #rrggbb. The boolean is false for
// "none" and the empty string, which mean "do not paint".
func Color(name string) (color.NRGBA, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch {
	case name == "" || name == "none":
		return color.NRGBA{}, false
	case strings.HasPrefix(name, "#") && len(name) == 7:
		v, err := strconv.ParseUint(name[1:], 16, 32)
		if err != nil {
			return fallbackColor, true
		}
		return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
	}
	if c, ok := namedColors[name]; ok {
		return c, c.A != 0
	}
	return fallbackColor, true
}

// Dashes returns the on/off lengths in pixels for a Tao line pattern drawn
// width pixels wide. Solid and unknown patterns return nil.
func Dashes(pattern string, width float64) []float64 {
	w := max(width, 1)
	switch strings.ToLower(pattern) {
	case "dashed":
		return []float64{6 * w, 3 * w}
	case "dotted":
		return []float64{w, 2 * w}
	case "dash_dot":
		return []float64{6 * w, 2 * w, w, 2 * w}
	case "dash_dot3":
		return []float64{6 * w, 2 * w, w, 2 * w, w, 2 * w, w, 2 * w}
	}
	return nil
}
