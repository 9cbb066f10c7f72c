package curve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// Glyph is the outline family of a marker symbol.
type Glyph uint8

const (
	GlyphSquare Glyph = iota + 1
	GlyphDot
	GlyphPixel
	GlyphPlus
	GlyphFilledPlus
	GlyphCross
	GlyphTriangle
	GlyphDiamond
	GlyphStar
	GlyphCircle
	GlyphRing
	GlyphCirclePlus
	GlyphCircleDot
	GlyphPolygon  // regular polygon with Sides vertices
	GlyphStarred  // star polygon with Sides points
	GlyphAsterisk // Sides spokes
)

// Symbol is a resolved marker. Code is the marker code in the
// matplotlib vocabulary, kept so scene files and API clients can round-trip
// it; Glyph, Sides and Angle are what backends draw.
type Symbol struct {
	Code  string
	Glyph Glyph
	Sides int
	Angle float64 // degrees
}

var codeGlyphs = map[string]Glyph{
	"s":        GlyphSquare,
	".":        GlyphDot,
	",":        GlyphPixel,
	"+":        GlyphPlus,
	"P":        GlyphFilledPlus,
	"x":        GlyphCross,
	"^":        GlyphTriangle,
	"d":        GlyphDiamond,
	"*":        GlyphStar,
	"o":        GlyphCircle,
	`$\circ$`:  GlyphRing,
	`$\oplus$`: GlyphCirclePlus,
	`$\odot$`:  GlyphCircleDot,
}

// pgplotSymbols maps simulator symbol names and their pgplot numbers to
// marker codes.
var pgplotSymbols = map[string]string{
	"square":          "s",
	"dot":             ".",
	"plus":            "+",
	"times":           "(6,2,0)",
	"circle":          `$\circ$`,
	"x":               "x",
	"triangle":        "^",
	"circle_plus":     `$\oplus$`,
	"circle_dot":      `$\odot$`,
	"square_concave":  "(4,1,45)",
	"diamond":         "d",
	"star5":           "*",
	"triangle_filled": "^",
	"red_cross":       "P",
	"star_of_david":   "(6,1,0)",
	"square_filled":   "s",
	"circle_filled":   "o",
	"star5_filled":    "*",

	"0":  "s",
	"1":  ".",
	"2":  "+",
	"3":  "(6,2,0)",
	"4":  `$\circ$`,
	"5":  "x",
	"6":  "s",
	"7":  "^",
	"8":  `$\oplus$`,
	"9":  `$\odot$`,
	"10": "(4,1,45)",
	"11": "d",
	"12": "*",
	"13": "^",
	"14": "P",
	"15": "(6,1,0)",
	"16": "s",
	"17": "o",
	"18": "*",
	"-1": ",",
	"-2": ",",
}

func init() {
	for n := 3; n <= 12; n++ {
		pgplotSymbols[strconv.Itoa(-n)] = fmt.Sprintf("(%d,0,0)", n)
	}
}

// LookupSymbol resolves a simulator symbol.type value.
func LookupSymbol(name string) (Symbol, error) {
	code, ok := pgplotSymbols[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Symbol{}, &protocol.LookupMissError{Table: "symbol", Key: name}
	}
	return ParseCode(code)
}

// ParseCode resolves a marker code: one of the single-character or $...$
// codes, or a "(sides,style,angle)" triple where style 0 is a polygon,
// 1 a star and 2 an asterisk.
func ParseCode(code string) (Symbol, error) {
	if g, ok := codeGlyphs[code]; ok {
		return Symbol{Code: code, Glyph: g}, nil
	}
	inner, ok := strings.CutPrefix(code, "(")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")")
	}
	parts := strings.Split(inner, ",")
	if !ok || len(parts) != 3 {
		return Symbol{}, &protocol.LookupMissError{Table: "marker", Key: code}
	}
	sides, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	style, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	angle, err3 := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err1 != nil || err2 != nil || err3 != nil || sides < 2 {
		return Symbol{}, &protocol.LookupMissError{Table: "marker", Key: code}
	}
	s := Symbol{Code: code, Sides: sides, Angle: angle}
	switch style {
	case 0:
		s.Glyph = GlyphPolygon
	case 1:
		s.Glyph = GlyphStarred
	case 2:
		s.Glyph = GlyphAsterisk
	default:
		return Symbol{}, &protocol.LookupMissError{Table: "marker", Key: code}
	}
	return s, nil
}

// Filled reports whether the glyph encloses an area that a fill color
// applies to.
func (s Symbol) Filled() bool {
	switch s.Glyph {
	case GlyphSquare, GlyphDot, GlyphFilledPlus, GlyphTriangle, GlyphDiamond,
		GlyphStar, GlyphCircle, GlyphPolygon, GlyphStarred:
		return true
	}
	return false
}
