// Package catalog resolves per element type drawing metadata from the
// simulator's plot_shapes listing.
package catalog

import (
	"sort"
	"strings"

	"github.com/OpenTraceLab/OpenTraceLattice/pkg/protocol"
)

// ErrLookupMiss is matched by LookupMissError through errors.Is.
var ErrLookupMiss = protocol.ErrLookupMiss

// LookupMissError reports an element type with no catalog entry.
type LookupMissError = protocol.LookupMissError

// Entry is the drawing metadata for one element type.
type Entry struct {
	Type   string  // lowercased element type, e.g. "quadrupole"
	Shape  string  // lowercased shape tag
	Color  string  // lowercased color name
	Height float64 // half-height of the drawn shape
	Name   string  // display name, may be empty
}

// Catalog maps lowercased element types to their Entry. It is built once per
// draw pass and only read afterwards.
type Catalog struct {
	Section string // lat_layout or floor_plan
	entries map[string]Entry
}

// New returns an empty catalog for section.
func New(section string) *Catalog {
	return &Catalog{Section: section, entries: make(map[string]Entry)}
}

// Parse decodes a plot_shapes response. Field 1 holds "TYPE::pattern"; only
// the part before "::" names the type.
func Parse(section, text string) (*Catalog, error) {
	c := New(section)
	query := "plot_shapes " + section
	for _, rec := range protocol.Records(query, text) {
		raw, err := rec.Field(1)
		if err != nil {
			return nil, err
		}
		typ, _, _ := strings.Cut(raw, "::")
		e := Entry{Type: strings.ToLower(strings.TrimSpace(typ))}
		if e.Shape, err = rec.Lower(2); err != nil {
			return nil, err
		}
		if e.Color, err = rec.Lower(3); err != nil {
			return nil, err
		}
		if e.Height, err = rec.Real(4); err != nil {
			return nil, err
		}
		if rec.Has(6) {
			e.Name, _ = rec.Field(6)
		}
		c.Add(e)
	}
	return c, nil
}

// Add inserts or replaces an entry. The type is lowercased.
func (c *Catalog) Add(e Entry) {
	e.Type = strings.ToLower(e.Type)
	c.entries[e.Type] = e
}

// Lookup returns the entry for typ.
func (c *Catalog) Lookup(typ string) (Entry, error) {
	e, ok := c.entries[strings.ToLower(typ)]
	if !ok {
		return Entry{}, &LookupMissError{Table: "catalog " + c.Section, Key: typ}
	}
	return e, nil
}

func (c *Catalog) Shape(typ string) (string, error) {
	e, err := c.Lookup(typ)
	return e.Shape, err
}

func (c *Catalog) Color(typ string) (string, error) {
	e, err := c.Lookup(typ)
	return e.Color, err
}

func (c *Catalog) Height(typ string) (float64, error) {
	e, err := c.Lookup(typ)
	return e.Height, err
}

func (c *Catalog) Name(typ string) (string, error) {
	e, err := c.Lookup(typ)
	return e.Name, err
}

// Len returns the number of element types.
func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns all entries sorted by type.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out
}
