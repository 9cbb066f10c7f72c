package protocol

import (
	"strings"
)

// Table is an ordered name to Parameter mapping built from one response.
// The first occurrence of a key fixes its position; later duplicates replace
// the value in place.
type Table struct {
	Query  string
	keys   []string
	params map[string]Parameter
}

// NewTable returns an empty table tagged with the query that produced it.
func NewTable(query string) *Table {
	return &Table{Query: query, params: make(map[string]Parameter)}
}

// Set inserts or replaces a parameter.
func (t *Table) Set(p Parameter) {
	if _, ok := t.params[p.Name]; !ok {
		t.keys = append(t.keys, p.Name)
	}
	t.params[p.Name] = p
}

// Get returns the parameter stored under name.
func (t *Table) Get(name string) (Parameter, bool) {
	p, ok := t.params[name]
	return p, ok
}

// Keys returns the parameter names in protocol order.
func (t *Table) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Params returns the parameters in protocol order.
func (t *Table) Params() []Parameter {
	out := make([]Parameter, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.params[k])
	}
	return out
}

func (t *Table) Len() int { return len(t.keys) }

func (t *Table) lookup(name string) (Parameter, error) {
	p, ok := t.params[name]
	if !ok {
		table := "response"
		if t.Query != "" {
			table = t.Query
		}
		return Parameter{}, &LookupMissError{Table: table, Key: name}
	}
	return p, nil
}

// Str returns the raw textual value of name. Typed values are formatted.
func (t *Table) Str(name string) (string, error) {
	p, err := t.lookup(name)
	if err != nil {
		return "", err
	}
	return p.Format(), nil
}

// Int returns name as an integer.
func (t *Table) Int(name string) (int, error) {
	p, err := t.lookup(name)
	if err != nil {
		return 0, err
	}
	if p.Kind != KindInt {
		return 0, malformed(t.Query, p.Line(), -1, "expected INT for "+name, nil)
	}
	return p.Int, nil
}

// Real returns name as a float. INT parameters are widened.
func (t *Table) Real(name string) (float64, error) {
	p, err := t.lookup(name)
	if err != nil {
		return 0, err
	}
	switch p.Kind {
	case KindReal:
		return p.Real, nil
	case KindInt:
		return float64(p.Int), nil
	}
	return 0, malformed(t.Query, p.Line(), -1, "expected REAL for "+name, nil)
}

// Bool returns name as a logical.
func (t *Table) Bool(name string) (bool, error) {
	p, err := t.lookup(name)
	if err != nil {
		return false, err
	}
	if p.Kind != KindBool {
		return false, malformed(t.Query, p.Line(), -1, "expected LOGIC for "+name, nil)
	}
	return p.Bool, nil
}

// StrOr returns the value of name, or def when it is absent.
func (t *Table) StrOr(name, def string) string {
	if v, err := t.Str(name); err == nil {
		return v
	}
	return def
}

// RealOr returns the value of name, or def when it is absent or not numeric.
func (t *Table) RealOr(name string, def float64) float64 {
	if v, err := t.Real(name); err == nil {
		return v
	}
	return def
}

// IntOr returns the value of name, or def when it is absent or not an INT.
func (t *Table) IntOr(name string, def int) int {
	if v, err := t.Int(name); err == nil {
		return v
	}
	return def
}

// BoolOr returns the value of name, or def when it is absent or not LOGIC.
func (t *Table) BoolOr(name string, def bool) bool {
	if v, err := t.Bool(name); err == nil {
		return v
	}
	return def
}

// ParseTable decodes a multi-line response. Blank lines are ignored and an
// empty response yields an empty table.
func ParseTable(query, text string) (*Table, error) {
	t := NewTable(query)
	for _, line := range Lines(text) {
		p, err := ParseParameter(line)
		if err != nil {
			if m, ok := err.(*MalformedParameterError); ok {
				m.Query = query
			}
			return nil, err
		}
		t.Set(p)
	}
	return t, nil
}

// RequireTable is ParseTable for queries whose answer must not be empty.
func RequireTable(query, text string) (*Table, error) {
	t, err := ParseTable(query, text)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, &EmptyResponseError{Query: query}
	}
	return t, nil
}

// Lines splits a response into its non-blank lines with line endings removed.
func Lines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
