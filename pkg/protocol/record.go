package protocol

import (
	"strconv"
	"strings"
)

// Record is one positional protocol line. The meaning of each field is fixed
// by the query that produced it.
type Record struct {
	Query  string
	Line   string
	fields []string
}

// NewRecord splits line on semicolons.
func NewRecord(query, line string) Record {
	return Record{Query: query, Line: line, fields: strings.Split(line, ";")}
}

// Records splits a response into records, skipping blank lines.
func Records(query, text string) []Record {
	lines := Lines(text)
	out := make([]Record, 0, len(lines))
	for _, line := range lines {
		out = append(out, NewRecord(query, line))
	}
	return out
}

func (r Record) Len() int { return len(r.fields) }

// Has reports whether field i exists.
func (r Record) Has(i int) bool { return i >= 0 && i < len(r.fields) }

// Field returns field i verbatim.
func (r Record) Field(i int) (string, error) {
	if !r.Has(i) {
		return "", malformed(r.Query, r.Line, i, "missing field", nil)
	}
	return r.fields[i], nil
}

// Lower returns field i trimmed and lowercased.
func (r Record) Lower(i int) (string, error) {
	s, err := r.Field(i)
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(s)), nil
}

// Int returns field i as an integer.
func (r Record) Int(i int) (int, error) {
	s, err := r.Field(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, malformed(r.Query, r.Line, i, "not an integer", err)
	}
	return v, nil
}

// Real returns field i as a float.
func (r Record) Real(i int) (float64, error) {
	s, err := r.Field(i)
	if err != nil {
		return 0, err
	}
	v, err := parseReal(s)
	if err != nil {
		return 0, malformed(r.Query, r.Line, i, "not a real", err)
	}
	return v, nil
}

// Reals decodes fields [from, Len) as floats.
func (r Record) Reals(from int) ([]float64, error) {
	var out []float64
	for i := from; i < len(r.fields); i++ {
		if strings.TrimSpace(r.fields[i]) == "" {
			continue
		}
		v, err := r.Real(i)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
