// Package protocol decodes the semicolon-delimited responses of the Tao
// command pipe into typed parameters, ordered tables and positional records.
package protocol

import (
	"strconv"
	"strings"
)

// Kind is the declared type of a parameter.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindReal
	KindBool
	KindEnum
)

var kindNames = map[Kind]string{
	KindString: "STR",
	KindInt:    "INT",
	KindReal:   "REAL",
	KindBool:   "LOGIC",
	KindEnum:   "ENUM",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "STR"
}

// ParseKind maps a protocol type token to a Kind. Unknown tokens are strings.
func ParseKind(token string) Kind {
	switch strings.ToUpper(strings.TrimSpace(token)) {
	case "INT":
		return KindInt
	case "REAL":
		return KindReal
	case "LOGIC":
		return KindBool
	case "ENUM":
		return KindEnum
	default:
		return KindString
	}
}

var (
	boolTrue  = map[string]bool{"T": true, "TRUE": true, "Y": true, "YES": true, "1": true}
	boolFalse = map[string]bool{"F": true, "FALSE": true, "N": true, "NO": true, "0": true}
)

// Parameter is one decoded protocol line. It is never mutated after parsing.
type Parameter struct {
	Name string
	Kind Kind
	// Type is the raw type token, kept so unknown kinds serialize unchanged.
	Type string
	// HasSettable is set when the line carried Tao's settable column.
	HasSettable bool
	Settable    bool

	Str  string
	Int  int
	Real float64
	Bool bool
}

// Value returns the typed value: string, int, float64 or bool.
func (p Parameter) Value() any {
	switch p.Kind {
	case KindInt:
		return p.Int
	case KindReal:
		return p.Real
	case KindBool:
		return p.Bool
	default:
		return p.Str
	}
}

// Format re-serializes the value according to its kind.
func (p Parameter) Format() string {
	switch p.Kind {
	case KindInt:
		return strconv.Itoa(p.Int)
	case KindReal:
		return strconv.FormatFloat(p.Real, 'g', -1, 64)
	case KindBool:
		if p.Bool {
			return "T"
		}
		return "F"
	default:
		return p.Str
	}
}

// Line renders the parameter back into protocol form.
func (p Parameter) Line() string {
	typ := p.Type
	if typ == "" {
		typ = p.Kind.String()
	}
	parts := []string{p.Name, typ}
	if p.HasSettable {
		parts = append(parts, formatFlag(p.Settable))
	}
	parts = append(parts, p.Format())
	return strings.Join(parts, ";")
}

// ParseParameter decodes a "name;kind;value" line. Tao's four column form
// "name;kind;settable;value" is accepted when the third field is T or F.
func ParseParameter(line string) (Parameter, error) {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Split(line, ";")
	if len(fields) < 3 {
		return Parameter{}, malformed("", line, -1, "need at least 3 fields", nil)
	}
	name := strings.TrimSpace(fields[0])
	if name == "" {
		return Parameter{}, malformed("", line, 0, "empty name", nil)
	}

	p := Parameter{
		Name: name,
		Type: strings.TrimSpace(fields[1]),
		Kind: ParseKind(fields[1]),
	}

	rest := fields[2:]
	if len(fields) >= 4 && (fields[2] == "T" || fields[2] == "F") {
		p.HasSettable = true
		p.Settable = fields[2] == "T"
		rest = fields[3:]
	}
	raw := strings.Join(rest, ";")

	valueField := len(fields) - len(rest)
	switch p.Kind {
	case KindInt:
		v, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return Parameter{}, malformed("", line, valueField, "not an integer", err)
		}
		p.Int = v
	case KindReal:
		v, err := parseReal(raw)
		if err != nil {
			return Parameter{}, malformed("", line, valueField, "not a real", err)
		}
		p.Real = v
	case KindBool:
		v, ok := parseBool(raw)
		if !ok {
			return Parameter{}, malformed("", line, valueField, "not a logical", nil)
		}
		p.Bool = v
	default:
		p.Str = raw
	}
	return p, nil
}

// parseReal accepts Fortran style D exponents as well as Go syntax.
func parseReal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "dD") {
		s = strings.NewReplacer("d", "e", "D", "E").Replace(s)
	}
	return strconv.ParseFloat(s, 64)
}

func parseBool(s string) (bool, bool) {
	t := strings.ToUpper(strings.TrimSpace(s))
	if boolTrue[t] {
		return true, true
	}
	if boolFalse[t] {
		return false, true
	}
	return false, false
}

func formatFlag(b bool) string {
	if b {
		return "T"
	}
	return "F"
}
