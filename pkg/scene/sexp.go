package scene

import (
	"fmt"
	"strconv"
	"strings"
)

// Expr is one s-expression node: an Atom, a quoted String or a *List.
type Expr interface {
	IsLeaf() bool
	String() string
}

// Atom is an unquoted symbol or number.
type Atom string

func (a Atom) IsLeaf() bool   { return true }
func (a Atom) String() string { return string(a) }

// String is a quoted string literal.
type String string

func (s String) IsLeaf() bool   { return true }
func (s String) String() string { return quote(string(s)) }

// List is a parenthesized list. Line is the line of its opening paren.
type List struct {
	Items []Expr
	Line  int
}

func (l *List) IsLeaf() bool { return false }

func (l *List) String() string {
	parts := make([]string, len(l.Items))
	for i, it := range l.Items {
		parts[i] = it.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// Head returns the leading atom of the list, or "" when the list is empty or
// starts with something else.
func (l *List) Head() string {
	if len(l.Items) == 0 {
		return ""
	}
	if a, ok := l.Items[0].(Atom); ok {
		return string(a)
	}
	return ""
}

// Args returns the items after the head.
func (l *List) Args() []Expr {
	if len(l.Items) == 0 {
		return nil
	}
	return l.Items[1:]
}

// Find returns the first child list whose head is key.
func (l *List) Find(key string) (*List, bool) {
	for _, it := range l.Args() {
		if sub, ok := it.(*List); ok && sub.Head() == key {
			return sub, true
		}
	}
	return nil, false
}

// Has reports whether a child list with head key exists.
func (l *List) Has(key string) bool {
	_, ok := l.Find(key)
	return ok
}

// Text returns argument i as a string. Both atoms and quoted strings are
// accepted.
func (l *List) Text(i int) (string, error) {
	args := l.Args()
	if i < 0 || i >= len(args) {
		return "", l.errorf("missing argument %d", i+1)
	}
	switch v := args[i].(type) {
	case Atom:
		return string(v), nil
	case String:
		return string(v), nil
	}
	return "", l.errorf("argument %d is a list", i+1)
}

// Float returns argument i as a number.
func (l *List) Float(i int) (float64, error) {
	s, err := l.Text(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, l.errorf("argument %d: %q is not a number", i+1, s)
	}
	return v, nil
}

// Int returns argument i as an integer.
func (l *List) Int(i int) (int, error) {
	s, err := l.Text(i)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, l.errorf("argument %d: %q is not an integer", i+1, s)
	}
	return v, nil
}

// Floats returns every argument as a number.
func (l *List) Floats() ([]float64, error) {
	out := make([]float64, len(l.Args()))
	for i := range out {
		v, err := l.Float(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (l *List) errorf(format string, args ...any) error {
	return &SyntaxError{Line: l.Line, Msg: "(" + l.Head() + "): " + fmt.Sprintf(format, args...)}
}

// SyntaxError reports malformed scene input.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("scene: line %d: %s", e.Line, e.Msg)
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
