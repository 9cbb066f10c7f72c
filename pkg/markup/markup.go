// Package markup converts pgplot text escapes, as used by the simulator in
// titles, axis labels and legends, into math-mode markup.
package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
)

// UnsupportedMarkupError reports an escape sequence with no translation.
type UnsupportedMarkupError struct {
	Text     string // the full input
	Sequence string // offending escape, empty when the input is unbalanced
	Offset   int
	Err      error
}

func (e *UnsupportedMarkupError) Error() string {
	if e.Sequence != "" {
		return fmt.Sprintf("markup: unsupported escape %q at offset %d in %q", e.Sequence, e.Offset, e.Text)
	}
	return fmt.Sprintf("markup: cannot translate %q: %v", e.Text, e.Err)
}

func (e *UnsupportedMarkupError) Unwrap() error { return e.Err }

var parser = participle.MustBuild[Markup](
	participle.Lexer(markupLexer),
	participle.UseLookahead(2),
)

var greek = map[byte]string{
	'a': `\alpha`, 'b': `\beta`, 'g': `\gamma`, 'd': `\delta`, 'e': `\epsilon`,
	'z': `\zeta`, 'y': `\eta`, 'h': `\theta`, 'i': `\iota`, 'k': `\kappa`,
	'l': `\lambda`, 'm': `\mu`, 'n': `\nu`, 'c': `\xi`, 'o': `\omicron`,
	'p': `\pi`, 'r': `\rho`, 's': `\sigma`, 't': `\tau`, 'u': `\upsilon`,
	'f': `\phi`, 'x': `\chi`, 'q': `\psi`, 'w': `\omega`,

	'A': "A", 'B': "B", 'G': `\Gamma`, 'D': `\Delta`, 'E': "E",
	'Z': "Z", 'Y': "H", 'H': `\Theta`, 'I': "I", 'K': `\Kappa`,
	'L': `\Lambda`, 'M': "M", 'N': "N", 'C': `\Xi`, 'O': "O",
	'P': `\Pi`, 'R': "P", 'S': `\Sigma`, 'T': "T", 'U': `\Upsilon`,
	'F': `\Phi`, 'X': "X", 'Q': `\Psi`, 'W': `\Omega`,
}

var symbols = map[string]string{
	`\(2265)`: `\partial`,
}

// Translate converts s. Text without a backslash is returned unchanged;
// anything else is wrapped in $...$ with every escape translated.
func Translate(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	m, err := parser.ParseString("", s)
	if err != nil {
		ue := &UnsupportedMarkupError{Text: s, Err: err}
		var perr participle.Error
		if errors.As(err, &perr) {
			ue.Offset = perr.Position().Offset
		}
		return "", ue
	}

	var b strings.Builder
	b.WriteByte('$')
	for _, p := range m.Parts {
		if p.Script != nil {
			if err := writeScript(&b, s, p.Script); err != nil {
				return "", err
			}
			continue
		}
		if err := writeAtom(&b, s, p.Atom); err != nil {
			return "", err
		}
	}
	b.WriteByte('$')
	return b.String(), nil
}

func writeScript(b *strings.Builder, src string, sc *Script) error {
	if sc.Open == sc.Close {
		return &UnsupportedMarkupError{Text: src, Sequence: sc.Close, Offset: sc.Pos.Offset}
	}
	if sc.Open == `\d` {
		b.WriteString("_{")
	} else {
		b.WriteString("^{")
	}
	for _, a := range sc.Atoms {
		if err := writeAtom(b, src, a); err != nil {
			return err
		}
	}
	b.WriteByte('}')
	return nil
}

func writeAtom(b *strings.Builder, src string, a *Atom) error {
	switch {
	case a.Greek != "":
		g, ok := greek[a.Greek[2]]
		if !ok {
			return &UnsupportedMarkupError{Text: src, Sequence: a.Greek, Offset: a.Pos.Offset}
		}
		b.WriteString(g)
	case a.Symbol != "":
		sym, ok := symbols[a.Symbol]
		if !ok {
			return &UnsupportedMarkupError{Text: src, Sequence: a.Symbol, Offset: a.Pos.Offset}
		}
		b.WriteString(sym)
	case a.Escape != "":
		return &UnsupportedMarkupError{Text: src, Sequence: a.Escape, Offset: a.Pos.Offset}
	default:
		b.WriteString(strings.ReplaceAll(a.Text, " ", `\ `))
	}
	return nil
}
