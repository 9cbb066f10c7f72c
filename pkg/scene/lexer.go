package scene

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokOpen
	tokClose
	tokAtom
	tokString
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer splits scene text into parens, atoms and quoted strings. A ';'
// outside a string starts a comment that runs to the end of the line.
type lexer struct {
	r      *bufio.Reader
	peeked rune
	has    bool
	line   int
}

func newLexer(r io.Reader) *lexer {
	return &lexer{r: bufio.NewReader(r), line: 1}
}

func (l *lexer) peek() (rune, error) {
	if l.has {
		return l.peeked, nil
	}
	ch, _, err := l.r.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked, l.has = ch, true
	return ch, nil
}

func (l *lexer) read() (rune, error) {
	ch, err := l.peek()
	if err != nil {
		return 0, err
	}
	l.has = false
	if ch == '\n' {
		l.line++
	}
	return ch, nil
}

func (l *lexer) next() (token, error) {
	for {
		ch, err := l.peek()
		if errors.Is(err, io.EOF) {
			return token{kind: tokEOF, line: l.line}, nil
		}
		if err != nil {
			return token{}, err
		}
		switch {
		case unicode.IsSpace(ch):
			l.read()
			continue
		case ch == ';':
			for {
				c, err := l.read()
				if err != nil || c == '\n' {
					break
				}
			}
			continue
		}
		break
	}

	line := l.line
	ch, _ := l.read()
	switch ch {
	case '(':
		return token{kind: tokOpen, line: line}, nil
	case ')':
		return token{kind: tokClose, line: line}, nil
	case '"':
		return l.str(line)
	}
	return l.atom(ch, line)
}

func (l *lexer) str(line int) (token, error) {
	var b strings.Builder
	for {
		ch, err := l.read()
		if err != nil {
			return token{}, &SyntaxError{Line: line, Msg: "unterminated string"}
		}
		switch ch {
		case '"':
			return token{kind: tokString, text: b.String(), line: line}, nil
		case '\\':
			esc, err := l.read()
			if err != nil {
				return token{}, &SyntaxError{Line: line, Msg: "unterminated string"}
			}
			switch esc {
			case 'n':
				b.WriteRune('\n')
			case 't':
				b.WriteRune('\t')
			case 'r':
				b.WriteRune('\r')
			default:
				b.WriteRune(esc)
			}
		default:
			b.WriteRune(ch)
		}
	}
}

func (l *lexer) atom(first rune, line int) (token, error) {
	var b strings.Builder
	b.WriteRune(first)
	for {
		ch, err := l.peek()
		if err != nil {
			break
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' || ch == ';' {
			break
		}
		l.read()
		b.WriteRune(ch)
	}
	return token{kind: tokAtom, text: b.String(), line: line}, nil
}

// Parse reads every top-level expression in r.
func Parse(r io.Reader) ([]Expr, error) {
	lx := newLexer(r)
	var out []Expr
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return out, nil
		}
		e, err := parseExpr(lx, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

func parseExpr(lx *lexer, tok token) (Expr, error) {
	switch tok.kind {
	case tokAtom:
		return Atom(tok.text), nil
	case tokString:
		return String(tok.text), nil
	case tokClose:
		return nil, &SyntaxError{Line: tok.line, Msg: "unexpected ')'"}
	case tokOpen:
		list := &List{Line: tok.line}
		for {
			t, err := lx.next()
			if err != nil {
				return nil, err
			}
			switch t.kind {
			case tokClose:
				return list, nil
			case tokEOF:
				return nil, &SyntaxError{Line: tok.line, Msg: "unclosed '('"}
			}
			item, err := parseExpr(lx, t)
			if err != nil {
				return nil, err
			}
			list.Items = append(list.Items, item)
		}
	}
	return nil, &SyntaxError{Line: tok.line, Msg: "unexpected end of input"}
}
