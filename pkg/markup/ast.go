package markup

import "github.com/alecthomas/participle/v2/lexer"

// Markup is a whole label.
type Markup struct {
	Parts []*Part `@@*`
}

// Part is either a sub/superscript run or a single atom.
type Part struct {
	Script *Script `  @@`
	Atom   *Atom   `| @@`
}

// Script is a run opened by \d or \u and closed by the other toggle.
// Example: \dx\u (subscript x), \u2\d (superscript 2)
type Script struct {
	Pos   lexer.Position
	Open  string  `@( Lower | Raise )`
	Atoms []*Atom `@@*`
	Close string  `@( Lower | Raise )`
}

// Atom is plain text or one escape sequence.
type Atom struct {
	Pos    lexer.Position
	Greek  string `  @Greek`
	Symbol string `| @Symbol`
	Escape string `| @Escape`
	Text   string `| @Text`
}
