package markup

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// markupLexer tokenizes pgplot escape sequences. Rules are tried in order, so
// the specific escapes come before the catch-all Escape.
var markupLexer = lexer.MustSimple([]lexer.SimpleRule{
	// \(2265) style numbered symbols
	{Name: "Symbol", Pattern: `\\\([0-9]+\)`},

	// \ga, \gW ... Greek letters
	{Name: "Greek", Pattern: `\\g[A-Za-z]`},

	// Subscript and superscript toggles
	{Name: "Lower", Pattern: `\\d`},
	{Name: "Raise", Pattern: `\\u`},

	// Any other backslash sequence
	{Name: "Escape", Pattern: `\\.?`},

	{Name: "Text", Pattern: `[^\\]+`},
})
