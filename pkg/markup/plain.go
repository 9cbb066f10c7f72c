package markup

import (
	"strings"
	"unicode"
)

var macroRunes = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ε",
	"zeta": "ζ", "eta": "η", "theta": "θ", "iota": "ι", "kappa": "κ",
	"lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ", "omicron": "ο",
	"pi": "π", "rho": "ρ", "sigma": "σ", "tau": "τ", "upsilon": "υ",
	"phi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",

	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Kappa": "Κ", "Lambda": "Λ",
	"Xi": "Ξ", "Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ",
	"Psi": "Ψ", "Omega": "Ω",

	"partial": "∂", "circ": "∘", "oplus": "⊕", "odot": "⊙",
}

// Plain renders math markup as plain Unicode text for backends that cannot
// typeset it: macros become their characters and scripts keep a leading _
// or ^. Text outside $...$ is returned unchanged.
func Plain(s string) string {
	inner, ok := strings.CutPrefix(s, "$")
	if ok {
		inner, ok = strings.CutSuffix(inner, "$")
	}
	if !ok {
		return s
	}

	var b strings.Builder
	rs := []rune(inner)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\\' && i+1 < len(rs) && !unicode.IsLetter(rs[i+1]):
			i++
			b.WriteRune(rs[i])
		case r == '\\':
			j := i + 1
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			name := string(rs[i+1 : j])
			if u, ok := macroRunes[name]; ok {
				b.WriteString(u)
			} else {
				b.WriteString(name)
			}
			i = j - 1
		case r == '{' || r == '}':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
