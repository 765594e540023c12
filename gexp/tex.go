package gexp

// TexMacros defines the LaTeX macros used by every Tex() rendering.
const TexMacros = `\gdef\avg#1{\mathopen{}\left\langle #1 \right\rangle\mathclose{}}
\gdef\p#1{\mathopen{}\left\lparen #1 \right\rparen\mathclose{}}
\gdef\conj#1{\overline{#1}}
\gdef\G{\widetilde{G}}
\gdef\M{\mathcal{M}}
\gdef\E{\mathbb{E}}
`

// Texer is implemented by everything that renders itself as LaTeX.
type Texer interface {
	Tex() string
}

// TexWithMacros prefixes the rendering of x with TexMacros.
func TexWithMacros(x Texer) string {
	return TexMacros + " " + x.Tex()
}
