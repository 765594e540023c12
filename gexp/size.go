package gexp

import (
	"math/big"
	"strings"
)

// Size is the magnitude N^n * eta^e of a term, kept as the pair of exact
// rational exponents (n, e).  The zero value is N^0 eta^0.
type Size struct {
	n   *big.Rat
	eta *big.Rat
}

// NewSize returns N^n eta^e.
func NewSize(n, e int64) Size {
	return Size{
		n:   big.NewRat(n, 1),
		eta: big.NewRat(e, 1),
	}
}

// NewSizeRat returns N^n eta^e for rational exponents.
func NewSizeRat(n, e *big.Rat) Size {
	return Size{
		n:   new(big.Rat).Set(n),
		eta: new(big.Rat).Set(e),
	}
}

func ratOrZero(r *big.Rat) *big.Rat {
	if r == nil {
		return new(big.Rat)
	}
	return r
}

// N returns a copy of the exponent of N.
func (s Size) N() *big.Rat {
	return new(big.Rat).Set(ratOrZero(s.n))
}

// Eta returns a copy of the exponent of eta.
func (s Size) Eta() *big.Rat {
	return new(big.Rat).Set(ratOrZero(s.eta))
}

// Mul returns s * other (exponents add).
func (s Size) Mul(other Size) Size {
	return Size{
		n:   new(big.Rat).Add(ratOrZero(s.n), ratOrZero(other.n)),
		eta: new(big.Rat).Add(ratOrZero(s.eta), ratOrZero(other.eta)),
	}
}

// Div returns s / other (exponents subtract).
func (s Size) Div(other Size) Size {
	return Size{
		n:   new(big.Rat).Sub(ratOrZero(s.n), ratOrZero(other.n)),
		eta: new(big.Rat).Sub(ratOrZero(s.eta), ratOrZero(other.eta)),
	}
}

// Pow returns s^k.
func (s Size) Pow(k *big.Rat) Size {
	return Size{
		n:   new(big.Rat).Mul(ratOrZero(s.n), k),
		eta: new(big.Rat).Mul(ratOrZero(s.eta), k),
	}
}

// Less reports whether s is strictly smaller than other in the regime where
// N is large and eta is small: both exponents of N are compared first, then
// a larger eta exponent means a smaller size.
func (s Size) Less(other Size) bool {
	if c := ratOrZero(s.n).Cmp(ratOrZero(other.n)); c != 0 {
		return c < 0
	}
	return ratOrZero(s.eta).Cmp(ratOrZero(other.eta)) > 0
}

func (s Size) Equal(other Size) bool {
	return ratOrZero(s.n).Cmp(ratOrZero(other.n)) == 0 &&
		ratOrZero(s.eta).Cmp(ratOrZero(other.eta)) == 0
}

func (s Size) LessEq(other Size) bool {
	return s.Less(other) || s.Equal(other)
}

func texExponent(base string, e *big.Rat) string {
	if e.Sign() == 0 {
		return ""
	}
	if e.Cmp(big.NewRat(1, 1)) == 0 {
		return base
	}
	return base + "^{" + e.RatString() + "}"
}

// Tex renders s as e.g. `N^{-2}\eta^{1/2}`; the unit size renders as "1".
func (s Size) Tex() string {
	var b strings.Builder
	b.WriteString(texExponent("N", ratOrZero(s.n)))
	b.WriteString(texExponent(`\eta`, ratOrZero(s.eta)))
	if b.Len() == 0 {
		return "1"
	}
	return b.String()
}

func (s Size) String() string {
	return s.Tex()
}
