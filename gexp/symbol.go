package gexp

import (
	"fmt"
	"strconv"
)

// Family distinguishes plain symbols from the two numbered index families.
type Family uint8

const (
	FamilyPlain Family = iota
	FamilyA            // external legs, persist across a whole computation
	FamilyB            // internal indices minted during expansion
)

// Symbol is an immutable index label.  Symbols are comparable values: two
// symbols are equal iff they have the same family, number, and name.
type Symbol struct {
	family Family
	n      int
	name   string
}

// Sym returns a plain symbol with the given display text.
func Sym(name string) Symbol {
	return Symbol{name: name}
}

// A returns the external index a_i.
func A(i int) Symbol {
	return Symbol{family: FamilyA, n: i}
}

// B returns the internal index b_i.
func B(i int) Symbol {
	return Symbol{family: FamilyB, n: i}
}

// D returns the plain symbol d_{i,j}.
func D(i, j int) Symbol {
	return Sym(fmt.Sprintf("d_{%d,%d}", i, j))
}

// NewSymbol reassembles a symbol from its parts (see Family, Number, and Name).
func NewSymbol(family Family, n int, name string) Symbol {
	if family == FamilyPlain {
		return Sym(name)
	}
	return Symbol{family: family, n: n}
}

func (s Symbol) Family() Family { return s.family }

// Name returns the display text of a plain symbol ("" for numbered symbols).
func (s Symbol) Name() string { return s.name }

// Number returns the numeric suffix of an a- or b-index (0 for plain symbols).
func (s Symbol) Number() int { return s.n }

func (s Symbol) IsExternal() bool { return s.family == FamilyA }
func (s Symbol) IsInternal() bool { return s.family == FamilyB }
func (s Symbol) IsZero() bool { return s == Symbol{} }

func (s Symbol) label() string {
	switch s.family {
	case FamilyA:
		return "a"
	case FamilyB:
		return "b"
	}
	return ""
}

// Tex returns the display text of this symbol, e.g. "a_1" or "b_{12}".
func (s Symbol) Tex() string {
	if s.family == FamilyPlain {
		return s.name
	}
	switch {
	case s.n == 0:
		return s.label()
	case s.n < 10:
		return s.label() + "_" + strconv.Itoa(s.n)
	default:
		return s.label() + "_{" + strconv.Itoa(s.n) + "}"
	}
}

func (s Symbol) String() string {
	return s.Tex()
}

// GoString returns the Go expression that constructs s.
func (s Symbol) GoString() string {
	switch s.family {
	case FamilyA:
		return fmt.Sprintf("gexp.A(%d)", s.n)
	case FamilyB:
		return fmt.Sprintf("gexp.B(%d)", s.n)
	}
	return fmt.Sprintf("gexp.Sym(%q)", s.name)
}

// Less orders numbered symbols of the same family by number and everything
// else by display text.
func (s Symbol) Less(other Symbol) bool {
	if s.family == other.family && s.family != FamilyPlain {
		return s.n < other.n
	}
	return s.Tex() < other.Tex()
}

// MinSymbol returns the lesser of i and j, preferring i on ties.
func MinSymbol(i, j Symbol) Symbol {
	if j.Less(i) {
		return j
	}
	return i
}

// MaxSymbol returns the greater of i and j, preferring i on ties.
func MaxSymbol(i, j Symbol) Symbol {
	if i.Less(j) {
		return j
	}
	return i
}
