package libgexp

import (
	"fmt"
	"strings"

	"github.com/stevenktruong/graph-expansion/gexp"
)

// FactorKind enumerates the matrix factor variants.
type FactorKind uint8

const (
	KindG   FactorKind = iota + 1 // resolvent, random
	KindWtG                       // fluctuation part of G, random
	KindM                         // deterministic approximation of G
	KindE                         // coordinate projection E_i
)

func (kind FactorKind) String() string {
	switch kind {
	case KindG:
		return "G"
	case KindWtG:
		return "WtG"
	case KindM:
		return "M"
	case KindE:
		return "E"
	}
	return fmt.Sprintf("FactorKind(%d)", uint8(kind))
}

// MatrixFactor is an immutable value.  G, WtG, and M carry a Plus/Minus charge;
// E carries an index and a Neutral charge.
type MatrixFactor struct {
	kind   FactorKind
	charge gexp.Charge
	index  gexp.Symbol
}

func G(c gexp.Charge) MatrixFactor {
	return MatrixFactor{kind: KindG, charge: c}
}

func WtG(c gexp.Charge) MatrixFactor {
	return MatrixFactor{kind: KindWtG, charge: c}
}

func M(c gexp.Charge) MatrixFactor {
	return MatrixFactor{kind: KindM, charge: c}
}

func E(i gexp.Symbol) MatrixFactor {
	return MatrixFactor{kind: KindE, charge: gexp.Neutral, index: i}
}

// Like returns a factor of the given kind that copies the charge of src.
func Like(kind FactorKind, src MatrixFactor) MatrixFactor {
	if kind == KindE {
		return E(src.index)
	}
	return MatrixFactor{kind: kind, charge: src.charge}
}

func (f MatrixFactor) Kind() FactorKind { return f.kind }
func (f MatrixFactor) Charge() gexp.Charge { return f.charge }
func (f MatrixFactor) Index() gexp.Symbol { return f.index }
func (f MatrixFactor) IsRandom() bool { return !f.IsDeterministic() }
func (f MatrixFactor) Is(kind FactorKind) bool { return f.kind == kind }

func (f MatrixFactor) IsDeterministic() bool {
	switch f.kind {
	case KindM, KindE:
		return true
	case KindG, KindWtG:
		return false
	}
	panic("unknown factor kind")
}

// Adjoint flips the charge of G, WtG, and M.
func (f MatrixFactor) Adjoint() MatrixFactor {
	f.charge = f.charge.Flip()
	return f
}

func (f MatrixFactor) Tex() string {
	conj := ""
	if f.charge != gexp.Plus {
		conj = "^*"
	}
	switch f.kind {
	case KindG:
		return "G" + conj
	case KindWtG:
		return `\G` + conj
	case KindM:
		return "M" + conj
	case KindE:
		return "E_{" + f.index.Tex() + "}"
	}
	panic("unknown factor kind")
}

func (f MatrixFactor) String() string {
	return f.Tex()
}

func (f MatrixFactor) GoString() string {
	switch f.kind {
	case KindG:
		return fmt.Sprintf("libgexp.G(%#v)", f.charge)
	case KindWtG:
		return fmt.Sprintf("libgexp.WtG(%#v)", f.charge)
	case KindM:
		return fmt.Sprintf("libgexp.M(%#v)", f.charge)
	case KindE:
		return fmt.Sprintf("libgexp.E(%#v)", f.index)
	}
	panic("unknown factor kind")
}

func (f MatrixFactor) appendFactors(dst []MatrixFactor) []MatrixFactor {
	return append(dst, f)
}

// FactorSource is anything that contributes a run of factors to a Trace.
type FactorSource interface {
	appendFactors(dst []MatrixFactor) []MatrixFactor
}

// Factors is an ordered run of matrix factors (a slice of a trace).
type Factors []MatrixFactor

func (F Factors) appendFactors(dst []MatrixFactor) []MatrixFactor {
	return append(dst, F...)
}

// Adjoint returns a copy of F with every factor adjointed (order is kept).
func (F Factors) Adjoint() Factors {
	out := make(Factors, len(F))
	for i, f := range F {
		out[i] = f.Adjoint()
	}
	return out
}

func (F Factors) Tex() string {
	parts := make([]string, len(F))
	for i, f := range F {
		parts[i] = f.Tex()
	}
	return strings.Join(parts, " ")
}

// Equal compares element-wise.
func (F Factors) Equal(other Factors) bool {
	if len(F) != len(other) {
		return false
	}
	for i := range F {
		if F[i] != other[i] {
			return false
		}
	}
	return true
}
