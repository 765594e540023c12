package libgexp

import (
	"fmt"
	"strings"

	"github.com/stevenktruong/graph-expansion/gexp"
)

// Trace is the normalized trace <f_0 f_1 ... f_{n-1}> of a product of matrix
// factors.  Traces are cyclic: two traces are equal if one is a rotation of
// the other.  A Trace is immutable; Cycle and Rotate return new traces.
type Trace struct {
	factors []MatrixFactor
}

// NewTrace splices the given factors, factor runs, and traces into one trace.
func NewTrace(parts ...FactorSource) Trace {
	n := 0
	for _, part := range parts {
		switch p := part.(type) {
		case MatrixFactor:
			n++
		case Factors:
			n += len(p)
		case Trace:
			n += len(p.factors)
		}
	}
	factors := make([]MatrixFactor, 0, n)
	for _, part := range parts {
		if part != nil {
			factors = part.appendFactors(factors)
		}
	}
	return Trace{factors: factors}
}

func (t Trace) appendFactors(dst []MatrixFactor) []MatrixFactor {
	return append(dst, t.factors...)
}

func (t Trace) Len() int {
	return len(t.factors)
}

// At returns the factor at position i taken cyclically, so At(-1) is the last factor.
func (t Trace) At(i int) MatrixFactor {
	n := len(t.factors)
	i %= n
	if i < 0 {
		i += n
	}
	return t.factors[i]
}

// Slice returns a copy of factors [from, to), clamped to the trace bounds.
func (t Trace) Slice(from, to int) Factors {
	n := len(t.factors)
	if from < 0 {
		from = 0
	}
	if to > n {
		to = n
	}
	if from >= to {
		return Factors{}
	}
	out := make(Factors, to-from)
	copy(out, t.factors[from:to])
	return out
}

// Factors returns a copy of all the factors of t.
func (t Trace) Factors() Factors {
	return t.Slice(0, len(t.factors))
}

// Cycle returns t rotated left by one.
func (t Trace) Cycle() Trace {
	return t.Rotate(1)
}

// Rotate returns t rotated left by n so that the factor at n comes first.
func (t Trace) Rotate(n int) Trace {
	N := len(t.factors)
	if N == 0 {
		return t
	}
	n %= N
	if n < 0 {
		n += N
	}
	factors := make([]MatrixFactor, 0, N)
	factors = append(factors, t.factors[n:]...)
	factors = append(factors, t.factors[:n]...)
	return Trace{factors: factors}
}

// Equal is true if other is some rotation of t.
func (t Trace) Equal(other Trace) bool {
	N := len(t.factors)
	if N != len(other.factors) {
		return false
	}
	if N == 0 {
		return true
	}
	for r := 0; r < N; r++ {
		match := true
		for i := 0; i < N && match; i++ {
			match = t.factors[(r+i)%N] == other.factors[i]
		}
		if match {
			return true
		}
	}
	return false
}

func (t Trace) IsDeterministic() bool {
	for _, f := range t.factors {
		if !f.IsDeterministic() {
			return false
		}
	}
	return true
}

func (t Trace) count(kind FactorKind) int {
	n := 0
	for _, f := range t.factors {
		if f.kind == kind {
			n++
		}
	}
	return n
}

// CountG returns the number of G factors in t (k(t) in power counting).
func (t Trace) CountG() int {
	return t.count(KindG)
}

func (t Trace) CountWtG() int {
	return t.count(KindWtG)
}

// LastGIndex returns the position of the last G or WtG in t, or -1 if there is none.
func (t Trace) LastGIndex() int {
	for i := len(t.factors) - 1; i >= 0; i-- {
		if t.factors[i].IsRandom() {
			return i
		}
	}
	return -1
}

// MaxEIndex returns the greatest E index in t, or the zero Symbol if t has no E.
func (t Trace) MaxEIndex() gexp.Symbol {
	var max gexp.Symbol
	found := false
	for _, f := range t.factors {
		if f.kind != KindE {
			continue
		}
		if !found || max.Less(f.index) {
			max = f.index
			found = true
		}
	}
	return max
}

func (t Trace) Tex() string {
	return `\avg{` + Factors(t.factors).Tex() + "}"
}

func (t Trace) String() string {
	return t.Tex()
}

func (t Trace) GoString() string {
	parts := make([]string, len(t.factors))
	for i, f := range t.factors {
		parts[i] = f.GoString()
	}
	return fmt.Sprintf("libgexp.NewTrace(%s)", strings.Join(parts, ", "))
}
