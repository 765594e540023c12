package libgexp

import (
	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// TraceClass is the bucket a trace lands in when a Graph is constructed.
type TraceClass uint8

const (
	ClassDeterministic TraceClass = iota + 1
	ClassLightWeight
	ClassGLoop
)

func (class TraceClass) String() string {
	switch class {
	case ClassDeterministic:
		return "deterministic"
	case ClassLightWeight:
		return "light-weight"
	case ClassGLoop:
		return "G-loop"
	}
	return "invalid"
}

// Classify buckets t by its count of G and WtG factors.
func Classify(t Trace) (TraceClass, error) {
	nG, nWtG := t.CountG(), t.CountWtG()
	switch {
	case nWtG == 0 && nG == 0:
		return ClassDeterministic, nil
	case nWtG == 0 && nG > 1:
		return ClassGLoop, nil
	case nWtG == 1 && nG == 0:
		return ClassLightWeight, nil
	}
	return 0, errors.Wrapf(gexp.ErrInvalidTrace, "%v (G=%d, wtG=%d)", t.Tex(), nG, nWtG)
}

// fuseCalM recognizes the deterministic 4-cycle <M E_i M E_j> in any rotation
// and returns it as the coefficient calM(σ1, σ2, i, j).
func fuseCalM(t Trace) (Coefficient, bool) {
	if t.Len() != 4 {
		return Coefficient{}, false
	}
	r := 0
	if !t.At(0).Is(KindM) {
		r = 1
	}
	m1, e1, m2, e2 := t.At(r), t.At(r+1), t.At(r+2), t.At(r+3)
	if !m1.Is(KindM) || !m2.Is(KindM) || !e1.Is(KindE) || !e2.Is(KindE) {
		return Coefficient{}, false
	}
	return CalM(m1.charge, m2.charge, e1.index, e2.index), true
}

// bestGIndex picks the G that a G-loop is canonically rotated to.  Each G is
// scored by (charge matches the cyclically previous G, preceded by an
// external E, followed two places later by an M); the lexicographic max
// wins and ties go to the earliest G.
func bestGIndex(t Trace) int {
	n := t.Len()
	best, bestScore := -1, [3]bool{}
	for i := 0; i < n; i++ {
		f := t.At(i)
		if !f.Is(KindG) {
			continue
		}
		prevG := t.At(i)
		for j := 1; j < n; j++ {
			if g := t.At(i - j); g.Is(KindG) {
				prevG = g
				break
			}
		}
		prev := t.At(i - 1)
		score := [3]bool{
			f.charge == prevG.charge,
			prev.Is(KindE) && prev.index.IsExternal(),
			t.At(i + 2).Is(KindM),
		}
		if best < 0 || scoreLess(bestScore, score) {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

func scoreLess(a, b [3]bool) bool {
	for k := range a {
		if a[k] != b[k] {
			return b[k]
		}
	}
	return false
}
