package libgexp

import (
	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// Drift terms act on random traces of the alternating form <G_1 E G_2 E ... G_n E>.
// The k-th random leg of such a trace sits at position 2(k-1).

func randomLeg(t Trace, k int) (MatrixFactor, error) {
	if k < 1 || k > t.Len()/2 {
		return MatrixFactor{}, errors.Wrapf(gexp.ErrBadCut, "leg %d of %v", k, t.Tex())
	}
	f := t.At(2 * (k - 1))
	if !f.IsRandom() {
		return MatrixFactor{}, errors.Wrapf(gexp.ErrBadCut, "leg %d of %v is %v", k, t.Tex(), f.Tex())
	}
	return f, nil
}

func cutLegs(t Trace, k, l int) (MatrixFactor, MatrixFactor, error) {
	if k > l {
		return MatrixFactor{}, MatrixFactor{}, errors.Wrapf(gexp.ErrBadCut, "k=%d > l=%d", k, l)
	}
	Gk, err := randomLeg(t, k)
	if err != nil {
		return Gk, Gk, err
	}
	Gl, err := randomLeg(t, l)
	return Gk, Gl, err
}

// CutL returns the part of t outside legs k..l, closed off by E(i):
//
//	<G(σ_l) t[2(l-1)+1:] t[:2(k-1)] G(σ_k) E(i)>
func CutL(t Trace, k, l int, i gexp.Symbol) (Trace, error) {
	Gk, Gl, err := cutLegs(t, k, l)
	if err != nil {
		return Trace{}, err
	}
	left, right := 2*(k-1), 2*(l-1)
	return NewTrace(G(Gl.charge), t.Slice(right+1, t.Len()), t.Slice(0, left), G(Gk.charge), E(i)), nil
}

// CutR returns the part of t between legs k and l, closed off by E(i).  When
// k == l the closing factor is a wtG instead of a G.
func CutR(t Trace, k, l int, i gexp.Symbol) (Trace, error) {
	_, Gl, err := cutLegs(t, k, l)
	if err != nil {
		return Trace{}, err
	}
	left, right := 2*(k-1), 2*(l-1)
	closing := G(Gl.charge)
	if k == l {
		closing = WtG(Gl.charge)
	}
	return NewTrace(t.Slice(left, right), closing, E(i)), nil
}

// Cross joins t1 at leg k1 and t2 at leg k2 into one trace.
func Cross(t1, t2 Trace, k1, k2 int, i, j gexp.Symbol) (Trace, error) {
	G1, err := randomLeg(t1, k1)
	if err != nil {
		return Trace{}, err
	}
	G2, err := randomLeg(t2, k2)
	if err != nil {
		return Trace{}, err
	}
	at1, at2 := 2*(k1-1), 2*(k2-1)
	return NewTrace(
		G(G1.charge), t1.Slice(at1+1, t1.Len()), t1.Slice(0, at1), G(G1.charge), E(i),
		G(G2.charge), t2.Slice(at2+1, t2.Len()), t2.Slice(0, at2), G(G2.charge), E(j),
	), nil
}

// DriftTerms returns the drift terms of X: for each random trace, one cut term
// per pair of legs k <= l, and for each pair of distinct random traces, one
// cross term per pair of legs.  Every term carries S(b_1, b_2) with b_1, b_2 fresh.
func DriftTerms(X *Graph) ([]*Graph, error) {
	if X == nil {
		return nil, gexp.ErrNilGraph
	}
	coefficients := Coefficients(X.coefficients)
	random := concat(X.lightWeights, X.gLoops)
	b := freshB(X)
	b1, b2 := b[0], b[1]

	tb := termBuilder{}
	for ti, t := range random {
		remaining := without(random, ti)
		n := t.Len() / 2
		for k := 1; k <= n; k++ {
			for l := k; l <= n; l++ {
				left, err := CutL(t, k, l, b1)
				if err != nil {
					return nil, err
				}
				right, err := CutR(t, k, l, b2)
				if err != nil {
					return nil, err
				}
				tb.add(S(b1, b2), left, right, coefficients, remaining)
			}
		}
	}

	for i1, t1 := range random {
		for i2 := i1 + 1; i2 < len(random); i2++ {
			t2 := random[i2]
			remaining := without(random, i1, i2)
			for k1 := 1; k1 <= t1.Len()/2; k1++ {
				for k2 := 1; k2 <= t2.Len()/2; k2++ {
					joined, err := Cross(t1, t2, k1, k2, b1, b2)
					if err != nil {
						return nil, err
					}
					tb.add(S(b1, b2), joined, coefficients, remaining)
				}
			}
		}
	}
	return tb.out, tb.err
}
