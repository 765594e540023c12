package libgexp

import (
	"github.com/stevenktruong/graph-expansion/gexp"
)

// Order returns the power of N^{-1} carried by X:
//
//	Σ_lw len/2 + Σ_gloop (len/2 - 1) + Σ_det (len/2 - 1) + #coefficients - #b
//
// where #b counts the distinct internal indices appearing in G-loop E factors
// and in coefficients.
func Order(X *Graph) int {
	indices := make(map[gexp.Symbol]struct{})
	for _, t := range X.gLoops {
		for _, f := range t.factors {
			if f.kind == KindE && f.index.IsInternal() {
				indices[f.index] = struct{}{}
			}
		}
	}
	for _, c := range X.coefficients {
		if c.i.IsInternal() {
			indices[c.i] = struct{}{}
		}
		if c.j.IsInternal() {
			indices[c.j] = struct{}{}
		}
	}

	out := 0
	for _, t := range X.lightWeights {
		out += t.Len() / 2
	}
	for _, t := range X.gLoops {
		out += t.Len()/2 - 1
	}
	for _, t := range X.deterministics {
		out += t.Len()/2 - 1
	}
	out += len(X.coefficients)
	return out - len(indices)
}

// LargestBIndex returns the greatest b index used by X's S, Theta, STheta,
// and calM coefficients and by the E factors of its traces, or 0 if there is none.
// Fresh internal indices for a rewrite of X start just above it.
func LargestBIndex(X *Graph) int {
	max := 0
	for _, c := range X.coefficients {
		switch c.kind {
		case CoefS, CoefTheta, CoefSTheta, CoefCalM:
			for _, i := range [2]gexp.Symbol{c.i, c.j} {
				if i.IsInternal() && i.Number() > max {
					max = i.Number()
				}
			}
		}
	}
	for _, t := range X.traces {
		for _, f := range t.factors {
			if f.kind == KindE && f.index.IsInternal() && f.index.Number() > max {
				max = f.index.Number()
			}
		}
	}
	return max
}

// freshB returns the four internal indices b_{m+1} .. b_{m+4} where m = LargestBIndex(X).
func freshB(X *Graph) [4]gexp.Symbol {
	m := LargestBIndex(X)
	return [4]gexp.Symbol{gexp.B(m + 1), gexp.B(m + 2), gexp.B(m + 3), gexp.B(m + 4)}
}

// NumS is the number of S coefficients of X (p in power counting).
func NumS(X *Graph) int {
	n := 0
	for _, c := range X.coefficients {
		if c.kind == CoefS {
			n++
		}
	}
	return n
}

// NumG is the total number of G factors across X's G-loops (n in power counting).
func NumG(X *Graph) int {
	n := 0
	for _, t := range X.gLoops {
		n += t.CountG()
	}
	return n
}

// SizeOf estimates the magnitude of X as N^{-(p+q)} eta^{r-q-n-θ}, where p is the
// number of S coefficients, q the number of light-weights, r the number of
// G-loops, n the number of G factors in G-loops, and θ the number of Theta
// coefficients with unequal charges.
func SizeOf(X *Graph) gexp.Size {
	p, q, r, n := NumS(X), len(X.lightWeights), len(X.gLoops), NumG(X)
	mixed := 0
	for _, c := range X.coefficients {
		if c.kind == CoefTheta && c.charges[0] != c.charges[1] {
			mixed++
		}
	}
	return gexp.NewSize(int64(-(p + q)), int64(r-q-n-mixed))
}
