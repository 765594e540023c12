package libgexp_test

import (
	"testing"

	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceCyclic(t *testing.T) {
	tr := libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2))

	for n := -5; n <= 5; n++ {
		assert.True(t, tr.Rotate(n).Equal(tr), "rotation %d", n)
	}
	assert.True(t, tr.Cycle().Equal(tr))
	assert.Equal(t, E(a1), tr.Cycle().At(0))
	assert.Equal(t, G(minus), tr.Rotate(2).At(0))
	assert.Equal(t, E(a2), tr.Rotate(-1).At(0))

	// rotations are new traces
	assert.Equal(t, G(plus), tr.At(0))

	assert.False(t, tr.Equal(libgexp.NewTrace(G(plus), E(a1), G(plus), E(a2))))
	assert.False(t, tr.Equal(libgexp.NewTrace(G(plus), E(a1))))
	assert.False(t, tr.Equal(libgexp.NewTrace(G(plus), E(a2), G(minus), E(a1))))
}

func TestTraceAccessors(t *testing.T) {
	tr := libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2))

	assert.Equal(t, 4, tr.Len())
	assert.Equal(t, E(a2), tr.At(-1))
	assert.Equal(t, G(plus), tr.At(4))
	assert.Equal(t, libgexp.Factors{E(a1), G(minus)}, tr.Slice(1, 3))
	assert.Equal(t, libgexp.Factors{E(a2)}, tr.Slice(3, 10))
	assert.Empty(t, tr.Slice(2, 2))

	F := tr.Factors()
	F[0] = M(plus)
	assert.Equal(t, G(plus), tr.At(0), "Factors returns a copy")

	assert.Equal(t, 2, tr.CountG())
	assert.Equal(t, 0, tr.CountWtG())
	assert.Equal(t, 2, tr.LastGIndex())
	assert.Equal(t, a2, tr.MaxEIndex())
	assert.False(t, tr.IsDeterministic())

	det := libgexp.NewTrace(M(plus), E(a1))
	assert.Equal(t, -1, det.LastGIndex())
	assert.True(t, det.IsDeterministic())
	assert.Equal(t, gexp.Symbol{}, libgexp.NewTrace(M(plus)).MaxEIndex())

	assert.Equal(t, 2, libgexp.NewTrace(WtG(plus), E(b1), M(minus)).Rotate(1).LastGIndex())
}

func TestTraceSplicing(t *testing.T) {
	tr := libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2))
	spliced := libgexp.NewTrace(G(plus), libgexp.Factors{E(a1), G(minus)}, libgexp.NewTrace(E(a2)))
	require.Equal(t, tr.Factors(), spliced.Factors())

	assert.Equal(t, `\avg{G E_{a_1} G^* E_{a_2}}`, tr.Tex())
	assert.Equal(t,
		"libgexp.NewTrace(libgexp.G(gexp.Plus), libgexp.E(gexp.A(1)), libgexp.G(gexp.Minus), libgexp.E(gexp.A(2)))",
		tr.GoString())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		tr    libgexp.Trace
		class libgexp.TraceClass
	}{
		{libgexp.NewTrace(M(plus), E(a1)), libgexp.ClassDeterministic},
		{libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2)), libgexp.ClassGLoop},
		{libgexp.NewTrace(WtG(plus), E(a1)), libgexp.ClassLightWeight},
		{libgexp.NewTrace(WtG(plus), E(a1), M(minus), E(a2)), libgexp.ClassLightWeight},
	}
	for _, tc := range tests {
		class, err := libgexp.Classify(tc.tr)
		require.NoError(t, err)
		assert.Equal(t, tc.class, class, tc.tr.Tex())
	}

	for _, bad := range []libgexp.Trace{
		libgexp.NewTrace(G(plus), E(a1)),
		libgexp.NewTrace(WtG(plus), E(a1), G(plus), E(a2)),
		libgexp.NewTrace(WtG(plus), E(a1), WtG(plus), E(a2)),
	} {
		_, err := libgexp.Classify(bad)
		require.ErrorIs(t, err, gexp.ErrInvalidTrace, bad.Tex())
	}
}

func TestClassifySweep(t *testing.T) {
	charge := func(k int) gexp.Charge {
		if k%2 == 0 {
			return plus
		}
		return minus
	}
	for nG := 0; nG <= 4; nG++ {
		for nWtG := 0; nWtG <= 2; nWtG++ {
			for nM := 0; nM <= 3; nM++ {
				var F libgexp.Factors
				idx := 1
				for k := 0; k < nG; k++ {
					F = append(F, G(charge(k)), E(gexp.A(idx)))
					idx++
				}
				for k := 0; k < nWtG; k++ {
					F = append(F, WtG(charge(k)), E(gexp.B(idx)))
					idx++
				}
				for k := 0; k < nM; k++ {
					F = append(F, M(charge(k+1)), E(gexp.A(idx)))
					idx++
				}
				if len(F) == 0 {
					continue
				}
				tr := libgexp.NewTrace(F)

				var want libgexp.TraceClass
				switch {
				case nG == 0 && nWtG == 0:
					want = libgexp.ClassDeterministic
				case nG > 1 && nWtG == 0:
					want = libgexp.ClassGLoop
				case nG == 0 && nWtG == 1:
					want = libgexp.ClassLightWeight
				}

				for r := 0; r < tr.Len(); r++ {
					class, err := libgexp.Classify(tr.Rotate(r))
					if want == 0 {
						require.ErrorIs(t, err, gexp.ErrInvalidTrace, tr.Tex())
						continue
					}
					require.NoError(t, err, tr.Tex())
					require.Equal(t, want, class, tr.Tex())
				}

				X, err := libgexp.NewGraph(tr)
				if want == 0 {
					require.ErrorIs(t, err, gexp.ErrInvalidTrace, tr.Tex())
					continue
				}
				require.NoError(t, err, tr.Tex())
				assert.Equal(t, want == libgexp.ClassLightWeight, X.NumLightWeights() == 1, tr.Tex())
				assert.Equal(t, want == libgexp.ClassGLoop, X.NumGLoops() == 1, tr.Tex())
				assert.Equal(t, want == libgexp.ClassDeterministic, X.IsDeterministic(), tr.Tex())
			}
		}
	}
}

func TestSelectors(t *testing.T) {
	traces := []libgexp.Trace{
		libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2)),
		libgexp.NewTrace(G(minus), E(a3), G(minus), E(a1)),
	}

	assert.Equal(t, libgexp.Selection{Index: 0, Found: true}, libgexp.TraceSelector{}.Select(traces))
	assert.Equal(t, libgexp.Selection{Index: 1, Found: true}, libgexp.TraceAt(1).Select(traces))
	assert.False(t, libgexp.TraceAt(2).Select(traces).Found)

	hasA3 := func(tr libgexp.Trace) bool { return tr.MaxEIndex() == a3 }
	assert.Equal(t, 1, libgexp.TraceWhere(hasA3).Select(traces).Index)
	hasB1 := func(tr libgexp.Trace) bool { return tr.MaxEIndex() == b1 }
	assert.False(t, libgexp.TraceWhere(hasB1).Select(traces).Found)
	assert.True(t, libgexp.TraceSelector{Match: hasB1, Fallback: 0}.Select(traces).Found)

	// Match only sees G factors
	minusG := func(f libgexp.MatrixFactor) bool { return f.Charge() == minus }
	assert.Equal(t, 2, libgexp.GWhere(minusG).Select(traces[0]).Index)
	assert.Equal(t, 3, libgexp.FactorAt(3).Select(traces[0]).Index)
	assert.False(t, libgexp.FactorAt(-1).Select(traces[0]).Found)
	plusM := func(f libgexp.MatrixFactor) bool { return f.Is(libgexp.KindM) }
	assert.False(t, libgexp.GWhere(plusM).Select(traces[0]).Found)
}
