package libgexp_test

import (
	"testing"

	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// internalIndices collects every b index appearing in X.
func internalIndices(X *libgexp.Graph) map[gexp.Symbol]struct{} {
	out := make(map[gexp.Symbol]struct{})
	for _, c := range X.Coefficients() {
		for _, i := range c.Indices() {
			if i.IsInternal() {
				out[i] = struct{}{}
			}
		}
	}
	for _, tr := range X.Traces() {
		for _, f := range tr.Factors() {
			if f.Is(libgexp.KindE) && f.Index().IsInternal() {
				out[f.Index()] = struct{}{}
			}
		}
	}
	return out
}

func gLoop2() *libgexp.Graph {
	return libgexp.MustGraph(libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2)))
}

func TestExpandGLoop2(t *testing.T) {
	terms, err := libgexp.ExpandGLoop(gLoop2(), libgexp.GLoopOpts{})
	require.NoError(t, err)

	// M term, wtG term, LW1, LW2
	require.Len(t, terms, 4)
	closed := libgexp.MustGraph(libgexp.Theta(minus, plus, a2, b3), libgexp.CalM(plus, minus, a1, b3))
	assert.True(t, terms[0].Equal(closed), terms[0].Tex())
	assert.True(t, terms[0].IsDeterministic())

	for _, X := range terms {
		assert.Contains(t, X.Coefficients(), libgexp.Theta(minus, plus, a2, b3), X.Tex())
	}
	for _, X := range terms[2:] {
		assert.Contains(t, X.Coefficients(), libgexp.S(b1, b2), X.Tex())
	}

	unsolved, err := libgexp.ExpandGLoop(gLoop2(), libgexp.GLoopOpts{Unsolved: true})
	require.NoError(t, err)
	assert.Len(t, unsolved, 5)
	assert.Equal(t, libgexp.Coefficients{libgexp.CalM(plus, minus, a1, a2)}, unsolved[0].Coefficients())
}

func TestExpandGLoopSelection(t *testing.T) {
	X := libgexp.MustGraph(
		libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2)),
		libgexp.NewTrace(G(plus), E(a3), G(plus), E(a1), G(minus), E(a2)),
	)

	_, err := libgexp.ExpandGLoop(X, libgexp.GLoopOpts{Trace: libgexp.TraceAt(2)})
	require.ErrorIs(t, err, gexp.ErrNoMatch)

	// position 1 of a canonically rotated loop is an E
	_, err = libgexp.ExpandGLoop(X, libgexp.GLoopOpts{G: libgexp.FactorAt(1)})
	require.ErrorIs(t, err, gexp.ErrNoMatch)

	threeG := func(tr libgexp.Trace) bool { return tr.CountG() == 3 }
	terms, err := libgexp.ExpandGLoop(X, libgexp.GLoopOpts{
		Trace:              libgexp.TraceWhere(threeG),
		G:                  libgexp.GWhere(func(f libgexp.MatrixFactor) bool { return f.Charge() == minus }),
		NoCrossDerivatives: true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, terms)
	for _, Y := range terms {
		assert.GreaterOrEqual(t, Y.Order(), X.Order(), Y.Tex())
	}

	withCross, err := libgexp.ExpandGLoop(X, libgexp.GLoopOpts{
		Trace: libgexp.TraceWhere(threeG),
		G:     libgexp.GWhere(func(f libgexp.MatrixFactor) bool { return f.Charge() == minus }),
	})
	require.NoError(t, err)
	// one cross term per random factor of the other loop
	assert.Len(t, withCross, len(terms)+2)
}

func TestExpandGLoopErrors(t *testing.T) {
	_, err := libgexp.ExpandGLoop(nil, libgexp.GLoopOpts{})
	require.ErrorIs(t, err, gexp.ErrNilGraph)

	lw := libgexp.MustGraph(libgexp.NewTrace(WtG(plus), E(a1)))
	_, err = libgexp.ExpandGLoop(lw, libgexp.GLoopOpts{})
	require.ErrorIs(t, err, gexp.ErrNoMatch)

	_, err = libgexp.ExpandLightWeight(gLoop2(), libgexp.LightWeightOpts{})
	require.ErrorIs(t, err, gexp.ErrNoMatch)

	det := libgexp.MustGraph(libgexp.NewTrace(M(plus), E(a1)))
	_, err = libgexp.Expand(det, true)
	require.ErrorIs(t, err, gexp.ErrNoMatch)
}

func TestExpandLightWeight(t *testing.T) {
	lw := libgexp.MustGraph(libgexp.NewTrace(WtG(plus), E(a1)))
	require.Equal(t, 1, lw.Order())

	terms, err := libgexp.ExpandLightWeight(lw, libgexp.LightWeightOpts{})
	require.NoError(t, err)
	require.Len(t, terms, 1)
	Y := terms[0]
	assert.Contains(t, Y.Coefficients(), libgexp.Theta(plus, plus, a1, b3))
	assert.Contains(t, Y.Coefficients(), libgexp.S(b1, b2))
	assert.Equal(t, 2, Y.NumLightWeights())
	assert.Equal(t, 2, Y.Order())

	// unsolved: the self-consistent term leaves the original position deterministic
	terms, err = libgexp.ExpandLightWeight(lw, libgexp.LightWeightOpts{Unsolved: true})
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Contains(t, terms[0].Coefficients(), libgexp.CalM(plus, plus, b1, a1))
	assert.Equal(t, 1, terms[0].NumLightWeights())
	for _, Y := range terms {
		assert.Contains(t, Y.Coefficients(), libgexp.S(b1, b2))
		assert.GreaterOrEqual(t, Y.Order(), lw.Order())
	}
}

func TestExpandLightWeightCross(t *testing.T) {
	X := libgexp.MustGraph(
		libgexp.NewTrace(WtG(plus), E(a3)),
		libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2)),
	)
	plain, err := libgexp.ExpandLightWeight(X, libgexp.LightWeightOpts{NoCrossDerivatives: true})
	require.NoError(t, err)
	assert.Len(t, plain, 1)

	all, err := libgexp.ExpandLightWeight(X, libgexp.LightWeightOpts{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	// the cross terms merge both traces into one G-loop
	for _, Y := range all[1:] {
		assert.Equal(t, 1, Y.NumGLoops(), Y.Tex())
		assert.Equal(t, 4, Y.GLoops()[0].CountG(), Y.Tex())
	}

	// Expand works the light-weight first and always includes cross terms
	viaExpand, err := libgexp.Expand(X, false)
	require.NoError(t, err)
	assert.Len(t, viaExpand, 3)
}

func TestExpansionInvariants(t *testing.T) {
	for _, seed := range libgexp.Seeds() {
		X := seed.Build()
		if X.IsDeterministic() {
			continue
		}
		children, err := libgexp.Expand(X, true)
		require.NoError(t, err, seed.Name)

		for _, Y := range children {
			if !Y.IsDeterministic() {
				more, err := libgexp.Expand(Y, true)
				require.NoError(t, err, Y.Tex())
				checkStep(t, Y, more)
			}
		}
		checkStep(t, X, children)
		assert.NotEmpty(t, children, seed.Name)
	}
}

// checkStep verifies that an expansion step never lowers the order and only
// mints b indices above those already in X.
func checkStep(t *testing.T, X *libgexp.Graph, children []*libgexp.Graph) {
	t.Helper()
	before := internalIndices(X)
	floor := libgexp.LargestBIndex(X)
	for _, Y := range children {
		assert.GreaterOrEqual(t, Y.Order(), X.Order(), "%v -> %v", X.Tex(), Y.Tex())
		for i := range internalIndices(Y) {
			if _, existed := before[i]; !existed {
				assert.Greater(t, i.Number(), floor, "%v reuses %v", Y.Tex(), i)
			}
		}
	}
}
