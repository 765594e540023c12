package libgexp_test

import (
	"strings"
	"testing"

	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraphFusesCalM(t *testing.T) {
	X, err := libgexp.NewGraph(libgexp.NewTrace(M(plus), E(a1), M(minus), E(a2)))
	require.NoError(t, err)
	assert.Empty(t, X.Traces())
	assert.Empty(t, X.Deterministics())
	require.Equal(t, libgexp.Coefficients{libgexp.CalM(plus, minus, a1, a2)}, X.Coefficients())
	assert.True(t, X.IsDeterministic())

	// any rotation, starting at the first M
	X = libgexp.MustGraph(libgexp.NewTrace(E(a1), M(plus), E(a2), M(minus)))
	assert.Equal(t, libgexp.Coefficients{libgexp.CalM(plus, minus, a2, a1)}, X.Coefficients())

	// other 4-factor deterministic traces are kept
	X = libgexp.MustGraph(libgexp.NewTrace(M(plus), M(plus), E(a1), E(a2)))
	assert.Equal(t, 0, X.NumCoefficients())
	assert.Len(t, X.Deterministics(), 1)
}

func TestGraphBuckets(t *testing.T) {
	X := libgexp.MustGraph(
		libgexp.NewTrace(G(plus), E(a1), G(plus), E(a2), G(minus), E(a3)),
		libgexp.NewTrace(WtG(plus), E(b1)),
		libgexp.NewTrace(M(plus), E(a2), M(plus), E(a2), M(minus), E(a1)),
		libgexp.NewTrace(G(plus), E(b1), G(minus), E(b2)),
		libgexp.NewTrace(M(plus), E(a3)),
		libgexp.NewTrace(M(minus), E(a1)),
	)

	assert.Equal(t, 1, X.NumLightWeights())
	require.Equal(t, 2, X.NumGLoops())
	assert.Len(t, X.Traces(), 6)
	assert.False(t, X.IsDeterministic())

	// G-loops by G count
	assert.Equal(t, 2, X.GLoops()[0].CountG())
	assert.Equal(t, 3, X.GLoops()[1].CountG())

	// deterministics by length, then largest E index
	dets := X.Deterministics()
	require.Len(t, dets, 3)
	assert.Equal(t, a1, dets[0].MaxEIndex())
	assert.Equal(t, a3, dets[1].MaxEIndex())
	assert.Equal(t, 6, dets[2].Len())

	// accessors hand out copies
	dets[0] = libgexp.NewTrace(M(plus), E(b3))
	assert.Equal(t, a1, X.Deterministics()[0].MaxEIndex())
}

func TestGraphCoefficientOrder(t *testing.T) {
	X := libgexp.MustGraph(
		libgexp.Theta(plus, plus, b2, b3),
		libgexp.S(b1, b2),
		libgexp.Theta(plus, minus, b1, a1),
		libgexp.I(a1, a2),
	)
	assert.Equal(t, libgexp.Coefficients{
		libgexp.S(b1, b2),
		libgexp.I(a1, a2),
		libgexp.Theta(plus, minus, b1, a1),
		libgexp.Theta(plus, plus, b2, b3),
	}, X.Coefficients())
}

func TestGraphRotatesGLoops(t *testing.T) {
	// the G preceded by E(a1) whose charge matches the previous G wins
	X := libgexp.MustGraph(libgexp.NewTrace(G(plus), E(a1), G(plus), E(b1), G(minus), E(a2)))
	loop := X.GLoops()[0]
	assert.Equal(t, G(plus), loop.At(0))
	assert.Equal(t, E(b1), loop.At(1))
	assert.Equal(t, E(a1), loop.At(-1))

	// ties go to the earliest G
	X = libgexp.MustGraph(libgexp.NewTrace(E(a1), G(plus), E(a2), G(plus)))
	loop = X.GLoops()[0]
	assert.Equal(t, G(plus), loop.At(0))
	assert.Equal(t, E(a2), loop.At(1))

	// all three criteria met
	X = libgexp.MustGraph(libgexp.NewTrace(G(minus), E(a1), G(minus), E(a2), M(plus), E(b1)))
	loop = X.GLoops()[0]
	assert.Equal(t, E(a2), loop.At(1))
}

func TestGraphErrors(t *testing.T) {
	_, err := libgexp.NewGraph(libgexp.NewTrace(G(plus), E(a1)))
	require.ErrorIs(t, err, gexp.ErrInvalidTrace)

	_, err = libgexp.NewGraph(libgexp.NewTrace())
	require.ErrorIs(t, err, gexp.ErrBadGraphPart)

	_, err = libgexp.NewGraph(libgexp.Coefficient{})
	require.ErrorIs(t, err, gexp.ErrBadGraphPart)

	// G, WtG, and M need a charge; the zero factor has no kind
	for i, f := range []libgexp.MatrixFactor{G(gexp.Neutral), WtG(gexp.Neutral), M(gexp.Neutral), {}} {
		_, err = libgexp.NewGraph(libgexp.NewTrace(f, E(a1), G(plus), E(a2)))
		require.ErrorIs(t, err, gexp.ErrBadGraphPart, "case %d", i)
	}
	_, err = libgexp.NewGraph(libgexp.Traces{libgexp.NewTrace(M(plus), E(a1)), libgexp.NewTrace(libgexp.MatrixFactor{})})
	require.ErrorIs(t, err, gexp.ErrBadGraphPart)

	var nilGraph *libgexp.Graph
	_, err = libgexp.NewGraph(nilGraph)
	require.ErrorIs(t, err, gexp.ErrBadGraphPart)

	assert.Panics(t, func() {
		libgexp.MustGraph(libgexp.NewTrace(WtG(plus), WtG(plus)))
	})
}

func TestGraphMulAndEqual(t *testing.T) {
	lw := libgexp.NewTrace(WtG(plus), E(a1))
	X := libgexp.MustGraph(lw)
	Y, err := X.Mul(libgexp.S(b1, b2), libgexp.NewTrace(M(plus), E(b1)))
	require.NoError(t, err)
	assert.Equal(t, 0, X.NumCoefficients(), "X is unchanged")
	assert.Equal(t, 1, Y.NumCoefficients())
	assert.Len(t, Y.Traces(), 2)

	Z := libgexp.MustGraph(libgexp.NewTrace(M(plus), E(b1)), libgexp.S(b1, b2), X)
	assert.True(t, Y.Equal(Z))
	assert.False(t, X.Equal(Y))

	rotated := libgexp.MustGraph(libgexp.NewTrace(E(a1), WtG(plus)))
	assert.True(t, X.Equal(rotated))

	// multiplication order does not matter
	XY := libgexp.MustGraph(libgexp.S(b1, b2), libgexp.I(a1, b1), lw, libgexp.NewTrace(WtG(minus), E(b2)))
	YX := libgexp.MustGraph(libgexp.NewTrace(E(b2), WtG(minus)), libgexp.I(a1, b1), lw, libgexp.S(b1, b2))
	assert.True(t, XY.Equal(YX))
	assert.Equal(t, XY.Coefficients(), YX.Coefficients())

	// repeated parts count
	twice := libgexp.MustGraph(libgexp.S(b1, b2), libgexp.S(b1, b2), libgexp.I(a1, b1))
	once := libgexp.MustGraph(libgexp.S(b1, b2), libgexp.I(a1, b1), libgexp.I(a1, b1))
	assert.False(t, twice.Equal(once))
}

func TestGraphRendering(t *testing.T) {
	X := libgexp.MustGraph(
		libgexp.Theta(minus, plus, a2, b3),
		libgexp.CalM(plus, minus, a1, b3),
	)
	assert.Equal(t, `\M^{\p{+, -}}_{a_1b_3}\Theta^{\p{-, +}}_{a_2b_3}`, X.Tex())

	Y := libgexp.MustGraph(libgexp.S(b1, b2), libgexp.NewTrace(WtG(plus), E(b2)))
	assert.Equal(t, `S_{b_1 b_2}\E\avg{\G E_{b_2}}`, Y.Tex())

	var b strings.Builder
	Y.WriteAsString(&b, gexp.PrintOpts{ShowOrder: true})
	assert.Equal(t, "0,S(\\pm,\\pm,b_1,b_2) lw<WtG+ E(b_2)>", b.String())

	src := Y.GoString()
	assert.True(t, strings.HasPrefix(src, "libgexp.MustGraph(\n"))
	assert.Contains(t, src, "libgexp.S(gexp.B(1), gexp.B(2))")
	assert.Contains(t, src, "libgexp.WtG(gexp.Plus)")
}
