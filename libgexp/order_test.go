package libgexp_test

import (
	"testing"

	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
	"github.com/stretchr/testify/assert"
)

func TestOrder(t *testing.T) {
	tests := []struct {
		name  string
		X     *libgexp.Graph
		order int
	}{
		{"calM", libgexp.MustGraph(libgexp.NewTrace(M(plus), E(a1), M(plus), E(a1))), 1},
		{"light-weight", libgexp.MustGraph(libgexp.NewTrace(WtG(plus), E(a1))), 1},
		{"g-loop-2", libgexp.MustGraph(libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2))), 1},
		{"g-loop-3", libgexp.MustGraph(libgexp.NewTrace(G(plus), E(a1), G(plus), E(a2), G(minus), E(a3))), 2},
		{"deterministic pair", libgexp.MustGraph(libgexp.NewTrace(M(plus), E(a1))), 0},
		{
			"closed G-loop",
			libgexp.MustGraph(libgexp.Theta(minus, plus, a2, b3), libgexp.CalM(plus, minus, a1, b3)),
			1,
		},
		{
			// b_2 only appears in the light-weight, which does not count
			"light-weight indices",
			libgexp.MustGraph(libgexp.S(b1, b1), libgexp.NewTrace(WtG(plus), E(b2))),
			1,
		},
		{
			"shared b",
			libgexp.MustGraph(
				libgexp.S(b1, b2),
				libgexp.NewTrace(G(plus), E(b1), G(minus), E(b2)),
				libgexp.NewTrace(WtG(plus), E(b2)),
			),
			1,
		},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.order, libgexp.Order(tc.X), tc.name)
		assert.Equal(t, tc.order, tc.X.Order(), tc.name)
	}
}

func TestLargestBIndex(t *testing.T) {
	assert.Equal(t, 0, libgexp.LargestBIndex(libgexp.MustGraph(libgexp.NewTrace(WtG(plus), E(a1)))))

	X := libgexp.MustGraph(
		libgexp.S(b1, gexp.B(7)),
		libgexp.I(gexp.B(9), gexp.B(10)), // I is not scanned
		libgexp.NewTrace(G(plus), E(b3), G(minus), E(a1)),
	)
	assert.Equal(t, 7, libgexp.LargestBIndex(X))

	X = libgexp.MustGraph(libgexp.NewTrace(M(plus), E(gexp.B(11))), libgexp.Theta(plus, plus, a1, b2))
	assert.Equal(t, 11, libgexp.LargestBIndex(X))
}

func TestSizeOf(t *testing.T) {
	X := libgexp.MustGraph(
		libgexp.S(b1, b2),
		libgexp.Theta(plus, minus, a1, a2),
		libgexp.Theta(plus, plus, a1, a3),
		libgexp.NewTrace(WtG(plus), E(b1)),
		libgexp.NewTrace(G(plus), E(a1), G(minus), E(b2)),
	)
	assert.Equal(t, 1, libgexp.NumS(X))
	assert.Equal(t, 2, libgexp.NumG(X))

	// p=1 q=1 r=1 n=2, one mixed Theta
	assert.True(t, libgexp.SizeOf(X).Equal(gexp.NewSize(-2, -3)), libgexp.SizeOf(X).Tex())

	seed := libgexp.MustGraph(libgexp.NewTrace(G(plus), E(a1), G(minus), E(a2)))
	assert.True(t, libgexp.SizeOf(seed).Equal(gexp.NewSize(0, -1)))
	assert.True(t, libgexp.SizeOf(X).Less(libgexp.SizeOf(seed)))
}
