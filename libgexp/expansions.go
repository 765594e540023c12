package libgexp

import (
	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// GLoopOpts selects the G-loop and the G within it that ExpandGLoop rewrites.
type GLoopOpts struct {
	Trace TraceSelector  // which G-loop (default: the first)
	G     FactorSelector // which G in the canonically rotated loop (default: position 0)

	// Unsolved keeps the self-consistent term instead of solving for the
	// G-loop, and skips the closure step.
	Unsolved bool

	// NoCrossDerivatives omits the terms where the derivative hits another random trace.
	NoCrossDerivatives bool
}

// LightWeightOpts selects the light-weight trace that ExpandLightWeight rewrites.
type LightWeightOpts struct {
	Trace              TraceSelector
	Unsolved           bool
	NoCrossDerivatives bool
}

// termBuilder collects rewritten terms and keeps the first construction error.
type termBuilder struct {
	out []*Graph
	err error
}

func (tb *termBuilder) add(parts ...GraphPart) {
	if tb.err != nil {
		return
	}
	X, err := NewGraph(parts...)
	if err != nil {
		tb.err = err
		return
	}
	tb.out = append(tb.out, X)
}

// prefixAll multiplies each term by the given parts, which come first.
func prefixAll(terms []*Graph, parts ...GraphPart) ([]*Graph, error) {
	tb := termBuilder{out: make([]*Graph, 0, len(terms))}
	for _, g := range terms {
		tb.add(append(Parts(parts), g)...)
	}
	return tb.out, tb.err
}

func without(traces []Trace, skip ...int) Traces {
	out := make(Traces, 0, len(traces))
	for i, t := range traces {
		keep := true
		for _, s := range skip {
			keep = keep && i != s
		}
		if keep {
			out = append(out, t)
		}
	}
	return out
}

func concat(lists ...[]Trace) Traces {
	var out Traces
	for _, list := range lists {
		out = append(out, list...)
	}
	return out
}

// crossRewrite emits the terms where the derivative of the expanded trace lands
// on a random factor f of some other trace, joining the two traces into one:
//
//	S(b1,b2) <M(σ) E(b1) G(f) other[j+1:] other[:j] G(f) E(b2) tail A>
type crossRewrite struct {
	X      *Graph
	others []Trace
	sigma  gexp.Charge
	b1, b2 gexp.Symbol
	tail   Factors
}

func (cr *crossRewrite) addTerms(tb *termBuilder, A FactorSource) {
	coefficients := Coefficients(cr.X.coefficients)
	for i, other := range cr.others {
		remaining := without(cr.others, i)
		for j, f := range other.factors {
			if !f.IsRandom() {
				continue
			}
			tb.add(
				coefficients,
				S(cr.b1, cr.b2),
				NewTrace(
					M(cr.sigma),
					E(cr.b1),
					Like(KindG, f),
					other.Slice(j+1, other.Len()),
					other.Slice(0, j),
					Like(KindG, f),
					E(cr.b2),
					cr.tail,
					A,
				),
				Traces(cr.X.deterministics),
				remaining,
			)
		}
	}
}

type gLoopRewrite struct {
	X            *Graph
	t            Trace // target loop, rotated so the expanded G is first
	nextG, lastG int
	s1, sn       gexp.Charge
	b            [4]gexp.Symbol
	spectators   Traces // every trace of X except t
	cross        *crossRewrite
}

// terms expands G_1 B_1 ... G_n A, where A replaces the tail B_n.
func (rw *gLoopRewrite) terms(A FactorSource, selfConsistent bool) ([]*Graph, error) {
	t := rw.t
	s1, sn := rw.s1, rw.sn
	b1, b2 := rw.b[0], rw.b[1]
	coefficients := Coefficients(rw.X.coefficients)
	B1 := t.Slice(1, rw.nextG)
	interior := t.Slice(rw.nextG, rw.lastG)
	head := t.Slice(0, rw.lastG)

	tb := termBuilder{}

	// G_1 = M + wtG: the M part
	if t.CountG() == 2 {
		tb.add(coefficients, NewTrace(M(s1), B1, interior, M(sn), A), rw.spectators)
		tb.add(coefficients, NewTrace(M(s1), B1, interior, WtG(sn), A), rw.spectators)
	} else {
		tb.add(coefficients, NewTrace(M(s1), B1, interior, G(sn), A), rw.spectators)
	}

	tb.add(coefficients,
		NewTrace(M(s1), E(b1), head, G(sn), A),
		S(b1, b2),
		NewTrace(WtG(s1), E(b2)),
		rw.spectators)

	if selfConsistent {
		tb.add(coefficients,
			NewTrace(M(s1), E(b1), M(sn), A),
			S(b1, b2),
			NewTrace(head, G(sn), E(b2)),
			rw.spectators)
	}

	// self-derivatives at each interior G
	for j := 1; j < rw.lastG; j++ {
		f := t.At(j)
		if !f.Is(KindG) {
			continue
		}
		tb.add(coefficients,
			NewTrace(M(s1), E(b1), t.Slice(j, rw.lastG), G(sn), A),
			S(b1, b2),
			NewTrace(t.Slice(0, j), G(f.charge), E(b2)),
			rw.spectators)
	}

	tb.add(coefficients,
		NewTrace(M(s1), E(b1), WtG(sn), A),
		S(b1, b2),
		NewTrace(head, G(sn), E(b2)),
		rw.spectators)

	if rw.cross != nil {
		rw.cross.addTerms(&tb, A)
	}
	return tb.out, tb.err
}

// ExpandGLoop rewrites one G of one G-loop of X using G = M + wtG and the
// Stein expansion of wtG, returning the terms whose sum equals X.
//
// In the default (solved) mode the self-consistent term is moved to the left
// side and solved for, which closes the loop on its tail B_n: a tail of a
// single E(z) produces Theta(σ_n, σ_1, z, b_3) times the rewrite of
// G_1 .. G_n E(b_3); any other tail produces the rewrite of the loop itself
// plus <M(σ_n) B_n M(σ_1) E(b_3)> STheta(σ_n, σ_1, b_3, b_4) times the rewrite
// of G_1 .. G_n E(b_4).
func ExpandGLoop(X *Graph, opts GLoopOpts) ([]*Graph, error) {
	if X == nil {
		return nil, gexp.ErrNilGraph
	}
	idx, err := selectTrace(opts.Trace, X.gLoops, "G-loop")
	if err != nil {
		return nil, err
	}
	t := X.gLoops[idx]

	sel := opts.G.Select(t)
	if !sel.Found {
		return nil, errors.Wrapf(gexp.ErrNoMatch, "no G selected in %v", t.Tex())
	}
	t = t.Rotate(sel.Index)
	if !t.At(0).Is(KindG) {
		return nil, errors.Wrapf(gexp.ErrNoMatch, "factor %d of %v is not a G", sel.Index, X.gLoops[idx].Tex())
	}

	nextG := -1
	for j := 1; j < t.Len(); j++ {
		if t.At(j).Is(KindG) {
			nextG = j
			break
		}
	}
	if nextG < 0 {
		return nil, errors.Wrapf(gexp.ErrTooFewG, "%v", t.Tex())
	}
	lastG := t.LastGIndex()

	rw := &gLoopRewrite{
		X:          X,
		t:          t,
		nextG:      nextG,
		lastG:      lastG,
		s1:         t.At(0).charge,
		sn:         t.At(lastG).charge,
		b:          freshB(X),
		spectators: concat(X.deterministics, X.lightWeights, without(X.gLoops, idx)),
	}
	if !opts.NoCrossDerivatives {
		rw.cross = &crossRewrite{
			X:      X,
			others: concat(without(X.gLoops, idx), X.lightWeights),
			sigma:  rw.s1,
			b1:     rw.b[0],
			b2:     rw.b[1],
			tail:   append(t.Slice(0, lastG), G(rw.sn)),
		}
	}

	Bn := t.Slice(lastG+1, t.Len())
	if opts.Unsolved {
		return rw.terms(Bn, true)
	}

	b3, b4 := rw.b[2], rw.b[3]
	if len(Bn) == 1 && Bn[0].Is(KindE) {
		terms, err := rw.terms(E(b3), false)
		if err != nil {
			return nil, err
		}
		return prefixAll(terms, Theta(rw.sn, rw.s1, Bn[0].index, b3))
	}

	out, err := rw.terms(Bn, false)
	if err != nil {
		return nil, err
	}
	closed, err := rw.terms(E(b4), false)
	if err != nil {
		return nil, err
	}
	closed, err = prefixAll(closed,
		STheta(rw.sn, rw.s1, b3, b4),
		NewTrace(M(rw.sn), Bn, M(rw.s1), E(b3)))
	if err != nil {
		return nil, err
	}
	return append(out, closed...), nil
}

type lightWeightRewrite struct {
	X          *Graph
	sigma      gexp.Charge
	b          [4]gexp.Symbol
	spectators Traces
	cross      *crossRewrite
}

func (rw *lightWeightRewrite) terms(A FactorSource, selfConsistent bool) ([]*Graph, error) {
	s := rw.sigma
	b1, b2 := rw.b[0], rw.b[1]
	coefficients := Coefficients(rw.X.coefficients)

	tb := termBuilder{}
	if selfConsistent {
		tb.add(coefficients,
			NewTrace(M(s), E(b1), M(s), A),
			S(b1, b2),
			NewTrace(WtG(s), E(b2)),
			rw.spectators)
	}
	tb.add(coefficients,
		NewTrace(M(s), E(b1), WtG(s), A),
		S(b1, b2),
		NewTrace(WtG(s), E(b2)),
		rw.spectators)

	if rw.cross != nil {
		rw.cross.addTerms(&tb, A)
	}
	return tb.out, tb.err
}

// ExpandLightWeight rewrites the single wtG of a light-weight trace of X by
// its Stein expansion.  The closure step mirrors ExpandGLoop with σ at both ends.
func ExpandLightWeight(X *Graph, opts LightWeightOpts) ([]*Graph, error) {
	if X == nil {
		return nil, gexp.ErrNilGraph
	}
	idx, err := selectTrace(opts.Trace, X.lightWeights, "light-weight")
	if err != nil {
		return nil, err
	}
	t := X.lightWeights[idx]
	if t.CountWtG() != 1 || t.CountG() != 0 {
		return nil, errors.Wrapf(gexp.ErrNotLightWeight, "%v", t.Tex())
	}
	for i, f := range t.factors {
		if f.Is(KindWtG) {
			t = t.Rotate(i)
			break
		}
	}

	rw := &lightWeightRewrite{
		X:          X,
		sigma:      t.At(0).charge,
		b:          freshB(X),
		spectators: concat(X.deterministics, without(X.lightWeights, idx), X.gLoops),
	}
	if !opts.NoCrossDerivatives {
		rw.cross = &crossRewrite{
			X:      X,
			others: concat(without(X.lightWeights, idx), X.gLoops),
			sigma:  rw.sigma,
			b1:     rw.b[0],
			b2:     rw.b[1],
			tail:   Factors{G(rw.sigma)},
		}
	}

	B1 := t.Slice(1, t.Len())
	if opts.Unsolved {
		return rw.terms(B1, true)
	}

	s := rw.sigma
	b3, b4 := rw.b[2], rw.b[3]
	if len(B1) == 1 && B1[0].Is(KindE) {
		terms, err := rw.terms(E(b3), false)
		if err != nil {
			return nil, err
		}
		return prefixAll(terms, Theta(s, s, B1[0].index, b3))
	}

	out, err := rw.terms(B1, false)
	if err != nil {
		return nil, err
	}
	closed, err := rw.terms(E(b4), false)
	if err != nil {
		return nil, err
	}
	closed, err = prefixAll(closed,
		STheta(s, s, b3, b4),
		NewTrace(M(s), B1, M(s), E(b3)))
	if err != nil {
		return nil, err
	}
	return append(out, closed...), nil
}

// Expand applies one rewrite step to X: the first light-weight if there is
// one, else the first G-loop at its best G.
func Expand(X *Graph, withCrossDerivatives bool) ([]*Graph, error) {
	if X == nil {
		return nil, gexp.ErrNilGraph
	}
	if len(X.lightWeights) > 0 {
		return ExpandLightWeight(X, LightWeightOpts{})
	}
	if len(X.gLoops) > 0 {
		return ExpandGLoop(X, GLoopOpts{NoCrossDerivatives: !withCrossDerivatives})
	}
	return nil, errors.Wrap(gexp.ErrNoMatch, "graph is deterministic")
}
