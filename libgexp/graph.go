package libgexp

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// GraphPart is anything that can be multiplied into a Graph: a Coefficient, a
// Trace, another *Graph, or a list of these.
type GraphPart interface {
	addTo(parts *graphParts) error
}

// Parts is a heterogeneous list of graph parts.
type Parts []GraphPart

// Traces is a list of traces that can be passed as a single GraphPart.
type Traces []Trace

// Coefficients is a list of coefficients that can be passed as a single GraphPart.
type Coefficients []Coefficient

type graphParts struct {
	coefficients []Coefficient
	traces       []Trace
}

func (c Coefficient) addTo(parts *graphParts) error {
	if c.kind == 0 {
		return errors.Wrap(gexp.ErrBadGraphPart, "zero Coefficient")
	}
	parts.coefficients = append(parts.coefficients, c)
	return nil
}

func (t Trace) addTo(parts *graphParts) error {
	if t.Len() == 0 {
		return errors.Wrap(gexp.ErrBadGraphPart, "empty Trace")
	}
	for i, f := range t.factors {
		switch f.kind {
		case KindG, KindWtG, KindM:
			if f.charge != gexp.Plus && f.charge != gexp.Minus {
				return errors.Wrapf(gexp.ErrBadGraphPart, "factor %d: %v needs a Plus or Minus charge", i, f.kind)
			}
		case KindE:
		default:
			return errors.Wrapf(gexp.ErrBadGraphPart, "factor %d: %v", i, f.kind)
		}
	}
	parts.traces = append(parts.traces, t)
	return nil
}

func (X *Graph) addTo(parts *graphParts) error {
	if X == nil {
		return errors.Wrap(gexp.ErrBadGraphPart, "nil *Graph")
	}
	parts.coefficients = append(parts.coefficients, X.coefficients...)
	parts.traces = append(parts.traces, X.traces...)
	return nil
}

func (list Parts) addTo(parts *graphParts) error {
	for _, part := range list {
		if part == nil {
			return errors.Wrap(gexp.ErrBadGraphPart, "nil part")
		}
		if err := part.addTo(parts); err != nil {
			return err
		}
	}
	return nil
}

func (list Traces) addTo(parts *graphParts) error {
	for _, t := range list {
		if err := t.addTo(parts); err != nil {
			return err
		}
	}
	return nil
}

func (list Coefficients) addTo(parts *graphParts) error {
	for _, c := range list {
		if err := c.addTo(parts); err != nil {
			return err
		}
	}
	return nil
}

// Graph is an immutable product of coefficients and traces.  On construction
// every trace is classified: deterministic 4-cycles <M E M E> are fused into
// calM coefficients, G-loops are rotated to their best G, and the buckets are
// sorted into a canonical order.
type Graph struct {
	coefficients   []Coefficient
	traces         []Trace // as given, minus fused traces
	deterministics []Trace
	lightWeights   []Trace
	gLoops         []Trace
}

// NewGraph multiplies the given parts into a new Graph.
func NewGraph(parts ...GraphPart) (*Graph, error) {
	in := graphParts{}
	if err := Parts(parts).addTo(&in); err != nil {
		return nil, err
	}

	X := &Graph{
		coefficients: in.coefficients,
		traces:       make([]Trace, 0, len(in.traces)),
	}
	for _, t := range in.traces {
		class, err := Classify(t)
		if err != nil {
			return nil, err
		}
		switch class {
		case ClassDeterministic:
			if calM, fused := fuseCalM(t); fused {
				X.coefficients = append(X.coefficients, calM)
				continue
			}
			X.deterministics = append(X.deterministics, t)
		case ClassGLoop:
			X.gLoops = append(X.gLoops, t.Rotate(bestGIndex(t)))
		case ClassLightWeight:
			X.lightWeights = append(X.lightWeights, t)
		}
		X.traces = append(X.traces, t)
	}

	sort.SliceStable(X.deterministics, func(i, j int) bool {
		ti, tj := X.deterministics[i], X.deterministics[j]
		if ti.Len() != tj.Len() {
			return ti.Len() < tj.Len()
		}
		if c := compareSymbols(ti.MaxEIndex(), tj.MaxEIndex(), false); c != 0 {
			return c < 0
		}
		return compareTraces(ti, tj) < 0
	})
	sort.SliceStable(X.coefficients, func(i, j int) bool {
		ci, cj := X.coefficients[i], X.coefficients[j]
		if c := compareSymbols(coefficientSortKey(ci), coefficientSortKey(cj), false); c != 0 {
			return c < 0
		}
		return compareCoefficients(ci.oriented(), cj.oriented()) < 0
	})
	sort.SliceStable(X.lightWeights, func(i, j int) bool {
		return compareTraces(X.lightWeights[i], X.lightWeights[j]) < 0
	})
	sort.SliceStable(X.gLoops, func(i, j int) bool {
		gi, gj := X.gLoops[i], X.gLoops[j]
		if gi.CountG() != gj.CountG() {
			return gi.CountG() < gj.CountG()
		}
		return compareTraces(gi, gj) < 0
	})
	return X, nil
}

// MustGraph is NewGraph for parts known to be valid; it panics otherwise.
func MustGraph(parts ...GraphPart) *Graph {
	X, err := NewGraph(parts...)
	if err != nil {
		panic(err)
	}
	return X
}

// Theta and STheta sort by their lesser index; every other kind sorts first.
// Ties fall back to compareCoefficients.
func coefficientSortKey(c Coefficient) gexp.Symbol {
	switch c.kind {
	case CoefTheta, CoefSTheta:
		return gexp.MinSymbol(c.i, c.j)
	}
	return gexp.Sym("")
}

// Mul returns the product of X with the given parts.
func (X *Graph) Mul(parts ...GraphPart) (*Graph, error) {
	return NewGraph(append(Parts{X}, parts...)...)
}

func (X *Graph) Coefficients() Coefficients {
	return append(Coefficients(nil), X.coefficients...)
}

// Traces returns the traces X was built from, minus those fused into calM coefficients.
func (X *Graph) Traces() Traces {
	return append(Traces(nil), X.traces...)
}

func (X *Graph) Deterministics() Traces {
	return append(Traces(nil), X.deterministics...)
}

func (X *Graph) LightWeights() Traces {
	return append(Traces(nil), X.lightWeights...)
}

// GLoops returns the G-loops of X, each rotated to its best G.
func (X *Graph) GLoops() Traces {
	return append(Traces(nil), X.gLoops...)
}

func (X *Graph) NumCoefficients() int { return len(X.coefficients) }
func (X *Graph) NumLightWeights() int { return len(X.lightWeights) }
func (X *Graph) NumGLoops() int { return len(X.gLoops) }

// IsDeterministic is true iff X has no light-weights and no G-loops.
func (X *Graph) IsDeterministic() bool {
	return len(X.lightWeights) == 0 && len(X.gLoops) == 0
}

// Order returns the power of N^{-1} carried by X.
func (X *Graph) Order() int {
	return Order(X)
}

// Equal is true if X and other hold the same multiset of coefficients and the
// same multisets of traces in each bucket (traces up to rotation).
func (X *Graph) Equal(other *Graph) bool {
	return sameMultiset(X.coefficients, other.coefficients, Coefficient.Equal) &&
		sameMultiset(X.deterministics, other.deterministics, Trace.Equal) &&
		sameMultiset(X.lightWeights, other.lightWeights, Trace.Equal) &&
		sameMultiset(X.gLoops, other.gLoops, Trace.Equal)
}

// sameMultiset matches every element of a to a distinct element of b.  eq must
// be an equivalence, so a greedy match suffices.
func sameMultiset[T any](a, b []T, eq func(T, T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, x := range a {
		found := false
		for k, y := range b {
			if !used[k] && eq(x, y) {
				used[k], found = true, true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Tex renders the coefficients and deterministic traces, followed by
// \E of the random traces when there are any.
func (X *Graph) Tex() string {
	var b strings.Builder
	for _, c := range X.coefficients {
		b.WriteString(c.Tex())
	}
	for _, t := range X.deterministics {
		b.WriteString(t.Tex())
	}
	if X.IsDeterministic() {
		return b.String()
	}
	b.WriteString(`\E`)
	for _, t := range X.lightWeights {
		b.WriteString(t.Tex())
	}
	for _, t := range X.gLoops {
		b.WriteString(t.Tex())
	}
	return b.String()
}

func (X *Graph) String() string {
	return X.Tex()
}

// GoString returns Go source that reconstructs X.
func (X *Graph) GoString() string {
	var b strings.Builder
	b.WriteString("libgexp.MustGraph(\n")
	for _, c := range X.coefficients {
		fmt.Fprintf(&b, "\t%#v,\n", c)
	}
	for _, t := range X.traces {
		fmt.Fprintf(&b, "\t%#v,\n", t)
	}
	b.WriteString(")")
	return b.String()
}

func (X *Graph) WriteAsString(out io.Writer, opts gexp.PrintOpts) {
	if opts.ShowOrder {
		fmt.Fprintf(out, "%d,", X.Order())
	}
	if opts.Tex {
		io.WriteString(out, X.Tex())
	} else {
		io.WriteString(out, X.terse())
	}
}

// terse renders X on one line without LaTeX escapes, for logs and CSV output.
func (X *Graph) terse() string {
	var b strings.Builder
	for i, c := range X.coefficients {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v(%v,%v,%v,%v)", c.kind, c.charges[0], c.charges[1], c.i, c.j)
	}
	writeTraces := func(label string, traces []Trace) {
		for _, t := range traces {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(label)
			b.WriteByte('<')
			for i, f := range t.factors {
				if i > 0 {
					b.WriteByte(' ')
				}
				switch f.kind {
				case KindE:
					fmt.Fprintf(&b, "E(%v)", f.index)
				default:
					fmt.Fprintf(&b, "%v%v", f.kind, f.charge)
				}
			}
			b.WriteByte('>')
		}
	}
	writeTraces("", X.deterministics)
	writeTraces("lw", X.lightWeights)
	writeTraces("g", X.gLoops)
	return b.String()
}
