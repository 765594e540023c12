package libgexp

import (
	"bytes"
	"cmp"
	"sort"

	proto "github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

func symbolDef(s gexp.Symbol) *SymbolDef {
	return &SymbolDef{
		Family: int32(s.Family()),
		N:      int32(s.Number()),
		Name:   s.Name(),
	}
}

func symbolFromDef(def *SymbolDef) (gexp.Symbol, error) {
	if def == nil {
		return gexp.Symbol{}, nil
	}
	family := gexp.Family(def.Family)
	if family > gexp.FamilyB {
		return gexp.Symbol{}, errors.Wrapf(gexp.ErrBadEncoding, "symbol family %d", def.Family)
	}
	return gexp.NewSymbol(family, int(def.N), def.Name), nil
}

func chargeFromDef(c int32) (gexp.Charge, error) {
	switch gexp.Charge(c) {
	case gexp.Plus, gexp.Minus, gexp.Neutral:
		return gexp.Charge(c), nil
	}
	return 0, errors.Wrapf(gexp.ErrBadEncoding, "charge %d", c)
}

func traceDef(t Trace) *TraceDef {
	def := &TraceDef{
		Factors: make([]*FactorDef, len(t.factors)),
	}
	for i, f := range t.factors {
		fd := &FactorDef{
			Kind:   int32(f.kind),
			Charge: int32(f.charge),
		}
		if f.kind == KindE {
			fd.Index = symbolDef(f.index)
		}
		def.Factors[i] = fd
	}
	return def
}

func traceFromDef(def *TraceDef) (Trace, error) {
	factors := make([]MatrixFactor, 0, len(def.Factors))
	for _, fd := range def.Factors {
		if fd == nil {
			return Trace{}, errors.Wrap(gexp.ErrBadEncoding, "nil factor")
		}
		charge, err := chargeFromDef(fd.Charge)
		if err != nil {
			return Trace{}, err
		}
		switch kind := FactorKind(fd.Kind); kind {
		case KindG, KindWtG, KindM:
			factors = append(factors, MatrixFactor{kind: kind, charge: charge})
		case KindE:
			i, err := symbolFromDef(fd.Index)
			if err != nil {
				return Trace{}, err
			}
			factors = append(factors, E(i))
		default:
			return Trace{}, errors.Wrapf(gexp.ErrBadEncoding, "factor kind %d", fd.Kind)
		}
	}
	return Trace{factors: factors}, nil
}

// Def exports X as a GraphDef.  Traces are written bucket by bucket.
func (X *Graph) Def() *GraphDef {
	def := &GraphDef{
		Coefficients: make([]*CoefficientDef, len(X.coefficients)),
	}
	for i, c := range X.coefficients {
		def.Coefficients[i] = &CoefficientDef{
			Kind:    int32(c.kind),
			Charge1: int32(c.charges[0]),
			Charge2: int32(c.charges[1]),
			I:       symbolDef(c.i),
			J:       symbolDef(c.j),
		}
	}
	for _, bucket := range [][]Trace{X.deterministics, X.lightWeights, X.gLoops} {
		for _, t := range bucket {
			def.Traces = append(def.Traces, traceDef(t))
		}
	}
	return def
}

// NewGraphFromDef reconstructs a Graph from its GraphDef.
func NewGraphFromDef(def *GraphDef) (*Graph, error) {
	parts := make(Parts, 0, len(def.Coefficients)+len(def.Traces))
	for _, cd := range def.Coefficients {
		if cd == nil {
			return nil, errors.Wrap(gexp.ErrBadEncoding, "nil coefficient")
		}
		kind := CoefficientKind(cd.Kind)
		if kind == 0 || kind >= numCoefficientKinds {
			return nil, errors.Wrapf(gexp.ErrBadEncoding, "coefficient kind %d", cd.Kind)
		}
		c1, err := chargeFromDef(cd.Charge1)
		if err != nil {
			return nil, err
		}
		c2, err := chargeFromDef(cd.Charge2)
		if err != nil {
			return nil, err
		}
		i, err := symbolFromDef(cd.I)
		if err != nil {
			return nil, err
		}
		j, err := symbolFromDef(cd.J)
		if err != nil {
			return nil, err
		}
		parts = append(parts, NewCoefficient(kind, c1, c2, i, j))
	}
	for _, td := range def.Traces {
		if td == nil {
			return nil, errors.Wrap(gexp.ErrBadEncoding, "nil trace")
		}
		t, err := traceFromDef(td)
		if err != nil {
			return nil, err
		}
		parts = append(parts, t)
	}
	X, err := NewGraph(parts...)
	if err != nil {
		return nil, errors.Wrap(gexp.ErrBadEncoding, err.Error())
	}
	return X, nil
}

// MarshalGraph returns the binary encoding of X as given (no canonicalization).
func MarshalGraph(X *Graph) ([]byte, error) {
	return proto.Marshal(X.Def())
}

// UnmarshalGraph decodes a graph written by MarshalGraph or AppendEncoding.
func UnmarshalGraph(buf []byte) (*Graph, error) {
	def := &GraphDef{}
	if err := proto.Unmarshal(buf, def); err != nil {
		return nil, errors.Wrap(gexp.ErrUnmarshal, err.Error())
	}
	return NewGraphFromDef(def)
}

// DecodeTerm is a gexp.TermDecoder for graphs.
func DecodeTerm(buf []byte) (gexp.TermState, error) {
	return UnmarshalGraph(buf)
}

// AppendEncoding appends the canonical encoding of X to out.  Graphs that
// differ only in the numbering of their internal indices or the rotation of
// their traces share the same encoding.
func (X *Graph) AppendEncoding(out []byte) ([]byte, error) {
	buf, err := MarshalGraph(Canonical(X))
	if err != nil {
		return out, err
	}
	return append(out, buf...), nil
}

// Canonical returns X with its internal indices renumbered b_1, b_2, ... in
// order of first appearance, every trace at its least rotation, and every
// symmetric coefficient in its lesser orientation.  Parts are visited in an
// order that looks past internal labels first, and renumbering repeats until
// the encoding settles.
func Canonical(X *Graph) *Graph {
	Xc := renumber(X)
	prev, err := MarshalGraph(Xc)
	if err != nil {
		return Xc
	}
	for pass := 1; pass < maxCanonicalPasses; pass++ {
		next := renumber(Xc)
		buf, err := MarshalGraph(next)
		if err != nil || bytes.Equal(buf, prev) {
			return next
		}
		Xc, prev = next, buf
	}
	return Xc
}

const maxCanonicalPasses = 8

func renumber(X *Graph) *Graph {
	relabel := make(map[gexp.Symbol]gexp.Symbol)
	mapIndex := func(s gexp.Symbol) gexp.Symbol {
		if !s.IsInternal() {
			return s
		}
		to, ok := relabel[s]
		if !ok {
			to = gexp.B(len(relabel) + 1)
			relabel[s] = to
		}
		return to
	}

	coefs := make([]Coefficient, len(X.coefficients))
	for i, c := range X.coefficients {
		coefs[i] = c.oriented()
	}
	sort.SliceStable(coefs, func(i, j int) bool {
		return compareCoefficients(coefs[i], coefs[j]) < 0
	})

	parts := make(Parts, 0, len(X.coefficients)+len(X.traces))
	for _, c := range coefs {
		c.i = mapIndex(c.i)
		c.j = mapIndex(c.j)
		parts = append(parts, c.oriented())
	}
	for _, bucket := range [][]Trace{X.deterministics, X.lightWeights, X.gLoops} {
		sorted := make([]Trace, len(bucket))
		for i, t := range bucket {
			sorted[i] = leastRotation(t)
		}
		sort.SliceStable(sorted, func(i, j int) bool {
			return compareTraces(sorted[i], sorted[j]) < 0
		})
		for _, t := range sorted {
			factors := make([]MatrixFactor, len(t.factors))
			for i, f := range t.factors {
				if f.kind == KindE {
					f.index = mapIndex(f.index)
				}
				factors[i] = f
			}
			parts = append(parts, leastRotation(Trace{factors: factors}))
		}
	}
	return MustGraph(parts...)
}

// compareSymbols orders symbols by Less.  When masked, any two internal
// symbols compare equal.
func compareSymbols(a, b gexp.Symbol, masked bool) int {
	if masked && a.IsInternal() && b.IsInternal() {
		return 0
	}
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	}
	return 0
}

func compareFactors(a, b MatrixFactor, masked bool) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	if a.charge != b.charge {
		return cmp.Compare(a.charge, b.charge)
	}
	return compareSymbols(a.index, b.index, masked)
}

func compareCoefficientsBy(a, b Coefficient, masked bool) int {
	if a.kind != b.kind {
		return cmp.Compare(a.kind, b.kind)
	}
	if loopA, loopB := a.i == a.j, b.i == b.j; loopA != loopB {
		if loopA {
			return -1
		}
		return 1
	}
	for k := range a.charges {
		if a.charges[k] != b.charges[k] {
			return cmp.Compare(a.charges[k], b.charges[k])
		}
	}
	if c := compareSymbols(a.i, b.i, masked); c != 0 {
		return c
	}
	return compareSymbols(a.j, b.j, masked)
}

// compareCoefficients is a total order on coefficients as given: shape first
// (kind, repeated index, charges, external indices), then internal labels.
func compareCoefficients(a, b Coefficient) int {
	if c := compareCoefficientsBy(a, b, true); c != 0 {
		return c
	}
	return compareCoefficientsBy(a, b, false)
}

// compareRotations compares t rotated by r against t rotated by s.
func compareRotations(t Trace, r, s int, masked bool) int {
	N := len(t.factors)
	for i := 0; i < N; i++ {
		if c := compareFactors(t.factors[(r+i)%N], t.factors[(s+i)%N], masked); c != 0 {
			return c
		}
	}
	return 0
}

func leastRotation(t Trace) Trace {
	best := 0
	for r := 1; r < len(t.factors); r++ {
		c := compareRotations(t, r, best, true)
		if c == 0 {
			c = compareRotations(t, r, best, false)
		}
		if c < 0 {
			best = r
		}
	}
	return t.Rotate(best)
}

func compareFactorRuns(a, b []MatrixFactor, masked bool) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareFactors(a[i], b[i], masked); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

// compareTraces is a total order on traces up to rotation.
func compareTraces(a, b Trace) int {
	ra, rb := leastRotation(a), leastRotation(b)
	if c := compareFactorRuns(ra.factors, rb.factors, true); c != 0 {
		return c
	}
	return compareFactorRuns(ra.factors, rb.factors, false)
}
