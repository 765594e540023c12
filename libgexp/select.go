package libgexp

import (
	"github.com/pkg/errors"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// NoFallback marks a selector that must match.
const NoFallback = -1

// Selection is the outcome of running a selector: Index is meaningful only if Found.
type Selection struct {
	Index int
	Found bool
}

// TraceSelector picks a trace from a bucket.  The first trace satisfying Match
// is chosen; otherwise (or if Match is nil) Fallback is used.  The zero value
// selects the first trace.
type TraceSelector struct {
	Match    func(t Trace) bool
	Fallback int
}

// FactorSelector picks a G within a trace the same way TraceSelector picks a trace.
// Match is only consulted for G factors; Fallback is a raw factor position.
type FactorSelector struct {
	Match    func(f MatrixFactor) bool
	Fallback int
}

// TraceAt selects the trace at position i.
func TraceAt(i int) TraceSelector {
	return TraceSelector{Fallback: i}
}

// TraceWhere selects the first trace satisfying match, with no fallback.
func TraceWhere(match func(t Trace) bool) TraceSelector {
	return TraceSelector{Match: match, Fallback: NoFallback}
}

// FactorAt selects the factor at position i.
func FactorAt(i int) FactorSelector {
	return FactorSelector{Fallback: i}
}

// GWhere selects the first G satisfying match, with no fallback.
func GWhere(match func(f MatrixFactor) bool) FactorSelector {
	return FactorSelector{Match: match, Fallback: NoFallback}
}

func fallback(index, n int) Selection {
	if index < 0 || index >= n {
		return Selection{}
	}
	return Selection{Index: index, Found: true}
}

func (sel TraceSelector) Select(traces []Trace) Selection {
	if sel.Match != nil {
		for i, t := range traces {
			if sel.Match(t) {
				return Selection{Index: i, Found: true}
			}
		}
	}
	return fallback(sel.Fallback, len(traces))
}

func (sel FactorSelector) Select(t Trace) Selection {
	if sel.Match != nil {
		for i, f := range t.factors {
			if f.kind == KindG && sel.Match(f) {
				return Selection{Index: i, Found: true}
			}
		}
	}
	return fallback(sel.Fallback, t.Len())
}

func selectTrace(sel TraceSelector, traces []Trace, what string) (int, error) {
	s := sel.Select(traces)
	if !s.Found {
		return 0, errors.Wrapf(gexp.ErrNoMatch, "no %s selected among %d", what, len(traces))
	}
	return s.Index, nil
}
