package libgexp

import (
	"context"
	"time"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// SearchOpts bounds and instruments a leading-term search.
type SearchOpts struct {
	MaxTerms       int  // stop once this many leading terms are accepted (0: no cap)
	MaxExpansions  int  // fail with ErrBudgetExceeded after this many rewrite steps (0: no budget)
	KeepSmallTerms bool // keep non-deterministic terms pruned for being above the target order
	DropDupes      bool // accept each canonical leading term once
	Workers        int  // goroutines used by ComputeLeadingTermsParallel (0: 1)

	// Sink, if set, is offered every accepted leading term (e.g. a Catalog).
	Sink    gexp.TermAdder
	Metrics *SearchMetrics
}

// SearchResult is what a leading-term search found.
type SearchResult struct {
	LeadingTerms []*Graph // deterministic terms at the target order
	SmallTerms   []*Graph // pruned terms, only if KeepSmallTerms
	Expansions   int      // number of rewrite steps applied
	Duplicates   int      // accepted terms dropped as duplicates, only if DropDupes
	Truncated    bool     // MaxTerms was reached before the stack emptied
}

// ComputeLeadingTerms expands seed depth-first until every surviving term is
// deterministic and returns those at exactly the given order.
//
// Terms popped from the stack are handled as follows: a deterministic term
// is accepted if its order equals order and dropped otherwise; a random term
// above order is pruned (and kept in SmallTerms if asked); anything else is
// expanded with Expand and its children pushed.  The last child pushed is the
// next one visited, so a given seed always yields the same terms in the same order.
//
// On cancellation or an exhausted budget the partial result is returned with the error.
func ComputeLeadingTerms(ctx context.Context, seed *Graph, order int, opts SearchOpts) (*SearchResult, error) {
	if seed == nil {
		return nil, gexp.ErrNilGraph
	}
	start := time.Now()
	defer func() {
		opts.Metrics.observe(time.Since(start).Seconds())
	}()

	res := &SearchResult{}
	acc := newAcceptor(opts, res)
	defer acc.close()

	stack := arraystack.New()
	stack.Push(seed)

	for !stack.Empty() {
		if opts.MaxTerms > 0 && len(res.LeadingTerms) >= opts.MaxTerms {
			res.Truncated = true
			klog.V(2).Infof("leading terms: reached %d terms with %d pending", len(res.LeadingTerms), stack.Size())
			break
		}
		if err := ctx.Err(); err != nil {
			klog.Warningf("leading terms: stopped after %d expansions: %v", res.Expansions, err)
			return res, err
		}

		v, _ := stack.Pop()
		X := v.(*Graph)

		if X.IsDeterministic() {
			if X.Order() == order {
				if err := acc.accept(X); err != nil {
					return res, err
				}
			} else {
				opts.Metrics.wrongOrder()
			}
			continue
		}

		if X.Order() > order {
			opts.Metrics.pruned()
			if opts.KeepSmallTerms {
				res.SmallTerms = append(res.SmallTerms, X)
			}
			continue
		}

		if opts.MaxExpansions > 0 && res.Expansions >= opts.MaxExpansions {
			klog.Warningf("leading terms: expansion budget of %d exhausted", opts.MaxExpansions)
			return res, errors.Wrapf(gexp.ErrBudgetExceeded, "%d expansions", opts.MaxExpansions)
		}

		terms, err := Expand(X, true)
		if err != nil {
			return res, errors.Wrapf(err, "expanding %v", X.Tex())
		}
		res.Expansions++
		opts.Metrics.expanded()
		for _, t := range terms {
			stack.Push(t)
		}
		opts.Metrics.frontier(stack.Size())

		klog.V(3).Infof("expansion %d: %d terms (frontier %d)", res.Expansions, len(terms), stack.Size())
	}

	klog.V(2).Infof("leading terms: order %d: %d terms, %d expansions", order, len(res.LeadingTerms), res.Expansions)
	return res, nil
}

// acceptor applies dedup and the sink to accepted terms.
type acceptor struct {
	opts  SearchOpts
	res   *SearchResult
	dupes DropDupes
}

func newAcceptor(opts SearchOpts, res *SearchResult) *acceptor {
	acc := &acceptor{
		opts: opts,
		res:  res,
	}
	if opts.DropDupes {
		acc.dupes = NewDropDupes(DropDupeOpts{})
	}
	return acc
}

func (acc *acceptor) accept(X *Graph) error {
	if acc.dupes != nil {
		added, err := acc.dupes.TryAddTerm(X)
		if err != nil {
			return err
		}
		if !added {
			acc.res.Duplicates++
			return nil
		}
	}
	if acc.opts.Sink != nil {
		if _, err := acc.opts.Sink.TryAddTerm(X); err != nil {
			return errors.Wrap(err, "adding leading term to sink")
		}
	}
	acc.res.LeadingTerms = append(acc.res.LeadingTerms, X)
	acc.opts.Metrics.accepted()
	return nil
}

func (acc *acceptor) close() {
	if acc.dupes != nil {
		acc.dupes.Close()
	}
}
