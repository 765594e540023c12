package libgexp

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/stevenktruong/graph-expansion/gexp"
	"golang.org/x/sync/errgroup"
)

// sharedStack is the work stack shared by the parallel search workers.  The
// search is over once the stack is empty and no popped term is still being
// expanded (its children may yet be pushed).
type sharedStack struct {
	mu       sync.Mutex
	cond     *sync.Cond
	stack    *arraystack.Stack
	inFlight int
	stopped  bool
}

func newSharedStack(seed *Graph) *sharedStack {
	s := &sharedStack{
		stack: arraystack.New(),
	}
	s.cond = sync.NewCond(&s.mu)
	s.stack.Push(seed)
	return s
}

// pop blocks until a term is available or the search is over.
func (s *sharedStack) pop() (*Graph, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.stack.Empty() && s.inFlight > 0 && !s.stopped {
		s.cond.Wait()
	}
	if s.stopped || s.stack.Empty() {
		return nil, false
	}
	v, _ := s.stack.Pop()
	s.inFlight++
	return v.(*Graph), true
}

// done returns a popped term's children to the stack.
func (s *sharedStack) done(children []*Graph) int {
	s.mu.Lock()
	for _, X := range children {
		s.stack.Push(X)
	}
	s.inFlight--
	n := s.stack.Size()
	s.mu.Unlock()
	s.cond.Broadcast()
	return n
}

func (s *sharedStack) stop() {
	s.halt()
}

// halt stops the search from a worker holding a popped term and reports
// whether any other work was still pending.
func (s *sharedStack) halt() (pending bool) {
	s.mu.Lock()
	pending = !s.stack.Empty() || s.inFlight > 1
	s.stopped = true
	s.mu.Unlock()
	s.cond.Broadcast()
	return pending
}

// ComputeLeadingTermsParallel is ComputeLeadingTerms spread over opts.Workers
// goroutines sharing one stack.  It finds the same multiset of leading terms
// (when MaxTerms is not set), returned sorted by canonical encoding since
// the visiting order is not deterministic.  Dedup uses a concurrent TermSet
// and a Sink, if given, must be safe for concurrent use.
func ComputeLeadingTermsParallel(ctx context.Context, seed *Graph, order int, opts SearchOpts) (*SearchResult, error) {
	if seed == nil {
		return nil, gexp.ErrNilGraph
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}
	start := time.Now()
	defer func() {
		opts.Metrics.observe(time.Since(start).Seconds())
	}()

	var dupes TermSet
	if opts.DropDupes {
		var err error
		if dupes, err = NewTermSet(); err != nil {
			return nil, err
		}
		defer dupes.Close()
	}

	var (
		resMu      sync.Mutex
		res        = &SearchResult{}
		accepted   atomic.Int64
		expansions atomic.Int64
	)

	work := newSharedStack(seed)
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	stopOnCancel := context.AfterFunc(gctx, work.stop)
	defer stopOnCancel()

	accept := func(X *Graph) error {
		if dupes != nil {
			added, err := dupes.TryAdd(X)
			if err != nil {
				return err
			}
			if !added {
				resMu.Lock()
				res.Duplicates++
				resMu.Unlock()
				return nil
			}
		}
		n := accepted.Add(1)
		if opts.MaxTerms > 0 && n > int64(opts.MaxTerms) {
			// popped before the cap was reached
			resMu.Lock()
			res.Truncated = true
			resMu.Unlock()
			return nil
		}
		if opts.Sink != nil {
			if _, err := opts.Sink.TryAddTerm(X); err != nil {
				return errors.Wrap(err, "adding leading term to sink")
			}
		}
		resMu.Lock()
		res.LeadingTerms = append(res.LeadingTerms, X)
		resMu.Unlock()
		opts.Metrics.accepted()

		if opts.MaxTerms > 0 && n == int64(opts.MaxTerms) && work.halt() {
			resMu.Lock()
			res.Truncated = true
			resMu.Unlock()
		}
		return nil
	}

	worker := func() error {
		for {
			X, ok := work.pop()
			if !ok {
				return nil
			}

			var children []*Graph
			switch {
			case X.IsDeterministic():
				if X.Order() == order {
					if err := accept(X); err != nil {
						work.done(nil)
						return err
					}
				} else {
					opts.Metrics.wrongOrder()
				}

			case X.Order() > order:
				opts.Metrics.pruned()
				if opts.KeepSmallTerms {
					resMu.Lock()
					res.SmallTerms = append(res.SmallTerms, X)
					resMu.Unlock()
				}

			default:
				n := expansions.Add(1)
				if opts.MaxExpansions > 0 && n > int64(opts.MaxExpansions) {
					work.done(nil)
					return errors.Wrapf(gexp.ErrBudgetExceeded, "%d expansions", opts.MaxExpansions)
				}
				var err error
				children, err = Expand(X, true)
				if err != nil {
					work.done(nil)
					return errors.Wrapf(err, "expanding %v", X.Tex())
				}
				opts.Metrics.expanded()
			}
			opts.Metrics.frontier(work.done(children))
		}
	}

	for i := 0; i < workers; i++ {
		grp.Go(worker)
	}
	err := grp.Wait()

	res.Expansions = int(expansions.Load())
	if opts.MaxExpansions > 0 && res.Expansions > opts.MaxExpansions {
		res.Expansions = opts.MaxExpansions
	}
	if err == nil {
		err = ctx.Err()
	}
	sortByEncoding(res.LeadingTerms)
	sortByEncoding(res.SmallTerms)

	if err != nil {
		klog.Warningf("leading terms: parallel search stopped after %d expansions: %v", res.Expansions, err)
		return res, err
	}
	klog.V(2).Infof("leading terms: order %d: %d terms, %d expansions, %d workers", order, len(res.LeadingTerms), res.Expansions, workers)
	return res, nil
}

func sortByEncoding(terms []*Graph) {
	keys := make(map[*Graph][]byte, len(terms))
	for _, X := range terms {
		keys[X], _ = X.AppendEncoding(nil)
	}
	sort.SliceStable(terms, func(i, j int) bool {
		return bytes.Compare(keys[terms[i]], keys[terms[j]]) < 0
	})
}
