package gexp

import (
	"fmt"
	"io"
	"strings"

	"github.com/plan-systems/klog"
)

// TermStream is a channel pipeline of terms.  Each stage owns a goroutine
// that drains its input and closes its Outlet when the input is exhausted.
type TermStream struct {
	Outlet chan TermState
}

func NewTermStream() *TermStream {
	stream := &TermStream{
		Outlet: make(chan TermState),
	}
	return stream
}

// StreamTerms returns a stream that emits the given terms then closes.
func StreamTerms(terms ...TermState) *TermStream {
	next := &TermStream{
		Outlet: make(chan TermState, 1),
	}

	go func() {
		for _, X := range terms {
			next.Outlet <- X
		}
		next.Close()
	}()

	return next
}

func (stream *TermStream) Close() {
	if stream.Outlet != nil {
		close(stream.Outlet)
	}
}

func (stream *TermStream) PushTerm(X TermState) {
	stream.Outlet <- X
}

func (stream *TermStream) PullTerm() TermState {
	X := <-stream.Outlet
	return X
}

// PullAll drains the stream and returns how many terms passed through.
func (stream *TermStream) PullAll() int {
	count := int(0)
	for range stream.Outlet {
		count++
	}
	return count
}

// Collect drains the stream into a slice.
func (stream *TermStream) Collect() []TermState {
	var terms []TermState
	for X := range stream.Outlet {
		terms = append(terms, X)
	}
	return terms
}

// Print writes one line per term to out and passes each term along.
// out is closed once the input is exhausted.
func (stream *TermStream) Print(
	out io.WriteCloser,
	opts PrintOpts) *TermStream {

	next := &TermStream{
		Outlet: make(chan TermState, 1),
	}

	go func() {
		buf := strings.Builder{}
		buf.Grow(256)

		if opts.Tex && opts.WithMacros {
			out.Write([]byte(TexMacros))
		}

		count := 0
		for X := range stream.Outlet {
			if len(opts.Label) > 0 {
				buf.WriteString(opts.Label)
				buf.WriteByte(',')
			}

			count++
			fmt.Fprintf(&buf, "%06d,", count)
			X.WriteAsString(&buf, opts)
			buf.WriteByte('\n')
			out.Write([]byte(buf.String()))
			buf.Reset()
			next.Outlet <- X
		}
		out.Close()
		next.Close()
	}()

	return next
}

// AddTo passes along only the terms that target reports as newly added.
func (stream *TermStream) AddTo(target TermAdder) *TermStream {
	next := &TermStream{
		Outlet: make(chan TermState, 1),
	}

	go func() {
		for X := range stream.Outlet {
			wasAdded, err := target.TryAddTerm(X)
			if err != nil {
				klog.Errorf("dropping term %v: %v", X.Tex(), err)
				continue
			}
			if wasAdded {
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromCatalog streams the terms in cat that sel selects.
func SelectFromCatalog(cat Catalog, sel TermSelector) *TermStream {
	next := &TermStream{
		Outlet: make(chan TermState, 1),
	}

	onHit := make(chan TermState, 4)

	go func() {
		if err := cat.Select(sel, onHit); err != nil {
			klog.Errorf("catalog select: %v", err)
		}
		close(onHit)
	}()

	go func() {
		count := 0
		for X := range onHit {
			if sel.Limit > 0 && count >= sel.Limit {
				continue
			}
			if sel.SelectsTerm(X) {
				count++
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}

// SelectFromStream passes along only the terms that sel selects.
func (stream *TermStream) SelectFromStream(sel TermSelector) *TermStream {
	next := &TermStream{
		Outlet: make(chan TermState, 1),
	}

	go func() {
		count := 0
		for X := range stream.Outlet {
			if sel.Limit > 0 && count >= sel.Limit {
				continue
			}
			if sel.SelectsTerm(X) {
				count++
				next.Outlet <- X
			}
		}
		next.Close()
	}()

	return next
}
