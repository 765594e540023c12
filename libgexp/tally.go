package libgexp

import (
	"github.com/emirpasic/gods/trees/redblacktree"
)

// TallyEntry is one distinct term and how many times it was reached.
type TallyEntry struct {
	Term  *Graph
	Count int
}

// Tally groups terms by canonical encoding, keeping them in encoding order so
// reports are stable across runs.
type Tally struct {
	tree  *redblacktree.Tree
	total int
}

func NewTally() *Tally {
	return &Tally{
		tree: redblacktree.NewWithStringComparator(),
	}
}

// Add counts one occurrence of X.
func (tally *Tally) Add(X *Graph) error {
	key, err := X.AppendEncoding(nil)
	if err != nil {
		return err
	}
	tally.total++
	if v, found := tally.tree.Get(string(key)); found {
		v.(*TallyEntry).Count++
		return nil
	}
	tally.tree.Put(string(key), &TallyEntry{Term: X, Count: 1})
	return nil
}

// AddAll counts each of the given terms.
func (tally *Tally) AddAll(terms []*Graph) error {
	for _, X := range terms {
		if err := tally.Add(X); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of distinct terms.
func (tally *Tally) Len() int {
	return tally.tree.Size()
}

// Total returns the number of terms added, counting repeats.
func (tally *Tally) Total() int {
	return tally.total
}

// Entries returns the distinct terms in encoding order.
func (tally *Tally) Entries() []TallyEntry {
	out := make([]TallyEntry, 0, tally.tree.Size())
	it := tally.tree.Iterator()
	for it.Next() {
		out = append(out, *it.Value().(*TallyEntry))
	}
	return out
}
