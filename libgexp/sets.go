package libgexp

import (
	"github.com/dgraph-io/badger/v3"
	"github.com/stevenktruong/graph-expansion/gexp"
)

// TermSet allows adding canonical term encodings and reporting whether an equivalent term was already added.
// It is safe for concurrent use.
type TermSet interface {
	gexp.TermAdder

	// TryAdd adds the given term if it is not already present.
	//
	// If the canonic version of X already is in this TermSet, this call has no effect and TryAdd() returns false.
	// If X isn't in this set, X is added and TryAdd() returns true.
	TryAdd(X gexp.TermState) (bool, error)

	// Len returns the number of distinct terms added so far.
	Len() int64

	// Close removes all previously added items from this set.
	Close()
}

// NewTermSet returns an empty TermSet backed by an in-memory LSM.
func NewTermSet() (TermSet, error) {
	dbOpts := badger.DefaultOptions("").WithInMemory(true)
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	db, err := badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}
	return &lsmSet{db: db}, nil
}

type lsmSet struct {
	db *badger.DB
}

func (set *lsmSet) TryAddTerm(X gexp.TermState) (bool, error) {
	return set.TryAdd(X)
}

func (set *lsmSet) TryAdd(X gexp.TermState) (bool, error) {
	key, err := X.AppendEncoding(nil)
	if err != nil {
		return false, err
	}
	return set.tryAdd(key)
}

func (set *lsmSet) tryAdd(key []byte) (bool, error) {
	for {
		added := false
		err := set.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(key)
			if err == nil {
				// no-op since the key is already in the db
				return nil
			}
			if err != badger.ErrKeyNotFound {
				return err
			}
			added = true
			return txn.Set(key, nil)
		})

		// Another writer raced us to the same key; look again.
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return false, err
		}
		return added, nil
	}
}

func (set *lsmSet) Len() int64 {
	count := int64(0)
	err := set.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: false,
		})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		panic(err)
	}
	return count
}

func (set *lsmSet) Close() {
	if set.db != nil {
		set.db.Close()
		set.db = nil
	}
}
