package catalog

import (
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
)

/***

Catalog database format:

	gCatalogStateKey                 => CatalogState
	kTermPrefix, CanonicalEncoding   => order (uvarint)

Terms are keyed by their canonical encoding, so a term reached along several
rewrite paths is stored once.  The order is kept in the value so Select can
skip terms outside the requested range without decoding them.

***/

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

const kTermPrefix = byte(0x01)

// catalog is a badger wrapper holding the leading terms of one search.
type catalog struct {
	ctx        gexp.CatalogContext
	mu         sync.Mutex
	readOnly   bool
	stateDirty bool
	state      gexp.CatalogState
	db         *badger.DB
}

// OpenCatalog opens (or creates) the catalog at opts.DbPathName and attaches
// it to ctx.  An empty path gives an in-memory catalog.
func OpenCatalog(ctx gexp.CatalogContext, opts gexp.CatalogOpts) (gexp.Catalog, error) {
	cat := &catalog{
		ctx:      ctx,
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false // writes are serialized by cat.mu
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gexp.ErrBadCatalogParam, "DbPathName must be specified for read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, err
	}

	// Once the db is open, we consider the catalog ctx blocked until the catalog closes
	ctx.AttachCatalog(cat)

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		if cat.readOnly {
			err = errors.Wrap(gexp.ErrBadCatalogParam, "read-only catalog has no state")
		}
		cat.state.InitState(opts)
		cat.stateDirty = true
	}

	if err == nil {
		switch {
		case !cat.state.IsCompatible():
			err = errors.Wrapf(gexp.ErrCatalogVersion, "found v%d.%d", cat.state.MajorVers, cat.state.MinorVers)
		case opts.Seed != "" && opts.Seed != cat.state.Seed:
			err = errors.Wrapf(gexp.ErrBadCatalogParam, "catalog was built from seed %q, not %q", cat.state.Seed, opts.Seed)
		case opts.Order != 0 && opts.Order != cat.state.Order:
			err = errors.Wrapf(gexp.ErrBadCatalogParam, "catalog holds order %d terms, not %d", cat.state.Order, opts.Order)
		}
	}

	if err != nil {
		cat.stateDirty = false
		cat.Close()
		return nil, err
	}

	klog.V(2).Infof("opened catalog %q (seed %q, order %d, %d terms)", opts.DbPathName, cat.state.Seed, cat.state.Order, cat.state.NumTerms)
	return cat, nil
}

func (cat *catalog) loadState() error {
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err == nil {
			err = item.Value(func(val []byte) error {
				return cat.state.Unmarshal(val)
			})
		}
		return err
	})
	return err
}

func (cat *catalog) flushState() {
	if cat.stateDirty && !cat.readOnly {
		err := cat.db.Update(func(txn *badger.Txn) error {
			stateBuf, err := cat.state.Marshal()
			if err != nil {
				return err
			}
			return txn.Set(gCatalogStateKey, stateBuf)
		})
		if err != nil {
			panic(err)
		}
		cat.stateDirty = false
	}
}

func (cat *catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	if cat.db != nil {
		cat.flushState()
		cat.db.Close()
		cat.db = nil
		cat.ctx.DetachCatalog(cat)
		cat.ctx = nil
	}
	return nil
}

func (cat *catalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *catalog) Seed() string {
	return cat.state.Seed
}

func (cat *catalog) NumTerms() int64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return int64(cat.state.NumTerms)
}

func formTermKey(key []byte, X gexp.TermState) ([]byte, error) {
	key = append(key, kTermPrefix)
	return X.AppendEncoding(key)
}

func (cat *catalog) TryAddTerm(X gexp.TermState) (bool, error) {
	if cat.readOnly {
		return false, gexp.ErrCatalogReadOnly
	}

	var keyBuf [512]byte
	termKey, err := formTermKey(keyBuf[:0], X)
	if err != nil {
		return false, err
	}

	cat.mu.Lock()
	defer cat.mu.Unlock()
	if cat.db == nil {
		return false, errors.Wrap(gexp.ErrBadCatalogParam, "catalog is closed")
	}

	added := false
	err = cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(termKey)
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}
		added = true

		// badger holds on to keys and values until commit
		key := append([]byte(nil), termKey...)
		val := binary.AppendUvarint(nil, uint64(X.Order()))
		return txn.Set(key, val)
	})
	if err != nil {
		return false, err
	}
	if added {
		cat.state.NumTerms++
		cat.stateDirty = true
	}
	return added, nil
}

// Select sends onHit every stored term that sel selects, in encoding order.
// onHit is not closed.
func (cat *catalog) Select(sel gexp.TermSelector, onHit gexp.OnTermHit) error {
	cat.mu.Lock()
	db := cat.db
	cat.mu.Unlock()
	if db == nil {
		return errors.Wrap(gexp.ErrBadCatalogParam, "catalog is closed")
	}

	txn := db.NewTransaction(false)
	defer txn.Discard()

	prefix := []byte{kTermPrefix}
	it := txn.NewIterator(badger.IteratorOptions{
		PrefetchValues: true,
		PrefetchSize:   100,
		Prefix:         prefix,
	})
	defer it.Close()

	count := 0
	for it.Rewind(); it.Valid(); it.Next() {
		if sel.Limit > 0 && count >= sel.Limit {
			break
		}
		item := it.Item()

		var order uint64
		err := item.Value(func(val []byte) error {
			var n int
			order, n = binary.Uvarint(val)
			if n <= 0 {
				return errors.Wrap(gexp.ErrBadEncoding, "term order")
			}
			return nil
		})
		if err != nil {
			return err
		}
		if int(order) < sel.MinOrder || (sel.MaxOrder > 0 && int(order) > sel.MaxOrder) {
			continue
		}

		X, err := libgexp.UnmarshalGraph(item.Key()[len(prefix):])
		if err != nil {
			return err
		}
		if sel.SelectsTerm(X) {
			count++
			onHit <- X
		}
	}
	return nil
}
