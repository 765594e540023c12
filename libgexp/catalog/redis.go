package catalog

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	backend "github.com/redis/go-redis/v9"
	"github.com/stevenktruong/graph-expansion/gexp"
	"github.com/stevenktruong/graph-expansion/libgexp"
)

// RedisCatalog keeps a catalog in two redis hashes: <prefix>state holds the
// CatalogState fields and <prefix>terms maps each canonical term encoding to
// its order.  Several processes may add to the same catalog at once.
type RedisCatalog struct {
	ctx       gexp.CatalogContext
	client    *backend.Client
	prefix    string
	timeout   time.Duration
	readOnly  bool
	ownClient bool
	seed      string
	closeOnce sync.Once
}

type Option func(*RedisCatalog)

// WithPrefix sets the key prefix of the catalog's hashes.
func WithPrefix(prefix string) Option {
	return func(cat *RedisCatalog) {
		cat.prefix = prefix
	}
}

// WithTimeout bounds each redis round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(cat *RedisCatalog) {
		cat.timeout = timeout
	}
}

// NewRedisCatalog connects to the redis server at address and opens the catalog there.
func NewRedisCatalog(ctx gexp.CatalogContext, address string, opts gexp.CatalogOpts, options ...Option) (*RedisCatalog, error) {
	client := backend.NewClient(&backend.Options{
		Addr: address,
	})
	cat, err := NewFromClient(ctx, client, opts, options...)
	if err != nil {
		client.Close()
		return nil, err
	}
	cat.ownClient = true
	return cat, nil
}

// NewFromClient opens a catalog using an existing client, which the catalog does not close.
func NewFromClient(ctx gexp.CatalogContext, client *backend.Client, opts gexp.CatalogOpts, options ...Option) (*RedisCatalog, error) {
	cat := &RedisCatalog{
		ctx:      ctx,
		client:   client,
		prefix:   "gexp:catalog:",
		timeout:  5 * time.Second,
		readOnly: opts.ReadOnly,
	}
	for _, opt := range options {
		opt(cat)
	}

	if err := cat.initState(opts); err != nil {
		return nil, err
	}
	ctx.AttachCatalog(cat)
	return cat, nil
}

func (cat *RedisCatalog) stateKey() string {
	return cat.prefix + "state"
}

func (cat *RedisCatalog) termsKey() string {
	return cat.prefix + "terms"
}

func (cat *RedisCatalog) call() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), cat.timeout)
}

func (cat *RedisCatalog) initState(opts gexp.CatalogOpts) error {
	ctx, cancel := cat.call()
	defer cancel()

	var fresh gexp.CatalogState
	fresh.InitState(opts)

	if !cat.readOnly {
		// only the first opener writes the header
		pipe := cat.client.TxPipeline()
		pipe.HSetNX(ctx, cat.stateKey(), "major_vers", fresh.MajorVers)
		pipe.HSetNX(ctx, cat.stateKey(), "minor_vers", fresh.MinorVers)
		pipe.HSetNX(ctx, cat.stateKey(), "seed", fresh.Seed)
		pipe.HSetNX(ctx, cat.stateKey(), "order", fresh.Order)
		if _, err := pipe.Exec(ctx); err != nil {
			return errors.Wrap(err, "writing catalog state")
		}
	}

	fields, err := cat.client.HGetAll(ctx, cat.stateKey()).Result()
	if err != nil {
		return errors.Wrap(err, "reading catalog state")
	}
	if len(fields) == 0 {
		return errors.Wrap(gexp.ErrBadCatalogParam, "read-only catalog has no state")
	}

	var state gexp.CatalogState
	state.MajorVers = atoi32(fields["major_vers"])
	state.MinorVers = atoi32(fields["minor_vers"])
	state.Seed = fields["seed"]
	state.Order = atoi32(fields["order"])

	switch {
	case !state.IsCompatible():
		return errors.Wrapf(gexp.ErrCatalogVersion, "found v%d.%d", state.MajorVers, state.MinorVers)
	case opts.Seed != "" && opts.Seed != state.Seed:
		return errors.Wrapf(gexp.ErrBadCatalogParam, "catalog was built from seed %q, not %q", state.Seed, opts.Seed)
	case opts.Order != 0 && opts.Order != state.Order:
		return errors.Wrapf(gexp.ErrBadCatalogParam, "catalog holds order %d terms, not %d", state.Order, opts.Order)
	}
	cat.seed = state.Seed
	return nil
}

func atoi32(s string) int32 {
	n, _ := strconv.ParseInt(s, 10, 32)
	return int32(n)
}

func (cat *RedisCatalog) IsReadOnly() bool {
	return cat.readOnly
}

func (cat *RedisCatalog) Seed() string {
	return cat.seed
}

func (cat *RedisCatalog) TryAddTerm(X gexp.TermState) (bool, error) {
	if cat.readOnly {
		return false, gexp.ErrCatalogReadOnly
	}
	key, err := X.AppendEncoding(nil)
	if err != nil {
		return false, err
	}

	ctx, cancel := cat.call()
	defer cancel()
	added, err := cat.client.HSetNX(ctx, cat.termsKey(), string(key), X.Order()).Result()
	if err != nil {
		return false, errors.Wrap(err, "adding term")
	}
	return added, nil
}

func (cat *RedisCatalog) NumTerms() int64 {
	ctx, cancel := cat.call()
	defer cancel()
	n, err := cat.client.HLen(ctx, cat.termsKey()).Result()
	if err != nil {
		return 0
	}
	return n
}

// Select sends onHit every stored term that sel selects, in encoding order.
func (cat *RedisCatalog) Select(sel gexp.TermSelector, onHit gexp.OnTermHit) error {
	ctx, cancel := cat.call()
	entries, err := cat.client.HGetAll(ctx, cat.termsKey()).Result()
	cancel()
	if err != nil {
		return errors.Wrap(err, "reading terms")
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	count := 0
	for _, key := range keys {
		if sel.Limit > 0 && count >= sel.Limit {
			break
		}
		order, err := strconv.Atoi(entries[key])
		if err != nil {
			return errors.Wrap(gexp.ErrBadEncoding, "term order")
		}
		if order < sel.MinOrder || (sel.MaxOrder > 0 && order > sel.MaxOrder) {
			continue
		}
		X, err := libgexp.UnmarshalGraph([]byte(key))
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

func (cat *RedisCatalog) Close() error {
	var err error
	cat.closeOnce.Do(func() {
		if cat.ownClient {
			err = cat.client.Close()
		}
		cat.ctx.DetachCatalog(cat)
	})
	return err
}
