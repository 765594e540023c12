package gexp

import (
	"io"
)

// TermState is a single term (a product of coefficients and traces) as seen by
// streams, catalogs, and dedup sets.
type TermState interface {

	// IsDeterministic is true iff the term has no remaining random factors.
	IsDeterministic() bool

	// Order returns the power of N^{-1} carried by this term.
	Order() int

	// Tex renders this term as LaTeX using the package macros.
	Tex() string

	// AppendEncoding appends the canonical binary encoding of this term.
	// Terms that differ only by a renaming of internal indices encode the same.
	AppendEncoding(out []byte) ([]byte, error)

	WriteAsString(out io.Writer, opts PrintOpts)
}

// PrintOpts controls how a TermStream prints terms.
type PrintOpts struct {
	Label      string // prefix written before each line
	Tex        bool   // write the LaTeX form instead of the Go form
	ShowOrder  bool   // prefix each term with its order
	WithMacros bool   // emit the LaTeX macro preamble before the first term
}

// OnTermHit is used to return terms meeting a set of selection criteria.
// Ownership of a term also travels through the channel.
type OnTermHit chan<- TermState

// TermSelector picks terms by order and determinism.
type TermSelector struct {
	MinOrder          int
	MaxOrder          int // 0 means no upper bound
	DeterministicOnly bool
	Limit             int // 0 means no limit
}

// DefaultTermSelector selects every term.
var DefaultTermSelector = TermSelector{}

// SelectsTerm is a convenience function used to see if a term is selected according to a TermSelector.
func (sel *TermSelector) SelectsTerm(X TermState) bool {
	if sel.DeterministicOnly && !X.IsDeterministic() {
		return false
	}
	o := X.Order()
	if o < sel.MinOrder {
		return false
	}
	if sel.MaxOrder > 0 && o > sel.MaxOrder {
		return false
	}
	return true
}

type TermAdder interface {

	// Tries to add the given term to this container.
	// If true is returned, X (or an encoding-equal term) did not exist and was added.
	TryAddTerm(X TermState) (bool, error)
}

// Catalog is a persistent store of terms produced by a leading-term search.
type Catalog interface {
	TermAdder

	// Returns true if this catalog was opened for read-only access.
	IsReadOnly() bool

	// NumTerms returns the number of unique terms in this catalog.
	NumTerms() int64

	// Seed returns the name of the seed graph this catalog was built from (if any).
	Seed() string

	// Select fires the given callback with each term that meets the selection criteria.
	Select(sel TermSelector, onHit OnTermHit) error

	Close() error
}

// TermDecoder reconstructs a term from its canonical encoding.
type TermDecoder func(buf []byte) (TermState, error)

// CatalogContext is a container for open / active Catalog instances.
type CatalogContext interface {

	// Attaches the given Catalog to this context.
	AttachCatalog(cat Catalog)

	// Detaches the given Catalog from this context.
	DetachCatalog(cat Catalog)

	// Closes all open catalogs then closes.
	Close()

	// Signals when Close() completed and all open Catalogs have been closed
	Done() <-chan struct{}
}

// CatalogOpts specifies params for opening a term Catalog.
type CatalogOpts struct {
	DbPathName string `yaml:"db_path" mapstructure:"db_path"` // omit for in-memory db
	ReadOnly   bool   `yaml:"read_only" mapstructure:"read_only"`
	Seed       string `yaml:"seed" mapstructure:"seed"`   // name of the seed graph, recorded on first open
	Order      int32  `yaml:"order" mapstructure:"order"` // target order, recorded on first open
}
