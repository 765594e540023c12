package gexp

import "errors"

// Errors
var (
	ErrInvalidTrace     = errors.New("trace is not deterministic, light-weight, or G-loop")
	ErrBadGraphPart     = errors.New("bad graph part")
	ErrNoMatch          = errors.New("selector matched nothing and no fallback was given")
	ErrTooFewG          = errors.New("G-loop needs more than one G to be expanded")
	ErrNotLightWeight   = errors.New("trace is not light-weight")
	ErrNotTransposable  = errors.New("coefficient is not transposable")
	ErrBadCut           = errors.New("bad cut position")
	ErrBudgetExceeded   = errors.New("expansion budget exceeded")
	ErrUnknownSeed      = errors.New("unknown seed graph")
	ErrUnmarshal        = errors.New("unmarshal failed")
	ErrBadEncoding      = errors.New("bad term encoding")
	ErrBadCatalogParam  = errors.New("bad catalog param")
	ErrCatalogReadOnly  = errors.New("catalog is in read-only mode")
	ErrCatalogVersion   = errors.New("catalog version is incompatible")
	ErrNilGraph         = errors.New("nil graph")
)
