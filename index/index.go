package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/vecsearch/metadata"
	"github.com/hupe1980/vecsearch/model"
)

var (
	// ErrNotBuilt is returned when searching an index that has never been
	// successfully built.
	ErrNotBuilt = errors.New("index not built")

	// ErrNoRecords is returned by Build when there is nothing to index.
	// The index keeps its previous state.
	ErrNoRecords = errors.New("no records to index")

	// ErrInvalidK is returned when a search requests fewer than one result.
	ErrInvalidK = errors.New("invalid k")

	// ErrEmptyVector is returned when a record or query carries a
	// zero-length vector.
	ErrEmptyVector = errors.New("empty vector")

	// ErrUnknownType is returned by ParseType for unrecognized names.
	ErrUnknownType = errors.New("unknown index type")
)

// ErrDimensionMismatch is a named error type for dimension mismatch
type ErrDimensionMismatch struct {
	Expected int // Expected dimensions
	Actual   int // Actual dimensions
}

// Error returns the error message for dimension mismatch
func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Type identifies an index strategy.
type Type int

const (
	// TypeFlat is the exact brute-force index.
	TypeFlat Type = iota
	// TypeIVF is the approximate k-means clustered index.
	TypeIVF
)

// String returns the canonical name of the index type.
func (t Type) String() string {
	switch t {
	case TypeFlat:
		return "flat"
	case TypeIVF:
		return "ivf"
	default:
		return "unknown"
	}
}

// ParseType resolves a canonical index type name.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "flat":
		return TypeFlat, nil
	case "ivf":
		return TypeIVF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

// Candidate is a single search hit: the matched record's ID and its
// similarity to the query. Higher scores are better.
type Candidate struct {
	ID    string
	Score float32
}

// SearchOptions controls the execution of a single search.
type SearchOptions struct {
	// Filter restricts candidates to records whose attributes match every
	// key/value pair. Records missing a filtered key never match.
	Filter metadata.Filter

	// NProbe is the number of clusters a clustered index visits. Zero means
	// the index default. Exact indexes ignore it.
	NProbe int
}

// ClusterStats describes the size distribution of a clustered index.
type ClusterStats struct {
	NumClusters int
	MinSize     int
	MaxSize     int
	AvgSize     float64
}

// Stats is a point-in-time snapshot of index state and counters.
type Stats struct {
	Type             Type
	Built            bool
	Dimension        int
	Count            int
	MemoryBytes      uint64
	BuildElapsed     time.Duration
	Searches         uint64
	AvgSearchElapsed time.Duration

	// Clusters is nil for index types without clustering.
	Clusters *ClusterStats
}

// Index is the contract shared by vector index implementations.
//
// Build replaces the entire index content in one atomic step: concurrent
// searches keep reading the previous state until the swap, and never
// observe a partially built index.
type Index interface {
	// Type identifies the index strategy.
	Type() Type

	// Build (re)constructs the index from the given records. All vectors
	// must share one dimension. Empty input returns ErrNoRecords and leaves
	// the index unchanged.
	Build(ctx context.Context, records []model.VectorRecord) error

	// Search returns up to k candidates ranked by descending similarity.
	// Ties rank by insertion order.
	Search(ctx context.Context, query []float32, k int, opts *SearchOptions) ([]Candidate, error)

	// Record resolves an ID against the current snapshot.
	Record(id string) (model.VectorRecord, bool)

	// Ready reports whether the index has been built and can serve searches.
	Ready() bool

	// Count returns the number of indexed records.
	Count() int

	// Stats returns a snapshot of index state and counters.
	Stats() Stats
}
