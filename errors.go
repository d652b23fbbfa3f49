package vecsearch

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vecsearch/index"
	"github.com/hupe1980/vecsearch/store"
)

var (
	// ErrNotFound is returned when an item is not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidK is returned when k is not positive or exceeds the
	// configured maximum.
	ErrInvalidK = errors.New("invalid k")

	// ErrLibraryNotFound is returned when the record source does not know
	// the requested library.
	ErrLibraryNotFound = errors.New("library not found")

	// ErrIndexNotBuilt is returned when a search targets an index that has
	// not been built for the library.
	ErrIndexNotBuilt = errors.New("index not built")

	// ErrNoVectors is returned when a build finds no records carrying an
	// embedding.
	ErrNoVectors = errors.New("no records with embeddings")

	// ErrEmptyQuery is returned when a search carries neither text nor a
	// query vector.
	ErrEmptyQuery = errors.New("empty query")

	// ErrNoEmbedder is returned when a text search runs without an
	// embedder configured.
	ErrNoEmbedder = errors.New("no embedder configured")

	// ErrEmbedding wraps failures of the embedding collaborator.
	ErrEmbedding = errors.New("embedding failed")
)

// translateError unifies collaborator errors so callers can match root
// sentinels with errors.Is. Typed errors such as
// *index.ErrDimensionMismatch pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrLibraryNotFound, err)
	}

	if errors.Is(err, index.ErrNotBuilt) {
		return fmt.Errorf("%w: %w", ErrIndexNotBuilt, err)
	}

	if errors.Is(err, index.ErrNoRecords) {
		return fmt.Errorf("%w: %w", ErrNoVectors, err)
	}

	if errors.Is(err, index.ErrInvalidK) {
		return fmt.Errorf("%w: %w", ErrInvalidK, err)
	}

	return err
}
