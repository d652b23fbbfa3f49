// Package embed converts text into dense float32 vectors for similarity
// search. The package defines the Embedder contract the engine depends on
// and ships an OpenAI-backed implementation; any OpenAI-compatible provider
// works through the BaseURL option.
package embed

import (
	"context"
	"errors"
)

// ErrEmptyInput is returned when the input text is empty or blank.
var ErrEmptyInput = errors.New("embed: empty input")

// Embedder converts text into dense float32 vectors.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns embedding vectors for multiple texts.
	// Implementations may split large batches into smaller API calls
	// transparently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of the output vectors.
	Dimension() int
}
