// Package vecsearch provides an in-process vector similarity search engine.
//
// This file implements the fluent search API for querying libraries.
package vecsearch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/vecsearch/index"
	"github.com/hupe1980/vecsearch/metadata"
	"github.com/hupe1980/vecsearch/model"
)

// SearchResult is one ranked hit of a search.
type SearchResult struct {
	// Record is the matched vector record.
	Record model.VectorRecord

	// Score is the cosine similarity to the query. Higher is better.
	Score float32

	// Rank is the 1-based dense rank of the hit. Ties keep insertion order.
	Rank int
}

// SearchResponse carries the ranked results of one search.
type SearchResponse struct {
	LibraryID string
	Results   []SearchResult
	Total     int
	Took      time.Duration
}

// Search creates a new fluent search builder for the given library.
//
// Example:
//
//	resp, err := engine.Search(libraryID).
//	    Text("approximate nearest neighbor search").
//	    KNN(10).
//	    Using(index.TypeIVF).
//	    Probe(4).
//	    Filter(metadata.Filter{"category": metadata.String("tech")}).
//	    Execute(ctx)
func (e *Engine) Search(libraryID string) *SearchBuilder {
	return &SearchBuilder{
		engine:    e,
		libraryID: libraryID,
		k:         e.cfg.DefaultK,
		indexType: index.TypeFlat,
	}
}

// SearchBuilder is a fluent builder for constructing search queries.
type SearchBuilder struct {
	engine    *Engine
	libraryID string
	text      string
	vector    []float32
	k         int
	indexType index.Type
	nprobe    int
	filter    metadata.Filter
}

// Text sets the query text, resolved to a vector through the configured
// embedder at execution time.
func (sb *SearchBuilder) Text(text string) *SearchBuilder {
	sb.text = text
	return sb
}

// Vector sets the query vector directly, bypassing the embedder.
func (sb *SearchBuilder) Vector(vector []float32) *SearchBuilder {
	sb.vector = vector
	return sb
}

// KNN sets the number of results to return.
func (sb *SearchBuilder) KNN(k int) *SearchBuilder {
	sb.k = k
	return sb
}

// Using selects the index variant to query. Defaults to the flat index.
func (sb *SearchBuilder) Using(t index.Type) *SearchBuilder {
	sb.indexType = t
	return sb
}

// Probe overrides the number of clusters an IVF search scans.
// Ignored by the flat index.
func (sb *SearchBuilder) Probe(n int) *SearchBuilder {
	sb.nprobe = n
	return sb
}

// Filter restricts results to records whose attributes carry every
// key/value pair of f.
func (sb *SearchBuilder) Filter(f metadata.Filter) *SearchBuilder {
	sb.filter = f
	return sb
}

// Execute runs the search and returns the ranked results.
func (sb *SearchBuilder) Execute(ctx context.Context) (*SearchResponse, error) {
	return sb.engine.executeSearch(ctx, sb)
}

// MustExecute runs the search, panicking on error.
// Use this only in tests or when you're certain the query is valid.
func (sb *SearchBuilder) MustExecute(ctx context.Context) *SearchResponse {
	resp, err := sb.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return resp
}

// First returns only the best result, or ErrNotFound if nothing matched.
func (sb *SearchBuilder) First(ctx context.Context) (SearchResult, error) {
	sb.k = 1
	resp, err := sb.Execute(ctx)
	if err != nil {
		return SearchResult{}, err
	}
	if len(resp.Results) == 0 {
		return SearchResult{}, ErrNotFound
	}
	return resp.Results[0], nil
}

func (e *Engine) executeSearch(ctx context.Context, sb *SearchBuilder) (*SearchResponse, error) {
	start := time.Now()

	fail := func(err error) (*SearchResponse, error) {
		err = translateError(err)
		e.metrics.RecordSearch(sb.k, time.Since(start), err)
		e.logger.LogSearch(ctx, sb.libraryID, sb.k, 0, err)
		return nil, err
	}

	if sb.k < 1 {
		return fail(fmt.Errorf("%w: got %d", ErrInvalidK, sb.k))
	}

	if sb.k > e.cfg.MaxK {
		return fail(fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidK, sb.k, e.cfg.MaxK))
	}

	query := sb.vector
	if query == nil {
		if strings.TrimSpace(sb.text) == "" {
			return fail(ErrEmptyQuery)
		}

		vec, err := e.embedQuery(ctx, sb.text)
		if err != nil {
			return fail(err)
		}

		query = vec
	}

	idx, ok := e.lookupIndex(sb.libraryID, sb.indexType)
	if !ok {
		return fail(fmt.Errorf("%w: %s index for library %q", ErrIndexNotBuilt, sb.indexType, sb.libraryID))
	}

	candidates, err := idx.Search(ctx, query, sb.k, &index.SearchOptions{
		Filter: sb.filter,
		NProbe: sb.nprobe,
	})
	if err != nil {
		return fail(err)
	}

	results := make([]SearchResult, 0, len(candidates))

	for _, c := range candidates {
		rec, ok := idx.Record(c.ID)
		if !ok {
			// The snapshot serving a search resolves all of its own
			// candidates; a miss means a rebuild swapped it mid-flight.
			continue
		}

		results = append(results, SearchResult{
			Record: rec,
			Score:  c.Score,
			Rank:   len(results) + 1,
		})
	}

	resp := &SearchResponse{
		LibraryID: sb.libraryID,
		Results:   results,
		Total:     len(results),
		Took:      time.Since(start),
	}

	e.metrics.RecordSearch(sb.k, resp.Took, nil)
	e.logger.LogSearch(ctx, sb.libraryID, sb.k, resp.Total, nil)

	return resp, nil
}

// embedQuery resolves text to a vector without holding any engine lock. The
// rate gate applies before the provider call.
func (e *Engine) embedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.embedder == nil {
		return nil, ErrNoEmbedder
	}

	if err := e.controller.WaitEmbed(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	vec, err := e.embedder.Embed(ctx, text)
	duration := time.Since(start)

	e.metrics.RecordEmbedding(duration, err)
	e.logger.LogEmbedding(ctx, len(text), err)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	return vec, nil
}
