// Package flat provides the exact brute-force index. Every search scans all
// stored vectors, so results are always exact at O(n) cost per query.
package flat

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecsearch/index"
	"github.com/hupe1980/vecsearch/internal/queue"
	"github.com/hupe1980/vecsearch/metadata"
	"github.com/hupe1980/vecsearch/metric"
	"github.com/hupe1980/vecsearch/model"
)

// Compile-time check to ensure Flat satisfies the index contract.
var _ index.Index = (*Flat)(nil)

// Options contains configuration options for the flat index.
type Options struct {
	// Dimension pins the vector dimensionality. Zero lets the first built
	// record decide.
	Dimension int
}

// DefaultOptions contains the default configuration options for the flat index.
var DefaultOptions = Options{
	Dimension: 0,
}

// snapshot holds the immutable state of the index for lock-free reads.
// Builds assemble a fresh snapshot off to the side and publish it with a
// single atomic store.
type snapshot struct {
	dim          int
	data         []float32            // flattened vectors, len(ids)*dim
	ids          []string             // position -> record ID
	records      []model.VectorRecord // position-aligned records
	byID         map[string]uint32
	inverted     *metadata.InvertedIndex
	buildElapsed time.Duration
}

// Flat represents the exact brute-force index. It uses a copy-on-write
// pattern for lock-free concurrent reads: searches load the current
// snapshot and never block builds, builds never block searches.
type Flat struct {
	state   atomic.Pointer[snapshot]
	writeMu sync.Mutex // serializes builds only
	opts    Options

	searches    atomic.Uint64
	searchNanos atomic.Int64
}

// New creates a new instance of the flat index.
func New(optFns ...func(o *Options)) (*Flat, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Dimension < 0 {
		return nil, fmt.Errorf("flat: invalid dimension: %d", opts.Dimension)
	}

	return &Flat{
		opts: opts,
	}, nil
}

// Type identifies the index strategy.
func (f *Flat) Type() index.Type {
	return index.TypeFlat
}

// Build replaces the entire index content with the given records. Records
// must carry unique IDs and vectors of one shared dimension; a mismatch
// fails the build with *index.ErrDimensionMismatch and keeps the previous
// state. Empty input returns index.ErrNoRecords and also keeps the
// previous state, so a built index never silently becomes empty.
func (f *Flat) Build(ctx context.Context, records []model.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(records) == 0 {
		return index.ErrNoRecords
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	start := time.Now()

	dim := f.opts.Dimension
	if dim == 0 {
		dim = len(records[0].Vector)
	}

	if dim == 0 {
		return fmt.Errorf("flat: %w", index.ErrEmptyVector)
	}

	snap := &snapshot{
		dim:      dim,
		data:     make([]float32, 0, len(records)*dim),
		ids:      make([]string, 0, len(records)),
		records:  records,
		byID:     make(map[string]uint32, len(records)),
		inverted: metadata.NewInvertedIndex(),
	}

	for i, rec := range records {
		if len(rec.Vector) != dim {
			return &index.ErrDimensionMismatch{Expected: dim, Actual: len(rec.Vector)}
		}

		pos := uint32(i)
		snap.data = append(snap.data, rec.Vector...)
		snap.ids = append(snap.ids, rec.ID)
		snap.byID[rec.ID] = pos
		snap.inverted.Add(pos, rec.Attributes)
	}

	snap.buildElapsed = time.Since(start)

	// Atomic swap: readers either see the old snapshot or this one.
	f.state.Store(snap)

	return nil
}

// Search returns up to k candidates ranked by descending cosine similarity,
// ties by insertion order. Zero-norm vectors score 0 and are never an error.
// This method is lock-free using the copy-on-write pattern.
func (f *Flat) Search(ctx context.Context, query []float32, k int, opts *index.SearchOptions) ([]index.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", index.ErrInvalidK, k)
	}

	snap := f.state.Load()
	if snap == nil {
		return nil, index.ErrNotBuilt
	}

	if len(query) != snap.dim {
		return nil, &index.ErrDimensionMismatch{Expected: snap.dim, Actual: len(query)}
	}

	start := time.Now()
	defer func() {
		f.searches.Add(1)
		f.searchNanos.Add(time.Since(start).Nanoseconds())
	}()

	var filtered *roaring.Bitmap
	if opts != nil && len(opts.Filter) > 0 {
		filtered = snap.inverted.Compile(opts.Filter)
	}

	top := queue.NewTopK(k)

	if filtered != nil {
		// Bitmap iteration is ascending, so insertion order and with it
		// the stable tie ranking survive filtering.
		it := filtered.Iterator()
		for it.HasNext() {
			if err := snap.score(query, it.Next(), top); err != nil {
				return nil, err
			}
		}
	} else {
		for pos := range uint32(len(snap.ids)) {
			if err := snap.score(query, pos, top); err != nil {
				return nil, err
			}
		}
	}

	return snap.candidates(top), nil
}

// Record resolves an ID against the current snapshot. The returned record
// is a deep copy.
func (f *Flat) Record(id string) (model.VectorRecord, bool) {
	snap := f.state.Load()
	if snap == nil {
		return model.VectorRecord{}, false
	}

	pos, ok := snap.byID[id]
	if !ok {
		return model.VectorRecord{}, false
	}

	return snap.records[pos].Clone(), true
}

// Ready reports whether the index has been built.
func (f *Flat) Ready() bool {
	return f.state.Load() != nil
}

// Count returns the number of indexed records.
func (f *Flat) Count() int {
	snap := f.state.Load()
	if snap == nil {
		return 0
	}

	return len(snap.ids)
}

// Stats returns a snapshot of index state and counters. Search counters
// accumulate over the lifetime of the instance, across rebuilds.
func (f *Flat) Stats() index.Stats {
	st := index.Stats{
		Type:     index.TypeFlat,
		Searches: f.searches.Load(),
	}

	if st.Searches > 0 {
		st.AvgSearchElapsed = time.Duration(f.searchNanos.Load() / int64(st.Searches))
	}

	snap := f.state.Load()
	if snap == nil {
		return st
	}

	st.Built = true
	st.Dimension = snap.dim
	st.Count = len(snap.ids)
	st.MemoryBytes = uint64(len(snap.data))*4 + snap.inverted.SizeInBytes()
	st.BuildElapsed = snap.buildElapsed

	return st
}

func (s *snapshot) score(query []float32, pos uint32, top *queue.TopK) error {
	vec := s.data[int(pos)*s.dim : (int(pos)+1)*s.dim]

	similarity, err := metric.CosineSimilarity(query, vec)
	if err != nil {
		return err
	}

	top.Offer(queue.Item{Pos: pos, Score: similarity})

	return nil
}

func (s *snapshot) candidates(top *queue.TopK) []index.Candidate {
	items := top.Ranked()

	results := make([]index.Candidate, len(items))
	for i, item := range items {
		results[i] = index.Candidate{
			ID:    s.ids[item.Pos],
			Score: item.Score,
		}
	}

	return results
}
