// Package ivf provides the approximate clustered index. Vectors are
// partitioned into k-means clusters at build time; a search ranks the
// cluster centroids against the query and scans only the closest few
// clusters (the "inverted file" strategy), trading recall for speed.
package ivf

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/vecsearch/index"
	"github.com/hupe1980/vecsearch/internal/kmeans"
	"github.com/hupe1980/vecsearch/internal/queue"
	"github.com/hupe1980/vecsearch/metadata"
	"github.com/hupe1980/vecsearch/metric"
	"github.com/hupe1980/vecsearch/model"
)

// Compile-time check to ensure IVF satisfies the index contract.
var _ index.Index = (*IVF)(nil)

// Options contains configuration options for the IVF index.
type Options struct {
	// NumClusters is the number of k-means clusters. It is clamped to the
	// record count at build time.
	NumClusters int

	// MaxIterations bounds the k-means refinement loop. The loop stops
	// earlier once no assignment changes.
	MaxIterations int

	// NProbe is the default number of clusters visited per search. Higher
	// values increase recall and cost; probing every cluster is equivalent
	// to an exact search. Overridable per search.
	NProbe int

	// Seed feeds the k-means initialization. Builds over identical data
	// with the same seed produce identical clusterings.
	Seed int64

	// Dimension pins the vector dimensionality. Zero lets the first built
	// record decide.
	Dimension int
}

// DefaultOptions contains the default configuration options for the IVF index.
var DefaultOptions = Options{
	NumClusters:   100,
	MaxIterations: 100,
	NProbe:        1,
	Seed:          1,
	Dimension:     0,
}

// snapshot holds the immutable state of the index for lock-free reads.
type snapshot struct {
	dim          int
	data         []float32            // flattened vectors, len(ids)*dim
	ids          []string             // position -> record ID
	records      []model.VectorRecord // position-aligned records
	byID         map[string]uint32
	inverted     *metadata.InvertedIndex
	centroids    []float32  // flattened, numClusters*dim
	clusters     [][]uint32 // cluster -> member positions, ascending
	buildElapsed time.Duration
}

// IVF represents the k-means clustered index. Like the flat index it uses
// a copy-on-write snapshot, so searches are lock-free and rebuilds swap
// the whole clustering in one atomic store.
type IVF struct {
	state   atomic.Pointer[snapshot]
	writeMu sync.Mutex // serializes builds only
	opts    Options

	searches    atomic.Uint64
	searchNanos atomic.Int64
}

// New creates a new instance of the IVF index.
func New(optFns ...func(o *Options)) (*IVF, error) {
	opts := DefaultOptions

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.NumClusters < 1 {
		return nil, fmt.Errorf("ivf: invalid NumClusters: %d", opts.NumClusters)
	}

	if opts.MaxIterations < 1 {
		return nil, fmt.Errorf("ivf: invalid MaxIterations: %d", opts.MaxIterations)
	}

	if opts.NProbe < 1 {
		return nil, fmt.Errorf("ivf: invalid NProbe: %d", opts.NProbe)
	}

	if opts.Dimension < 0 {
		return nil, fmt.Errorf("ivf: invalid dimension: %d", opts.Dimension)
	}

	return &IVF{
		opts: opts,
	}, nil
}

// Type identifies the index strategy.
func (v *IVF) Type() index.Type {
	return index.TypeIVF
}

// Build replaces the entire index content: it copies the vectors into a
// private working set, runs k-means over that copy without holding any
// reader-visible lock, and publishes centroids plus cluster member lists
// in one atomic swap. Empty input returns index.ErrNoRecords and keeps
// the previous state; so does any dimension mismatch.
func (v *IVF) Build(ctx context.Context, records []model.VectorRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if len(records) == 0 {
		return index.ErrNoRecords
	}

	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	start := time.Now()

	dim := v.opts.Dimension
	if dim == 0 {
		dim = len(records[0].Vector)
	}

	if dim == 0 {
		return fmt.Errorf("ivf: %w", index.ErrEmptyVector)
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

	rng := rand.New(rand.NewSource(v.opts.Seed))
	centroids, assignments := kmeans.Train(snap.data, dim, v.opts.NumClusters, v.opts.MaxIterations, rng)

	snap.centroids = centroids
	snap.clusters = make([][]uint32, len(centroids)/dim)
	for pos, c := range assignments {
		snap.clusters[c] = append(snap.clusters[c], uint32(pos))
	}

	snap.buildElapsed = time.Since(start)

	// Atomic swap: readers either see the old clustering or this one.
	v.state.Store(snap)

	return nil
}

// Search ranks all centroids by distance to the query and scans the
// closest clusters; how many is opts.NProbe, falling back to the index
// default. Within the visited clusters scoring, filtering and tie
// handling are identical to the flat index, so probing every cluster
// reproduces exact results. A single probe can miss neighbors that fell
// into a non-visited cluster; that is the accuracy/speed trade-off, not
// an error.
func (v *IVF) Search(ctx context.Context, query []float32, k int, opts *index.SearchOptions) ([]index.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", index.ErrInvalidK, k)
	}

	snap := v.state.Load()
	if snap == nil {
		return nil, index.ErrNotBuilt
	}

	if len(query) != snap.dim {
		return nil, &index.ErrDimensionMismatch{Expected: snap.dim, Actual: len(query)}
	}

	start := time.Now()
	defer func() {
		v.searches.Add(1)
		v.searchNanos.Add(time.Since(start).Nanoseconds())
	}()

	nprobe := v.opts.NProbe
	if opts != nil && opts.NProbe > 0 {
		nprobe = opts.NProbe
	}

	var filtered *roaring.Bitmap
	if opts != nil && len(opts.Filter) > 0 {
		filtered = snap.inverted.Compile(opts.Filter)
	}

	top := queue.NewTopK(k)

	for _, ci := range kmeans.NearestCentroids(query, snap.centroids, snap.dim, nprobe) {
		for _, pos := range snap.clusters[ci] {
			if filtered != nil && !filtered.Contains(pos) {
				continue
			}

			if err := snap.score(query, pos, top); err != nil {
				return nil, err
			}
		}
	}

	return snap.candidates(top), nil
}

// Record resolves an ID against the current snapshot. The returned record
// is a deep copy.
func (v *IVF) Record(id string) (model.VectorRecord, bool) {
	snap := v.state.Load()
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
func (v *IVF) Ready() bool {
	return v.state.Load() != nil
}

// Count returns the number of indexed records.
func (v *IVF) Count() int {
	snap := v.state.Load()
	if snap == nil {
		return 0
	}

	return len(snap.ids)
}

// Stats returns a snapshot of index state and counters, including the
// cluster size distribution. Search counters accumulate over the lifetime
// of the instance, across rebuilds.
func (v *IVF) Stats() index.Stats {
	st := index.Stats{
		Type:     index.TypeIVF,
		Searches: v.searches.Load(),
	}

	if st.Searches > 0 {
		st.AvgSearchElapsed = time.Duration(v.searchNanos.Load() / int64(st.Searches))
	}

	snap := v.state.Load()
	if snap == nil {
		return st
	}

	st.Built = true
	st.Dimension = snap.dim
	st.Count = len(snap.ids)
	st.MemoryBytes = uint64(len(snap.data)+len(snap.centroids))*4 + snap.inverted.SizeInBytes()
	st.BuildElapsed = snap.buildElapsed
	st.Clusters = snap.clusterStats()

	return st
}

func (s *snapshot) clusterStats() *index.ClusterStats {
	cs := &index.ClusterStats{
		NumClusters: len(s.clusters),
	}

	if cs.NumClusters == 0 {
		return cs
	}

	cs.MinSize = len(s.clusters[0])

	total := 0
	for _, members := range s.clusters {
		size := len(members)
		total += size

		if size < cs.MinSize {
			cs.MinSize = size
		}
		if size > cs.MaxSize {
			cs.MaxSize = size
		}
	}

	cs.AvgSize = float64(total) / float64(cs.NumClusters)

	return cs
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
