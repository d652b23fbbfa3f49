package vecsearch

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/vecsearch/config"
	"github.com/hupe1980/vecsearch/container"
	"github.com/hupe1980/vecsearch/embed"
	"github.com/hupe1980/vecsearch/index"
	"github.com/hupe1980/vecsearch/index/flat"
	"github.com/hupe1980/vecsearch/index/ivf"
	"github.com/hupe1980/vecsearch/model"
	"github.com/hupe1980/vecsearch/resource"
	"golang.org/x/sync/errgroup"
)

// RecordSource supplies the vector records of a library. store.Memory
// satisfies the interface; any backend that reports unknown libraries with
// an error matching store.ErrNotFound can stand in.
type RecordSource interface {
	ListVectorRecords(ctx context.Context, libraryID string) ([]model.VectorRecord, error)
}

// Engine orchestrates index builds and searches over libraries of vector
// records. Index instances are held per library, so libraries never block
// each other. A rebuild swaps the affected snapshot atomically; concurrent
// searches keep running on the prior state until the swap.
type Engine struct {
	source     RecordSource
	embedder   embed.Embedder
	controller *resource.Controller
	cfg        config.Config
	metrics    MetricsCollector
	logger     *Logger

	flatIndexes *container.Map[string, *flat.Flat]
	ivfIndexes  *container.Map[string, *ivf.IVF]

	flatOptions []func(*flat.Options)
	ivfOptions  []func(*ivf.Options)
}

// New creates a new Engine reading records from source.
func New(source RecordSource, optFns ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("vecsearch: record source must not be nil")
	}

	opts := applyOptions(optFns)

	if err := opts.cfg.Validate(); err != nil {
		return nil, err
	}

	controller := opts.controller
	if controller == nil {
		controller = resource.NewController(resource.Config{
			MaxConcurrentBuilds: int64(opts.cfg.MaxConcurrentOperations),
		})
	}

	return &Engine{
		source:      source,
		embedder:    opts.embedder,
		controller:  controller,
		cfg:         opts.cfg,
		metrics:     opts.metricsCollector,
		logger:      opts.logger,
		flatIndexes: container.NewMap[string, *flat.Flat](),
		ivfIndexes:  container.NewMap[string, *ivf.IVF](),
		flatOptions: opts.flatOptions,
		ivfOptions:  opts.ivfOptions,
	}, nil
}

// BuildOptions contains options for BuildIndexes.
type BuildOptions struct {
	// Types selects the index variants to build. Defaults to flat and IVF.
	Types []index.Type
}

// IndexBuildStats reports one index variant of a build.
type IndexBuildStats struct {
	Type    index.Type
	Count   int
	Elapsed time.Duration
}

// BuildStats reports a BuildIndexes run.
type BuildStats struct {
	LibraryID string
	Total     int // records fetched from the source
	Indexed   int // records carrying a usable embedding
	Skipped   int // records without an embedding or with a mismatched dimension
	Indexes   []IndexBuildStats
}

// BuildIndexes fetches the library's records and builds the requested index
// variants concurrently. Records without an embedding are skipped; records
// whose vector length disagrees with the rest of the build are skipped with
// a warning, or abort the build when StrictDimensions is set. Searches
// against a previously built snapshot keep working throughout.
func (e *Engine) BuildIndexes(ctx context.Context, libraryID string, optFns ...func(*BuildOptions)) (*BuildStats, error) {
	start := time.Now()

	opts := BuildOptions{
		Types: []index.Type{index.TypeFlat, index.TypeIVF},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	types, err := normalizeTypes(opts.Types)
	if err != nil {
		return nil, err
	}

	if err := e.controller.AcquireBuild(ctx); err != nil {
		return nil, err
	}
	defer e.controller.ReleaseBuild()

	fail := func(err error) (*BuildStats, error) {
		err = translateError(err)
		e.metrics.RecordBuild(time.Since(start), 0, 0, err)
		e.logger.LogBuild(ctx, libraryID, 0, 0, err)
		return nil, err
	}

	records, err := e.source.ListVectorRecords(ctx, libraryID)
	if err != nil {
		return fail(err)
	}

	embedded, skipped, err := e.partitionRecords(ctx, libraryID, records)
	if err != nil {
		return fail(err)
	}

	if len(embedded) == 0 {
		return fail(fmt.Errorf("%w: library %q", ErrNoVectors, libraryID))
	}

	results := make([]IndexBuildStats, len(types))

	g, gctx := errgroup.WithContext(ctx)
	for i, t := range types {
		g.Go(func() error {
			built, err := e.buildOne(gctx, libraryID, t, embedded)
			if err != nil {
				return err
			}
			results[i] = built
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	stats := &BuildStats{
		LibraryID: libraryID,
		Total:     len(records),
		Indexed:   len(embedded),
		Skipped:   skipped,
		Indexes:   results,
	}

	e.metrics.RecordBuild(time.Since(start), stats.Indexed, stats.Skipped, nil)
	e.logger.LogBuild(ctx, libraryID, stats.Indexed, stats.Skipped, nil)

	return stats, nil
}

// RebuildIndexes rebuilds the library's indexes from the current records.
// It shares the build path with BuildIndexes; the atomic snapshot swap makes
// a rebuild indistinguishable from a first build to concurrent searches.
func (e *Engine) RebuildIndexes(ctx context.Context, libraryID string, optFns ...func(*BuildOptions)) (*BuildStats, error) {
	return e.BuildIndexes(ctx, libraryID, optFns...)
}

// ClearIndexes drops the library's index instances. In-flight searches
// holding the old snapshots complete unaffected. Clearing a library without
// indexes is a no-op.
func (e *Engine) ClearIndexes(ctx context.Context, libraryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.flatIndexes.Delete(libraryID)
	e.ivfIndexes.Delete(libraryID)

	return nil
}

// IndexStats returns statistics for the library's built indexes, keyed by
// type. The map is empty when nothing has been built.
func (e *Engine) IndexStats(ctx context.Context, libraryID string) (map[index.Type]index.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stats := make(map[index.Type]index.Stats)

	if idx, ok := e.flatIndexes.Get(libraryID); ok && idx.Ready() {
		stats[index.TypeFlat] = idx.Stats()
	}

	if idx, ok := e.ivfIndexes.Get(libraryID); ok && idx.Ready() {
		stats[index.TypeIVF] = idx.Stats()
	}

	return stats, nil
}

// AvailableIndexes lists the index types currently built and searchable for
// the library.
func (e *Engine) AvailableIndexes(ctx context.Context, libraryID string) []index.Type {
	if ctx.Err() != nil {
		return nil
	}

	types := make([]index.Type, 0, 2)

	if idx, ok := e.flatIndexes.Get(libraryID); ok && idx.Ready() {
		types = append(types, index.TypeFlat)
	}

	if idx, ok := e.ivfIndexes.Get(libraryID); ok && idx.Ready() {
		types = append(types, index.TypeIVF)
	}

	return types
}

// partitionRecords splits records into indexable ones and a skip count. The
// first non-empty vector fixes the build dimension.
func (e *Engine) partitionRecords(ctx context.Context, libraryID string, records []model.VectorRecord) ([]model.VectorRecord, int, error) {
	embedded := make([]model.VectorRecord, 0, len(records))
	skipped := 0
	dim := 0

	for _, rec := range records {
		if len(rec.Vector) == 0 {
			skipped++
			e.logger.LogSkippedRecord(ctx, libraryID, rec.ID, "missing embedding")

			continue
		}

		if dim == 0 {
			dim = len(rec.Vector)
		}

		if len(rec.Vector) != dim {
			if e.cfg.StrictDimensions {
				return nil, 0, &index.ErrDimensionMismatch{Expected: dim, Actual: len(rec.Vector)}
			}

			skipped++
			e.logger.LogSkippedRecord(ctx, libraryID, rec.ID, "dimension mismatch")

			continue
		}

		embedded = append(embedded, rec)
	}

	return embedded, skipped, nil
}

func (e *Engine) buildOne(ctx context.Context, libraryID string, t index.Type, records []model.VectorRecord) (IndexBuildStats, error) {
	idx, err := e.indexFor(libraryID, t)
	if err != nil {
		return IndexBuildStats{}, err
	}

	start := time.Now()

	if err := idx.Build(ctx, records); err != nil {
		return IndexBuildStats{}, err
	}

	return IndexBuildStats{
		Type:    t,
		Count:   idx.Count(),
		Elapsed: time.Since(start),
	}, nil
}

// indexFor returns the library's index of the given type, creating it on
// first use. A fresh instance stays unready until its first successful
// build, so searches racing the first build see ErrIndexNotBuilt rather
// than partial data.
func (e *Engine) indexFor(libraryID string, t index.Type) (index.Index, error) {
	switch t {
	case index.TypeFlat:
		if idx, ok := e.flatIndexes.Get(libraryID); ok {
			return idx, nil
		}

		created, err := flat.New(e.flatOptions...)
		if err != nil {
			return nil, err
		}

		idx, _ := e.flatIndexes.GetOrSet(libraryID, func() *flat.Flat { return created })

		return idx, nil
	case index.TypeIVF:
		if idx, ok := e.ivfIndexes.Get(libraryID); ok {
			return idx, nil
		}

		created, err := e.newIVF()
		if err != nil {
			return nil, err
		}

		idx, _ := e.ivfIndexes.GetOrSet(libraryID, func() *ivf.IVF { return created })

		return idx, nil
	default:
		return nil, fmt.Errorf("%w: %d", index.ErrUnknownType, t)
	}
}

// newIVF seeds IVF options from the configuration; user options run after
// and win.
func (e *Engine) newIVF() (*ivf.IVF, error) {
	base := func(o *ivf.Options) {
		o.NumClusters = e.cfg.IVFNumClusters
		o.MaxIterations = e.cfg.IVFMaxIterations
		o.NProbe = e.cfg.IVFNProbe
		o.Seed = e.cfg.KMeansSeed
	}

	return ivf.New(append([]func(*ivf.Options){base}, e.ivfOptions...)...)
}

// lookupIndex returns the library's index instance of the given type, built
// or not. Absent entries report false.
func (e *Engine) lookupIndex(libraryID string, t index.Type) (index.Index, bool) {
	switch t {
	case index.TypeFlat:
		if idx, ok := e.flatIndexes.Get(libraryID); ok {
			return idx, true
		}
	case index.TypeIVF:
		if idx, ok := e.ivfIndexes.Get(libraryID); ok {
			return idx, true
		}
	}

	return nil, false
}

func normalizeTypes(types []index.Type) ([]index.Type, error) {
	out := make([]index.Type, 0, len(types))

	for _, t := range types {
		switch t {
		case index.TypeFlat, index.TypeIVF:
		default:
			return nil, fmt.Errorf("%w: %d", index.ErrUnknownType, t)
		}

		if !slices.Contains(out, t) {
			out = append(out, t)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("vecsearch: no index types requested")
	}

	return out, nil
}
