package ivf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/vecsearch/index"
	"github.com/hupe1980/vecsearch/index/flat"
	"github.com/hupe1980/vecsearch/metadata"
	"github.com/hupe1980/vecsearch/model"
	"github.com/hupe1980/vecsearch/testutil"
)

func TestIVFSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("single cluster behaves exactly", func(t *testing.T) {
		v, err := New(func(o *Options) {
			o.NumClusters = 1
		})
		require.NoError(t, err)

		require.NoError(t, v.Build(ctx, []model.VectorRecord{
			{ID: "right", Vector: []float32{1, 0}},
			{ID: "up", Vector: []float32{0, 1}},
			{ID: "diagonal", Vector: []float32{1, 1}},
		}))

		results, err := v.Search(ctx, []float32{1, 0}, 2, nil)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, "right", results[0].ID)
		assert.InDelta(t, 1.0, results[0].Score, 1e-6)
		assert.Equal(t, "diagonal", results[1].ID)
		assert.InDelta(t, 0.70710678, results[1].Score, 1e-6)
	})

	t.Run("probing every cluster ranks identically to flat", func(t *testing.T) {
		rng := testutil.NewRNG(21)
		records := rng.Records(150, 16)
		query := rng.UniformVectors(1, 16)[0]

		const clusters = 8

		v, err := New(func(o *Options) {
			o.NumClusters = clusters
		})
		require.NoError(t, err)
		require.NoError(t, v.Build(ctx, records))

		f, err := flat.New()
		require.NoError(t, err)
		require.NoError(t, f.Build(ctx, records))

		got, err := v.Search(ctx, query, 25, &index.SearchOptions{NProbe: clusters})
		require.NoError(t, err)

		want, err := f.Search(ctx, query, 25, nil)
		require.NoError(t, err)

		assert.Equal(t, want, got)
	})

	t.Run("separated groups stay in their clusters", func(t *testing.T) {
		v, err := New(func(o *Options) {
			o.NumClusters = 2
		})
		require.NoError(t, err)

		require.NoError(t, v.Build(ctx, []model.VectorRecord{
			{ID: "a1", Vector: []float32{1, 0}},
			{ID: "a2", Vector: []float32{0.99, 0.01}},
			{ID: "b1", Vector: []float32{0, 1}},
			{ID: "b2", Vector: []float32{0.01, 0.99}},
		}))

		results, err := v.Search(ctx, []float32{1, 0.05}, 2, &index.SearchOptions{NProbe: 1})
		require.NoError(t, err)
		require.Len(t, results, 2)

		ids := []string{results[0].ID, results[1].ID}
		assert.ElementsMatch(t, []string{"a1", "a2"}, ids)
	})

	t.Run("identical vectors keep insertion order", func(t *testing.T) {
		records := make([]model.VectorRecord, 5)
		ids := []string{"v0", "v1", "v2", "v3", "v4"}
		for i, id := range ids {
			records[i] = model.VectorRecord{ID: id, Vector: []float32{1, 1}}
		}

		v, err := New(func(o *Options) {
			o.NumClusters = 3
		})
		require.NoError(t, err)
		require.NoError(t, v.Build(ctx, records))

		results, err := v.Search(ctx, []float32{1, 1}, 5, &index.SearchOptions{NProbe: 3})
		require.NoError(t, err)
		require.Len(t, results, 5)

		for i, id := range ids {
			assert.Equal(t, id, results[i].ID)
			assert.InDelta(t, 1.0, results[i].Score, 1e-6)
		}
	})

	t.Run("recall never drops with more probes", func(t *testing.T) {
		rng := testutil.NewRNG(33)
		vectors, centers := rng.ClusteredVectors(200, 8, 5, 0.02)

		records := make([]model.VectorRecord, len(vectors))
		for i, vec := range vectors {
			records[i] = model.NewVectorRecord(vec, nil)
		}

		const clusters = 5

		v, err := New(func(o *Options) {
			o.NumClusters = clusters
		})
		require.NoError(t, err)
		require.NoError(t, v.Build(ctx, records))

		query := centers[0]
		truth := testutil.BruteForceTopK(query, records, 10)

		recallAt := func(nprobe int) float64 {
			results, err := v.Search(ctx, query, 10, &index.SearchOptions{NProbe: nprobe})
			require.NoError(t, err)

			got := make([]string, len(results))
			for i, c := range results {
				got[i] = c.ID
			}
			return testutil.ComputeRecall(truth, got)
		}

		single := recallAt(1)
		half := recallAt(3)
		full := recallAt(clusters)

		assert.Equal(t, 1.0, full)
		assert.GreaterOrEqual(t, half, single)
		assert.GreaterOrEqual(t, full, half)
	})

	t.Run("per search probe override beats index default", func(t *testing.T) {
		rng := testutil.NewRNG(44)
		records := rng.Records(60, 8)
		query := rng.UniformVectors(1, 8)[0]

		const clusters = 6

		v, err := New(func(o *Options) {
			o.NumClusters = clusters
			o.NProbe = 1
		})
		require.NoError(t, err)
		require.NoError(t, v.Build(ctx, records))

		f, err := flat.New()
		require.NoError(t, err)
		require.NoError(t, f.Build(ctx, records))

		got, err := v.Search(ctx, query, 10, &index.SearchOptions{NProbe: clusters})
		require.NoError(t, err)

		want, err := f.Search(ctx, query, 10, nil)
		require.NoError(t, err)

		assert.Equal(t, want, got)
	})
}

func TestIVFDeterministicSeed(t *testing.T) {
	ctx := context.Background()

	rng := testutil.NewRNG(7)
	records := rng.Records(80, 8)
	query := rng.UniformVectors(1, 8)[0]

	build := func(seed int64) *IVF {
		v, err := New(func(o *Options) {
			o.NumClusters = 6
			o.Seed = seed
		})
		require.NoError(t, err)
		require.NoError(t, v.Build(ctx, records))
		return v
	}

	a := build(1)
	b := build(1)

	resA, err := a.Search(ctx, query, 10, nil)
	require.NoError(t, err)
	resB, err := b.Search(ctx, query, 10, nil)
	require.NoError(t, err)

	assert.Equal(t, resA, resB)
	assert.Equal(t, a.Stats().Clusters, b.Stats().Clusters)

	// Rebuilding the same instance over the same data reuses the seed and
	// reproduces the clustering.
	require.NoError(t, a.Build(ctx, records))
	resAgain, err := a.Search(ctx, query, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, resA, resAgain)
}

func TestIVFValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid options", func(t *testing.T) {
		_, err := New(func(o *Options) { o.NumClusters = 0 })
		assert.Error(t, err)

		_, err = New(func(o *Options) { o.MaxIterations = 0 })
		assert.Error(t, err)

		_, err = New(func(o *Options) { o.NProbe = 0 })
		assert.Error(t, err)

		_, err = New(func(o *Options) { o.Dimension = -2 })
		assert.Error(t, err)
	})

	v, err := New()
	require.NoError(t, err)

	t.Run("not built", func(t *testing.T) {
		_, err := v.Search(ctx, []float32{1, 0}, 1, nil)
		assert.ErrorIs(t, err, index.ErrNotBuilt)
	})

	require.NoError(t, v.Build(ctx, []model.VectorRecord{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "b", Vector: []float32{0, 1}},
	}))

	t.Run("invalid k", func(t *testing.T) {
		_, err := v.Search(ctx, []float32{1, 0}, 0, nil)
		assert.ErrorIs(t, err, index.ErrInvalidK)
	})

	t.Run("query dimension mismatch", func(t *testing.T) {
		_, err := v.Search(ctx, []float32{1}, 1, nil)

		var mismatch *index.ErrDimensionMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, 2, mismatch.Expected)
		assert.Equal(t, 1, mismatch.Actual)
	})

	t.Run("canceled context", func(t *testing.T) {
		canceled, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := v.Search(canceled, []float32{1, 0}, 1, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestIVFBuild(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input keeps index unready", func(t *testing.T) {
		v, err := New()
		require.NoError(t, err)

		err = v.Build(ctx, nil)
		assert.ErrorIs(t, err, index.ErrNoRecords)
		assert.False(t, v.Ready())
	})

	t.Run("cluster count clamps to record count", func(t *testing.T) {
		v, err := New() // default 100 clusters
		require.NoError(t, err)

		require.NoError(t, v.Build(ctx, []model.VectorRecord{
			{ID: "a", Vector: []float32{1, 0}},
			{ID: "b", Vector: []float32{0, 1}},
			{ID: "c", Vector: []float32{1, 1}},
		}))

		st := v.Stats()
		require.NotNil(t, st.Clusters)
		assert.Equal(t, 3, st.Clusters.NumClusters)
	})

	t.Run("mixed dimensions fail the build", func(t *testing.T) {
		v, err := New()
		require.NoError(t, err)

		err = v.Build(ctx, []model.VectorRecord{
			{ID: "a", Vector: []float32{1, 0}},
			{ID: "b", Vector: []float32{1}},
		})

		var mismatch *index.ErrDimensionMismatch
		require.ErrorAs(t, err, &mismatch)
		assert.False(t, v.Ready())
	})

	t.Run("failed rebuild keeps previous snapshot", func(t *testing.T) {
		v, err := New()
		require.NoError(t, err)

		require.NoError(t, v.Build(ctx, []model.VectorRecord{
			{ID: "a", Vector: []float32{1, 0}},
			{ID: "b", Vector: []float32{0, 1}},
		}))

		err = v.Build(ctx, nil)
		assert.ErrorIs(t, err, index.ErrNoRecords)

		assert.True(t, v.Ready())
		assert.Equal(t, 2, v.Count())

		results, err := v.Search(ctx, []float32{1, 0}, 1, &index.SearchOptions{NProbe: 2})
		require.NoError(t, err)
		assert.Equal(t, "a", results[0].ID)
	})
}

func TestIVFFilter(t *testing.T) {
	ctx := context.Background()

	rng := testutil.NewRNG(13)
	records := rng.Records(90, 8)
	query := rng.UniformVectors(1, 8)[0]

	const clusters = 5

	v, err := New(func(o *Options) {
		o.NumClusters = clusters
	})
	require.NoError(t, err)
	require.NoError(t, v.Build(ctx, records))

	filter := metadata.Filter{"category": metadata.String("red")}

	t.Run("only matching records are returned", func(t *testing.T) {
		results, err := v.Search(ctx, query, 90, &index.SearchOptions{
			Filter: filter,
			NProbe: clusters,
		})
		require.NoError(t, err)
		require.NotEmpty(t, results)

		for _, c := range results {
			rec, ok := v.Record(c.ID)
			require.True(t, ok)
			assert.True(t, filter.Matches(rec.Attributes))
		}
	})

	t.Run("exhaustive filtered search matches flat", func(t *testing.T) {
		f, err := flat.New()
		require.NoError(t, err)
		require.NoError(t, f.Build(ctx, records))

		got, err := v.Search(ctx, query, 10, &index.SearchOptions{Filter: filter, NProbe: clusters})
		require.NoError(t, err)

		want, err := f.Search(ctx, query, 10, &index.SearchOptions{Filter: filter})
		require.NoError(t, err)

		assert.Equal(t, want, got)
	})

	t.Run("filter naming an unseen key matches nothing", func(t *testing.T) {
		results, err := v.Search(ctx, query, 10, &index.SearchOptions{
			Filter: metadata.Filter{"nope": metadata.Int(1)},
			NProbe: clusters,
		})
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestIVFStats(t *testing.T) {
	ctx := context.Background()

	v, err := New(func(o *Options) {
		o.NumClusters = 4
	})
	require.NoError(t, err)

	st := v.Stats()
	assert.Equal(t, index.TypeIVF, st.Type)
	assert.False(t, st.Built)
	assert.Nil(t, st.Clusters)

	rng := testutil.NewRNG(3)
	require.NoError(t, v.Build(ctx, rng.Records(40, 8)))

	_, err = v.Search(ctx, rng.UniformVectors(1, 8)[0], 5, nil)
	require.NoError(t, err)

	st = v.Stats()
	assert.True(t, st.Built)
	assert.Equal(t, 40, st.Count)
	assert.Equal(t, 8, st.Dimension)
	assert.Equal(t, uint64(1), st.Searches)
	assert.Positive(t, st.MemoryBytes)

	require.NotNil(t, st.Clusters)
	assert.Equal(t, 4, st.Clusters.NumClusters)
	assert.LessOrEqual(t, st.Clusters.MinSize, st.Clusters.MaxSize)
	assert.InDelta(t, 10.0, st.Clusters.AvgSize, 1e-9)
	assert.GreaterOrEqual(t, float64(st.Clusters.MaxSize), st.Clusters.AvgSize)
}

func TestIVFRecord(t *testing.T) {
	ctx := context.Background()

	v, err := New()
	require.NoError(t, err)

	_, ok := v.Record("a")
	assert.False(t, ok)

	require.NoError(t, v.Build(ctx, []model.VectorRecord{
		{ID: "a", Vector: []float32{1, 0}},
	}))

	rec, ok := v.Record("a")
	require.True(t, ok)

	rec.Vector[0] = 42
	again, _ := v.Record("a")
	assert.Equal(t, float32(1), again.Vector[0])
}
