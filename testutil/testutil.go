package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/vecsearch/metadata"
	"github.com/hupe1980/vecsearch/metric"
	"github.com/hupe1980/vecsearch/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// NormFloat64 returns a normally distributed float64.
func (r *RNG) NormFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.NormFloat64()
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float32()
		}
		vectors[i] = vec
	}

	return vectors
}

// ClusteredVectors generates vectors grouped around random centers, plus the
// centers themselves. Useful for exercising clustered indexes on data with
// actual structure.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float64) (vectors, centers [][]float32) {
	centers = r.UniformVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors = make([][]float32, num)

	for i := range num {
		center := centers[i%clusters]
		vec := data[i*dim : (i+1)*dim]

		for j := range dim {
			vec[j] = center[j] + float32(r.rand.NormFloat64()*spread)
		}
		vectors[i] = vec
	}

	return vectors, centers
}

// Records generates n records with uniform vectors, UUID identifiers and a
// small set of filterable attributes ("category" cycling red/green/blue,
// "seq" carrying the insertion position).
func (r *RNG) Records(n, dim int) []model.VectorRecord {
	categories := []string{"red", "green", "blue"}

	vectors := r.UniformVectors(n, dim)

	records := make([]model.VectorRecord, n)
	for i := range n {
		records[i] = model.NewVectorRecord(vectors[i], metadata.Document{
			"category": metadata.String(categories[i%len(categories)]),
			"seq":      metadata.Int(int64(i)),
		})
	}

	return records
}

// BruteForceTopK returns the IDs of the k records most similar to query by
// cosine similarity, descending, score ties in insertion order. It is the
// ground truth any index implementation must reproduce exactly (flat) or
// approximate (clustered).
func BruteForceTopK(query []float32, records []model.VectorRecord, k int) []string {
	type scored struct {
		id    string
		score float32
	}

	all := make([]scored, 0, len(records))
	for _, rec := range records {
		similarity, err := metric.CosineSimilarity(query, rec.Vector)
		if err != nil {
			panic(fmt.Sprintf("testutil: %v", err))
		}
		all = append(all, scored{id: rec.ID, score: similarity})
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].score > all[j].score
	})

	if k > len(all) {
		k = len(all)
	}

	ids := make([]string, k)
	for i := range k {
		ids[i] = all[i].id
	}

	return ids
}

// ComputeRecall computes recall@k by comparing approximate results against
// ground truth IDs.
func ComputeRecall(groundTruth, approximate []string) float64 {
	if len(groundTruth) == 0 || len(approximate) == 0 {
		if len(groundTruth) == 0 && len(approximate) == 0 {
			return 1.0
		}
		return 0.0
	}

	k := min(len(approximate), len(groundTruth))

	truthSet := make(map[string]struct{}, k)
	for i := range k {
		truthSet[groundTruth[i]] = struct{}{}
	}

	hits := 0
	for _, id := range approximate {
		if _, ok := truthSet[id]; ok {
			hits++
		}
	}

	return float64(hits) / float64(k)
}
