package kmeans

import (
	"math"
	"math/rand"
	"sort"
)

// Train clusters n = len(vectors)/dim vectors into k groups and returns the
// flattened centroids (k * dim) plus the per-vector cluster assignments.
//
// Centroids are initialized from k distinct data points drawn via rng, so no
// cluster starts empty. Assignment uses squared Euclidean distance with ties
// going to the lowest centroid index. A cluster that loses all members keeps
// its previous centroid. Training stops after maxIter rounds or as soon as a
// full assignment pass changes nothing.
//
// k is clamped to [1, n]; the caller sees the effective count via
// len(centroids)/dim.
func Train(vectors []float32, dim, k, maxIter int, rng *rand.Rand) ([]float32, []int) {
	n := len(vectors) / dim
	if n == 0 {
		return nil, nil
	}

	if k > n {
		k = n
	}

	if k < 1 {
		k = 1
	}

	centroids := make([]float32, k*dim)

	// Initialize centroids from distinct data points
	perm := rng.Perm(n)
	for i := 0; i < k; i++ {
		copy(centroids[i*dim:(i+1)*dim], vectors[perm[i]*dim:(perm[i]+1)*dim])
	}

	assignments := make([]int, n)
	counts := make([]int, k)
	sums := make([]float32, k*dim)

	for iter := 0; iter < maxIter; iter++ {
		changed := false

		// Assignment step
		for i := 0; i < n; i++ {
			vec := vectors[i*dim : (i+1)*dim]
			bestCluster := 0
			minDist := float32(math.MaxFloat32)

			for j := 0; j < k; j++ {
				d := squaredL2(vec, centroids[j*dim:(j+1)*dim])
				if d < minDist {
					minDist = d
					bestCluster = j
				}
			}

			if assignments[i] != bestCluster {
				assignments[i] = bestCluster
				changed = true
			}
		}

		if !changed {
			break
		}

		// Update step
		for i := range sums {
			sums[i] = 0
		}
		for i := range counts {
			counts[i] = 0
		}

		for i := 0; i < n; i++ {
			cluster := assignments[i]
			vec := vectors[i*dim : (i+1)*dim]
			for d := 0; d < dim; d++ {
				sums[cluster*dim+d] += vec[d]
			}
			counts[cluster]++
		}

		for j := 0; j < k; j++ {
			// An empty cluster keeps its previous centroid.
			if counts[j] == 0 {
				continue
			}

			scale := 1.0 / float32(counts[j])
			for d := 0; d < dim; d++ {
				centroids[j*dim+d] = sums[j*dim+d] * scale
			}
		}
	}

	return centroids, assignments
}

// Assign finds the closest centroid for a vector, ties going to the lowest
// centroid index.
func Assign(vec []float32, centroids []float32, dim int) int {
	k := len(centroids) / dim

	bestCluster := 0
	minDist := float32(math.MaxFloat32)

	for j := 0; j < k; j++ {
		d := squaredL2(vec, centroids[j*dim:(j+1)*dim])
		if d < minDist {
			minDist = d
			bestCluster = j
		}
	}

	return bestCluster
}

type centroidDist struct {
	id   int
	dist float32
}

// NearestCentroids returns the indices of the n closest centroids to the
// query in ascending distance order. Equidistant centroids order by index.
// n is clamped to the centroid count.
func NearestCentroids(query []float32, centroids []float32, dim, n int) []int {
	k := len(centroids) / dim
	if n > k {
		n = k
	}

	dists := make([]centroidDist, k)
	for i := 0; i < k; i++ {
		dists[i] = centroidDist{id: i, dist: squaredL2(query, centroids[i*dim:(i+1)*dim])}
	}

	sort.SliceStable(dists, func(i, j int) bool {
		return dists[i].dist < dists[j].dist
	})

	result := make([]int, n)
	for i := 0; i < n; i++ {
		result[i] = dists[i].id
	}

	return result
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}

	return sum
}
