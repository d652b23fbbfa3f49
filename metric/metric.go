// Package metric provides the similarity and distance primitives shared by
// the vector indexes.
package metric

import (
	"errors"
	"math"
)

// Dot returns the dot product of two equal-length float32 slices.
// Accumulation happens in float64 to limit rounding drift on long vectors.
func Dot(v1, v2 []float32) float32 {
	var sum float64
	for i := range v1 {
		sum += float64(v1[i]) * float64(v2[i])
	}

	return float32(sum)
}

// Magnitude calculates the magnitude (length) of a float32 slice.
func Magnitude(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	return float32(math.Sqrt(sum))
}

// CosineSimilarity calculates the cosine similarity between two float32 slices.
// The similarity of a zero-magnitude vector with anything is defined as 0;
// callers never see a division-by-zero.
func CosineSimilarity(v1, v2 []float32) (float32, error) {
	// Check if the vector sizes match
	if len(v1) != len(v2) {
		return 0, errors.New("vector sizes do not match")
	}

	var dot, norm1, norm2 float64
	for i := range v1 {
		a, b := float64(v1[i]), float64(v2[i])
		dot += a * b
		norm1 += a * a
		norm2 += b * b
	}

	// Avoid division by zero
	if norm1 == 0 || norm2 == 0 {
		return 0, nil
	}

	return float32(dot / (math.Sqrt(norm1) * math.Sqrt(norm2))), nil
}

// SquaredL2 calculates the squared L2 distance between two float32 slices.
func SquaredL2(v1, v2 []float32) (float32, error) {
	// Check if the vector sizes match
	if len(v1) != len(v2) {
		return 0, errors.New("vector sizes do not match")
	}

	var sum float64
	for i := range v1 {
		d := float64(v1[i]) - float64(v2[i])
		sum += d * d
	}

	return float32(sum), nil
}
