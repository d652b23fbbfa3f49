// Package kmeans implements Lloyd's algorithm over flattened float32 vectors.
//
// Used by the clustered index to partition a library's vectors and to rank
// centroids at query time.
package kmeans
