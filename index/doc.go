// Package index provides vector index interfaces and implementations.
//
// Vecsearch supports two index types:
//
//   - Flat: exact nearest neighbor search (brute-force scan)
//   - IVF: approximate search over k-means clusters (inverted file)
//
// # Index Selection
//
// Choose based on dataset size and accuracy requirements:
//
//   - Flat: smaller libraries, or whenever 100% recall is required
//   - IVF: larger libraries where sub-linear search time is worth an
//     approximate answer; recall is tunable via the probe count
//
// An IVF search probing every cluster degrades gracefully to exact
// semantics and ranks identically to Flat over the same data.
//
// # Ranking
//
// Both implementations score candidates by cosine similarity (higher is
// better) and break score ties by insertion order, so result order is
// deterministic across identical builds.
//
// # Subpackages
//
//   - flat: exact search over flattened columnar vectors
//   - ivf: clustered search with configurable clustering and probing
package index
