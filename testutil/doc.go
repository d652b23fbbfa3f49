// Package testutil provides testing utilities for vecsearch.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors and records, computing
// exact nearest neighbors, and verifying search recall.
//
// # Random Generation
//
//	rng := testutil.NewRNG(seed)
//	vectors := rng.UniformVectors(100, 64)
//	records := rng.Records(100, 64)
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceTopK(query, records, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(want, got)
package testutil
