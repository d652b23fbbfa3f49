// Package config provides environment-driven configuration for the engine.
// FromEnv reads an optional .env file first, then the process environment;
// real environment variables always win over .env entries.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/hupe1980/vecsearch/embed"
)

// Config carries the tunables of the engine. Zero values are not
// meaningful; start from Default or FromEnv.
type Config struct {
	// EmbeddingModel is the embedding model identifier.
	EmbeddingModel string

	// EmbeddingDimension is the dimensionality of stored and query vectors.
	EmbeddingDimension int

	// DefaultK is the result count used when a search does not set one.
	DefaultK int

	// MaxK caps the result count a single search may request.
	MaxK int

	// IVFNumClusters is the number of k-means clusters for IVF indexes.
	// Clamped to the record count at build time.
	IVFNumClusters int

	// IVFMaxIterations bounds the k-means refinement loop.
	IVFMaxIterations int

	// IVFNProbe is the number of clusters scanned per IVF search.
	IVFNProbe int

	// MaxConcurrentOperations caps concurrently running index builds.
	MaxConcurrentOperations int

	// StrictDimensions aborts a build on the first mismatched vector
	// instead of skipping it.
	StrictDimensions bool

	// KMeansSeed seeds the k-means RNG for reproducible clustering.
	KMeansSeed int64
}

// Default returns the recommended configuration.
func Default() Config {
	return Config{
		EmbeddingModel:          embed.ModelTextEmbedding3Small,
		EmbeddingDimension:      1024,
		DefaultK:                10,
		MaxK:                    100,
		IVFNumClusters:          100,
		IVFMaxIterations:        100,
		IVFNProbe:               1,
		MaxConcurrentOperations: 10,
		StrictDimensions:        false,
		KMeansSeed:              1,
	}
}

// FromEnv builds a Config from the environment. A .env file in the working
// directory is loaded first when present; variables already set in the
// environment are not overridden. Unset variables keep their defaults.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.EmbeddingModel = v
	}

	var err error

	if cfg.EmbeddingDimension, err = intFromEnv("EMBEDDING_DIMENSION", cfg.EmbeddingDimension); err != nil {
		return Config{}, err
	}

	if cfg.DefaultK, err = intFromEnv("DEFAULT_K", cfg.DefaultK); err != nil {
		return Config{}, err
	}

	if cfg.MaxK, err = intFromEnv("MAX_K", cfg.MaxK); err != nil {
		return Config{}, err
	}

	if cfg.IVFNumClusters, err = intFromEnv("IVF_N_CLUSTERS", cfg.IVFNumClusters); err != nil {
		return Config{}, err
	}

	if cfg.IVFMaxIterations, err = intFromEnv("IVF_MAX_ITERATIONS", cfg.IVFMaxIterations); err != nil {
		return Config{}, err
	}

	if cfg.IVFNProbe, err = intFromEnv("IVF_N_PROBE", cfg.IVFNProbe); err != nil {
		return Config{}, err
	}

	if cfg.MaxConcurrentOperations, err = intFromEnv("MAX_CONCURRENT_OPERATIONS", cfg.MaxConcurrentOperations); err != nil {
		return Config{}, err
	}

	if cfg.StrictDimensions, err = boolFromEnv("STRICT_DIMENSIONS", cfg.StrictDimensions); err != nil {
		return Config{}, err
	}

	if cfg.KMeansSeed, err = int64FromEnv("KMEANS_SEED", cfg.KMeansSeed); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the engine cannot run with.
func (c Config) Validate() error {
	if c.EmbeddingModel == "" {
		return fmt.Errorf("config: EMBEDDING_MODEL must not be empty")
	}

	if c.EmbeddingDimension < 1 {
		return fmt.Errorf("config: invalid EMBEDDING_DIMENSION: %d", c.EmbeddingDimension)
	}

	if c.DefaultK < 1 {
		return fmt.Errorf("config: invalid DEFAULT_K: %d", c.DefaultK)
	}

	if c.MaxK < c.DefaultK {
		return fmt.Errorf("config: MAX_K (%d) must be at least DEFAULT_K (%d)", c.MaxK, c.DefaultK)
	}

	if c.IVFNumClusters < 1 {
		return fmt.Errorf("config: invalid IVF_N_CLUSTERS: %d", c.IVFNumClusters)
	}

	if c.IVFMaxIterations < 1 {
		return fmt.Errorf("config: invalid IVF_MAX_ITERATIONS: %d", c.IVFMaxIterations)
	}

	if c.IVFNProbe < 1 {
		return fmt.Errorf("config: invalid IVF_N_PROBE: %d", c.IVFNProbe)
	}

	if c.MaxConcurrentOperations < 1 {
		return fmt.Errorf("config: invalid MAX_CONCURRENT_OPERATIONS: %d", c.MaxConcurrentOperations)
	}

	return nil
}

func intFromEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}

	return n, nil
}

func int64FromEnv(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s: %w", key, err)
	}

	return n, nil
}

func boolFromEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s: %w", key, err)
	}

	return b, nil
}
