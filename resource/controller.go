// Package resource governs the engine's resource consumption: a weighted
// semaphore caps concurrent index builds, and an optional rate limiter
// throttles outbound embedding calls. Searches are never gated.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentBuilds is the maximum number of index builds running at
	// once. If 0, defaults to 1.
	MaxConcurrentBuilds int64

	// EmbedCallsPerSec limits outbound embedding requests. If 0, unlimited.
	EmbedCallsPerSec float64

	// EmbedBurst is the embedding limiter burst size. If 0, defaults to 1
	// when a rate is set.
	EmbedBurst int
}

// Controller manages build concurrency and embedding throughput.
type Controller struct {
	cfg Config

	buildSem      *semaphore.Weighted
	buildsRunning atomic.Int64

	embedLimiter *rate.Limiter // nil if unlimited
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentBuilds <= 0 {
		cfg.MaxConcurrentBuilds = 1
	}

	c := &Controller{
		cfg:      cfg,
		buildSem: semaphore.NewWeighted(cfg.MaxConcurrentBuilds),
	}

	if cfg.EmbedCallsPerSec > 0 {
		burst := cfg.EmbedBurst
		if burst <= 0 {
			burst = 1
		}
		c.embedLimiter = rate.NewLimiter(rate.Limit(cfg.EmbedCallsPerSec), burst)
	}

	return c
}

// AcquireBuild reserves a build slot, blocking until one is available or
// ctx is canceled.
func (c *Controller) AcquireBuild(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if err := c.buildSem.Acquire(ctx, 1); err != nil {
		return err
	}

	c.buildsRunning.Add(1)
	return nil
}

// TryAcquireBuild reserves a build slot without blocking.
func (c *Controller) TryAcquireBuild() bool {
	if c == nil {
		return true
	}

	if !c.buildSem.TryAcquire(1) {
		return false
	}

	c.buildsRunning.Add(1)
	return true
}

// ReleaseBuild returns a build slot.
func (c *Controller) ReleaseBuild() {
	if c == nil {
		return
	}

	c.buildsRunning.Add(-1)
	c.buildSem.Release(1)
}

// BuildsRunning returns the number of builds currently holding a slot.
func (c *Controller) BuildsRunning() int64 {
	if c == nil {
		return 0
	}

	return c.buildsRunning.Load()
}

// WaitEmbed waits until the embedding limiter allows another call.
func (c *Controller) WaitEmbed(ctx context.Context) error {
	if c == nil || c.embedLimiter == nil {
		return nil
	}

	return c.embedLimiter.Wait(ctx)
}
