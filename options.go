package vecsearch

import (
	"log/slog"

	"github.com/hupe1980/vecsearch/config"
	"github.com/hupe1980/vecsearch/embed"
	"github.com/hupe1980/vecsearch/index/flat"
	"github.com/hupe1980/vecsearch/index/ivf"
	"github.com/hupe1980/vecsearch/resource"
)

type options struct {
	cfg              config.Config
	embedder         embed.Embedder
	controller       *resource.Controller
	metricsCollector MetricsCollector
	logger           *Logger
	flatOptions      []func(*flat.Options)
	ivfOptions       []func(*ivf.Options)
}

// Option configures Engine constructor behavior.
type Option func(*options)

// WithConfig replaces the default configuration.
//
// Example with environment-driven settings:
//
//	cfg, _ := config.FromEnv()
//	engine, _ := vecsearch.New(source, vecsearch.WithConfig(cfg))
func WithConfig(cfg config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithEmbedder configures the embedding collaborator used to resolve text
// queries. Without one, only vector queries are accepted.
//
// Example:
//
//	embedder, _ := embed.NewOpenAI(func(o *embed.Options) {
//	    o.Dimension = 1024
//	})
//	engine, _ := vecsearch.New(source, vecsearch.WithEmbedder(embedder))
func WithEmbedder(e embed.Embedder) Option {
	return func(o *options) {
		o.embedder = e
	}
}

// WithController configures the resource controller gating index builds and
// embedding calls. If nil, a controller is derived from the configuration.
func WithController(c *resource.Controller) Option {
	return func(o *options) {
		o.controller = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecsearch.BasicMetricsCollector{}
//	engine, _ := vecsearch.New(source, vecsearch.WithMetricsCollector(metrics))
//	// ... use engine ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := vecsearch.NewJSONLogger(slog.LevelInfo)
//	engine, _ := vecsearch.New(source, vecsearch.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithFlatOptions appends option functions applied to every flat index the
// engine creates.
func WithFlatOptions(optFns ...func(*flat.Options)) Option {
	return func(o *options) {
		o.flatOptions = append(o.flatOptions, optFns...)
	}
}

// WithIVFOptions appends option functions applied to every IVF index the
// engine creates. They run after the configuration defaults, so they win.
func WithIVFOptions(optFns ...func(*ivf.Options)) Option {
	return func(o *options) {
		o.ivfOptions = append(o.ivfOptions, optFns...)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		cfg:              config.Default(),
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
