package session

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dynform/pkg/rules"
)

type config struct {
	logger    *zap.Logger
	now       func() time.Time
	evaluator *rules.Evaluator
	onValues  ValuesFunc
	debounce  time.Duration
	cacheSize int
}

func defaultConfig() config {
	return config{
		logger:   zap.NewNop(),
		now:      time.Now,
		debounce: defaultDebounce,
	}
}

// Option configures a session.
type Option func(*config)

// WithLogger routes schema-compilation diagnostics to the supplied logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNow overrides the clock used by date and age rules.
func WithNow(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEvaluator supplies the rule evaluator, typically to expose
// registered custom validators. It overrides WithNow.
func WithEvaluator(evaluator *rules.Evaluator) Option {
	return func(c *config) {
		c.evaluator = evaluator
	}
}

// WithOnValuesChange registers the external callback that receives
// published values.
func WithOnValuesChange(fn ValuesFunc) Option {
	return func(c *config) {
		c.onValues = fn
	}
}

// WithDebounce sets the trailing-edge delay for validation on change.
func WithDebounce(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithVisibilityCacheSize bounds the visibility evaluator's memoization
// cache.
func WithVisibilityCacheSize(size int) Option {
	return func(c *config) {
		if size > 0 {
			c.cacheSize = size
		}
	}
}
