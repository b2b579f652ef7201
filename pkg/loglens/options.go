package loglens

import (
	"github.com/kondababu77/loglens/internal/engine/learning"
	"github.com/kondababu77/loglens/internal/engine/threshold"
)

type options struct {
	learningRate  float64
	alpha         float64
	warmup        int
	patternCap    int
	maxInputBytes int
}

// Option configures a Lens instance.
type Option func(*options)

// WithLearningRate sets the optimizer's starting learning rate.
// Must be within [0.05, 0.25]. Default: 0.1.
func WithLearningRate(lr float64) Option {
	return func(o *options) {
		o.learningRate = lr
	}
}

// WithAlpha sets the EMA smoothing factor for baseline learning.
// Must be in (0, 1]. Default: 0.3.
func WithAlpha(a float64) Option {
	return func(o *options) {
		o.alpha = a
	}
}

// WithWarmup sets the number of analyses before the learner reports an
// established baseline. Default: 3.
func WithWarmup(n int) Option {
	return func(o *options) {
		o.warmup = n
	}
}

// WithPatternCap sets the maximum number of learned patterns retained.
// Oldest patterns are evicted first. Default: 1000.
func WithPatternCap(n int) Option {
	return func(o *options) {
		o.patternCap = n
	}
}

// WithMaxInputBytes sets the largest batch Analyze accepts. Larger batches
// are rejected before any state is touched. Default: 32MB.
func WithMaxInputBytes(n int) Option {
	return func(o *options) {
		o.maxInputBytes = n
	}
}

func defaultOptions() options {
	return options{
		learningRate: 0.1,
		alpha:        learning.DefaultAlpha,
		warmup:       learning.DefaultWarmup,
		patternCap:   learning.DefaultPatternCap,
	}
}

// thresholdConfig builds the optimizer configuration from options.
func (o options) thresholdConfig() threshold.Config {
	cfg := threshold.DefaultConfig()
	cfg.LearningRate = o.learningRate
	return cfg
}

// learningConfig builds the continual-learning configuration from options.
func (o options) learningConfig() learning.Config {
	return learning.Config{
		Alpha:      o.alpha,
		Warmup:     o.warmup,
		PatternCap: o.patternCap,
	}
}
