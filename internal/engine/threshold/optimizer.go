// Package threshold maintains per-metric adaptive detection thresholds and a
// self-tuning learning rate, removing manual calibration: noisy environments
// raise thresholds to cut false positives, clean ones lower them to regain
// sensitivity.
package threshold

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kondababu77/loglens/internal/model"
)

const (
	// MinLearningRate and MaxLearningRate bound the self-tuned learning rate.
	MinLearningRate = 0.05
	MaxLearningRate = 0.25

	historyCap     = 100
	performanceCap = 50

	// tuneMinWindow is how many performance observations must accumulate
	// before the variance is trusted enough to move the learning rate.
	tuneMinWindow = 10

	epsilon = 1e-9
)

// Threshold is one adaptive detection threshold. Value stays within
// [Lower, Upper] across every update.
type Threshold struct {
	Value float64
	Lower float64
	Upper float64
}

// Rule configures one metric's threshold: its starting value and hard bounds.
type Rule struct {
	Default float64
	Lower   float64
	Upper   float64
}

// Adjustment records one threshold update. Skipped marks an update that was
// abandoned because a non-finite value forced a reset to the default.
type Adjustment struct {
	Metric       model.Metric
	Old          float64
	New          float64
	Rate         float64
	LearningRate float64
	Skipped      bool
	At           time.Time
}

// Config holds the optimizer's starting learning rate and per-metric rules.
type Config struct {
	LearningRate float64
	Rules        map[model.Metric]Rule
}

// DefaultConfig returns the stock configuration: 5% error-rate threshold in
// [1%, 20%], 10% for everything else in [2%, 30%], learning rate 0.1.
func DefaultConfig() Config {
	rules := make(map[model.Metric]Rule, len(model.Metrics()))
	for _, m := range model.Metrics() {
		rules[m] = Rule{Default: 0.10, Lower: 0.02, Upper: 0.30}
	}
	rules[model.ErrorRate] = Rule{Default: 0.05, Lower: 0.01, Upper: 0.20}
	return Config{LearningRate: 0.1, Rules: rules}
}

// Validate reports malformed configuration. Bound errors are fatal at
// startup and never recovered at runtime.
func (c Config) Validate() error {
	if c.LearningRate < MinLearningRate || c.LearningRate > MaxLearningRate {
		return fmt.Errorf("threshold: learning rate %g outside [%g, %g]", c.LearningRate, MinLearningRate, MaxLearningRate)
	}
	if len(c.Rules) == 0 {
		return fmt.Errorf("threshold: no rules configured")
	}
	for m, r := range c.Rules {
		if r.Lower > r.Upper {
			return fmt.Errorf("threshold: %s bounds inverted: lower %g > upper %g", m, r.Lower, r.Upper)
		}
		if r.Default < r.Lower || r.Default > r.Upper {
			return fmt.Errorf("threshold: %s default %g outside [%g, %g]", m, r.Default, r.Lower, r.Upper)
		}
	}
	return nil
}

// Optimizer owns the adaptive thresholds, their adjustment history, and the
// self-tuned learning rate. Not safe for concurrent use on its own; the
// analysis engine serializes all updates.
type Optimizer struct {
	cfg         Config
	lr          float64
	thresholds  map[model.Metric]Threshold
	history     []Adjustment
	performance []float64
}

// New creates an Optimizer, validating the configuration first.
func New(cfg Config) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	th := make(map[model.Metric]Threshold, len(cfg.Rules))
	for m, r := range cfg.Rules {
		th[m] = Threshold{Value: r.Default, Lower: r.Lower, Upper: r.Upper}
	}
	return &Optimizer{cfg: cfg, lr: cfg.LearningRate, thresholds: th}, nil
}

// Update adjusts each configured metric's threshold against its observed
// rate and returns the post-update threshold snapshot. Rates more than twice
// the threshold raise it (fewer false positives); rates under half of it
// lower it (more sensitivity); anything in between leaves it alone.
func (o *Optimizer) Update(snap model.Snapshot) map[model.Metric]Threshold {
	now := time.Now()
	for _, m := range model.Metrics() {
		rate, ok := snap[m]
		if !ok {
			continue
		}
		t, ok := o.thresholds[m]
		if !ok {
			continue
		}

		if !finite(rate) || !finite(t.Value) {
			// Numeric instability is non-fatal: reset to the configured
			// default and keep going.
			def := o.cfg.Rules[m].Default
			o.record(Adjustment{Metric: m, Old: t.Value, New: def, Rate: rate, LearningRate: o.lr, Skipped: true, At: now})
			t.Value = def
			o.thresholds[m] = t
			slog.Warn("threshold reset to default after non-finite value",
				"metric", m, "rate", rate)
			continue
		}

		old := t.Value
		switch {
		case rate > 2*t.Value:
			t.Value = clamp(t.Value+o.lr*(rate-t.Value), t.Lower, t.Upper)
		case rate < 0.5*t.Value:
			t.Value = clamp(t.Value-o.lr*(t.Value-rate), t.Lower, t.Upper)
		default:
			continue // within the tolerated band
		}
		o.thresholds[m] = t
		o.record(Adjustment{Metric: m, Old: old, New: t.Value, Rate: rate, LearningRate: o.lr, At: now})
	}
	return o.Thresholds()
}

// ObservePerformance folds one caller-supplied performance score (e.g. F1)
// into the bounded window and retunes the learning rate from the window's
// variance: stable performance anneals toward fine adjustments, volatile
// performance speeds reaction up.
func (o *Optimizer) ObservePerformance(score float64) {
	if !finite(score) {
		slog.Warn("ignoring non-finite performance score", "score", score)
		return
	}
	o.performance = append(o.performance, score)
	if len(o.performance) > performanceCap {
		o.performance = o.performance[1:]
	}
	if len(o.performance) < tuneMinWindow {
		return
	}
	switch v := variance(o.performance); {
	case v < 0.01:
		o.lr = math.Max(MinLearningRate, o.lr*0.9)
	case v > 0.05:
		o.lr = math.Min(MaxLearningRate, o.lr*1.1)
	}
}

// Calibrate scores a rate against a threshold. The score is
// threshold-relative, so severity stays meaningful as thresholds adapt.
func Calibrate(rate float64, t Threshold) (score float64, severity model.Severity) {
	score = rate / math.Max(t.Value, epsilon)
	switch {
	case score > 2:
		return score, model.SeverityCritical
	case score > 1:
		return score, model.SeverityHigh
	case score > 0.5:
		return score, model.SeverityMedium
	default:
		return score, model.SeverityLow
	}
}

// LearningRate returns the current self-tuned learning rate.
func (o *Optimizer) LearningRate() float64 { return o.lr }

// Thresholds returns a copy of the current thresholds.
func (o *Optimizer) Thresholds() map[model.Metric]Threshold {
	out := make(map[model.Metric]Threshold, len(o.thresholds))
	for m, t := range o.thresholds {
		out[m] = t
	}
	return out
}

// History returns a copy of the bounded adjustment history, oldest first.
func (o *Optimizer) History() []Adjustment {
	out := make([]Adjustment, len(o.history))
	copy(out, o.history)
	return out
}

func (o *Optimizer) record(a Adjustment) {
	o.history = append(o.history, a)
	if len(o.history) > historyCap {
		o.history = o.history[1:]
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var sq float64
	for _, v := range vals {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(vals))
}
