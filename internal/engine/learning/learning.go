// Package learning maintains long-lived baselines, a bounded pattern memory,
// and distribution-drift detection — continual adaptation without retraining.
package learning

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kondababu77/loglens/internal/model"
)

const (
	// DefaultAlpha is the baseline EMA smoothing factor.
	DefaultAlpha = 0.3

	// DefaultWarmup is how many analyses must complete before the engine
	// reports itself active.
	DefaultWarmup = 3

	// DefaultPatternCap bounds the pattern memory; the oldest signatures are
	// evicted first.
	DefaultPatternCap = 1000

	snapshotCap    = 100
	recentCap      = 1000
	driftThreshold = 0.5
	epsilon        = 1e-9
)

// PatternStat tracks one learned pattern signature. AnomalyRate is an exact
// incremental mean of anomalous sightings, not an EMA: frequently-seen
// benign patterns converge to a low, stable rate instead of one skewed by an
// early smoothing factor.
type PatternStat struct {
	Signature   string
	Count       int
	AnomalyRate float64
	LastSeen    time.Time
}

// BaselineSnapshot is an immutable copy of the baselines at one point in
// time, kept in a bounded history for auditability.
type BaselineSnapshot struct {
	At        time.Time
	Baselines model.Snapshot
}

// Config holds the learning engine's tunables.
type Config struct {
	Alpha      float64
	Warmup     int
	PatternCap int
}

// DefaultConfig returns the stock learning configuration.
func DefaultConfig() Config {
	return Config{Alpha: DefaultAlpha, Warmup: DefaultWarmup, PatternCap: DefaultPatternCap}
}

// Validate reports malformed configuration; fatal at startup.
func (c Config) Validate() error {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		return fmt.Errorf("learning: alpha %g outside (0, 1)", c.Alpha)
	}
	if c.Warmup < 1 {
		return fmt.Errorf("learning: warmup %d must be at least 1", c.Warmup)
	}
	if c.PatternCap < 1 {
		return fmt.Errorf("learning: pattern cap %d must be positive", c.PatternCap)
	}
	return nil
}

// Engine is the continual-learning engine. Not safe for concurrent use on
// its own; the analysis engine serializes observations.
type Engine struct {
	cfg Config

	baselines map[model.Metric]float64
	patterns  map[string]*PatternStat
	order     []string // pattern insertion order, for FIFO eviction
	recent    []string // drift window of recent signatures
	snapshots []BaselineSnapshot
	total     int
}

// New creates an Engine, validating the configuration first.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:       cfg,
		baselines: make(map[model.Metric]float64),
		patterns:  make(map[string]*PatternStat),
	}, nil
}

// Observe folds one batch's metrics and detected patterns into the learned
// state. Drift is evaluated against the baselines as they stood before this
// observation, so the very first sighting of a metric reports zero drift —
// its first observation defines the starting point.
func (e *Engine) Observe(snap model.Snapshot, patterns []model.PatternObservation) (model.LearningStatus, model.DriftReport) {
	e.total++

	drift := e.drift(snap)
	if drift.Detected {
		slog.Info("distribution drift detected", "average", drift.Average)
	}

	e.updateBaselines(snap)
	if len(snap) > 0 {
		e.appendSnapshot()
	}
	now := time.Now()
	for _, p := range patterns {
		e.learn(p, now)
	}

	return e.status(), drift
}

func (e *Engine) updateBaselines(snap model.Snapshot) {
	for _, m := range model.Metrics() {
		v, ok := snap[m]
		if !ok {
			continue
		}
		base, seen := e.baselines[m]
		if !seen {
			e.baselines[m] = v
			continue
		}
		next := e.cfg.Alpha*v + (1-e.cfg.Alpha)*base
		if math.IsNaN(next) || math.IsInf(next, 0) {
			slog.Warn("baseline reset to current observation after non-finite value", "metric", m)
			next = v
		}
		e.baselines[m] = next
	}
}

func (e *Engine) drift(snap model.Snapshot) model.DriftReport {
	rep := model.DriftReport{PerMetric: make(map[model.Metric]float64, len(snap))}
	var sum float64
	var n int
	for _, m := range model.Metrics() {
		cur, ok := snap[m]
		if !ok {
			continue
		}
		n++
		var d float64
		if base, seen := e.baselines[m]; seen {
			d = math.Abs(cur-base) / math.Max(base, epsilon)
		}
		rep.PerMetric[m] = d
		sum += d
	}
	if n > 0 {
		rep.Average = sum / float64(n)
	}
	rep.Detected = rep.Average > driftThreshold
	return rep
}

func (e *Engine) learn(p model.PatternObservation, now time.Time) {
	b := 0.0
	if p.Anomalous {
		b = 1.0
	}

	st, ok := e.patterns[p.Signature]
	if !ok {
		if len(e.order) >= e.cfg.PatternCap {
			oldest := e.order[0]
			e.order = e.order[1:]
			delete(e.patterns, oldest)
		}
		e.patterns[p.Signature] = &PatternStat{Signature: p.Signature, Count: 1, AnomalyRate: b, LastSeen: now}
		e.order = append(e.order, p.Signature)
	} else {
		st.AnomalyRate = (st.AnomalyRate*float64(st.Count) + b) / float64(st.Count+1)
		st.Count++
		st.LastSeen = now
	}

	e.recent = append(e.recent, p.Signature)
	if len(e.recent) > recentCap {
		e.recent = e.recent[1:]
	}
}

func (e *Engine) appendSnapshot() {
	snap := make(model.Snapshot, len(e.baselines))
	for m, v := range e.baselines {
		snap[m] = v
	}
	e.snapshots = append(e.snapshots, BaselineSnapshot{At: time.Now(), Baselines: snap})
	if len(e.snapshots) > snapshotCap {
		e.snapshots = e.snapshots[1:]
	}
}

func (e *Engine) status() model.LearningStatus {
	state := "initializing"
	if e.total >= e.cfg.Warmup {
		state = "active"
	}
	return model.LearningStatus{
		TotalAnalyses:       e.total,
		BaselineEstablished: e.total >= 1,
		PatternsLearned:     len(e.patterns),
		State:               state,
	}
}

// Confidence reports how established a benign baseline behavior the pattern
// is: more sightings and a lower historical anomaly rate raise it. Unseen
// signatures score a neutral 0.5.
func (e *Engine) Confidence(signature string) float64 {
	st, ok := e.patterns[signature]
	if !ok {
		return 0.5
	}
	return math.Min(1, float64(st.Count)/10) * (1 - st.AnomalyRate)
}

// Pattern returns a copy of the stats for a signature.
func (e *Engine) Pattern(signature string) (PatternStat, bool) {
	st, ok := e.patterns[signature]
	if !ok {
		return PatternStat{}, false
	}
	return *st, true
}

// Baselines returns a copy of the current per-metric baselines.
func (e *Engine) Baselines() model.Snapshot {
	out := make(model.Snapshot, len(e.baselines))
	for m, v := range e.baselines {
		out[m] = v
	}
	return out
}

// Snapshots returns a copy of the bounded baseline history, oldest first.
func (e *Engine) Snapshots() []BaselineSnapshot {
	out := make([]BaselineSnapshot, len(e.snapshots))
	copy(out, e.snapshots)
	return out
}
