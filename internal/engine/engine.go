// Package engine orchestrates the adaptive analytics core: noise-robust
// decoding, threshold optimization, severity calibration, and continual
// learning, in that order, per batch.
package engine

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kondababu77/loglens/internal/engine/decoder"
	"github.com/kondababu77/loglens/internal/engine/learning"
	"github.com/kondababu77/loglens/internal/engine/threshold"
	"github.com/kondababu77/loglens/internal/model"
	"github.com/kondababu77/loglens/internal/telemetry"
)

// Extractor derives metric rates, pattern observations, and report evidence
// from cleaned log lines. The counting step lives outside the adaptive core;
// internal/engine/extract is the reference implementation.
type Extractor interface {
	Extract(lines []string) (model.Snapshot, []model.PatternObservation, model.Evidence)
}

// Engine sequences decode → extract → threshold optimization → severity
// calibration → continual learning for each batch and assembles the report.
// It is the only component that calls all three analytics engines, and the
// only place their ordering is enforced: the optimizer runs before the
// learner so severity reflects the current batch's adapted thresholds.
//
// Safe for concurrent use: all shared adaptive state is mutated inside one
// critical section per batch. Concurrent batches may race on update order,
// but none observes a partially-updated threshold or baseline.
type Engine struct {
	decoder   *decoder.Decoder
	extractor Extractor
	metrics   *telemetry.Metrics // optional

	mu        sync.Mutex
	optimizer *threshold.Optimizer
	learner   *learning.Engine
}

// New creates an Engine from its components. tel may be nil.
func New(dec *decoder.Decoder, opt *threshold.Optimizer, lrn *learning.Engine, ext Extractor, tel *telemetry.Metrics) *Engine {
	return &Engine{
		decoder:   dec,
		extractor: ext,
		metrics:   tel,
		optimizer: opt,
		learner:   lrn,
	}
}

// Analyze processes one batch to completion and returns its report.
// fb is optional caller feedback on detection quality. A decode failure
// abandons the batch before any shared state is touched: no partial learning
// from a batch that never decoded.
func (e *Engine) Analyze(batch model.RawBatch, fb *model.Feedback) (model.Report, error) {
	parsed, err := e.decoder.Parse(batch.Raw)
	if err != nil {
		return model.Report{}, fmt.Errorf("engine: batch %s: %w", batch.ID, err)
	}

	snap, patterns, evidence := e.extractor.Extract(parsed.Lines)

	e.mu.Lock()
	thresholds := e.optimizer.Update(snap)
	assessments, score, severity := assess(snap, thresholds)
	if fb != nil {
		e.optimizer.ObservePerformance(fb.F1())
	}
	lr := e.optimizer.LearningRate()
	status, drift := e.learner.Observe(snap, patterns)
	e.mu.Unlock()

	noise := model.NoiseStats{
		Encoding:       parsed.Encoding,
		TotalLines:     parsed.TotalLines,
		EmptyLines:     parsed.EmptyLines,
		CorruptedLines: parsed.CorruptedLines,
		TruncatedLines: parsed.TruncatedLines,
		RecoveredLines: parsed.RecoveredLines,
		RecoveryRate:   parsed.RecoveryRate,
	}

	rep := model.Report{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		Source:        batch.Source,
		ContentHash:   contentHash(batch.Raw),
		Metrics:       snap,
		Assessments:   assessments,
		Severity:      severity,
		SeverityScore: score,
		Thresholds:    thresholdStates(thresholds),
		Learning:      status,
		Drift:         drift,
		Noise:         noise,
		Evidence:      evidence,
	}
	rep.Insights = insights(rep)

	if e.metrics != nil {
		e.metrics.Record(rep, lr)
	}
	slog.Debug("batch analyzed",
		"batch", batch.ID, "severity", severity, "drift", drift.Detected,
		"encoding", parsed.Encoding, "lines", parsed.TotalLines)
	return rep, nil
}

// Confidence reports the learner's confidence that a pattern signature is
// established benign behavior.
func (e *Engine) Confidence(signature string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.learner.Confidence(signature)
}

// assess calibrates every observed metric against its adapted threshold. The
// batch's overall severity is the bucket of the highest per-metric score.
func assess(snap model.Snapshot, thresholds map[model.Metric]threshold.Threshold) (map[model.Metric]model.MetricAssessment, float64, model.Severity) {
	out := make(map[model.Metric]model.MetricAssessment, len(snap))
	var maxScore float64
	severity := model.SeverityLow
	for _, m := range model.Metrics() {
		rate, ok := snap[m]
		if !ok {
			continue
		}
		t, ok := thresholds[m]
		if !ok {
			continue
		}
		score, sev := threshold.Calibrate(rate, t)
		out[m] = model.MetricAssessment{Rate: rate, Threshold: t.Value, Score: score, Severity: sev}
		if score > maxScore {
			maxScore = score
			severity = sev
		}
	}
	return out, maxScore, severity
}

func thresholdStates(thresholds map[model.Metric]threshold.Threshold) map[model.Metric]model.ThresholdState {
	out := make(map[model.Metric]model.ThresholdState, len(thresholds))
	for m, t := range thresholds {
		out[m] = model.ThresholdState{Value: t.Value, Lower: t.Lower, Upper: t.Upper}
	}
	return out
}

// insights renders the short human-readable summary attached to the report.
func insights(rep model.Report) []string {
	var out []string
	for _, m := range model.Metrics() {
		a, ok := rep.Assessments[m]
		if !ok || a.Score <= 1 {
			continue
		}
		out = append(out, fmt.Sprintf("%s %.1f%% exceeds adaptive threshold %.1f%% (%s)",
			m, a.Rate*100, a.Threshold*100, a.Severity))
	}
	if rep.Drift.Detected {
		out = append(out, fmt.Sprintf("distribution drift detected: metrics moved %.0f%% from the learned baseline on average",
			rep.Drift.Average*100))
	}
	if rep.Noise.CorruptedLines > 0 {
		out = append(out, fmt.Sprintf("input degraded: %d of %d lines corrupted, %.0f%% recovered (%s)",
			rep.Noise.CorruptedLines, rep.Noise.TotalLines, rep.Noise.RecoveryRate*100, rep.Noise.Encoding))
	}
	return out
}

// contentHash fingerprints the raw batch, first 8 hex chars. Used for report
// correlation, not integrity.
func contentHash(raw []byte) string {
	sum := md5.Sum(raw)
	return hex.EncodeToString(sum[:])[:8]
}
