package model

import "time"

// ThresholdState is a point-in-time view of one adaptive threshold.
type ThresholdState struct {
	Value float64 `json:"value"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// MetricAssessment is one metric's rate scored against its adapted threshold.
type MetricAssessment struct {
	Rate      float64  `json:"rate"`
	Threshold float64  `json:"threshold"`
	Score     float64  `json:"score"`
	Severity  Severity `json:"severity"`
}

// DriftReport describes how far the current batch's metrics sit from the
// learned baseline. Derived fresh per batch, never persisted.
type DriftReport struct {
	PerMetric map[Metric]float64 `json:"per_metric"`
	Average   float64            `json:"average"`
	Detected  bool               `json:"detected"`
}

// LearningStatus summarizes the continual-learning engine's state.
type LearningStatus struct {
	TotalAnalyses       int    `json:"total_analyses"`
	BaselineEstablished bool   `json:"baseline_established"`
	PatternsLearned     int    `json:"patterns_learned"`
	State               string `json:"state"` // "initializing" or "active"
}

// NoiseStats reports how degraded the batch's input was and how much of it
// the decoder recovered. Always present so consumers can see when results
// are based on partially-recovered input.
type NoiseStats struct {
	Encoding       string  `json:"encoding"`
	TotalLines     int     `json:"total_lines"`
	EmptyLines     int     `json:"empty_lines"`
	CorruptedLines int     `json:"corrupted_lines"`
	TruncatedLines int     `json:"truncated_lines"`
	RecoveredLines int     `json:"recovered_lines"`
	RecoveryRate   float64 `json:"recovery_rate"`
}

// Evidence holds sample lines backing the reported rates.
type Evidence struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Report is the analyzer's output for one batch, consumed by the
// report-rendering layer.
type Report struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source,omitempty"`
	ContentHash string    `json:"content_hash"`

	Metrics     Snapshot                    `json:"metrics"`
	Assessments map[Metric]MetricAssessment `json:"assessments"`

	Severity      Severity `json:"severity"`
	SeverityScore float64  `json:"severity_score"`

	Thresholds map[Metric]ThresholdState `json:"thresholds"`
	Learning   LearningStatus            `json:"learning"`
	Drift      DriftReport               `json:"drift"`
	Noise      NoiseStats                `json:"noise"`
	Evidence   Evidence                  `json:"evidence"`
	Insights   []string                  `json:"insights,omitempty"`
}
