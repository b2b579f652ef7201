package loglens

import (
	"time"

	"github.com/kondababu77/loglens/internal/model"
)

// Report is the analyzer's output for one batch.
// This is the stable public type — internal representations may evolve
// independently without breaking consumers.
type Report struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source,omitempty"`
	ContentHash string    `json:"content_hash"`

	Metrics     map[string]float64    `json:"metrics"`
	Assessments map[string]Assessment `json:"assessments"`

	Severity      string  `json:"severity"`       // low, medium, high, critical
	SeverityScore float64 `json:"severity_score"` // max rate/threshold ratio

	Thresholds map[string]Threshold `json:"thresholds"`
	Learning   LearningStatus       `json:"learning"`
	Drift      Drift                `json:"drift"`
	Noise      Noise                `json:"noise"`
	Evidence   Evidence             `json:"evidence"`
	Insights   []string             `json:"insights,omitempty"`
}

// Assessment is one metric's rate scored against its adapted threshold.
type Assessment struct {
	Rate      float64 `json:"rate"`
	Threshold float64 `json:"threshold"`
	Score     float64 `json:"score"`
	Severity  string  `json:"severity"`
}

// Threshold is a point-in-time view of one adaptive threshold.
type Threshold struct {
	Value float64 `json:"value"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// LearningStatus summarizes the continual-learning state.
type LearningStatus struct {
	TotalAnalyses       int    `json:"total_analyses"`
	BaselineEstablished bool   `json:"baseline_established"`
	PatternsLearned     int    `json:"patterns_learned"`
	State               string `json:"state"` // "initializing" or "active"
}

// Drift describes how far the batch's metrics sit from the learned baseline.
type Drift struct {
	PerMetric map[string]float64 `json:"per_metric"`
	Average   float64            `json:"average"`
	Detected  bool               `json:"detected"`
}

// Noise reports how degraded the batch's input was and how much of it the
// decoder recovered.
type Noise struct {
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

// Feedback grades a previous report's detection quality, steering the
// optimizer's learning rate.
type Feedback struct {
	Precision float64
	Recall    float64
}

// reportFromInternal converts the internal report to the public Report type.
func reportFromInternal(rep model.Report) Report {
	out := Report{
		ID:            rep.ID,
		Timestamp:     rep.Timestamp,
		Source:        rep.Source,
		ContentHash:   rep.ContentHash,
		Metrics:       make(map[string]float64, len(rep.Metrics)),
		Assessments:   make(map[string]Assessment, len(rep.Assessments)),
		Severity:      string(rep.Severity),
		SeverityScore: rep.SeverityScore,
		Thresholds:    make(map[string]Threshold, len(rep.Thresholds)),
		Learning:      LearningStatus(rep.Learning),
		Drift: Drift{
			PerMetric: make(map[string]float64, len(rep.Drift.PerMetric)),
			Average:   rep.Drift.Average,
			Detected:  rep.Drift.Detected,
		},
		Noise:    Noise(rep.Noise),
		Evidence: Evidence(rep.Evidence),
		Insights: rep.Insights,
	}
	for m, v := range rep.Metrics {
		out.Metrics[string(m)] = v
	}
	for m, a := range rep.Assessments {
		out.Assessments[string(m)] = Assessment{
			Rate:      a.Rate,
			Threshold: a.Threshold,
			Score:     a.Score,
			Severity:  string(a.Severity),
		}
	}
	for m, t := range rep.Thresholds {
		out.Thresholds[string(m)] = Threshold(t)
	}
	for m, v := range rep.Drift.PerMetric {
		out.Drift.PerMetric[string(m)] = v
	}
	return out
}
