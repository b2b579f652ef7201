// Package telemetry exposes Prometheus instrumentation for the analysis
// pipeline.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kondababu77/loglens/internal/model"
)

// Metrics holds the pipeline's Prometheus collectors.
type Metrics struct {
	AnalysesTotal       prometheus.Counter
	LinesTotal          prometheus.Counter
	CorruptedLinesTotal prometheus.Counter
	RecoveredLinesTotal prometheus.Counter
	DriftDetectedTotal  prometheus.Counter
	ReportsBySeverity   *prometheus.CounterVec
	LearningRate        prometheus.Gauge
	PatternsLearned     prometheus.Gauge
}

// New creates the collectors and registers them with reg (nil skips
// registration, handy in tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AnalysesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglens", Name: "analyses_total",
			Help: "Batches analyzed.",
		}),
		LinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglens", Name: "lines_total",
			Help: "Log lines decoded.",
		}),
		CorruptedLinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglens", Name: "corrupted_lines_total",
			Help: "Lines carrying at least one corruption signal.",
		}),
		RecoveredLinesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglens", Name: "recovered_lines_total",
			Help: "Corrupted lines repaired by the decoder.",
		}),
		DriftDetectedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "loglens", Name: "drift_detected_total",
			Help: "Batches whose metrics drifted from the learned baseline.",
		}),
		ReportsBySeverity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "loglens", Name: "reports_total",
			Help: "Reports produced, by adaptive severity.",
		}, []string{"severity"}),
		LearningRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loglens", Name: "learning_rate",
			Help: "Current self-tuned optimizer learning rate.",
		}),
		PatternsLearned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "loglens", Name: "patterns_learned",
			Help: "Signatures held in pattern memory.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.AnalysesTotal, m.LinesTotal, m.CorruptedLinesTotal,
			m.RecoveredLinesTotal, m.DriftDetectedTotal,
			m.ReportsBySeverity, m.LearningRate, m.PatternsLearned,
		)
	}
	return m
}

// Record folds one completed analysis into the collectors.
func (m *Metrics) Record(rep model.Report, learningRate float64) {
	m.AnalysesTotal.Inc()
	m.LinesTotal.Add(float64(rep.Noise.TotalLines))
	m.CorruptedLinesTotal.Add(float64(rep.Noise.CorruptedLines))
	m.RecoveredLinesTotal.Add(float64(rep.Noise.RecoveredLines))
	if rep.Drift.Detected {
		m.DriftDetectedTotal.Inc()
	}
	m.ReportsBySeverity.WithLabelValues(string(rep.Severity)).Inc()
	m.LearningRate.Set(learningRate)
	m.PatternsLearned.Set(float64(rep.Learning.PatternsLearned))
}
