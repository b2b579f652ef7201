// Package extract derives metric rates, pattern signatures, and report
// evidence from cleaned log lines. It is the reference implementation of the
// counting step; callers with their own detection logic plug in a different
// engine.Extractor.
package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/kondababu77/loglens/internal/model"
)

const (
	evidenceCap   = 3
	evidenceRunes = 100
)

// keywords maps each tracked metric to the substring counted for it.
var keywords = map[model.Metric]string{
	model.ErrorRate:      "error",
	model.WarningRate:    "warning",
	model.FailedRate:     "failed",
	model.TimeoutRate:    "timeout",
	model.SSHRate:        "ssh",
	model.AuthRate:       "auth",
	model.ConnectionRate: "connection",
	model.DeniedRate:     "denied",
	model.AcceptedRate:   "accepted",
}

// Deliberately loose patterns: they tolerate the formatting noise that
// survives recovery.
var (
	timestampRe = regexp.MustCompile(`\d{4}[-/]\d{2}[-/]\d{2}[\sT]\d{2}:\d{2}:\d{2}`)
	ipRe        = regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)
	errorCodeRe = regexp.MustCompile(`\b[A-Z]{2,5}[-_]?\d{3,5}\b`)
	severityRe  = regexp.MustCompile(`(?i)\b(FATAL|ERROR|WARN|WARNING|INFO|DEBUG|TRACE)\b`)
)

// Extractor counts keyword rates and extracts noise-tolerant pattern
// signatures. Stateless; safe for concurrent use.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract computes per-metric rates, unique pattern observations (sorted for
// determinism), and sample evidence lines from the given lines. An empty
// input yields an empty snapshot: no anomalies, and baselines untouched
// downstream.
func (x *Extractor) Extract(lines []string) (model.Snapshot, []model.PatternObservation, model.Evidence) {
	if len(lines) == 0 {
		return model.Snapshot{}, nil, model.Evidence{}
	}

	counts := make(map[model.Metric]int, len(keywords))
	seen := make(map[string]bool)
	var evidence model.Evidence

	for _, line := range lines {
		lower := strings.ToLower(line)
		for m, kw := range keywords {
			if strings.Contains(lower, kw) {
				counts[m]++
			}
		}

		if strings.Contains(lower, "error") && len(evidence.Errors) < evidenceCap {
			evidence.Errors = append(evidence.Errors, truncate(strings.TrimSpace(line), evidenceRunes))
		}
		if strings.Contains(lower, "warning") && len(evidence.Warnings) < evidenceCap {
			evidence.Warnings = append(evidence.Warnings, truncate(strings.TrimSpace(line), evidenceRunes))
		}

		for _, ts := range timestampRe.FindAllString(line, -1) {
			seen["timestamp:"+ts] = false
		}
		for _, ip := range ipRe.FindAllString(line, -1) {
			seen["ip_address:"+ip] = false
		}
		for _, code := range errorCodeRe.FindAllString(line, -1) {
			seen["error_code:"+code] = true // error codes are the anomaly heuristic
		}
		for _, sev := range severityRe.FindAllString(line, -1) {
			seen["severity:"+strings.ToUpper(sev)] = false
		}
	}

	snap := make(model.Snapshot, len(keywords))
	total := float64(len(lines))
	for m := range keywords {
		snap[m] = float64(counts[m]) / total
	}

	patterns := make([]model.PatternObservation, 0, len(seen))
	for sig, anomalous := range seen {
		patterns = append(patterns, model.PatternObservation{Signature: sig, Anomalous: anomalous})
	}
	sort.Slice(patterns, func(i, j int) bool { return patterns[i].Signature < patterns[j].Signature })

	return snap, patterns, evidence
}

// truncate shortens s to maxRunes runes, rune-safe, with a "..." marker.
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}
