package loglens

import (
	"strings"
	"testing"
)

func batchWithErrorRate(errLines, total int) []byte {
	var b strings.Builder
	for i := 0; i < errLines; i++ {
		b.WriteString("error: upstream refused connection\n")
	}
	for i := errLines; i < total; i++ {
		b.WriteString("GET /api/items 200\n")
	}
	return []byte(b.String())
}

func TestAnalyzeCleanBatch(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rep, err := l.Analyze(batchWithErrorRate(0, 10))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.ID == "" || rep.ContentHash == "" {
		t.Error("report should carry id and content hash")
	}
	if rep.Severity != "low" {
		t.Errorf("severity = %q, want low for clean batch", rep.Severity)
	}
	if rep.Noise.Encoding != "utf-8" {
		t.Errorf("encoding = %q, want utf-8", rep.Noise.Encoding)
	}
	if rep.Learning.TotalAnalyses != 1 {
		t.Errorf("total analyses = %d, want 1", rep.Learning.TotalAnalyses)
	}
}

func TestAnalyzeElevatedErrors(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rep, err := l.Analyze(batchWithErrorRate(5, 10))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if rep.Metrics["error_rate"] != 0.5 {
		t.Errorf("error_rate = %v, want 0.5", rep.Metrics["error_rate"])
	}
	a, ok := rep.Assessments["error_rate"]
	if !ok {
		t.Fatal("expected an error_rate assessment")
	}
	if a.Severity != "critical" {
		t.Errorf("assessment severity = %q, want critical", a.Severity)
	}
	if rep.Severity != "critical" {
		t.Errorf("overall severity = %q, want critical", rep.Severity)
	}
}

func TestAnalyzeState_AccumulatesAcrossBatches(t *testing.T) {
	l, err := New(WithWarmup(2))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := l.Analyze(batchWithErrorRate(1, 10))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !first.Learning.BaselineEstablished {
		t.Error("baseline should be established after first batch")
	}
	if first.Learning.State != "initializing" {
		t.Errorf("state = %q, want initializing before warmup", first.Learning.State)
	}

	second, err := l.Analyze(batchWithErrorRate(1, 10))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if second.Learning.State != "active" {
		t.Errorf("state = %q, want active after warmup", second.Learning.State)
	}
	if second.Learning.TotalAnalyses != 2 {
		t.Errorf("total analyses = %d, want 2", second.Learning.TotalAnalyses)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	reports, err := l.AnalyzeBatch([][]byte{
		batchWithErrorRate(0, 10),
		batchWithErrorRate(1, 10),
		batchWithErrorRate(2, 10),
	})
	if err != nil {
		t.Fatalf("AnalyzeBatch: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(reports))
	}
	if got := reports[2].Learning.TotalAnalyses; got != 3 {
		t.Errorf("state should carry across batches: total analyses = %d, want 3", got)
	}
}

func TestAnalyzeWithFeedback(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Thresholds still adapt when feedback is supplied.
	rep, err := l.AnalyzeWithFeedback(batchWithErrorRate(2, 10), Feedback{Precision: 0.9, Recall: 0.9})
	if err != nil {
		t.Fatalf("AnalyzeWithFeedback: %v", err)
	}
	if len(rep.Thresholds) == 0 {
		t.Error("expected threshold states in report")
	}
}

func TestAnalyzeSource(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	rep, err := l.AnalyzeSource([]byte("ok\n"), "edge-router")
	if err != nil {
		t.Fatalf("AnalyzeSource: %v", err)
	}
	if rep.Source != "edge-router" {
		t.Errorf("source = %q, want edge-router", rep.Source)
	}
}

func TestAnalyzeOversized(t *testing.T) {
	l, err := New(WithMaxInputBytes(16))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := l.Analyze(batchWithErrorRate(0, 10)); err == nil {
		t.Fatal("expected error for oversized batch")
	}
}

func TestConfidenceUnseen(t *testing.T) {
	l, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := l.Confidence("never-seen"); got != 0.5 {
		t.Errorf("unseen confidence = %v, want 0.5", got)
	}
}

func TestNewRejectsBadOptions(t *testing.T) {
	if _, err := New(WithAlpha(2)); err == nil {
		t.Fatal("expected error for alpha out of range")
	}
	if _, err := New(WithLearningRate(0.5)); err == nil {
		t.Fatal("expected error for learning rate out of range")
	}
}
