package extract

import (
	"math"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kondababu77/loglens/internal/model"
)

var sampleLines = []string{
	"2026-03-01 12:00:00 ERROR connection refused from 10.0.0.5",
	"2026-03-01 12:00:01 WARNING auth slow for user root",
	"2026-03-01 12:00:02 INFO accepted password for user deploy",
	"2026-03-01 12:00:03 ERROR timeout waiting for sshd ERR-4031",
}

func TestExtractRates(t *testing.T) {
	x := New()
	snap, _, _ := x.Extract(sampleLines)

	if got := snap[model.ErrorRate]; math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("expected error_rate 0.5, got %v", got)
	}
	if got := snap[model.WarningRate]; math.Abs(got-0.25) > 1e-12 {
		t.Fatalf("expected warning_rate 0.25, got %v", got)
	}
	if got := snap[model.FailedRate]; got != 0 {
		t.Fatalf("expected failed_rate 0, got %v", got)
	}
	for m, v := range snap {
		if v < 0 || v > 1 {
			t.Fatalf("%s rate %v outside [0,1]", m, v)
		}
	}
}

func TestExtractPatterns(t *testing.T) {
	x := New()
	_, patterns, _ := x.Extract(sampleLines)

	byType := map[string]int{}
	anomalous := map[string]bool{}
	for _, p := range patterns {
		typ := p.Signature[:strings.Index(p.Signature, ":")]
		byType[typ]++
		anomalous[p.Signature] = p.Anomalous
	}

	if byType["timestamp"] != 4 {
		t.Fatalf("expected 4 timestamp signatures, got %d", byType["timestamp"])
	}
	if byType["ip_address"] != 1 {
		t.Fatalf("expected 1 ip signature, got %d", byType["ip_address"])
	}
	if !anomalous["error_code:ERR-4031"] {
		t.Fatal("expected error codes flagged anomalous")
	}
	if anomalous["severity:ERROR"] {
		t.Fatal("severity levels are not anomalous")
	}
}

func TestExtractPatternsDeterministic(t *testing.T) {
	x := New()
	_, a, _ := x.Extract(sampleLines)
	_, b, _ := x.Extract(sampleLines)
	if len(a) != len(b) {
		t.Fatalf("pattern counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("pattern order differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestExtractPatternsUnique(t *testing.T) {
	x := New()
	lines := []string{
		"ERROR from 10.0.0.5",
		"ERROR again from 10.0.0.5",
	}
	_, patterns, _ := x.Extract(lines)
	seen := map[string]int{}
	for _, p := range patterns {
		seen[p.Signature]++
	}
	if seen["ip_address:10.0.0.5"] != 1 {
		t.Fatalf("expected signature reported once per batch, got %d", seen["ip_address:10.0.0.5"])
	}
}

func TestExtractEvidence(t *testing.T) {
	x := New()
	lines := []string{
		"error one",
		"error two",
		"error three",
		"error four",
		"warning " + strings.Repeat("長", 150),
	}
	_, _, ev := x.Extract(lines)
	if len(ev.Errors) != 3 {
		t.Fatalf("expected evidence capped at 3, got %d", len(ev.Errors))
	}
	if len(ev.Warnings) != 1 {
		t.Fatalf("expected 1 warning sample, got %d", len(ev.Warnings))
	}
	w := ev.Warnings[0]
	if !utf8.ValidString(w) {
		t.Fatal("truncated evidence is not valid UTF-8")
	}
	if utf8.RuneCountInString(w) != 103 { // 100 runes + "..."
		t.Fatalf("expected 103 runes, got %d", utf8.RuneCountInString(w))
	}
}

func TestExtractEmpty(t *testing.T) {
	x := New()
	snap, patterns, ev := x.Extract(nil)
	if len(snap) != 0 {
		t.Fatalf("expected empty snapshot, got %v", snap)
	}
	if patterns != nil || len(ev.Errors) != 0 {
		t.Fatalf("expected no patterns or evidence, got %v / %v", patterns, ev)
	}
}
