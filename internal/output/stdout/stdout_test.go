package stdout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/kondababu77/loglens/internal/model"
)

func testReport() model.Report {
	return model.Report{
		ID:          "0b96a1de-1f6a-4f27-9022-1f0a7a3031de",
		Timestamp:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Source:      "file",
		ContentHash: "9a0364b9",
		Metrics:     model.Snapshot{model.ErrorRate: 0.15},
		Severity:    model.SeverityHigh,
	}
}

// captureStdout redirects os.Stdout to capture output.
func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestOutputCompactJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(false)
		out.Write(context.Background(), testReport())
	})

	// Should be single line (NDJSON).
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["severity"] != "high" {
		t.Fatalf("expected severity=high, got %v", m["severity"])
	}
	if m["content_hash"] != "9a0364b9" {
		t.Fatalf("expected content_hash preserved, got %v", m["content_hash"])
	}
}

func TestOutputPrettyJSON(t *testing.T) {
	result := captureStdout(func() {
		out := New(true)
		out.Write(context.Background(), testReport())
	})

	if !strings.Contains(result, "  ") {
		t.Fatal("expected indented output for pretty mode")
	}
	lines := strings.Split(strings.TrimSpace(result), "\n")
	if len(lines) < 3 {
		t.Fatalf("expected multi-line pretty output, got %d lines", len(lines))
	}
}
