package file

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kondababu77/loglens/internal/model"
)

func testReport(id string) model.Report {
	return model.Report{
		ID:          id,
		Timestamp:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		ContentHash: "9a0364b9",
		Severity:    model.SeverityLow,
	}
}

func TestWriteNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.ndjson")
	out, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, id := range []string{"a", "b", "c"} {
		if err := out.Write(context.Background(), testReport(id)); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rep model.Report
		if err := json.Unmarshal(scanner.Bytes(), &rep); err != nil {
			t.Fatalf("invalid NDJSON line: %v", err)
		}
		ids = append(ids, rep.ID)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[2] != "c" {
		t.Fatalf("unexpected report ids: %v", ids)
	}
}

func TestAppendAcrossReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.ndjson")

	for i := 0; i < 2; i++ {
		out, err := New(path)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := out.Write(context.Background(), testReport("r")); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if err := out.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Fatalf("expected 2 lines after reopen, got %d", lines)
	}
}

func TestRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.ndjson")
	out, err := New(path, WithMaxSize(200), WithBufSize(16))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 10; i++ {
		if err := out.Write(context.Background(), testReport("rotate-me")); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated file %s.1: %v", path, err)
	}
}
