package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kondababu77/loglens/internal/source"
)

func serveEntries(t *testing.T, entries ...[]batchEntry) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var cursors []string
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		cursors = append(cursors, r.URL.Query().Get("after"))
		batch := []batchEntry{}
		if call < len(entries) {
			batch = entries[call]
		}
		call++
		mu.Unlock()
		json.NewEncoder(w).Encode(batch)
	}))
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), cursors...)
	}
}

func TestBatchesPollsEndpoint(t *testing.T) {
	srv, _ := serveEntries(t, []batchEntry{
		{ID: "b1", Content: "error: one\n"},
		{ID: "b2", Source: "edge", Content: "ok\n"},
	})
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Source{}
	ch, err := s.Batches(ctx, source.Config{Extra: map[string]string{
		"url":           srv.URL,
		"poll_interval": "10ms",
	}})
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}

	first := <-ch
	if first.ID != "b1" || string(first.Raw) != "error: one\n" {
		t.Errorf("unexpected first batch: %+v", first)
	}
	if first.Source != "http" {
		t.Errorf("empty source should default to http, got %q", first.Source)
	}
	second := <-ch
	if second.ID != "b2" || second.Source != "edge" {
		t.Errorf("unexpected second batch: %+v", second)
	}
}

func TestBatchesCursorAdvances(t *testing.T) {
	srv, cursors := serveEntries(t,
		[]batchEntry{{ID: "b1", Content: "x\n"}},
		nil, nil,
	)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Source{}
	ch, err := s.Batches(ctx, source.Config{Extra: map[string]string{
		"url":           srv.URL,
		"poll_interval": "10ms",
	}})
	if err != nil {
		t.Fatalf("Batches: %v", err)
	}
	<-ch

	deadline := time.Now().Add(2 * time.Second)
	for {
		got := cursors()
		if len(got) >= 2 {
			if got[0] != "" {
				t.Errorf("first poll should carry no cursor, got %q", got[0])
			}
			if got[1] != "b1" {
				t.Errorf("second poll cursor = %q, want b1", got[1])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("second poll never happened")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBatchesAuthHeader(t *testing.T) {
	got := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case got <- r.Header.Get("Authorization"):
		default:
		}
		json.NewEncoder(w).Encode([]batchEntry{})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := &Source{}
	if _, err := s.Batches(ctx, source.Config{Extra: map[string]string{
		"url":           srv.URL,
		"token":         "secret",
		"poll_interval": "10ms",
	}}); err != nil {
		t.Fatalf("Batches: %v", err)
	}

	select {
	case h := <-got:
		if h != "Bearer secret" {
			t.Errorf("auth header = %q, want Bearer secret", h)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("endpoint never called")
	}
}

func TestBatchesConfigErrors(t *testing.T) {
	s := &Source{}
	if _, err := s.Batches(context.Background(), source.Config{}); err == nil {
		t.Fatal("expected error without url")
	}
	cfg := source.Config{Extra: map[string]string{"url": "http://localhost", "poll_interval": "nonsense"}}
	if _, err := s.Batches(context.Background(), cfg); err == nil {
		t.Fatal("expected error for bad poll_interval")
	}
}

func TestBatchesRegistered(t *testing.T) {
	if _, err := source.Get("http"); err != nil {
		t.Fatalf("http source not registered: %v", err)
	}
}
