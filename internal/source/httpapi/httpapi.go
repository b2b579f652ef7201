package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/kondababu77/loglens/internal/model"
	"github.com/kondababu77/loglens/internal/source"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultPollInterval = 10 * time.Second
)

func init() {
	source.Register("http", func() source.Source {
		return &Source{}
	})
}

// batchEntry is the wire shape the endpoint returns, one per batch.
type batchEntry struct {
	ID      string `json:"id"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Source implements the source.Source interface for a REST endpoint that
// serves pending log batches as a JSON array. The endpoint is polled on an
// interval; a cursor query parameter carries the last seen batch id so the
// server can return only newer batches.
//
// Config.Extra keys: "url" (required), "token", "path", "poll_interval"
// (Go duration string).
type Source struct{}

func (s *Source) Batches(ctx context.Context, cfg source.Config) (<-chan model.RawBatch, error) {
	base := cfg.Extra["url"]
	if base == "" {
		return nil, fmt.Errorf("http source: no url configured")
	}
	path := cfg.Extra["path"]
	if path == "" {
		path = "/batches"
	}
	interval := defaultPollInterval
	if v := cfg.Extra["poll_interval"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("http source: poll_interval: %w", err)
		}
		interval = d
	}

	c := newClient(base, cfg.Extra["token"], defaultTimeout)
	out := make(chan model.RawBatch)
	go func() {
		defer close(out)
		var cursor string
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			entries, err := s.fetch(ctx, c, path, cursor)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("http source fetch failed", "error", err)
			}
			for _, e := range entries {
				batch := model.RawBatch{
					ID:       e.ID,
					Source:   e.Source,
					Received: time.Now().UTC(),
					Raw:      []byte(e.Content),
				}
				if batch.Source == "" {
					batch.Source = "http"
				}
				select {
				case out <- batch:
					cursor = e.ID
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return out, nil
}

func (s *Source) fetch(ctx context.Context, c *client, path, cursor string) ([]batchEntry, error) {
	query := url.Values{"limit": []string{strconv.Itoa(100)}}
	if cursor != "" {
		query.Set("after", cursor)
	}
	var entries []batchEntry
	if err := c.getJSON(ctx, path, query, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
