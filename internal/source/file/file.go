package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kondababu77/loglens/internal/model"
	"github.com/kondababu77/loglens/internal/source"
)

func init() {
	source.Register("file", func() source.Source {
		return &Source{}
	})
}

// Source implements the source.Source interface for local log files.
// Each configured path is emitted as one batch.
type Source struct{}

func (s *Source) Batches(ctx context.Context, cfg source.Config) (<-chan model.RawBatch, error) {
	if len(cfg.Paths) == 0 {
		return nil, fmt.Errorf("file source: no paths configured")
	}
	for _, path := range cfg.Paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("file source: %w", err)
		}
	}

	out := make(chan model.RawBatch)
	go func() {
		defer close(out)
		for _, path := range cfg.Paths {
			raw, err := os.ReadFile(path)
			if err != nil {
				slog.Warn("skipping unreadable file", "path", path, "error", err)
				continue
			}
			batch := model.RawBatch{
				ID:       path,
				Source:   "file",
				Received: time.Now().UTC(),
				Raw:      raw,
			}
			select {
			case out <- batch:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
