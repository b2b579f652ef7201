package stdin

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kondababu77/loglens/internal/model"
	"github.com/kondababu77/loglens/internal/source"
)

func init() {
	source.Register("stdin", func() source.Source {
		return &Source{}
	})
}

// Source implements the source.Source interface for standard input. All of
// stdin is read and emitted as a single batch.
type Source struct {
	// Reader overrides os.Stdin when set. Used by tests.
	Reader io.Reader
}

func (s *Source) Batches(ctx context.Context, cfg source.Config) (<-chan model.RawBatch, error) {
	r := s.Reader
	if r == nil {
		r = os.Stdin
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("stdin source: %w", err)
	}

	out := make(chan model.RawBatch, 1)
	defer close(out)
	if len(raw) > 0 {
		out <- model.RawBatch{
			ID:       "stdin",
			Source:   "stdin",
			Received: time.Now().UTC(),
			Raw:      raw,
		}
	}
	return out, nil
}
