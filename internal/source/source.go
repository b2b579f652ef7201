package source

import (
	"context"

	"github.com/kondababu77/loglens/internal/model"
)

// Source defines the interface all log batch sources must implement.
type Source interface {
	// Batches opens the source and sends raw log batches as they become
	// available. The channel is closed when the source is exhausted or the
	// context is cancelled.
	Batches(ctx context.Context, cfg Config) (<-chan model.RawBatch, error)
}

// Config holds provider-specific source settings.
type Config struct {
	Provider string
	Paths    []string
	Extra    map[string]string
}
