package output

import (
	"context"

	"github.com/kondababu77/loglens/internal/model"
)

// Output defines the interface for analysis report destinations.
type Output interface {
	Write(ctx context.Context, rep model.Report) error
	Close() error
}
