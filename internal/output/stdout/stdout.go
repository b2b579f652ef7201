package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kondababu77/loglens/internal/model"
)

// Output writes JSON-encoded analysis reports to stdout.
type Output struct {
	enc *json.Encoder
}

// New creates a new stdout Output with optional pretty-printed JSON.
func New(pretty bool) *Output {
	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Output{enc: enc}
}

func (o *Output) Write(_ context.Context, rep model.Report) error {
	if err := o.enc.Encode(rep); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
