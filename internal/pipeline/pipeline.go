package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kondababu77/loglens/internal/engine"
	"github.com/kondababu77/loglens/internal/model"
	"github.com/kondababu77/loglens/internal/output"
	"github.com/kondababu77/loglens/internal/source"
)

// Analyzer is the subset of the engine the pipeline drives.
type Analyzer interface {
	Analyze(batch model.RawBatch, fb *model.Feedback) (model.Report, error)
}

// Pipeline connects a source, engine, and output into a processing pipeline.
type Pipeline struct {
	source   source.Source
	analyzer Analyzer
	output   output.Output
}

// New creates a Pipeline from the given components.
func New(src source.Source, eng Analyzer, out output.Output) *Pipeline {
	return &Pipeline{
		source:   src,
		analyzer: eng,
		output:   out,
	}
}

// Run drains the source, analyzing each batch and writing the report.
// A batch the engine rejects (e.g. oversized input) is logged and skipped;
// adaptive state is untouched for it, and processing continues with the next
// batch. Blocks until the source is exhausted or the context is cancelled.
func (p *Pipeline) Run(ctx context.Context, cfg source.Config) error {
	ch, err := p.source.Batches(ctx, cfg)
	if err != nil {
		return fmt.Errorf("pipeline source: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case batch, ok := <-ch:
			if !ok {
				return nil
			}
			rep, err := p.analyzer.Analyze(batch, nil)
			if err != nil {
				slog.Warn("skipping batch", "batch", batch.ID, "error", err)
				continue
			}
			if err := p.output.Write(ctx, rep); err != nil {
				return fmt.Errorf("pipeline output: %w", err)
			}
		}
	}
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}

var _ Analyzer = (*engine.Engine)(nil)
