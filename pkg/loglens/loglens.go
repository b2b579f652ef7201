package loglens

import (
	"fmt"
	"time"

	"github.com/kondababu77/loglens/internal/engine"
	"github.com/kondababu77/loglens/internal/engine/decoder"
	"github.com/kondababu77/loglens/internal/engine/extract"
	"github.com/kondababu77/loglens/internal/engine/learning"
	"github.com/kondababu77/loglens/internal/engine/threshold"
	"github.com/kondababu77/loglens/internal/model"
)

// Lens is an adaptive log analyzer. Safe for concurrent use.
type Lens struct {
	engine *engine.Engine
}

// New creates a Lens instance with fresh adaptive state.
func New(opts ...Option) (*Lens, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	opt, err := threshold.New(o.thresholdConfig())
	if err != nil {
		return nil, fmt.Errorf("loglens: %w", err)
	}
	lrn, err := learning.New(o.learningConfig())
	if err != nil {
		return nil, fmt.Errorf("loglens: %w", err)
	}
	dec := decoder.New(o.maxInputBytes)

	return &Lens{engine: engine.New(dec, opt, lrn, extract.New(), nil)}, nil
}

// Analyze processes one batch of raw log bytes and returns its report.
// Every call updates the analyzer's adaptive state.
func (l *Lens) Analyze(raw []byte) (Report, error) {
	return l.analyze(raw, "", nil)
}

// AnalyzeBatch analyzes several raw batches in order and returns one report
// per batch. Adaptive state carries across them, so later batches are judged
// against what the earlier ones taught. Stops at the first rejected batch.
func (l *Lens) AnalyzeBatch(raws [][]byte) ([]Report, error) {
	reports := make([]Report, 0, len(raws))
	for i, raw := range raws {
		rep, err := l.analyze(raw, "", nil)
		if err != nil {
			return reports, fmt.Errorf("batch %d: %w", i, err)
		}
		reports = append(reports, rep)
	}
	return reports, nil
}

// AnalyzeWithFeedback is Analyze plus caller feedback on the previous
// report's detection quality. Good feedback (high F1) anneals threshold
// adaptation; poor feedback accelerates it.
func (l *Lens) AnalyzeWithFeedback(raw []byte, fb Feedback) (Report, error) {
	mfb := model.Feedback{Precision: fb.Precision, Recall: fb.Recall}
	return l.analyze(raw, "", &mfb)
}

// AnalyzeSource is Analyze with a source label carried into the report.
func (l *Lens) AnalyzeSource(raw []byte, sourceName string) (Report, error) {
	return l.analyze(raw, sourceName, nil)
}

// Confidence reports how well-established a pattern signature is, in [0,1].
// Unseen signatures score 0.5.
func (l *Lens) Confidence(signature string) float64 {
	return l.engine.Confidence(signature)
}

func (l *Lens) analyze(raw []byte, sourceName string, fb *model.Feedback) (Report, error) {
	batch := model.RawBatch{
		Source:   sourceName,
		Received: time.Now(),
		Raw:      raw,
	}
	rep, err := l.engine.Analyze(batch, fb)
	if err != nil {
		return Report{}, err
	}
	return reportFromInternal(rep), nil
}
