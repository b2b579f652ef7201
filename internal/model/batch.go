package model

import "time"

// RawBatch is one uploaded or pasted log as delivered by a source: an
// immutable byte sequence plus provenance. Input to the decoding stage.
type RawBatch struct {
	ID       string
	Source   string // provider name (e.g. "file", "stdin")
	Received time.Time
	Raw      []byte
}

// PatternObservation is one detected pattern signature for a batch, with the
// detection layer's anomaly verdict. Signatures are opaque to the core.
type PatternObservation struct {
	Signature string
	Anomalous bool
}

// Feedback carries caller-supplied detection quality for a batch, used to
// self-tune the optimizer's learning rate.
type Feedback struct {
	Precision float64
	Recall    float64
}

// F1 returns the harmonic mean of precision and recall, or 0 when both are 0.
func (f Feedback) F1() float64 {
	if f.Precision+f.Recall == 0 {
		return 0
	}
	return 2 * f.Precision * f.Recall / (f.Precision + f.Recall)
}
