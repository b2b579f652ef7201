// Package decoder turns arbitrary byte streams into best-effort text plus
// corruption telemetry. Bad input degrades the quality metrics instead of
// aborting analysis: every byte stream decodes to something.
package decoder

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// DefaultMaxInputBytes bounds a single batch. Oversized batches are the one
// input the decoder refuses outright.
const DefaultMaxInputBytes = 32 << 20

// candidate pairs an encoding name with a strict decode attempt.
type candidate struct {
	name   string
	decode func([]byte) (string, error)
}

// Decoder decodes raw log uploads against a fixed ordered list of candidate
// encodings, falling back to a permissive decode that never fails.
// Stateless aside from configuration; safe for concurrent use.
type Decoder struct {
	maxInputBytes int
	candidates    []candidate
}

// New creates a Decoder. maxInputBytes <= 0 selects DefaultMaxInputBytes.
func New(maxInputBytes int) *Decoder {
	if maxInputBytes <= 0 {
		maxInputBytes = DefaultMaxInputBytes
	}
	return &Decoder{
		maxInputBytes: maxInputBytes,
		candidates: []candidate{
			{"utf-8", decodeUTF8},
			{"iso-8859-1", decodeCharmap(charmap.ISO8859_1)},
			{"windows-1252", decodeCharmap(charmap.Windows1252)},
			{"utf-16", decodeUTF16},
		},
	}
}

// Decode returns the text of the first candidate encoding that decodes raw
// without error, tagged with the encoding's name. When every strict
// candidate fails, undecodable bytes are dropped and the result is tagged
// "utf-8-permissive". Decode itself never fails.
func (d *Decoder) Decode(raw []byte) (text string, encodingUsed string) {
	for _, c := range d.candidates {
		if s, err := c.decode(raw); err == nil {
			return s, c.name
		}
	}
	return string(bytes.ToValidUTF8(raw, nil)), "utf-8-permissive"
}

func decodeUTF8(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("decoder: invalid utf-8")
	}
	return string(raw), nil
}

func decodeCharmap(cm *charmap.Charmap) func([]byte) (string, error) {
	return func(raw []byte) (string, error) {
		out, err := cm.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("decoder: %s: %w", cm.String(), err)
		}
		return string(out), nil
	}
}

func decodeUTF16(raw []byte) (string, error) {
	dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoder: utf-16: %w", err)
	}
	return string(out), nil
}

// ParseResult is the decoded, line-recovered view of one batch. Derived per
// batch and discarded after the report is assembled.
type ParseResult struct {
	Lines    []string
	Encoding string

	TotalLines     int // all split lines, empty included
	EmptyLines     int
	CorruptedLines int // lines with any corruption flag
	TruncatedLines int // subset of corrupted: null bytes present
	RecoveredLines int // corrupted lines still non-empty after recovery
	RecoveryRate   float64
}

// Parse decodes raw, splits it into lines, and scans and recovers each line.
// Malformed input never fails Parse; the only error is an oversized batch,
// reported before any work so callers can abandon the batch cleanly.
func (d *Decoder) Parse(raw []byte) (ParseResult, error) {
	if len(raw) > d.maxInputBytes {
		return ParseResult{}, fmt.Errorf("decoder: input is %d bytes, limit is %d", len(raw), d.maxInputBytes)
	}

	text, enc := d.Decode(raw)
	res := ParseResult{Encoding: enc}

	for _, line := range strings.Split(text, "\n") {
		res.TotalLines++
		if strings.TrimSpace(line) == "" {
			res.EmptyLines++
			continue
		}

		flags := ScanLine(line)
		if flags.Any() {
			res.CorruptedLines++
			if flags.Truncated {
				res.TruncatedLines++
			}
			line = RecoverLine(line)
			if strings.TrimSpace(line) == "" {
				continue // nothing recoverable left
			}
			res.RecoveredLines++
		}
		res.Lines = append(res.Lines, line)
	}

	if res.CorruptedLines > 0 {
		res.RecoveryRate = float64(res.RecoveredLines) / float64(res.CorruptedLines)
	} else {
		res.RecoveryRate = 1.0
	}
	return res, nil
}
