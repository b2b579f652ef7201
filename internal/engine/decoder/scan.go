package decoder

import (
	"regexp"
	"strings"
)

// Flags marks independent corruption signals found in one line. The three
// signals are not mutually exclusive.
type Flags struct {
	Truncated     bool // null bytes present
	Binary        bool // disallowed control bytes present
	EncodingError bool // literal \xNN artifacts from a prior failed decode
}

// Any reports whether the line carries at least one corruption signal.
func (f Flags) Any() bool {
	return f.Truncated || f.Binary || f.EncodingError
}

// hexArtifact matches escaped-hex residue such as `\x1f` left behind when a
// producer already lost a decoding battle upstream.
var hexArtifact = regexp.MustCompile(`\\x[0-9a-fA-F]{2}`)

// disallowedControl reports whether b is a control byte outside the allowed
// whitespace set (tab, LF, CR).
func disallowedControl(b byte) bool {
	return b <= 0x08 || b == 0x0B || b == 0x0C || (b >= 0x0E && b <= 0x1F)
}

// ScanLine detects the corruption signals present in a line.
func ScanLine(line string) Flags {
	var f Flags
	for i := 0; i < len(line); i++ {
		b := line[i]
		if b == 0x00 {
			f.Truncated = true
		}
		if disallowedControl(b) {
			f.Binary = true
		}
		if f.Truncated && f.Binary {
			break
		}
	}
	if hexArtifact.MatchString(line) {
		f.EncodingError = true
	}
	return f
}

// RecoverLine strips null bytes and disallowed control bytes while preserving
// every other byte, including whitespace layout.
func RecoverLine(line string) string {
	if !strings.ContainsFunc(line, func(r rune) bool { return r < 0x20 && disallowedControl(byte(r)) }) {
		return line
	}
	var b strings.Builder
	b.Grow(len(line))
	for i := 0; i < len(line); i++ {
		c := line[i]
		if disallowedControl(c) {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
