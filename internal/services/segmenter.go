package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// BreakMarker is the explicit segment boundary the generation source is
// prompted to emit. It is recognized anywhere in generated text and
// stripped from output.
const BreakMarker = "<BREAK>"

// Segmenter re-assembles an incrementally arriving fragment stream into
// complete, bounded-length outbound message units. Fragments may arrive at
// arbitrary granularity, including mid-marker; units are emitted in strict
// arrival order as soon as they are known to be complete.
//
// Not safe for concurrent use: one Segmenter per reply stream.
type Segmenter struct {
	maxLen int
	buf    string
}

// NewSegmenter creates a segmenter with the given unit length ceiling.
func NewSegmenter(maxLen int) *Segmenter {
	return &Segmenter{maxLen: maxLen}
}

// Push appends a fragment to the accumulation buffer and returns any units
// completed by it. An empty fragment is a no-op.
func (s *Segmenter) Push(fragment string) []string {
	if fragment == "" {
		return nil
	}
	s.buf += fragment
	return s.extract()
}

// Flush emits the remaining buffer content as a final unit (if non-empty
// after trimming) and resets the segmenter.
func (s *Segmenter) Flush() []string {
	units := s.extract()
	rest := strings.TrimSpace(s.buf)
	s.buf = ""
	if rest != "" {
		units = append(units, rest)
	}
	return units
}

// extract pulls complete units out of the buffer: marker splits first,
// then the length-overflow fallback guarding against a source that never
// emits markers. The retained remainder is always shorter than maxLen.
func (s *Segmenter) extract() []string {
	var units []string

	for {
		idx := strings.Index(s.buf, BreakMarker)
		if idx < 0 {
			break
		}
		part := strings.TrimSpace(s.buf[:idx])
		s.buf = strings.TrimLeftFunc(s.buf[idx+len(BreakMarker):], unicode.IsSpace)
		if part != "" {
			units = append(units, part)
		}
	}

	for len(s.buf) >= s.maxLen {
		piece, rest := cutAt(s.buf, s.maxLen)
		piece = strings.TrimSpace(piece)
		s.buf = strings.TrimLeftFunc(rest, unicode.IsSpace)
		if piece != "" {
			units = append(units, piece)
		}
	}

	return units
}

// SplitMessage splits a complete reply into units of at most maxLen,
// respecting break markers first, then word boundaries. Used by callers
// that hold a full reply instead of a stream.
func SplitMessage(text string, maxLen int) []string {
	var units []string
	for _, part := range strings.Split(text, BreakMarker) {
		part = strings.TrimSpace(part)
		for len(part) >= maxLen {
			piece, rest := cutAt(part, maxLen)
			piece = strings.TrimSpace(piece)
			part = strings.TrimLeftFunc(rest, unicode.IsSpace)
			if piece != "" {
				units = append(units, piece)
			}
		}
		if part != "" {
			units = append(units, part)
		}
	}
	return units
}

// cutAt splits text so the left piece is at most maxLen bytes, preferring
// the last whitespace boundary at or before maxLen and falling back to a
// hard cut (kept on a rune boundary) when the span has no whitespace.
func cutAt(text string, maxLen int) (string, string) {
	cut := strings.LastIndexFunc(text[:maxLen], unicode.IsSpace)
	if cut <= 0 {
		cut = maxLen
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
	}
	return text[:cut], text[cut:]
}
