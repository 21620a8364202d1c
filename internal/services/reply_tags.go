package services

import "strings"

// Progress tags recognized in generated text. Presence is checked by
// substring containment, not position; there are no closing tags.
const (
	conceptMarker     = "<CONCEPT="
	explanationMarker = "<EXPLANATION>"
	exampleMarker     = "<EXAMPLE>"
	assignmentMarker  = "<ASSIGNMENT>"
)

// DefaultConcept is the sentinel used when a reply carries no concept tag.
const DefaultConcept = "general"

// Response types derived from a reply's markers.
const (
	ResponseExplanation = "explanation"
	ResponseExample     = "example"
	ResponseAssignment  = "assignment_given"
	ResponseNone        = ""
)

// ExtractConcept scans a reply for the first <CONCEPT=value> tag and
// returns the trimmed, lower-cased value. A missing tag, an unterminated
// tag, or an empty value yields DefaultConcept.
func ExtractConcept(text string) string {
	start := strings.Index(text, conceptMarker)
	if start < 0 {
		return DefaultConcept
	}
	rest := text[start+len(conceptMarker):]
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return DefaultConcept
	}
	concept := strings.ToLower(strings.TrimSpace(rest[:end]))
	if concept == "" {
		return DefaultConcept
	}
	return concept
}

// ClassifyResponse returns the response type for a reply, checking the
// three markers in fixed priority order: explanation, then example, then
// assignment. A reply with none of them classifies as ResponseNone.
func ClassifyResponse(text string) string {
	switch {
	case strings.Contains(text, explanationMarker):
		return ResponseExplanation
	case strings.Contains(text, exampleMarker):
		return ResponseExample
	case strings.Contains(text, assignmentMarker):
		return ResponseAssignment
	default:
		return ResponseNone
	}
}
