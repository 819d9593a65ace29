// Package scoring grades user transcriptions of QSO exchanges against
// ground-truth elements, with fuzzy tolerance and partial credit.
package scoring

import (
	"strings"
)

// ElementType classifies a graded exchange element. Callsigns and RST
// reports have their own scoring rules; everything else is generic.
type ElementType string

const (
	ElementCallsign ElementType = "callsign"
	ElementName     ElementType = "name"
	ElementQTH      ElementType = "qth"
	ElementRST      ElementType = "rst"
	ElementRig      ElementType = "rig"
	ElementAntenna  ElementType = "antenna"
	ElementPower    ElementType = "power"
	ElementGeneric  ElementType = "generic"
)

// Scoring constants. The RST partial value and the callsign threshold are
// fixed by the exercise format, independent of session configuration.
const (
	DefaultFuzzyThreshold = 0.8
	MinFuzzyThreshold     = 0.5
	MaxFuzzyThreshold     = 1.0

	// Callsigns are identifiers; they must be nearly exact to count.
	callsignMinThreshold = 0.9

	// Credit for an RST report with exactly 2 of 3 digits correct.
	rstPartialScore = 0.67
)

// Feedback notes attached to element scores.
const (
	NoteCorrect   = "correct"
	NotePartial   = "partial"
	NoteIncorrect = "incorrect"
	NoteSkipped   = "skipped"
	NoteInvalid   = "invalid ground truth"
)

// Options holds the per-session scoring configuration.
type Options struct {
	FuzzyThreshold float64 // minimum similarity for partial credit
	PartialCredit  bool    // award fractional scores for close answers
	CaseSensitive  bool    // compare without case folding
}

// DefaultOptions returns the standard scoring configuration.
func DefaultOptions() Options {
	return Options{
		FuzzyThreshold: DefaultFuzzyThreshold,
		PartialCredit:  true,
	}
}

// InputError reports malformed ground truth supplied by the exchange
// producer. It is a producer defect, never a user error.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "scoring input error: " + e.Reason
}

// ElementScore is the grade for a single exchange element.
type ElementScore struct {
	Answer  string  `json:"answer"`
	Correct string  `json:"correct"`
	Score   float64 `json:"score"`
	Matched bool    `json:"matched"`
	Note    string  `json:"note"`
}

// ScoreResult is the grade for one complete exchange.
type ScoreResult struct {
	Elements   map[string]ElementScore `json:"elements"`
	Percentage float64                 `json:"percentage"`
	Skipped    bool                    `json:"skipped,omitempty"`
	Invalid    bool                    `json:"invalid,omitempty"`
	Note       string                  `json:"note,omitempty"`
}

// TypeOf derives the element type from a ground-truth key such as
// "callsign1" or "rst2". Unknown names grade as generic elements.
func TypeOf(name string) ElementType {
	base := strings.ToLower(strings.TrimSpace(name))
	base = strings.TrimRight(base, "0123456789")
	switch base {
	case "callsign", "call":
		return ElementCallsign
	case "name":
		return ElementName
	case "qth":
		return ElementQTH
	case "rst":
		return ElementRST
	case "rig":
		return ElementRig
	case "antenna", "ant":
		return ElementAntenna
	case "power", "pwr":
		return ElementPower
	default:
		return ElementGeneric
	}
}

// normalize prepares a value for comparison: surrounding whitespace is
// trimmed, runs of inner whitespace collapse to one space, and case is
// folded unless the session is case-sensitive.
func normalize(s string, caseSensitive bool) string {
	s = strings.Join(strings.Fields(s), " ")
	if !caseSensitive {
		s = strings.ToUpper(s)
	}
	return s
}
