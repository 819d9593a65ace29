package scoring

import (
	"math"
)

// ScoreElement grades a single transcribed element against its correct
// value. The returned score is in [0, 1]; matched is true only for an
// exact match after normalization.
//
// RST reports are graded digit-by-digit instead of by string similarity.
// Callsigns use a stricter effective threshold regardless of the session
// setting.
func ScoreElement(answer, correct string, typ ElementType, opts Options) (float64, bool) {
	answerNorm := normalize(answer, opts.CaseSensitive)
	correctNorm := normalize(correct, opts.CaseSensitive)

	if answerNorm == correctNorm && correctNorm != "" {
		return 1.0, true
	}
	if answerNorm == "" {
		return 0.0, false
	}

	if typ == ElementRST {
		return scoreRST(answerNorm, correctNorm, opts), false
	}

	threshold := opts.FuzzyThreshold
	if typ == ElementCallsign && threshold < callsignMinThreshold {
		threshold = callsignMinThreshold
	}

	if !opts.PartialCredit {
		return 0.0, false
	}
	similarity := Similarity(answerNorm, correctNorm)
	if similarity >= threshold {
		return similarity, false
	}
	return 0.0, false
}

// scoreRST applies the digit-position rule for 3-digit signal reports:
// all three digits correct scores 1.0 (handled by the exact-match path),
// exactly two correct scores a fixed partial value, fewer score 0.
func scoreRST(answer, correct string, opts Options) float64 {
	if !opts.PartialCredit {
		return 0.0
	}
	if len(answer) != 3 || len(correct) != 3 {
		return 0.0
	}
	matches := 0
	for i := 0; i < 3; i++ {
		if answer[i] == correct[i] {
			matches++
		}
	}
	if matches == 2 {
		return rstPartialScore
	}
	return 0.0
}

// ScoreQSO grades one exchange: every element present in the ground truth
// is scored against the corresponding user answer. A missing answer is
// graded as an empty string, never an error. The only failure mode is an
// empty ground-truth map, which indicates a producer defect.
func ScoreQSO(answers, groundTruth map[string]string, opts Options) (ScoreResult, error) {
	if len(groundTruth) == 0 {
		return ScoreResult{}, &InputError{Reason: "exchange has no ground-truth elements"}
	}

	elements := make(map[string]ElementScore, len(groundTruth))
	var sum float64
	for name, correct := range groundTruth {
		answer := answers[name]
		score, matched := ScoreElement(answer, correct, TypeOf(name), opts)

		note := NoteIncorrect
		if matched {
			note = NoteCorrect
		} else if score > 0 {
			note = NotePartial
		}

		elements[name] = ElementScore{
			Answer:  answer,
			Correct: correct,
			Score:   score,
			Matched: matched,
			Note:    note,
		}
		sum += score
	}

	return ScoreResult{
		Elements:   elements,
		Percentage: round1(100 * sum / float64(len(groundTruth))),
	}, nil
}

// SkippedResult builds the zero-score entry recorded for a skipped
// exchange. Every ground-truth element appears with a zero score so the
// summary still accounts for it.
func SkippedResult(groundTruth map[string]string) ScoreResult {
	elements := make(map[string]ElementScore, len(groundTruth))
	for name, correct := range groundTruth {
		elements[name] = ElementScore{
			Correct: correct,
			Note:    NoteSkipped,
		}
	}
	return ScoreResult{
		Elements: elements,
		Skipped:  true,
		Note:     NoteSkipped,
	}
}

// InvalidResult builds the zero-score entry recorded when the ground
// truth itself is unusable. The session advances past the exchange.
func InvalidResult() ScoreResult {
	return ScoreResult{
		Elements: map[string]ElementScore{},
		Invalid:  true,
		Note:     NoteInvalid,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
