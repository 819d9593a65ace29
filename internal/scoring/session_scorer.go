package scoring

// TypeStats is the running accuracy for one element type across all
// recorded exchanges.
type TypeStats struct {
	Count    int     `json:"count"`
	Matched  int     `json:"matched"`
	ScoreSum float64 `json:"score_sum"`
	Accuracy float64 `json:"accuracy"` // ScoreSum / Count
}

// SessionSummary is an immutable snapshot of a session's results so far.
type SessionSummary struct {
	Results        []ScoreResult             `json:"results"`
	TotalElements  int                       `json:"total_elements"`
	TotalScore     float64                   `json:"total_score"`
	AveragePercent float64                   `json:"average_percent"`
	ByType         map[ElementType]TypeStats `json:"by_type"`
}

// SessionScorer accumulates exchange results over one practice session.
// It is owned by a single PracticeSession, which serializes access; the
// scorer itself holds no lock and performs no I/O.
type SessionScorer struct {
	results  []ScoreResult
	elements int
	scoreSum float64
	byType   map[ElementType]TypeStats
}

// NewSessionScorer creates an empty accumulator.
func NewSessionScorer() *SessionScorer {
	return &SessionScorer{
		byType: make(map[ElementType]TypeStats),
	}
}

// Record appends one exchange result and updates the running per-type
// accuracy. Skipped exchanges contribute zeros; invalid exchanges carry
// no gradeable elements and only appear in the ordered history.
func (s *SessionScorer) Record(result ScoreResult) {
	s.results = append(s.results, result)
	for name, element := range result.Elements {
		typ := TypeOf(name)
		stats := s.byType[typ]
		stats.Count++
		stats.ScoreSum += element.Score
		if element.Matched {
			stats.Matched++
		}
		stats.Accuracy = stats.ScoreSum / float64(stats.Count)
		s.byType[typ] = stats

		s.elements++
		s.scoreSum += element.Score
	}
}

// Count returns the number of exchanges recorded so far.
func (s *SessionScorer) Count() int {
	return len(s.results)
}

// Summary returns a snapshot of the session results. The returned value
// shares nothing mutable with the accumulator and may be taken at any
// point, partial or final.
func (s *SessionScorer) Summary() SessionSummary {
	results := make([]ScoreResult, len(s.results))
	copy(results, s.results)

	byType := make(map[ElementType]TypeStats, len(s.byType))
	for typ, stats := range s.byType {
		byType[typ] = stats
	}

	average := 0.0
	if s.elements > 0 {
		average = round1(100 * s.scoreSum / float64(s.elements))
	}

	return SessionSummary{
		Results:        results,
		TotalElements:  s.elements,
		TotalScore:     round1(s.scoreSum),
		AveragePercent: average,
		ByType:         byType,
	}
}
