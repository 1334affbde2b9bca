package domain

import "math"

// DefaultConsistencyWindowDays is the trailing window the score is computed
// over when the caller does not configure one.
const DefaultConsistencyWindowDays = 30

const lastDaysTracked = 7

// ScoreConsistency aggregates a user's daily completion history, newest last,
// into a rolling score and streak. Empty history yields a zero record, not an
// error: a brand-new user simply has nothing to score yet.
func ScoreConsistency(history []bool, windowDays int) ConsistencyRecord {
	if windowDays <= 0 {
		windowDays = DefaultConsistencyWindowDays
	}
	record := ConsistencyRecord{Last7Days: []bool{}}
	if len(history) == 0 {
		return record
	}

	window := history
	if len(window) > windowDays {
		window = window[len(window)-windowDays:]
	}
	completed := 0
	for _, done := range window {
		if done {
			completed++
		}
	}
	record.Score = int(math.Round(float64(completed) / float64(len(window)) * 100))

	for i := len(history) - 1; i >= 0; i-- {
		if !history[i] {
			break
		}
		record.Streak++
	}

	last := history
	if len(last) > lastDaysTracked {
		last = last[len(last)-lastDaysTracked:]
	}
	record.Last7Days = append(record.Last7Days, last...)
	return record
}
