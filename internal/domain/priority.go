package domain

import "math"

// Signal weights for the priority score. These are tunable defaults: the score
// is a weighted sum of normalized signals scaled to 100, plus a flat bonus when
// the seven-day monitor has flagged the contact, clamped to [0,100].
const (
	weightMotivation = 0.25
	weightStaleness  = 0.30
	weightTimeframe  = 0.25
	weightStage      = 0.20

	sevenDayBonus = 20

	// Staleness ramps from zero at the full-credit window up to 1.0 at
	// saturation. The term rewards staleness rather than penalizing it: a
	// contact untouched for two weeks needs attention, not deprioritization.
	stalenessFullCreditDays = 2
	stalenessSaturationDays = 14
)

func motivationWeight(m Motivation) (float64, error) {
	switch m {
	case MotivationHigh:
		return 1.0, nil
	case MotivationMedium:
		return 0.6, nil
	case MotivationLow:
		return 0.3, nil
	case MotivationUnknown, "":
		return 0.3, nil
	}
	return 0, invalidMotivation(m)
}

func timeframeWeight(t Timeframe) (float64, error) {
	switch t {
	case TimeframeImmediate:
		return 1.0, nil
	case TimeframeShort:
		return 0.7, nil
	case TimeframeMedium:
		return 0.45, nil
	case TimeframeLong:
		return 0.2, nil
	case TimeframeUnknown, "":
		return 0.3, nil
	}
	return 0, invalidTimeframe(t)
}

func stageWeight(s PipelineStage) (float64, error) {
	switch s {
	case StageLead:
		return 0.5, nil
	case StageNewOpportunity:
		return 0.7, nil
	case StageActiveOpportunity:
		return 1.0, nil
	case StageUnderContract:
		return 0.9, nil
	case StageClosed:
		// Closed deals stay on a referral/testimonial cadence, a low baseline
		// keeps them out of the sales-urgency list.
		return 0.15, nil
	}
	return 0, invalidStage(s)
}

func stalenessSignal(daysSinceContact int) float64 {
	if daysSinceContact <= stalenessFullCreditDays {
		return 0
	}
	if daysSinceContact >= stalenessSaturationDays {
		return 1
	}
	span := float64(stalenessSaturationDays - stalenessFullCreditDays)
	return float64(daysSinceContact-stalenessFullCreditDays) / span
}

// PriorityScore maps a contact snapshot to a 0-100 urgency score. Pure and
// deterministic: identical inputs always yield identical scores. Unrecognized
// enum values surface as configuration errors rather than defaulting silently.
func PriorityScore(c Contact, sevenDayFlagged bool) (int, error) {
	motivation, err := motivationWeight(c.Motivation)
	if err != nil {
		return 0, err
	}
	timeframe, err := timeframeWeight(c.Timeframe)
	if err != nil {
		return 0, err
	}
	stage, err := stageWeight(c.Stage)
	if err != nil {
		return 0, err
	}

	composite := weightMotivation*motivation +
		weightStaleness*stalenessSignal(c.DaysSinceContact) +
		weightTimeframe*timeframe +
		weightStage*stage

	score := int(math.Round(composite * 100))
	if sevenDayFlagged {
		score += sevenDayBonus
	}
	return clampScore(score), nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
