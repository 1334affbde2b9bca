package domain

import "fmt"

// Advancement confidences. Each later transition rests on stronger evidence:
// self-reported readiness < observed showings < accepted offer < completed closing.
const (
	confidenceLeadToNewOpportunity   = 75
	confidenceNewToActiveOpportunity = 85
	confidenceActiveToUnderContract  = 95
	confidenceUnderContractToClosed  = 100
	recentActivityWindowDays         = 7
)

// StageAnalysis bundles the current stage with the interaction evidence the
// advisor needs. Callers derive these booleans from a logged conversation or
// the conversation-analysis service; the advisor itself reads no external state.
type StageAnalysis struct {
	CurrentStage       PipelineStage `json:"current_stage"`
	HasTimeframe       bool          `json:"has_timeframe"`
	PropertyIdentified bool          `json:"property_identified"`
	Motivation         Motivation    `json:"motivation_level"`
	HadShowings        bool          `json:"had_showings"`
	DaysSinceActivity  int           `json:"days_since_activity"`
	OfferAccepted      bool          `json:"offer_accepted"`
	ClosingCompleted   bool          `json:"closing_completed"`
}

// EvaluateStageTransition decides whether the contact should advance one stage.
// Strictly forward and one hop per call: even when downstream criteria are also
// met, the advisor never skips a stage, and it never proposes a backward move.
func EvaluateStageTransition(a StageAnalysis) (StageEvaluation, error) {
	noChange := StageEvaluation{NewStage: a.CurrentStage, Confidence: 0, Rationale: "No change."}

	switch a.CurrentStage {
	case StageLead:
		if a.HasTimeframe && a.PropertyIdentified && a.Motivation == MotivationHigh {
			return StageEvaluation{
				NewStage:   StageNewOpportunity,
				Confidence: confidenceLeadToNewOpportunity,
				Rationale:  "Timeframe known, specific property identified, and motivation is high.",
			}, nil
		}
		return noChange, nil
	case StageNewOpportunity:
		if a.HadShowings && a.DaysSinceActivity <= recentActivityWindowDays {
			return StageEvaluation{
				NewStage:   StageActiveOpportunity,
				Confidence: confidenceNewToActiveOpportunity,
				Rationale:  fmt.Sprintf("Showings underway with activity in the last %d days.", recentActivityWindowDays),
			}, nil
		}
		return noChange, nil
	case StageActiveOpportunity:
		if a.OfferAccepted {
			return StageEvaluation{
				NewStage:   StageUnderContract,
				Confidence: confidenceActiveToUnderContract,
				Rationale:  "Offer accepted.",
			}, nil
		}
		return noChange, nil
	case StageUnderContract:
		if a.ClosingCompleted {
			return StageEvaluation{
				NewStage:   StageClosed,
				Confidence: confidenceUnderContractToClosed,
				Rationale:  "Closing completed.",
			}, nil
		}
		return noChange, nil
	case StageClosed:
		return noChange, nil
	}
	return StageEvaluation{}, invalidStage(a.CurrentStage)
}
