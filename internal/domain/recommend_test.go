package domain

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func recommend(t *testing.T, c Contact) RecommendedAction {
	t.Helper()
	action, err := RecommendNextAction(c, CheckSevenDay(c))
	if err != nil {
		t.Fatalf("RecommendNextAction(%+v): %v", c, err)
	}
	return action
}

func TestRecommendUrgencyBounds(t *testing.T) {
	t.Parallel()
	stages := []PipelineStage{StageLead, StageNewOpportunity, StageActiveOpportunity, StageUnderContract, StageClosed}
	for _, stage := range stages {
		for _, days := range []int{0, 5, 10, 45} {
			for _, preapproved := range []bool{false, true} {
				c := Contact{Name: "Dana", Stage: stage, Motivation: MotivationMedium, Timeframe: TimeframeShort, DaysSinceContact: days, Preapproved: preapproved}
				action := recommend(t, c)
				if action.Urgency < 1 || action.Urgency > 10 {
					t.Fatalf("urgency %d out of range for %v days=%d", action.Urgency, stage, days)
				}
				if action.ActionType == "" || action.Script == "" || action.Rationale == "" {
					t.Fatalf("incomplete recommendation for %v: %+v", stage, action)
				}
			}
		}
	}
}

func TestRecommendStaleLeadCallsOutDayCount(t *testing.T) {
	t.Parallel()
	c := Contact{Name: "Jordan Miles", Stage: StageLead, Timeframe: TimeframeShort, DaysSinceContact: 10}
	action := recommend(t, c)
	if action.ActionType != ActionCall {
		t.Fatalf("expected a call for a stale lead, got %s", action.ActionType)
	}
	if action.Urgency != 8 {
		t.Fatalf("expected urgency 8, got %d", action.Urgency)
	}
	if !strings.Contains(action.Script, "10 days") {
		t.Fatalf("script should name the day count: %q", action.Script)
	}
	if !slices.Contains(action.BehavioralFactors, FactorSevenDayViolation) {
		t.Fatalf("expected seven-day factor, got %v", action.BehavioralFactors)
	}
}

func TestRecommendLeadUnknownTimeframeAsksForIt(t *testing.T) {
	t.Parallel()
	c := Contact{Name: "Priya", Stage: StageLead, Timeframe: TimeframeUnknown, DaysSinceContact: 2}
	action := recommend(t, c)
	if action.ActionType != ActionCall || action.Urgency != 6 {
		t.Fatalf("expected call/6 for unqualified timeframe, got %s/%d", action.ActionType, action.Urgency)
	}
	if !strings.Contains(strings.ToLower(action.Script), "timeframe") {
		t.Fatalf("script should ask about timeframe: %q", action.Script)
	}
}

func TestRecommendLeadLongTimeframeLowUrgency(t *testing.T) {
	t.Parallel()
	c := Contact{Name: "Ana", Stage: StageLead, Timeframe: TimeframeLong, DaysSinceContact: 3}
	action := recommend(t, c)
	if action.Urgency != 4 {
		t.Fatalf("expected urgency 4 on a 6+ month horizon, got %d", action.Urgency)
	}
	if !slices.Contains(action.BehavioralFactors, FactorLongTimeframe) {
		t.Fatalf("expected long-timeframe factor, got %v", action.BehavioralFactors)
	}
}

func TestRecommendNewOpportunityPreapprovalGate(t *testing.T) {
	t.Parallel()
	missing := recommend(t, Contact{Name: "Sam", Stage: StageNewOpportunity, DaysSinceContact: 1})
	if missing.ActionType != ActionCall || missing.Urgency != 7 {
		t.Fatalf("expected call/7 without pre-approval, got %s/%d", missing.ActionType, missing.Urgency)
	}
	if !strings.Contains(strings.ToLower(missing.Script), "pre-approval") {
		t.Fatalf("script should mention pre-approval: %q", missing.Script)
	}
	if !slices.Contains(missing.BehavioralFactors, FactorMissingPreapproval) {
		t.Fatalf("expected missing pre-approval factor, got %v", missing.BehavioralFactors)
	}

	ready := recommend(t, Contact{Name: "Sam", Stage: StageNewOpportunity, Preapproved: true, DaysSinceContact: 1})
	if ready.ActionType != ActionSendListing || ready.Urgency != 5 {
		t.Fatalf("expected send-listing/5 when pre-approved, got %s/%d", ready.ActionType, ready.Urgency)
	}
	if !slices.Contains(ready.BehavioralFactors, FactorPreapproved) {
		t.Fatalf("expected pre-approved factor, got %v", ready.BehavioralFactors)
	}
}

func TestRecommendActiveOpportunityCriticalEscalation(t *testing.T) {
	t.Parallel()
	c := Contact{Name: "Lee", Stage: StageActiveOpportunity, Motivation: MotivationHigh, DaysSinceContact: 9}
	action := recommend(t, c)
	if action.ActionType != ActionCall || action.Urgency != 10 {
		t.Fatalf("expected call/10 for neglected active buyer, got %s/%d", action.ActionType, action.Urgency)
	}
	if !strings.Contains(action.Rationale, "CRITICAL") {
		t.Fatalf("rationale should flag the critical escalation: %q", action.Rationale)
	}
	if !slices.Contains(action.BehavioralFactors, FactorHighMotivation) {
		t.Fatalf("expected high-motivation factor, got %v", action.BehavioralFactors)
	}
}

func TestRecommendUnderContractCheckIn(t *testing.T) {
	t.Parallel()
	action := recommend(t, Contact{Name: "Kim", Stage: StageUnderContract, DaysSinceContact: 3})
	if action.ActionType != ActionText || action.Urgency != 4 {
		t.Fatalf("expected text/4 under contract, got %s/%d", action.ActionType, action.Urgency)
	}
	if !strings.Contains(strings.ToLower(action.Script), "closing") {
		t.Fatalf("script should reference closing: %q", action.Script)
	}
}

func TestRecommendClosedTestimonialWindow(t *testing.T) {
	t.Parallel()
	recent := recommend(t, Contact{Name: "Rowan", Stage: StageClosed, DaysSinceContact: 10})
	if recent.ActionType != ActionEmail || recent.Urgency != 5 {
		t.Fatalf("expected email/5 inside testimonial window, got %s/%d", recent.ActionType, recent.Urgency)
	}
	if !strings.Contains(strings.ToLower(recent.Script), "review") {
		t.Fatalf("script should ask for a review: %q", recent.Script)
	}

	longAgo := recommend(t, Contact{Name: "Rowan", Stage: StageClosed, DaysSinceContact: 90})
	if longAgo.ActionType != ActionFollowUp || longAgo.Urgency != 3 {
		t.Fatalf("expected follow-up/3 past the window, got %s/%d", longAgo.ActionType, longAgo.Urgency)
	}
	if !slices.Contains(longAgo.BehavioralFactors, FactorPastClient) {
		t.Fatalf("expected past-client factor, got %v", longAgo.BehavioralFactors)
	}
}

func TestRecommendUnknownStageIsConfigurationError(t *testing.T) {
	t.Parallel()
	c := Contact{Stage: "Dormant"}
	if _, err := RecommendNextAction(c, SevenDayResult{}); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRecommendPure(t *testing.T) {
	t.Parallel()
	c := Contact{Name: "Dana", Stage: StageLead, Timeframe: TimeframeShort, DaysSinceContact: 10}
	monitor := CheckSevenDay(c)
	first, err := RecommendNextAction(c, monitor)
	if err != nil {
		t.Fatalf("RecommendNextAction: %v", err)
	}
	second, err := RecommendNextAction(c, monitor)
	if err != nil {
		t.Fatalf("RecommendNextAction: %v", err)
	}
	if first.ActionType != second.ActionType || first.Urgency != second.Urgency || first.Script != second.Script {
		t.Fatalf("recommendation changed between identical calls: %+v vs %+v", first, second)
	}
}
