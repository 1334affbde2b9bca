package domain

import (
	"fmt"
	"strings"
)

type PipelineStage string

const (
	StageLead              PipelineStage = "Lead"
	StageNewOpportunity    PipelineStage = "New Opportunity"
	StageActiveOpportunity PipelineStage = "Active Opportunity"
	StageUnderContract     PipelineStage = "Under Contract"
	StageClosed            PipelineStage = "Closed"
)

// stageOrder gives the forward ordering of the pipeline. The advisor only ever
// moves one hop forward; backward moves are a manual override outside the engine.
var stageOrder = map[PipelineStage]int{
	StageLead:              0,
	StageNewOpportunity:    1,
	StageActiveOpportunity: 2,
	StageUnderContract:     3,
	StageClosed:            4,
}

func ParseStage(raw string) (PipelineStage, error) {
	stage := PipelineStage(strings.TrimSpace(raw))
	if _, ok := stageOrder[stage]; !ok {
		return "", invalidStage(stage)
	}
	return stage, nil
}

func invalidStage(s PipelineStage) error {
	return fmt.Errorf("%w: unknown pipeline stage %q", ErrConfiguration, string(s))
}

func invalidMotivation(m Motivation) error {
	return fmt.Errorf("%w: unknown motivation level %q", ErrConfiguration, string(m))
}

func invalidTimeframe(t Timeframe) error {
	return fmt.Errorf("%w: unknown timeframe %q", ErrConfiguration, string(t))
}

func (s PipelineStage) Order() int {
	if order, ok := stageOrder[s]; ok {
		return order
	}
	return -1
}

func (s PipelineStage) Next() (PipelineStage, bool) {
	switch s {
	case StageLead:
		return StageNewOpportunity, true
	case StageNewOpportunity:
		return StageActiveOpportunity, true
	case StageActiveOpportunity:
		return StageUnderContract, true
	case StageUnderContract:
		return StageClosed, true
	default:
		return s, false
	}
}

type Motivation string

const (
	MotivationHigh    Motivation = "High"
	MotivationMedium  Motivation = "Medium"
	MotivationLow     Motivation = "Low"
	MotivationUnknown Motivation = "unknown"
)

func ParseMotivation(raw string) (Motivation, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return MotivationUnknown, nil
	}
	switch Motivation(trimmed) {
	case MotivationHigh, MotivationMedium, MotivationLow, MotivationUnknown:
		return Motivation(trimmed), nil
	}
	return "", invalidMotivation(Motivation(raw))
}

type Timeframe string

const (
	TimeframeImmediate Timeframe = "Immediate"
	TimeframeShort     Timeframe = "1-3 months"
	TimeframeMedium    Timeframe = "3-6 months"
	TimeframeLong      Timeframe = "6+ months"
	TimeframeUnknown   Timeframe = "unknown"
)

func ParseTimeframe(raw string) (Timeframe, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TimeframeUnknown, nil
	}
	switch Timeframe(trimmed) {
	case TimeframeImmediate, TimeframeShort, TimeframeMedium, TimeframeLong, TimeframeUnknown:
		return Timeframe(trimmed), nil
	}
	return "", invalidTimeframe(Timeframe(raw))
}

// Contact is the immutable snapshot every engine reads. Writes happen outside
// the engine: DaysSinceContact resets to zero exactly when the caller records a
// new interaction, and PriorityScore/SevenDayFlag are cached values the engine
// recomputes rather than trusts.
type Contact struct {
	ContactID        string        `json:"contact_id"`
	AgentID          string        `json:"agent_id"`
	Name             string        `json:"name"`
	Stage            PipelineStage `json:"pipeline_stage"`
	Motivation       Motivation    `json:"motivation_level"`
	Timeframe        Timeframe     `json:"timeframe"`
	DaysSinceContact int           `json:"days_since_contact"`
	Preapproved      bool          `json:"preapproval_status"`
	PriorityScore    int           `json:"priority_score"`
	SevenDayFlag     bool          `json:"seven_day_rule_flag"`
}

type ActionType string

const (
	ActionCall        ActionType = "Call"
	ActionText        ActionType = "Text"
	ActionEmail       ActionType = "Email"
	ActionMeeting     ActionType = "Meeting"
	ActionSendListing ActionType = "Send Listing"
	ActionFollowUp    ActionType = "Follow-up"
)

type RecommendedAction struct {
	ActionType        ActionType `json:"action_type"`
	Urgency           int        `json:"urgency"`
	Script            string     `json:"script"`
	Rationale         string     `json:"rationale"`
	BehavioralFactors []string   `json:"behavioral_factors"`
}

type StageEvaluation struct {
	NewStage   PipelineStage `json:"new_stage"`
	Confidence int           `json:"confidence"`
	Rationale  string        `json:"rationale"`
}

type ConsistencyRecord struct {
	Score     int    `json:"score"`
	Streak    int    `json:"streak"`
	Last7Days []bool `json:"last_7_days"`
}
