package domain

import "time"

// ContactRecord is the persisted form of a contact. DaysSinceContact is never
// stored: snapshots derive it from LastContactAt at read time so the invariant
// (non-negative, reset exactly on a new interaction) holds by construction.
type ContactRecord struct {
	ContactID     string        `json:"contact_id"`
	AgentID       string        `json:"agent_id"`
	Name          string        `json:"name"`
	Stage         PipelineStage `json:"pipeline_stage"`
	Motivation    Motivation    `json:"motivation_level"`
	Timeframe     Timeframe     `json:"timeframe"`
	Preapproved   bool          `json:"preapproval_status"`
	PriorityScore int           `json:"priority_score"`
	SevenDayFlag  bool          `json:"seven_day_rule_flag"`
	LastContactAt time.Time     `json:"last_contact_at"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Snapshot freezes the record into the immutable value the engines consume.
func (r ContactRecord) Snapshot(now time.Time) Contact {
	days := 0
	if !r.LastContactAt.IsZero() && now.After(r.LastContactAt) {
		days = int(now.Sub(r.LastContactAt).Hours() / 24)
	}
	return Contact{
		ContactID:        r.ContactID,
		AgentID:          r.AgentID,
		Name:             r.Name,
		Stage:            r.Stage,
		Motivation:       r.Motivation,
		Timeframe:        r.Timeframe,
		DaysSinceContact: days,
		Preapproved:      r.Preapproved,
		PriorityScore:    r.PriorityScore,
		SevenDayFlag:     r.SevenDayFlag,
	}
}

type Interaction struct {
	InteractionID   string    `json:"interaction_id"`
	ContactID       string    `json:"contact_id"`
	AgentID         string    `json:"agent_id"`
	InteractionType string    `json:"interaction_type"`
	Notes           string    `json:"notes,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}

type StageTransition struct {
	TransitionID string        `json:"transition_id"`
	ContactID    string        `json:"contact_id"`
	AgentID      string        `json:"agent_id"`
	FromStage    PipelineStage `json:"from_stage"`
	ToStage      PipelineStage `json:"to_stage"`
	Confidence   int           `json:"confidence"`
	Rationale    string        `json:"rationale"`
	Trigger      string        `json:"trigger"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Stage transition triggers.
const (
	TransitionTriggerInteraction    = "interaction"
	TransitionTriggerConversation   = "conversation_analysis"
	TransitionTriggerManualOverride = "manual_override"
)

type DailyActionEntry struct {
	AgentID   string    `json:"agent_id"`
	Day       string    `json:"day"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updated_at"`
}
