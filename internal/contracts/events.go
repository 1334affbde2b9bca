package contracts

import (
	"encoding/json"
	"time"
)

type EventEnvelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	EventClass       string          `json:"event_class,omitempty"`
	OccurredAt       time.Time       `json:"occurred_at"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    string          `json:"schema_version"`
	Data             json.RawMessage `json:"data"`
}

// ConversationAnalyzedData is the payload published by the conversation-analysis
// service after it processes a logged conversation for a contact.
type ConversationAnalyzedData struct {
	ContactID          string `json:"contact_id"`
	AgentID            string `json:"agent_id"`
	HasTimeframe       bool   `json:"has_timeframe"`
	PropertyIdentified bool   `json:"property_identified"`
	MotivationLevel    string `json:"motivation_level"`
	HadShowings        bool   `json:"had_showings"`
	OfferAccepted      bool   `json:"offer_accepted"`
	ClosingCompleted   bool   `json:"closing_completed"`
	AnalyzedAt         string `json:"analyzed_at"`
}

type ConversationAnalyzedWebhook struct {
	EventID          string                   `json:"event_id"`
	EventType        string                   `json:"event_type"`
	OccurredAt       string                   `json:"occurred_at"`
	SourceService    string                   `json:"source_service"`
	TraceID          string                   `json:"trace_id"`
	SchemaVersion    string                   `json:"schema_version"`
	PartitionKeyPath string                   `json:"partition_key_path"`
	PartitionKey     string                   `json:"partition_key"`
	Data             ConversationAnalyzedData `json:"data"`
}

type InteractionLoggedData struct {
	InteractionID   string `json:"interaction_id"`
	ContactID       string `json:"contact_id"`
	AgentID         string `json:"agent_id"`
	InteractionType string `json:"interaction_type"`
	OccurredAt      string `json:"occurred_at"`
}

type StageAdvancedData struct {
	ContactID      string `json:"contact_id"`
	AgentID        string `json:"agent_id"`
	FromStage      string `json:"from_stage"`
	ToStage        string `json:"to_stage"`
	Confidence     int    `json:"confidence"`
	Rationale      string `json:"rationale"`
	TransitionID   string `json:"transition_id"`
	TransitionedAt string `json:"transitioned_at"`
}

type FollowupDueData struct {
	ContactID        string `json:"contact_id"`
	AgentID          string `json:"agent_id"`
	Stage            string `json:"stage"`
	DaysSinceContact int    `json:"days_since_contact"`
	PriorityScore    int    `json:"priority_score"`
	Reason           string `json:"reason"`
}

type PriorityUpdatedData struct {
	ContactID     string `json:"contact_id"`
	AgentID       string `json:"agent_id"`
	PriorityScore int    `json:"priority_score"`
	SevenDayFlag  bool   `json:"seven_day_rule_flag"`
	EvaluatedAt   string `json:"evaluated_at"`
}

type DLQRecord struct {
	OriginalEvent EventEnvelope `json:"original_event"`
	ErrorSummary  string        `json:"error_summary"`
	RetryCount    int           `json:"retry_count"`
	FirstSeenAt   time.Time     `json:"first_seen_at"`
	LastErrorAt   time.Time     `json:"last_error_at"`
	SourceTopic   string        `json:"source_topic,omitempty"`
	DLQTopic      string        `json:"dlq_topic,omitempty"`
	TraceID       string        `json:"trace_id,omitempty"`
}
