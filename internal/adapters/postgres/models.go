package postgres

import "time"

type contactModel struct {
	ContactID       string    `gorm:"column:contact_id;primaryKey"`
	AgentID         string    `gorm:"column:agent_id"`
	Name            string    `gorm:"column:name"`
	PipelineStage   string    `gorm:"column:pipeline_stage"`
	MotivationLevel string    `gorm:"column:motivation_level"`
	Timeframe       string    `gorm:"column:timeframe"`
	Preapproved     bool      `gorm:"column:preapproval_status"`
	PriorityScore   int       `gorm:"column:priority_score"`
	SevenDayFlag    bool      `gorm:"column:seven_day_rule_flag"`
	LastContactAt   time.Time `gorm:"column:last_contact_at"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (contactModel) TableName() string { return "contacts" }

type interactionModel struct {
	InteractionID   string    `gorm:"column:interaction_id;primaryKey"`
	ContactID       string    `gorm:"column:contact_id"`
	AgentID         string    `gorm:"column:agent_id"`
	InteractionType string    `gorm:"column:interaction_type"`
	Notes           string    `gorm:"column:notes"`
	OccurredAt      time.Time `gorm:"column:occurred_at"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (interactionModel) TableName() string { return "interactions" }

type stageTransitionModel struct {
	TransitionID string    `gorm:"column:transition_id;primaryKey"`
	ContactID    string    `gorm:"column:contact_id"`
	AgentID      string    `gorm:"column:agent_id"`
	FromStage    string    `gorm:"column:from_stage"`
	ToStage      string    `gorm:"column:to_stage"`
	Confidence   int       `gorm:"column:confidence"`
	Trigger      string    `gorm:"column:trigger"`
	Rationale    string    `gorm:"column:rationale"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (stageTransitionModel) TableName() string { return "stage_transitions" }

type dailyActionModel struct {
	AgentID   string    `gorm:"column:agent_id;primaryKey"`
	Day       time.Time `gorm:"column:day;primaryKey"`
	Completed bool      `gorm:"column:completed"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (dailyActionModel) TableName() string { return "daily_actions" }

type idempotencyModel struct {
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey"`
	RequestHash    string    `gorm:"column:request_hash"`
	ResponseCode   int       `gorm:"column:response_code"`
	ResponseBody   []byte    `gorm:"column:response_body"`
	ExpiresAt      time.Time `gorm:"column:expires_at"`
}

func (idempotencyModel) TableName() string { return "idempotency_records" }

type outboxModel struct {
	RecordID   string     `gorm:"column:record_id;primaryKey"`
	EventClass string     `gorm:"column:event_class"`
	Envelope   []byte     `gorm:"column:envelope"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	SentAt     *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string { return "outbox_events" }
