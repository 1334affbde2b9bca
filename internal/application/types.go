package application

import (
	"time"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

type Config struct {
	ServiceName           string
	MinimumPriority       int
	MaximumDailyActions   int
	ConsistencyWindowDays int
	IdempotencyTTL        time.Duration
	EventDedupTTL         time.Duration
	FocusListCacheTTL     time.Duration
	OutboxFlushBatchSize  int
	WebhookBearerToken    string
}

type Actor struct {
	SubjectID      string
	Role           string
	RequestID      string
	IdempotencyKey string
}

type CreateContactInput struct {
	Name            string
	PipelineStage   string
	MotivationLevel string
	Timeframe       string
	Preapproved     bool
}

type UpdateContactInput struct {
	Name            *string
	PipelineStage   *string
	MotivationLevel *string
	Timeframe       *string
	Preapproved     *bool
}

type RecordInteractionInput struct {
	InteractionType     string
	Notes               string
	HasTimeframe        bool
	PropertyIdentified  bool
	HadShowings         bool
	OfferAccepted       bool
	ClosingCompleted    bool
	AnalyzeConversation bool
}

type ConversationAnalyzedInput struct {
	EventID            string
	EventType          string
	OccurredAt         string
	SourceService      string
	TraceID            string
	SchemaVersion      string
	PartitionKeyPath   string
	PartitionKey       string
	ContactID          string
	AgentID            string
	HasTimeframe       bool
	PropertyIdentified bool
	MotivationLevel    string
	HadShowings        bool
	OfferAccepted      bool
	ClosingCompleted   bool
}

type CompleteDailyActionsInput struct {
	Date      string
	Completed bool
}

// ContactEvaluation is one full pass of the engine over a single contact.
type ContactEvaluation struct {
	Contact        domain.Contact           `json:"contact"`
	Monitor        domain.SevenDayResult    `json:"seven_day_check"`
	Recommendation domain.RecommendedAction `json:"recommendation"`
}

type InteractionResult struct {
	Interaction     domain.Interaction     `json:"interaction"`
	StageEvaluation domain.StageEvaluation `json:"stage_evaluation"`
}

type FocusListOptions struct {
	MinimumPriority     int
	MaximumDailyActions int
	ForceRefresh        bool
}

type FocusItem struct {
	Contact        domain.Contact           `json:"contact"`
	Monitor        domain.SevenDayResult    `json:"seven_day_check"`
	Recommendation domain.RecommendedAction `json:"recommendation"`
}

type FocusList struct {
	Items       []FocusItem `json:"items"`
	Skipped     int         `json:"skipped"`
	GeneratedAt time.Time   `json:"generated_at"`
}

type Service struct {
	cfg Config

	contacts     ports.ContactRepository
	interactions ports.InteractionRepository
	transitions  ports.StageTransitionRepository
	dailyActions ports.DailyActionRepository
	idempotency  ports.IdempotencyRepository
	outbox       ports.OutboxRepository
	eventDedup   ports.EventDedupStore
	focusCache   ports.FocusListCache

	conversation  ports.ConversationReader
	notifications ports.NotificationReader

	domainEvents ports.DomainPublisher
	analytics    ports.AnalyticsPublisher
	dlq          ports.DLQPublisher
	nowFn        func() time.Time
}

type Dependencies struct {
	Config        Config
	Contacts      ports.ContactRepository
	Interactions  ports.InteractionRepository
	Transitions   ports.StageTransitionRepository
	DailyActions  ports.DailyActionRepository
	Idempotency   ports.IdempotencyRepository
	Outbox        ports.OutboxRepository
	EventDedup    ports.EventDedupStore
	FocusCache    ports.FocusListCache
	Conversation  ports.ConversationReader
	Notifications ports.NotificationReader
	DomainEvents  ports.DomainPublisher
	Analytics     ports.AnalyticsPublisher
	DLQ           ports.DLQPublisher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "M21-Priority-Engine"
	}
	if cfg.MinimumPriority <= 0 {
		cfg.MinimumPriority = 30
	}
	if cfg.MaximumDailyActions <= 0 {
		cfg.MaximumDailyActions = 10
	}
	if cfg.ConsistencyWindowDays <= 0 {
		cfg.ConsistencyWindowDays = domain.DefaultConsistencyWindowDays
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = 7 * 24 * time.Hour
	}
	if cfg.EventDedupTTL <= 0 {
		cfg.EventDedupTTL = 7 * 24 * time.Hour
	}
	if cfg.FocusListCacheTTL <= 0 {
		cfg.FocusListCacheTTL = 5 * time.Minute
	}
	if cfg.OutboxFlushBatchSize <= 0 {
		cfg.OutboxFlushBatchSize = 100
	}
	if cfg.WebhookBearerToken == "" {
		cfg.WebhookBearerToken = "priority-webhook-secret"
	}
	return &Service{
		cfg:           cfg,
		contacts:      deps.Contacts,
		interactions:  deps.Interactions,
		transitions:   deps.Transitions,
		dailyActions:  deps.DailyActions,
		idempotency:   deps.Idempotency,
		outbox:        deps.Outbox,
		eventDedup:    deps.EventDedup,
		focusCache:    deps.FocusCache,
		conversation:  deps.Conversation,
		notifications: deps.Notifications,
		domainEvents:  deps.DomainEvents,
		analytics:     deps.Analytics,
		dlq:           deps.DLQ,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}
