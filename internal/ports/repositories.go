package ports

import (
	"context"
	"time"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
)

type ContactRepository interface {
	Create(ctx context.Context, row domain.ContactRecord) error
	Update(ctx context.Context, row domain.ContactRecord) error
	GetByID(ctx context.Context, agentID, contactID string) (domain.ContactRecord, error)
	ListByAgent(ctx context.Context, agentID string) ([]domain.ContactRecord, error)
}

type InteractionRepository interface {
	Create(ctx context.Context, row domain.Interaction) error
	ListByContact(ctx context.Context, agentID, contactID string, limit int) ([]domain.Interaction, error)
}

type StageTransitionRepository interface {
	Create(ctx context.Context, row domain.StageTransition) error
	ListByContact(ctx context.Context, agentID, contactID string, limit int) ([]domain.StageTransition, error)
}

type DailyActionRepository interface {
	Upsert(ctx context.Context, row domain.DailyActionEntry) error
	ListRecent(ctx context.Context, agentID string, since string) ([]domain.DailyActionEntry, error)
}

type IdempotencyRecord struct {
	Key          string
	RequestHash  string
	ResponseCode int
	ResponseBody []byte
	ExpiresAt    time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, key string, now time.Time) (*IdempotencyRecord, error)
	Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error
	Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error
}

type OutboxRecord struct {
	RecordID   string
	EventClass string
	Envelope   contracts.EventEnvelope
	CreatedAt  time.Time
	SentAt     *time.Time
}

type OutboxRepository interface {
	Enqueue(ctx context.Context, record OutboxRecord) error
	ListPending(ctx context.Context, limit int) ([]OutboxRecord, error)
	MarkSent(ctx context.Context, recordID string, at time.Time) error
}
