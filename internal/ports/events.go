package ports

import (
	"context"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
)

type DomainPublisher interface {
	PublishDomain(ctx context.Context, event contracts.EventEnvelope) error
}

type AnalyticsPublisher interface {
	PublishAnalytics(ctx context.Context, event contracts.EventEnvelope) error
}

type DLQPublisher interface {
	PublishDLQ(ctx context.Context, record contracts.DLQRecord) error
}

// EventConsumer is a pull-based source of canonical events; Receive returns
// io.EOF when nothing is pending.
type EventConsumer interface {
	Receive(ctx context.Context) (*contracts.EventEnvelope, error)
}
