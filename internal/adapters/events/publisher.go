package events

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

// LoggingPublisher emits envelopes as structured log records. It stands in for
// the broker edge in environments without one.
type LoggingPublisher struct {
	logger *slog.Logger
}

var (
	_ ports.DomainPublisher    = (*LoggingPublisher)(nil)
	_ ports.AnalyticsPublisher = (*LoggingPublisher)(nil)
)

func NewLoggingPublisher(logger *slog.Logger) *LoggingPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingPublisher{logger: logger}
}

func (p *LoggingPublisher) PublishDomain(ctx context.Context, event contracts.EventEnvelope) error {
	p.logger.InfoContext(ctx, "published domain event",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"partition_key", event.PartitionKey,
	)
	return nil
}

func (p *LoggingPublisher) PublishAnalytics(ctx context.Context, event contracts.EventEnvelope) error {
	p.logger.InfoContext(ctx, "published analytics event",
		"event_type", event.EventType,
		"event_id", event.EventID,
	)
	return nil
}

type LoggingDLQPublisher struct {
	logger *slog.Logger
}

var _ ports.DLQPublisher = (*LoggingDLQPublisher)(nil)

func NewLoggingDLQPublisher(logger *slog.Logger) *LoggingDLQPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingDLQPublisher{logger: logger}
}

func (p *LoggingDLQPublisher) PublishDLQ(ctx context.Context, record contracts.DLQRecord) error {
	p.logger.ErrorContext(ctx, "event routed to dlq",
		"event_type", record.OriginalEvent.EventType,
		"event_id", record.OriginalEvent.EventID,
		"dlq_topic", record.DLQTopic,
		"error_summary", record.ErrorSummary,
	)
	return nil
}

// MemoryDomainPublisher captures published domain envelopes in order.
type MemoryDomainPublisher struct {
	mu     sync.Mutex
	Events []contracts.EventEnvelope
}

var _ ports.DomainPublisher = (*MemoryDomainPublisher)(nil)

func NewMemoryDomainPublisher() *MemoryDomainPublisher { return &MemoryDomainPublisher{} }

func (p *MemoryDomainPublisher) PublishDomain(_ context.Context, event contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

type MemoryAnalyticsPublisher struct {
	mu     sync.Mutex
	Events []contracts.EventEnvelope
}

var _ ports.AnalyticsPublisher = (*MemoryAnalyticsPublisher)(nil)

func NewMemoryAnalyticsPublisher() *MemoryAnalyticsPublisher { return &MemoryAnalyticsPublisher{} }

func (p *MemoryAnalyticsPublisher) PublishAnalytics(_ context.Context, event contracts.EventEnvelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// QueueConsumer is an in-process FIFO source of canonical events.
type QueueConsumer struct {
	mu      sync.Mutex
	pending []contracts.EventEnvelope
}

var _ ports.EventConsumer = (*QueueConsumer)(nil)

func NewQueueConsumer() *QueueConsumer {
	return &QueueConsumer{}
}

func (c *QueueConsumer) Enqueue(event contracts.EventEnvelope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, event)
}

func (c *QueueConsumer) Receive(_ context.Context) (*contracts.EventEnvelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil, io.EOF
	}
	event := c.pending[0]
	c.pending = c.pending[1:]
	return &event, nil
}
