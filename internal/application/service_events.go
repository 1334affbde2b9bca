package application

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

// HandleCanonicalEvent consumes events from the platform bus. Only
// conversation.analyzed is actionable here; everything else is rejected so the
// worker can route it to the DLQ instead of dropping it silently.
func (s *Service) HandleCanonicalEvent(ctx context.Context, envelope contracts.EventEnvelope) error {
	if err := validateEnvelope(envelope); err != nil {
		return err
	}
	if err := validatePartitionKeyInvariant(envelope, envelope.PartitionKeyPath); err != nil {
		return err
	}
	switch envelope.EventType {
	case domain.EventConversationAnalyzed:
		var data contracts.ConversationAnalyzedData
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return domain.ErrInvalidEnvelope
		}
		return s.applyConversationAnalysis(ctx, envelope.EventID, envelope.EventType, data)
	}
	return fmt.Errorf("%w: %s", domain.ErrUnsupportedEventType, envelope.EventType)
}

// HandleConversationAnalyzedWebhook is the HTTP ingest path for the same
// payload the bus carries; the conversation-analysis service calls it directly
// in deployments without the event bus.
func (s *Service) HandleConversationAnalyzedWebhook(ctx context.Context, bearerToken string, input ConversationAnalyzedInput) (map[string]any, error) {
	if strings.TrimSpace(bearerToken) != s.cfg.WebhookBearerToken {
		return nil, domain.ErrUnauthorized
	}
	if strings.TrimSpace(input.EventID) == "" || strings.TrimSpace(input.ContactID) == "" || strings.TrimSpace(input.AgentID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if strings.TrimSpace(input.EventType) == "" || strings.TrimSpace(input.SourceService) == "" || strings.TrimSpace(input.TraceID) == "" || strings.TrimSpace(input.SchemaVersion) == "" {
		return nil, domain.ErrInvalidEnvelope
	}
	payloadBytes, _ := json.Marshal(map[string]any{"contact_id": strings.TrimSpace(input.ContactID)})
	if err := validatePartitionKeyInvariant(contracts.EventEnvelope{
		PartitionKeyPath: strings.TrimSpace(input.PartitionKeyPath),
		PartitionKey:     strings.TrimSpace(input.PartitionKey),
		Data:             payloadBytes,
	}, "data.contact_id"); err != nil {
		return nil, err
	}
	data := contracts.ConversationAnalyzedData{
		ContactID:          strings.TrimSpace(input.ContactID),
		AgentID:            strings.TrimSpace(input.AgentID),
		HasTimeframe:       input.HasTimeframe,
		PropertyIdentified: input.PropertyIdentified,
		MotivationLevel:    strings.TrimSpace(input.MotivationLevel),
		HadShowings:        input.HadShowings,
		OfferAccepted:      input.OfferAccepted,
		ClosingCompleted:   input.ClosingCompleted,
	}
	if err := s.applyConversationAnalysis(ctx, input.EventID, input.EventType, data); err != nil {
		return nil, err
	}
	return map[string]any{"accepted": true, "event_id": input.EventID, "contact_id": data.ContactID, "processed_at": s.nowFn()}, nil
}

func (s *Service) applyConversationAnalysis(ctx context.Context, eventID, eventType string, data contracts.ConversationAnalyzedData) error {
	now := s.nowFn()
	if s.eventDedup != nil {
		dup, err := s.eventDedup.IsDuplicate(ctx, eventID, now)
		if err != nil {
			return err
		}
		if dup {
			return nil
		}
	}

	row, err := s.contacts.GetByID(ctx, data.AgentID, data.ContactID)
	if err != nil {
		return err
	}
	motivation := row.Motivation
	if parsed, err := domain.ParseMotivation(data.MotivationLevel); err == nil && parsed != domain.MotivationUnknown {
		motivation = parsed
	}
	analysis := domain.StageAnalysis{
		CurrentStage:       row.Stage,
		HasTimeframe:       data.HasTimeframe || (row.Timeframe != domain.TimeframeUnknown && row.Timeframe != ""),
		PropertyIdentified: data.PropertyIdentified,
		Motivation:         motivation,
		HadShowings:        data.HadShowings,
		DaysSinceActivity:  row.Snapshot(now).DaysSinceContact,
		OfferAccepted:      data.OfferAccepted,
		ClosingCompleted:   data.ClosingCompleted,
	}
	evaluation, err := domain.EvaluateStageTransition(analysis)
	if err != nil {
		return err
	}
	if evaluation.Confidence > 0 && evaluation.NewStage != row.Stage {
		if err := s.applyAdvancement(ctx, &row, evaluation, domain.TransitionTriggerConversation, now); err != nil {
			return err
		}
		row.UpdatedAt = now
		if err := s.contacts.Update(ctx, row); err != nil {
			return err
		}
		s.invalidateFocusCache(ctx, row.AgentID)
	}

	if s.eventDedup != nil {
		_ = s.eventDedup.MarkProcessed(ctx, eventID, eventType, now.Add(s.cfg.EventDedupTTL))
	}
	return nil
}

// FlushOutbox drains pending outbox records to the publishers. Domain events
// that fail to publish go to the DLQ; analytics events are best effort.
func (s *Service) FlushOutbox(ctx context.Context) error {
	if s.outbox == nil {
		return nil
	}
	pending, err := s.outbox.ListPending(ctx, s.cfg.OutboxFlushBatchSize)
	if err != nil {
		return err
	}
	for _, rec := range pending {
		now := s.nowFn()
		switch rec.EventClass {
		case domain.CanonicalEventClassDomain:
			if s.domainEvents != nil {
				if err := s.domainEvents.PublishDomain(ctx, rec.Envelope); err != nil {
					if s.dlq != nil {
						nowDLQ := s.nowFn()
						_ = s.dlq.PublishDLQ(ctx, contracts.DLQRecord{OriginalEvent: rec.Envelope, ErrorSummary: err.Error(), RetryCount: 1, FirstSeenAt: nowDLQ, LastErrorAt: nowDLQ, SourceTopic: rec.Envelope.EventType, DLQTopic: "priority-engine.dlq", TraceID: rec.Envelope.TraceID})
					}
					return err
				}
			}
		case domain.CanonicalEventClassAnalyticsOnly:
			if s.analytics != nil {
				_ = s.analytics.PublishAnalytics(ctx, rec.Envelope)
			}
		default:
			return fmt.Errorf("%w: %s", domain.ErrUnsupportedEventClass, rec.EventClass)
		}
		if err := s.outbox.MarkSent(ctx, rec.RecordID, now); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) enqueueDomainEvent(ctx context.Context, eventType, partitionKeyPath, partitionKey string, data any) {
	s.enqueueOutbox(ctx, domain.CanonicalEventClassDomain, eventType, partitionKeyPath, partitionKey, data)
}

func (s *Service) enqueueAnalytics(ctx context.Context, eventType, partitionKeyPath, partitionKey string, data any) {
	s.enqueueOutbox(ctx, domain.CanonicalEventClassAnalyticsOnly, eventType, partitionKeyPath, partitionKey, data)
}

func (s *Service) enqueueOutbox(ctx context.Context, eventClass, eventType, partitionKeyPath, partitionKey string, data any) {
	if s.outbox == nil {
		return
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	now := s.nowFn()
	_ = s.outbox.Enqueue(ctx, ports.OutboxRecord{
		RecordID:   uuid.NewString(),
		EventClass: eventClass,
		CreatedAt:  now,
		Envelope: contracts.EventEnvelope{
			EventID:          uuid.NewString(),
			EventType:        eventType,
			EventClass:       eventClass,
			OccurredAt:       now,
			PartitionKeyPath: partitionKeyPath,
			PartitionKey:     partitionKey,
			SourceService:    s.cfg.ServiceName,
			TraceID:          uuid.NewString(),
			SchemaVersion:    "v1",
			Data:             payload,
		},
	})
}

func validateEnvelope(event contracts.EventEnvelope) error {
	if strings.TrimSpace(event.EventID) == "" || strings.TrimSpace(event.EventType) == "" || event.OccurredAt.IsZero() {
		return domain.ErrInvalidEnvelope
	}
	if strings.TrimSpace(event.SourceService) == "" || strings.TrimSpace(event.TraceID) == "" || strings.TrimSpace(event.SchemaVersion) == "" {
		return domain.ErrInvalidEnvelope
	}
	if len(event.Data) == 0 {
		return domain.ErrInvalidEnvelope
	}
	return nil
}

func validatePartitionKeyInvariant(event contracts.EventEnvelope, expectedPath string) error {
	if strings.TrimSpace(expectedPath) == "" || event.PartitionKeyPath != expectedPath {
		return domain.ErrInvalidEnvelope
	}
	if expectedPath == "envelope.source_service" {
		if event.PartitionKey != event.SourceService {
			return domain.ErrInvalidEnvelope
		}
		return nil
	}
	if !strings.HasPrefix(expectedPath, "data.") {
		return domain.ErrInvalidEnvelope
	}
	field := strings.TrimPrefix(expectedPath, "data.")
	var payload map[string]any
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		return domain.ErrInvalidEnvelope
	}
	v, ok := payload[field]
	if !ok || fmt.Sprint(v) != event.PartitionKey {
		return domain.ErrInvalidEnvelope
	}
	return nil
}
