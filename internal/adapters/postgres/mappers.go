package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/contracts"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

const dayColumnFormat = "2006-01-02"

func toContactModel(r domain.ContactRecord) contactModel {
	return contactModel{
		ContactID:       r.ContactID,
		AgentID:         r.AgentID,
		Name:            r.Name,
		PipelineStage:   string(r.Stage),
		MotivationLevel: string(r.Motivation),
		Timeframe:       string(r.Timeframe),
		Preapproved:     r.Preapproved,
		PriorityScore:   r.PriorityScore,
		SevenDayFlag:    r.SevenDayFlag,
		LastContactAt:   r.LastContactAt,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func fromContactModel(m contactModel) domain.ContactRecord {
	return domain.ContactRecord{
		ContactID:     m.ContactID,
		AgentID:       m.AgentID,
		Name:          m.Name,
		Stage:         domain.PipelineStage(m.PipelineStage),
		Motivation:    domain.Motivation(m.MotivationLevel),
		Timeframe:     domain.Timeframe(m.Timeframe),
		Preapproved:   m.Preapproved,
		PriorityScore: m.PriorityScore,
		SevenDayFlag:  m.SevenDayFlag,
		LastContactAt: m.LastContactAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func toInteractionModel(r domain.Interaction) interactionModel {
	return interactionModel{
		InteractionID:   r.InteractionID,
		ContactID:       r.ContactID,
		AgentID:         r.AgentID,
		InteractionType: r.InteractionType,
		Notes:           r.Notes,
		OccurredAt:      r.OccurredAt,
		CreatedAt:       r.OccurredAt,
	}
}

func fromInteractionModel(m interactionModel) domain.Interaction {
	return domain.Interaction{
		InteractionID:   m.InteractionID,
		ContactID:       m.ContactID,
		AgentID:         m.AgentID,
		InteractionType: m.InteractionType,
		Notes:           m.Notes,
		OccurredAt:      m.OccurredAt,
	}
}

func toTransitionModel(r domain.StageTransition) stageTransitionModel {
	return stageTransitionModel{
		TransitionID: r.TransitionID,
		ContactID:    r.ContactID,
		AgentID:      r.AgentID,
		FromStage:    string(r.FromStage),
		ToStage:      string(r.ToStage),
		Confidence:   r.Confidence,
		Trigger:      r.Trigger,
		Rationale:    r.Rationale,
		CreatedAt:    r.CreatedAt,
	}
}

func fromTransitionModel(m stageTransitionModel) domain.StageTransition {
	return domain.StageTransition{
		TransitionID: m.TransitionID,
		ContactID:    m.ContactID,
		AgentID:      m.AgentID,
		FromStage:    domain.PipelineStage(m.FromStage),
		ToStage:      domain.PipelineStage(m.ToStage),
		Confidence:   m.Confidence,
		Trigger:      m.Trigger,
		Rationale:    m.Rationale,
		CreatedAt:    m.CreatedAt,
	}
}

func toDailyActionModel(r domain.DailyActionEntry) (dailyActionModel, error) {
	day, err := time.Parse(dayColumnFormat, r.Day)
	if err != nil {
		return dailyActionModel{}, fmt.Errorf("parse day %q: %w", r.Day, err)
	}
	return dailyActionModel{
		AgentID:   r.AgentID,
		Day:       day,
		Completed: r.Completed,
		UpdatedAt: r.UpdatedAt,
	}, nil
}

func fromDailyActionModel(m dailyActionModel) domain.DailyActionEntry {
	return domain.DailyActionEntry{
		AgentID:   m.AgentID,
		Day:       m.Day.Format(dayColumnFormat),
		Completed: m.Completed,
		UpdatedAt: m.UpdatedAt,
	}
}

func toOutboxModel(r ports.OutboxRecord) (outboxModel, error) {
	raw, err := json.Marshal(r.Envelope)
	if err != nil {
		return outboxModel{}, fmt.Errorf("marshal envelope: %w", err)
	}
	return outboxModel{
		RecordID:   r.RecordID,
		EventClass: r.EventClass,
		Envelope:   raw,
		CreatedAt:  r.CreatedAt,
		SentAt:     r.SentAt,
	}, nil
}

func fromOutboxModel(m outboxModel) (ports.OutboxRecord, error) {
	var envelope contracts.EventEnvelope
	if err := json.Unmarshal(m.Envelope, &envelope); err != nil {
		return ports.OutboxRecord{}, fmt.Errorf("unmarshal envelope %s: %w", m.RecordID, err)
	}
	return ports.OutboxRecord{
		RecordID:   m.RecordID,
		EventClass: m.EventClass,
		Envelope:   envelope,
		CreatedAt:  m.CreatedAt,
		SentAt:     m.SentAt,
	}, nil
}
