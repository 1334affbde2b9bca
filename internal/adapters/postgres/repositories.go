package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

// Repositories bundles the Postgres-backed implementations of the storage ports.
type Repositories struct {
	Contacts     *ContactRepository
	Interactions *InteractionRepository
	Transitions  *StageTransitionRepository
	DailyActions *DailyActionRepository
	Idempotency  *IdempotencyRepository
	Outbox       *OutboxRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Contacts:     &ContactRepository{db: db},
		Interactions: &InteractionRepository{db: db},
		Transitions:  &StageTransitionRepository{db: db},
		DailyActions: &DailyActionRepository{db: db},
		Idempotency:  &IdempotencyRepository{db: db},
		Outbox:       &OutboxRepository{db: db},
	}
}

type ContactRepository struct {
	db *gorm.DB
}

var _ ports.ContactRepository = (*ContactRepository)(nil)

func (r *ContactRepository) Create(ctx context.Context, row domain.ContactRecord) error {
	err := r.db.WithContext(ctx).Create(toContactModel(row)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("contact %s: %w", row.ContactID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, row domain.ContactRecord) error {
	res := r.db.WithContext(ctx).
		Model(&contactModel{}).
		Where("contact_id = ? AND agent_id = ?", row.ContactID, row.AgentID).
		Select("*").
		Omit("contact_id", "agent_id", "created_at").
		Updates(toContactModel(row))
	if res.Error != nil {
		return fmt.Errorf("update contact: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact %s: %w", row.ContactID, domain.ErrNotFound)
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, agentID, contactID string) (domain.ContactRecord, error) {
	var m contactModel
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND agent_id = ?", contactID, agentID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ContactRecord{}, fmt.Errorf("contact %s: %w", contactID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.ContactRecord{}, fmt.Errorf("get contact: %w", err)
	}
	return fromContactModel(m), nil
}

func (r *ContactRepository) ListByAgent(ctx context.Context, agentID string) ([]domain.ContactRecord, error) {
	var models []contactModel
	err := r.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	rows := make([]domain.ContactRecord, 0, len(models))
	for _, m := range models {
		rows = append(rows, fromContactModel(m))
	}
	return rows, nil
}

type InteractionRepository struct {
	db *gorm.DB
}

var _ ports.InteractionRepository = (*InteractionRepository)(nil)

func (r *InteractionRepository) Create(ctx context.Context, row domain.Interaction) error {
	if err := r.db.WithContext(ctx).Create(toInteractionModel(row)).Error; err != nil {
		return fmt.Errorf("create interaction: %w", err)
	}
	return nil
}

func (r *InteractionRepository) ListByContact(ctx context.Context, agentID, contactID string, limit int) ([]domain.Interaction, error) {
	var models []interactionModel
	q := r.db.WithContext(ctx).
		Where("agent_id = ? AND contact_id = ?", agentID, contactID).
		Order("occurred_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	rows := make([]domain.Interaction, 0, len(models))
	for _, m := range models {
		rows = append(rows, fromInteractionModel(m))
	}
	return rows, nil
}

type StageTransitionRepository struct {
	db *gorm.DB
}

var _ ports.StageTransitionRepository = (*StageTransitionRepository)(nil)

func (r *StageTransitionRepository) Create(ctx context.Context, row domain.StageTransition) error {
	if err := r.db.WithContext(ctx).Create(toTransitionModel(row)).Error; err != nil {
		return fmt.Errorf("create stage transition: %w", err)
	}
	return nil
}

func (r *StageTransitionRepository) ListByContact(ctx context.Context, agentID, contactID string, limit int) ([]domain.StageTransition, error) {
	var models []stageTransitionModel
	q := r.db.WithContext(ctx).
		Where("agent_id = ? AND contact_id = ?", agentID, contactID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list stage transitions: %w", err)
	}
	rows := make([]domain.StageTransition, 0, len(models))
	for _, m := range models {
		rows = append(rows, fromTransitionModel(m))
	}
	return rows, nil
}

type DailyActionRepository struct {
	db *gorm.DB
}

var _ ports.DailyActionRepository = (*DailyActionRepository)(nil)

func (r *DailyActionRepository) Upsert(ctx context.Context, row domain.DailyActionEntry) error {
	m, err := toDailyActionModel(row)
	if err != nil {
		return fmt.Errorf("daily action: %w", domain.ErrInvalidInput)
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "agent_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("upsert daily action: %w", err)
	}
	return nil
}

func (r *DailyActionRepository) ListRecent(ctx context.Context, agentID string, since string) ([]domain.DailyActionEntry, error) {
	sinceDay, err := time.Parse(dayColumnFormat, since)
	if err != nil {
		return nil, fmt.Errorf("since %q: %w", since, domain.ErrInvalidInput)
	}
	var models []dailyActionModel
	err = r.db.WithContext(ctx).
		Where("agent_id = ? AND day >= ?", agentID, sinceDay).
		Order("day ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list daily actions: %w", err)
	}
	rows := make([]domain.DailyActionEntry, 0, len(models))
	for _, m := range models {
		rows = append(rows, fromDailyActionModel(m))
	}
	return rows, nil
}

type IdempotencyRepository struct {
	db *gorm.DB
}

var _ ports.IdempotencyRepository = (*IdempotencyRepository)(nil)

func (r *IdempotencyRepository) Get(ctx context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	var m idempotencyModel
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ? AND expires_at > ?", key, now).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get idempotency record: %w", err)
	}
	return &ports.IdempotencyRecord{
		Key:          m.IdempotencyKey,
		RequestHash:  m.RequestHash,
		ResponseCode: m.ResponseCode,
		ResponseBody: m.ResponseBody,
		ExpiresAt:    m.ExpiresAt,
	}, nil
}

func (r *IdempotencyRepository) Reserve(ctx context.Context, key, requestHash string, expiresAt time.Time) error {
	m := idempotencyModel{
		IdempotencyKey: key,
		RequestHash:    requestHash,
		ExpiresAt:      expiresAt,
	}
	err := r.db.WithContext(ctx).Create(&m).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("idempotency key %s: %w", key, domain.ErrIdempotencyConflict)
	}
	if err != nil {
		return fmt.Errorf("reserve idempotency key: %w", err)
	}
	return nil
}

func (r *IdempotencyRepository) Complete(ctx context.Context, key string, responseCode int, responseBody []byte, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&idempotencyModel{}).
		Where("idempotency_key = ?", key).
		Updates(map[string]any{
			"response_code": responseCode,
			"response_body": responseBody,
		})
	if res.Error != nil {
		return fmt.Errorf("complete idempotency record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("idempotency key %s: %w", key, domain.ErrNotFound)
	}
	return nil
}

type OutboxRepository struct {
	db *gorm.DB
}

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

func (r *OutboxRepository) Enqueue(ctx context.Context, record ports.OutboxRecord) error {
	m, err := toOutboxModel(record)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("enqueue outbox record: %w", err)
	}
	return nil
}

func (r *OutboxRepository) ListPending(ctx context.Context, limit int) ([]ports.OutboxRecord, error) {
	var models []outboxModel
	q := r.db.WithContext(ctx).
		Where("sent_at IS NULL").
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list pending outbox records: %w", err)
	}
	rows := make([]ports.OutboxRecord, 0, len(models))
	for _, m := range models {
		record, err := fromOutboxModel(m)
		if err != nil {
			return nil, err
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func (r *OutboxRepository) MarkSent(ctx context.Context, recordID string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("record_id = ? AND sent_at IS NULL", recordID).
		Update("sent_at", at)
	if res.Error != nil {
		return fmt.Errorf("mark outbox record sent: %w", res.Error)
	}
	return nil
}
