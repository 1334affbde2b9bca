// Package memory holds map-backed implementations of the storage and cache
// ports for unit tests and single-process runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/domain"
	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

type Repositories struct {
	Contacts     *ContactRepository
	Interactions *InteractionRepository
	Transitions  *StageTransitionRepository
	DailyActions *DailyActionRepository
	Idempotency  *IdempotencyRepository
	Outbox       *OutboxRepository
	EventDedup   *EventDedupStore
	FocusCache   *FocusListCache
}

func NewRepositories() *Repositories {
	return &Repositories{
		Contacts:     &ContactRepository{records: map[string]domain.ContactRecord{}},
		Interactions: &InteractionRepository{records: map[string][]domain.Interaction{}},
		Transitions:  &StageTransitionRepository{records: map[string][]domain.StageTransition{}},
		DailyActions: &DailyActionRepository{records: map[string]domain.DailyActionEntry{}},
		Idempotency:  &IdempotencyRepository{records: map[string]ports.IdempotencyRecord{}},
		Outbox:       &OutboxRepository{records: map[string]ports.OutboxRecord{}},
		EventDedup:   &EventDedupStore{records: map[string]dedupRecord{}},
		FocusCache:   &FocusListCache{records: map[string]cachedPayload{}},
	}
}

type ContactRepository struct {
	mu      sync.RWMutex
	records map[string]domain.ContactRecord
	order   []string
}

var _ ports.ContactRepository = (*ContactRepository)(nil)

func (r *ContactRepository) Create(_ context.Context, row domain.ContactRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[row.ContactID]; exists {
		return fmt.Errorf("contact %s: %w", row.ContactID, domain.ErrConflict)
	}
	r.records[row.ContactID] = row
	r.order = append(r.order, row.ContactID)
	return nil
}

func (r *ContactRepository) Update(_ context.Context, row domain.ContactRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[row.ContactID]
	if !ok || existing.AgentID != row.AgentID {
		return fmt.Errorf("contact %s: %w", row.ContactID, domain.ErrNotFound)
	}
	r.records[row.ContactID] = row
	return nil
}

func (r *ContactRepository) GetByID(_ context.Context, agentID, contactID string) (domain.ContactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.records[contactID]
	if !ok || row.AgentID != agentID {
		return domain.ContactRecord{}, fmt.Errorf("contact %s: %w", contactID, domain.ErrNotFound)
	}
	return row, nil
}

func (r *ContactRepository) ListByAgent(_ context.Context, agentID string) ([]domain.ContactRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]domain.ContactRecord, 0, len(r.order))
	for _, id := range r.order {
		row, ok := r.records[id]
		if ok && row.AgentID == agentID {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

type InteractionRepository struct {
	mu      sync.RWMutex
	records map[string][]domain.Interaction
}

var _ ports.InteractionRepository = (*InteractionRepository)(nil)

func (r *InteractionRepository) Create(_ context.Context, row domain.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[row.ContactID] = append(r.records[row.ContactID], row)
	return nil
}

func (r *InteractionRepository) ListByContact(_ context.Context, agentID, contactID string, limit int) ([]domain.Interaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]domain.Interaction, 0)
	for _, row := range r.records[contactID] {
		if row.AgentID == agentID {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].OccurredAt.After(rows[j].OccurredAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type StageTransitionRepository struct {
	mu      sync.RWMutex
	records map[string][]domain.StageTransition
}

var _ ports.StageTransitionRepository = (*StageTransitionRepository)(nil)

func (r *StageTransitionRepository) Create(_ context.Context, row domain.StageTransition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[row.ContactID] = append(r.records[row.ContactID], row)
	return nil
}

func (r *StageTransitionRepository) ListByContact(_ context.Context, agentID, contactID string, limit int) ([]domain.StageTransition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]domain.StageTransition, 0)
	for _, row := range r.records[contactID] {
		if row.AgentID == agentID {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

type DailyActionRepository struct {
	mu      sync.RWMutex
	records map[string]domain.DailyActionEntry
}

var _ ports.DailyActionRepository = (*DailyActionRepository)(nil)

func dailyActionKey(agentID, day string) string { return agentID + "|" + day }

func (r *DailyActionRepository) Upsert(_ context.Context, row domain.DailyActionEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[dailyActionKey(row.AgentID, row.Day)] = row
	return nil
}

func (r *DailyActionRepository) ListRecent(_ context.Context, agentID string, since string) ([]domain.DailyActionEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]domain.DailyActionEntry, 0)
	for _, row := range r.records {
		if row.AgentID == agentID && row.Day >= since {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Day < rows[j].Day })
	return rows, nil
}

type IdempotencyRepository struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
}

var _ ports.IdempotencyRepository = (*IdempotencyRepository)(nil)

func (r *IdempotencyRepository) Get(_ context.Context, key string, now time.Time) (*ports.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.records[key]
	if !ok || !row.ExpiresAt.After(now) {
		return nil, nil
	}
	record := row
	return &record, nil
}

func (r *IdempotencyRepository) Reserve(_ context.Context, key, requestHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[key]; exists {
		return fmt.Errorf("idempotency key %s: %w", key, domain.ErrIdempotencyConflict)
	}
	r.records[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, ExpiresAt: expiresAt}
	return nil
}

func (r *IdempotencyRepository) Complete(_ context.Context, key string, responseCode int, responseBody []byte, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.records[key]
	if !ok {
		return fmt.Errorf("idempotency key %s: %w", key, domain.ErrNotFound)
	}
	row.ResponseCode = responseCode
	row.ResponseBody = responseBody
	r.records[key] = row
	return nil
}

type OutboxRepository struct {
	mu      sync.RWMutex
	records map[string]ports.OutboxRecord
	order   []string
}

var _ ports.OutboxRepository = (*OutboxRepository)(nil)

func (r *OutboxRepository) Enqueue(_ context.Context, record ports.OutboxRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.RecordID] = record
	r.order = append(r.order, record.RecordID)
	return nil
}

func (r *OutboxRepository) ListPending(_ context.Context, limit int) ([]ports.OutboxRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := make([]ports.OutboxRecord, 0)
	for _, id := range r.order {
		record := r.records[id]
		if record.SentAt != nil {
			continue
		}
		rows = append(rows, record)
		if limit > 0 && len(rows) == limit {
			break
		}
	}
	return rows, nil
}

func (r *OutboxRepository) MarkSent(_ context.Context, recordID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[recordID]
	if !ok {
		return fmt.Errorf("outbox record %s: %w", recordID, domain.ErrNotFound)
	}
	sent := at
	record.SentAt = &sent
	r.records[recordID] = record
	return nil
}

type dedupRecord struct {
	eventType string
	expiresAt time.Time
}

type EventDedupStore struct {
	mu      sync.RWMutex
	records map[string]dedupRecord
}

var _ ports.EventDedupStore = (*EventDedupStore)(nil)

func (s *EventDedupStore) IsDuplicate(_ context.Context, eventID string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.records[eventID]
	return ok && row.expiresAt.After(now), nil
}

func (s *EventDedupStore) MarkProcessed(_ context.Context, eventID, eventType string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[eventID] = dedupRecord{eventType: eventType, expiresAt: expiresAt}
	return nil
}

type cachedPayload struct {
	payload   []byte
	expiresAt time.Time
}

type FocusListCache struct {
	mu      sync.RWMutex
	records map[string]cachedPayload
	nowFn   func() time.Time
}

var _ ports.FocusListCache = (*FocusListCache)(nil)

func (c *FocusListCache) now() time.Time {
	if c.nowFn != nil {
		return c.nowFn()
	}
	return time.Now().UTC()
}

func (c *FocusListCache) Get(_ context.Context, agentID string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	row, ok := c.records[agentID]
	if !ok || !row.expiresAt.After(c.now()) {
		return nil, false, nil
	}
	return row.payload, true, nil
}

func (c *FocusListCache) Set(_ context.Context, agentID string, payload []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[agentID] = cachedPayload{payload: payload, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *FocusListCache) Invalidate(_ context.Context, agentID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.records, agentID)
	return nil
}
