package ports

import (
	"context"
	"time"
)

// EventDedupStore remembers processed event IDs for the dedup TTL so replayed
// canonical events are dropped instead of re-applied.
type EventDedupStore interface {
	IsDuplicate(ctx context.Context, eventID string, now time.Time) (bool, error)
	MarkProcessed(ctx context.Context, eventID, eventType string, expiresAt time.Time) error
}

// FocusListCache holds a short-lived serialized copy of an agent's daily focus
// list so dashboard refreshes don't rescore the whole book on every read.
type FocusListCache interface {
	Get(ctx context.Context, agentID string) ([]byte, bool, error)
	Set(ctx context.Context, agentID string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, agentID string) error
}
