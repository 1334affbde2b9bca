package ports

import "context"

// ConversationReader fronts the conversation-analysis service. The engine never
// analyzes language itself; it consumes the derived booleans.
type ConversationReader interface {
	GetConversationInsights(ctx context.Context, agentID, contactID string) (ConversationInsights, error)
}

type ConversationInsights struct {
	ContactID          string
	HasTimeframe       bool
	PropertyIdentified bool
	MotivationLevel    string
	HadShowings        bool
	OfferAccepted      bool
	ClosingCompleted   bool
}

// NotificationReader fronts the notification service's preference lookup so the
// worker knows whether a follow-up reminder should be emitted for an agent.
type NotificationReader interface {
	GetNotificationPreferences(ctx context.Context, agentID string) (NotificationPreferences, error)
}

type NotificationPreferences struct {
	AgentID        string
	PushEnabled    bool
	EmailEnabled   bool
	QuietHoursFrom int
	QuietHoursTo   int
}
