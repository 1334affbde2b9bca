package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
	CanonicalEventClassOps           = "ops"
)

const (
	EventConversationAnalyzed = "conversation.analyzed"
	EventInteractionLogged    = "contact.interaction_logged"
	EventStageAdvanced        = "contact.stage_advanced"
	EventFollowupDue          = "contact.followup_due"
	EventPriorityUpdated      = "contact.priority_updated"
)
