package sse

import (
	"encoding/json"
	"log/slog"

	"github.com/gysagsohn/game-tracker-server/internal/api/response"
	"github.com/gysagsohn/game-tracker-server/internal/model"
)

// EventNotification is the SSE event name for a new notification
const EventNotification = "notification"

// Publisher pushes stored notifications to the recipient's open streams
type Publisher struct {
	manager *HubManager
	logger  *slog.Logger
}

// NewPublisher creates a Publisher over manager
func NewPublisher(manager *HubManager, logger *slog.Logger) *Publisher {
	return &Publisher{manager: manager, logger: logger}
}

// PublishNotification sends n to its recipient if they are connected
func (p *Publisher) PublishNotification(n *model.Notification) {
	hub := p.manager.GetHub(n.Recipient)
	if hub == nil {
		return
	}
	data, err := json.Marshal(response.NotificationFromModel(n))
	if err != nil {
		p.logger.Error("sse failed to encode notification",
			slog.String("notification_id", string(n.ID)),
			slog.String("error", err.Error()))
		return
	}
	hub.BroadcastEvent(EventNotification, string(data))
}
