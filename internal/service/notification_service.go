package service

import (
	"context"
	"fmt"
	"strings"

	"ai-research-be/internal/dto"
	"ai-research-be/internal/pkg/logger"
	"ai-research-be/internal/pkg/mailer"
	"ai-research-be/pkg/events"
	pktNats "ai-research-be/pkg/nats" // Renamed to avoid collision
)

// NotificationService relays bus events to live dashboard watchers and, for
// finished sessions, sends the summary by email. Because it consumes NATS it
// also picks up events produced by other instances.
type NotificationService struct {
	subscriber   *pktNats.Subscriber
	delivery     StepDelivery
	emailService mailer.IEmailService
	notifyEmail  string
	logger       logger.ILogger
}

func NewNotificationService(
	sub *pktNats.Subscriber,
	delivery StepDelivery,
	emailService mailer.IEmailService,
	notifyEmail string,
	log logger.ILogger,
) *NotificationService {
	return &NotificationService{
		subscriber:   sub,
		delivery:     delivery,
		emailService: emailService,
		notifyEmail:  notifyEmail,
		logger:       log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	// Subscribe to all events with a durable consumer
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// Strip "events." prefix from type if present (NATS subject includes stream name)
	typeCode := strings.TrimPrefix(event.EventType(), "events.")
	payload := event.Payload()

	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", typeCode), map[string]interface{}{"type": typeCode})

	sessionID, _ := payload["session_id"].(string)

	switch typeCode {
	case events.TypeResearchEscalated:
		if s.delivery != nil && sessionID != "" {
			recommendation, _ := payload["recommendation"].(string)
			s.delivery.Send(sessionID, dto.StepEvent{
				SessionId: sessionID,
				Phase:     "escalate",
				Decision:  "escalate",
				Summary:   recommendation,
			})
		}

	case events.TypeResearchCompleted:
		query, _ := payload["query"].(string)
		summary, _ := payload["summary"].(string)

		if s.emailService != nil && s.notifyEmail != "" {
			if err := s.emailService.SendResearchCompleted(s.notifyEmail, query, summary); err != nil {
				s.logger.Warn("NotificationService", "Failed to send completion email", map[string]interface{}{
					"session_id": sessionID,
					"error":      err.Error(),
				})
			}
		}
	}

	return nil
}
