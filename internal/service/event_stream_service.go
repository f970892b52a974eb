package service

import (
	"context"
	"fmt"

	"chat-guardian-be/internal/pkg/logger"
	"chat-guardian-be/pkg/events"
	pktNats "chat-guardian-be/pkg/nats"
)

// EventDelivery defines how to push real-time pipeline events.
// Typically implemented by the WebSocket Hub.
type EventDelivery interface {
	Broadcast(event events.Event)
}

// EventStreamService relays guardian pipeline events from the NATS bus to
// connected operator dashboards: rejected turns, degraded passes, memory
// outages, ingest completions and settings changes.
type EventStreamService struct {
	subscriber *pktNats.Subscriber
	delivery   EventDelivery
	logger     logger.ILogger
}

func NewEventStreamService(sub *pktNats.Subscriber, delivery EventDelivery, log logger.ILogger) *EventStreamService {
	return &EventStreamService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *EventStreamService) Start() {
	err := s.subscriber.Subscribe("events.>", "event-stream-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("EventStreamService", "Failed to start event subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("EventStreamService", "Event stream started, listening to events.>", nil)
}

func (s *EventStreamService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("EventStreamService", fmt.Sprintf("Relaying event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	if s.delivery != nil {
		s.delivery.Broadcast(event)
	}
	return nil
}
