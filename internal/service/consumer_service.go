package service

import (
	"context"
	"encoding/json"

	"kisansetu-be/internal/pkg/logger"
	"kisansetu-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerModule = "CONSUMER"

type IConsumerService interface {
	// Consume reads the in-process topic until ctx ends.
	Consume(ctx context.Context) error

	// Audit records an event delivered by the durable broker.
	Audit(ctx context.Context, event events.Event) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	location   ILocationService
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	location ILocationService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		location:   location,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload events.Message
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal message", map[string]interface{}{"error": err.Error()})
		// Invalid payloads never succeed on retry.
		msg.Ack()
		return
	}

	switch payload.Type {
	case events.TypeProfileRegistered:
		cs.warmLocation(ctx, payload.Data)
	default:
		cs.logger.Debug(consumerModule, "Event received", map[string]interface{}{"type": payload.Type})
	}
	msg.Ack()
}

// warmLocation fills the place and weather caches for a freshly registered
// farm so the first home screen load does not wait on upstream APIs.
func (cs *consumerService) warmLocation(ctx context.Context, data map[string]interface{}) {
	lat, okLat := data["latitude"].(float64)
	lng, okLng := data["longitude"].(float64)
	if !okLat || !okLng {
		return
	}

	place, err := cs.location.ReversePlace(ctx, lat, lng, "")
	if err != nil {
		cs.logger.Warn(consumerModule, "Place warmup failed", map[string]interface{}{"error": err.Error()})
	}
	if _, err := cs.location.CurrentWeather(ctx, lat, lng); err != nil {
		cs.logger.Warn(consumerModule, "Weather warmup failed", map[string]interface{}{"error": err.Error()})
	}

	details := map[string]interface{}{"profile_id": data["profile_id"]}
	if place != nil {
		details["place"] = place.Name
	}
	cs.logger.Info(consumerModule, "Location cache warmed", details)
}

func (cs *consumerService) Audit(ctx context.Context, event events.Event) error {
	details := map[string]interface{}{"type": event.EventType(), "occurred_at": event.Timestamp()}
	for k, v := range event.Payload() {
		details[k] = v
	}
	cs.logger.Info(consumerModule, "Audit", details)
	return nil
}
