package service

import (
	"encoding/json"
	"fmt"
	"time"

	"ai-guidance-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// turnEventEnvelope is the wire shape on the in-process bus.
type turnEventEnvelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

// PublisherService pushes domain events onto the in-process watermill bus
// for the analytics consumer.
type PublisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) *PublisherService {
	return &PublisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *PublisherService) Publish(event events.Event) error {
	payload, err := json.Marshal(turnEventEnvelope{
		Type:       event.EventType(),
		OccurredAt: event.Timestamp(),
		Data:       event.Payload(),
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return ps.pubSub.Publish(ps.topicName, msg)
}
