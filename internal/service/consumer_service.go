package service

import (
	"context"
	"encoding/json"

	"ai-guidance-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains turn events from the in-process bus and writes
// them to the isolated analytics log, keeping the request path free of any
// bookkeeping work.
type consumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	analyticsLog logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	analyticsLog logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		analyticsLog: analyticsLog,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	for msg := range messages {
		var envelope turnEventEnvelope
		if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
			cs.analyticsLog.Warn("consumer", "Dropping malformed turn event", map[string]interface{}{
				"error": err.Error(),
			})
			msg.Ack()
			continue
		}

		cs.analyticsLog.Info("consumer", "Turn synthesized", map[string]interface{}{
			"type":        envelope.Type,
			"occurred_at": envelope.OccurredAt,
			"data":        envelope.Data,
		})

		msg.Ack()
	}

	return nil
}
