package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-orchestra-be/internal/dto"
	"ai-orchestra-be/internal/websocket"
	"ai-orchestra-be/pkg/events"
	pktNats "ai-orchestra-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the in-process event bus and fans each
// response status event out to the websocket hub (live clients) and the
// NATS stream (external consumers). Either sink may be absent.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	wsHub     *websocket.Hub
	natsPub   *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	wsHub *websocket.Hub,
	natsPub *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		wsHub:     wsHub,
		natsPub:   natsPub,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
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
	var event dto.ResponseEventMessage
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		log.Printf("[ERROR] Failed to unmarshal response event: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.wsHub != nil {
		cs.wsHub.Send(event.UserId, event)
	}

	if cs.natsPub != nil {
		if err := cs.natsPub.Publish(ctx, events.NewResponseStatusEvent(event)); err != nil {
			log.Printf("[WARN] Failed to forward event to NATS: %v", err)
			// Websocket delivery already happened; do not retry the
			// whole message for a NATS hiccup.
		}
	}

	msg.Ack()
}
