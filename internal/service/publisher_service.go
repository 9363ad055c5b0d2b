package service

import (
	"context"
	"encoding/json"

	"ai-orchestra-be/internal/dto"
	"ai-orchestra-be/pkg/orchestration"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	orchestration.Notifier
	Publish(ctx context.Context, payload []byte) error
}

// publisherService pushes messages onto the in-process event bus. It
// doubles as the Notifier the orchestration engines report status
// transitions through.
type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) Publish(ctx context.Context, payload []byte) error {
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topicName, msg)
}

// ResponseUpdated implements orchestration.Notifier. Publish on the
// gochannel bus never blocks on consumers, so the engines stay
// decoupled from delivery.
func (p *publisherService) ResponseUpdated(ctx context.Context, event orchestration.ResponseEvent) {
	payload, err := json.Marshal(dto.ResponseEventMessage{
		UserId:         event.UserId,
		ConversationId: event.ConversationId,
		ResponseId:     event.ResponseId,
		Provider:       event.Provider,
		Status:         event.Status,
		WorkStep:       event.WorkStep,
		OccurredAt:     event.OccurredAt,
	})
	if err != nil {
		return
	}
	_ = p.Publish(ctx, payload)
}
