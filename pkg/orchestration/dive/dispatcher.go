// Package dive implements simultaneous fan-out of one query to a set of
// selected providers. Each provider call is tracked by its own Response
// and resolves independently of the others.
package dive

import (
	"context"
	"time"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/pkg/logger"
	"ai-orchestra-be/pkg/orchestration"
	"ai-orchestra-be/pkg/provider"

	"github.com/google/uuid"
)

type Dispatcher struct {
	store    orchestration.Store
	registry *provider.Registry
	notifier orchestration.Notifier
	logger   logger.ILogger
}

func NewDispatcher(
	store orchestration.Store,
	registry *provider.Registry,
	notifier orchestration.Notifier,
	log logger.ILogger,
) *Dispatcher {
	if notifier == nil {
		notifier = orchestration.NopNotifier{}
	}
	return &Dispatcher{
		store:    store,
		registry: registry,
		notifier: notifier,
		logger:   log,
	}
}

// Dispatch creates one pending Response per provider synchronously, then
// invokes every adapter concurrently. It returns as soon as the
// placeholders exist; callers poll the store (or listen for events) for
// terminal updates. One provider's latency or failure never affects
// another's call.
func (d *Dispatcher) Dispatch(ctx context.Context, conversation *entity.Conversation, providers []string) ([]*entity.Response, error) {
	responses := make([]*entity.Response, 0, len(providers))
	now := time.Now()

	for _, providerID := range providers {
		response := &entity.Response{
			Id:                 uuid.New(),
			ConversationId:     conversation.Id,
			Provider:           providerID,
			Status:             entity.ResponseStatusPending,
			VerificationStatus: entity.VerificationStatusNone,
			CreatedAt:          now,
		}
		if err := d.store.CreateResponse(ctx, response); err != nil {
			return nil, err
		}
		responses = append(responses, response)
		d.notify(ctx, conversation.UserId, response)
	}

	for _, response := range responses {
		go d.resolve(conversation.UserId, conversation.Query, response)
	}

	return responses, nil
}

// resolve runs one provider call to its terminal state. It deliberately
// uses a fresh background context: the submitting HTTP request has
// already returned, and no cancellation primitive exists for in-flight
// provider calls.
func (d *Dispatcher) resolve(userID uuid.UUID, query string, response *entity.Response) {
	ctx := context.Background()

	adapter, ok := d.registry.Lookup(response.Provider)
	if !ok {
		// Validation happens before dispatch; reaching here means the
		// registry changed under us. Record it as a provider error.
		d.finish(ctx, userID, response, provider.Failure("unknown provider %s", response.Provider))
		return
	}

	result := adapter.Invoke(ctx, query)
	d.finish(ctx, userID, response, result)
}

func (d *Dispatcher) finish(ctx context.Context, userID uuid.UUID, response *entity.Response, result provider.Result) {
	if result.Success {
		response.Status = entity.ResponseStatusComplete
		response.Content = result.Content
	} else {
		response.Status = entity.ResponseStatusError
		response.Content = result.Error
	}

	if err := d.store.UpdateResponse(ctx, response); err != nil {
		d.logger.Error("DiveDispatcher", "Failed to persist terminal response", map[string]interface{}{
			"response_id": response.Id,
			"provider":    response.Provider,
			"error":       err.Error(),
		})
		return
	}

	d.logger.Info("DiveDispatcher", "Provider call resolved", map[string]interface{}{
		"response_id": response.Id,
		"provider":    response.Provider,
		"status":      response.Status,
	})
	d.notify(ctx, userID, response)
}

func (d *Dispatcher) notify(ctx context.Context, userID uuid.UUID, response *entity.Response) {
	d.notifier.ResponseUpdated(ctx, orchestration.ResponseEvent{
		UserId:         userID,
		ConversationId: response.ConversationId,
		ResponseId:     response.Id,
		Provider:       response.Provider,
		Status:         string(response.Status),
		WorkStep:       response.WorkStep,
		OccurredAt:     time.Now(),
	})
}
