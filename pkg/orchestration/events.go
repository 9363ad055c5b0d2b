package orchestration

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ResponseEvent is emitted on every response status transition so
// clients can follow progress without polling.
type ResponseEvent struct {
	UserId         uuid.UUID `json:"user_id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	ResponseId     uuid.UUID `json:"response_id"`
	Provider       string    `json:"provider"`
	Status         string    `json:"status"`
	WorkStep       string    `json:"work_step,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Notifier receives response status transitions. Implementations must
// not block the calling goroutine on slow consumers.
type Notifier interface {
	ResponseUpdated(ctx context.Context, event ResponseEvent)
}

// NopNotifier discards all events. Used where no event pipeline is
// wired (tests, CLI runs).
type NopNotifier struct{}

func (NopNotifier) ResponseUpdated(ctx context.Context, event ResponseEvent) {}
