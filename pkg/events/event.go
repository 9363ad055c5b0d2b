package events

import (
	"time"

	"ai-orchestra-be/internal/dto"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RESPONSE_STATUS").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used for events rebuilt from
// the wire.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewResponseStatusEvent wraps a response status transition for the
// external event stream.
func NewResponseStatusEvent(msg dto.ResponseEventMessage) Event {
	return BaseEvent{
		Type: "RESPONSE_STATUS",
		Data: map[string]interface{}{
			"user_id":         msg.UserId.String(),
			"conversation_id": msg.ConversationId.String(),
			"response_id":     msg.ResponseId.String(),
			"provider":        msg.Provider,
			"status":          msg.Status,
			"work_step":       msg.WorkStep,
			"occurred_at":     msg.OccurredAt.Format(time.RFC3339),
		},
		OccurredAt: msg.OccurredAt,
	}
}
