// Package orchestration holds the contracts shared by the dive, verify,
// and work engines: the durable store they read and write, and the
// event notifier they report status transitions through.
package orchestration

import (
	"context"

	"ai-orchestra-be/internal/entity"

	"github.com/google/uuid"
)

// Store is the durable record of conversations and responses. All
// operations are assumed immediately consistent from the caller's point
// of view.
type Store interface {
	CreateConversation(ctx context.Context, conversation *entity.Conversation) error
	GetConversation(ctx context.Context, id uuid.UUID) (*entity.Conversation, error)
	UpdateConversation(ctx context.Context, conversation *entity.Conversation) error

	CreateResponse(ctx context.Context, response *entity.Response) error
	GetResponse(ctx context.Context, id uuid.UUID) (*entity.Response, error)
	UpdateResponse(ctx context.Context, response *entity.Response) error
	ListResponses(ctx context.Context, conversationID uuid.UUID) ([]*entity.Response, error)
}
