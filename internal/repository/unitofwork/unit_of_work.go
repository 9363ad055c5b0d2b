package unitofwork

import (
	"context"

	"ai-orchestra-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ConversationRepository() contract.ConversationRepository
	ResponseRepository() contract.ResponseRepository
}
