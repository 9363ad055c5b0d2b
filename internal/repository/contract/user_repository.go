package contract

import (
	"context"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}
