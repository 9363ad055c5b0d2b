package contract

import (
	"context"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/repository/specification"
)

type ResponseRepository interface {
	Create(ctx context.Context, response *entity.Response) error
	Update(ctx context.Context, response *entity.Response) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Response, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Response, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
