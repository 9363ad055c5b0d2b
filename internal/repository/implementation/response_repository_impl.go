package implementation

import (
	"context"
	"errors"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/mapper"
	"ai-orchestra-be/internal/model"
	"ai-orchestra-be/internal/repository/contract"
	"ai-orchestra-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ResponseRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.OrchestrationMapper
}

func NewResponseRepository(db *gorm.DB) contract.ResponseRepository {
	return &ResponseRepositoryImpl{
		db:     db,
		mapper: mapper.NewOrchestrationMapper(),
	}
}

func (r *ResponseRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ResponseRepositoryImpl) Create(ctx context.Context, response *entity.Response) error {
	m := r.mapper.ResponseToModel(response)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*response = *r.mapper.ResponseToEntity(m)
	return nil
}

func (r *ResponseRepositoryImpl) Update(ctx context.Context, response *entity.Response) error {
	m := r.mapper.ResponseToModel(response)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*response = *r.mapper.ResponseToEntity(m)
	return nil
}

func (r *ResponseRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Response, error) {
	var m model.Response
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ResponseToEntity(&m), nil
}

func (r *ResponseRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Response, error) {
	var models []*model.Response
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ResponsesToEntities(models), nil
}

func (r *ResponseRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Response{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
