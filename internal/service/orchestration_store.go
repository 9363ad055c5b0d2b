package service

import (
	"context"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/repository/specification"
	"ai-orchestra-be/internal/repository/unitofwork"
	"ai-orchestra-be/pkg/orchestration"

	"github.com/google/uuid"
)

// orchestrationStore adapts the repository layer to the Store contract
// the dive, verify, and work engines depend on. Each call runs in its
// own unit of work; the engines never span a transaction.
type orchestrationStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewOrchestrationStore(uowFactory unitofwork.RepositoryFactory) orchestration.Store {
	return &orchestrationStore{uowFactory: uowFactory}
}

func (s *orchestrationStore) CreateConversation(ctx context.Context, conversation *entity.Conversation) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationRepository().Create(ctx, conversation)
}

func (s *orchestrationStore) GetConversation(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *orchestrationStore) UpdateConversation(ctx context.Context, conversation *entity.Conversation) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ConversationRepository().Update(ctx, conversation)
}

func (s *orchestrationStore) CreateResponse(ctx context.Context, response *entity.Response) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ResponseRepository().Create(ctx, response)
}

func (s *orchestrationStore) GetResponse(ctx context.Context, id uuid.UUID) (*entity.Response, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ResponseRepository().FindOne(ctx, specification.ByID{ID: id})
}

func (s *orchestrationStore) UpdateResponse(ctx context.Context, response *entity.Response) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ResponseRepository().Update(ctx, response)
}

func (s *orchestrationStore) ListResponses(ctx context.Context, conversationID uuid.UUID) ([]*entity.Response, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.ResponseRepository().FindAll(ctx,
		specification.ByConversationID{ConversationID: conversationID},
		specification.OrderBy{Field: "created_at"},
	)
}
