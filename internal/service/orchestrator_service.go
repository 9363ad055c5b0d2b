package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-orchestra-be/internal/constant"
	"ai-orchestra-be/internal/dto"
	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/pkg/logger"
	"ai-orchestra-be/internal/repository/specification"
	"ai-orchestra-be/internal/repository/unitofwork"
	"ai-orchestra-be/pkg/orchestration"
	"ai-orchestra-be/pkg/orchestration/dive"
	"ai-orchestra-be/pkg/orchestration/verify"
	"ai-orchestra-be/pkg/orchestration/work"
	"ai-orchestra-be/pkg/provider"

	"github.com/google/uuid"
)

type IOrchestratorService interface {
	Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitQueryRequest) (*dto.SubmitQueryResponse, error)
	GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error)
	GetConversation(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowConversationResponse, error)
	GetResponses(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.GetResponsesResponse, error)
	Verify(ctx context.Context, userId uuid.UUID, req *dto.VerifyResponseRequest) (*dto.VerifyResponseResponse, error)
	ShareCritique(ctx context.Context, userId uuid.UUID, responseId uuid.UUID) (*dto.ShareCritiqueResponse, error)
	ContinueWorkflow(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ContinueWorkflowResponse, error)
	AwardResponse(ctx context.Context, userId uuid.UUID, req *dto.AwardResponseRequest) (*dto.AwardResponseResponse, error)
	GetProviders(ctx context.Context) ([]*dto.ProviderInfoResponse, error)
}

type orchestratorService struct {
	uowFactory unitofwork.RepositoryFactory
	store      orchestration.Store
	registry   *provider.Registry
	dispatcher *dive.Dispatcher
	verifier   *verify.Verifier
	engine     *work.Engine
	logger     logger.ILogger
}

func NewOrchestratorService(
	uowFactory unitofwork.RepositoryFactory,
	store orchestration.Store,
	registry *provider.Registry,
	dispatcher *dive.Dispatcher,
	verifier *verify.Verifier,
	engine *work.Engine,
	log logger.ILogger,
) IOrchestratorService {
	return &orchestratorService{
		uowFactory: uowFactory,
		store:      store,
		registry:   registry,
		dispatcher: dispatcher,
		verifier:   verifier,
		engine:     engine,
		logger:     log,
	}
}

// Submit validates and routes a new query. Dive fans the query out to
// every selected provider at once; work plans a sequential workflow and
// starts its first step. Validation failures happen before any record
// is created.
func (s *orchestratorService) Submit(ctx context.Context, userId uuid.UUID, req *dto.SubmitQueryRequest) (*dto.SubmitQueryResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("query must not be empty")
	}
	if len(req.Providers) == 0 {
		return nil, errors.New("at least one provider must be selected")
	}
	for _, id := range req.Providers {
		if !s.registry.Known(id) {
			return nil, fmt.Errorf("unknown provider: %s", id)
		}
	}

	mode := entity.ConversationMode(req.Mode)
	if mode == entity.ModeTurn {
		return nil, errors.New("turn mode operates on an existing response; use the verify endpoint")
	}
	if mode == entity.ModeWork && len(req.Providers) > work.MaxSteps {
		return nil, work.ErrTooManyProviders
	}

	if err := s.ensureUser(ctx, userId); err != nil {
		return nil, err
	}

	conversation, err := s.resolveConversation(ctx, userId, mode, req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Orchestrator", "Query submitted", map[string]interface{}{
		"conversation_id": conversation.Id,
		"mode":            req.Mode,
		"providers":       req.Providers,
	})

	switch mode {
	case entity.ModeDive:
		responses, err := s.dispatcher.Dispatch(ctx, conversation, req.Providers)
		if err != nil {
			return nil, err
		}
		return &dto.SubmitQueryResponse{
			ConversationId: conversation.Id,
			Mode:           req.Mode,
			Responses:      toResponseOverviews(responses),
		}, nil

	case entity.ModeWork:
		if err := s.engine.Initialize(ctx, conversation, req.Providers); err != nil {
			return nil, err
		}
		pending, err := s.engine.Advance(ctx, conversation.Id)
		if err != nil {
			return nil, err
		}
		return &dto.SubmitQueryResponse{
			ConversationId: conversation.Id,
			Mode:           req.Mode,
			Responses:      toResponseOverviews([]*entity.Response{pending}),
			Workflow:       toWorkflowDTO(conversation.Workflow),
		}, nil
	}

	return nil, fmt.Errorf("unsupported mode: %s", req.Mode)
}

func (s *orchestratorService) GetConversations(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllConversationsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	conversations, err := uow.ConversationRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetAllConversationsResponse, 0, len(conversations))
	for _, conversation := range conversations {
		result = append(result, &dto.GetAllConversationsResponse{
			Id:        conversation.Id,
			Query:     conversation.Query,
			Mode:      string(conversation.Mode),
			CreatedAt: conversation.CreatedAt,
			UpdatedAt: conversation.UpdatedAt,
		})
	}
	return result, nil
}

func (s *orchestratorService) GetConversation(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowConversationResponse, error) {
	conversation, err := s.ownedConversation(ctx, userId, id)
	if err != nil {
		return nil, err
	}

	return &dto.ShowConversationResponse{
		Id:        conversation.Id,
		Query:     conversation.Query,
		Mode:      string(conversation.Mode),
		Workflow:  toWorkflowDTO(conversation.Workflow),
		CreatedAt: conversation.CreatedAt,
		UpdatedAt: conversation.UpdatedAt,
	}, nil
}

func (s *orchestratorService) GetResponses(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) ([]*dto.GetResponsesResponse, error) {
	if _, err := s.ownedConversation(ctx, userId, conversationId); err != nil {
		return nil, err
	}

	responses, err := s.store.ListResponses(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	result := make([]*dto.GetResponsesResponse, 0, len(responses))
	for _, response := range responses {
		item := &dto.GetResponsesResponse{
			Id:                 response.Id,
			Provider:           response.Provider,
			Content:            response.Content,
			Status:             string(response.Status),
			Award:              response.Award,
			WorkStep:           response.WorkStep,
			VerificationStatus: string(response.VerificationStatus),
			Rebuttal:           response.Metadata[constant.MetadataKeyRebuttal],
			CreatedAt:          response.CreatedAt,
		}
		for _, v := range response.Verifications {
			item.Verifications = append(item.Verifications, toVerificationDTO(v))
		}
		result = append(result, item)
	}
	return result, nil
}

// Verify runs one AI-to-AI critique cycle against a completed response.
func (s *orchestratorService) Verify(ctx context.Context, userId uuid.UUID, req *dto.VerifyResponseRequest) (*dto.VerifyResponseResponse, error) {
	if !s.registry.Known(req.Verifier) {
		return nil, fmt.Errorf("unknown provider: %s", req.Verifier)
	}
	if _, err := s.ownedResponse(ctx, userId, req.ResponseId); err != nil {
		return nil, err
	}

	verification, err := s.verifier.Verify(ctx, req.ResponseId, req.Verifier)
	if err != nil {
		return nil, err
	}

	return &dto.VerifyResponseResponse{
		ResponseId:   req.ResponseId,
		Verification: toVerificationDTO(*verification),
	}, nil
}

// ShareCritique forwards the latest critique back to the provider that
// produced the response and returns its rebuttal.
func (s *orchestratorService) ShareCritique(ctx context.Context, userId uuid.UUID, responseId uuid.UUID) (*dto.ShareCritiqueResponse, error) {
	if _, err := s.ownedResponse(ctx, userId, responseId); err != nil {
		return nil, err
	}

	rebuttal, err := s.verifier.ShareCritique(ctx, responseId)
	if err != nil {
		return nil, err
	}

	return &dto.ShareCritiqueResponse{
		ResponseId: responseId,
		Rebuttal:   rebuttal,
	}, nil
}

// ContinueWorkflow re-triggers a work conversation's next step. Used to
// resume a workflow stalled by a failed step; a duplicate trigger while
// a step is running is rejected by the engine.
func (s *orchestratorService) ContinueWorkflow(ctx context.Context, userId uuid.UUID, conversationId uuid.UUID) (*dto.ContinueWorkflowResponse, error) {
	conversation, err := s.ownedConversation(ctx, userId, conversationId)
	if err != nil {
		return nil, err
	}

	pending, err := s.engine.Advance(ctx, conversationId)
	if err != nil {
		return nil, err
	}

	overview := toResponseOverviews([]*entity.Response{pending})
	return &dto.ContinueWorkflowResponse{
		ConversationId: conversationId,
		Response:       overview[0],
		Workflow:       toWorkflowDTO(conversation.Workflow),
	}, nil
}

// AwardResponse tags a completed response with a user rating. The tag
// is stored verbatim and carries no orchestration semantics.
func (s *orchestratorService) AwardResponse(ctx context.Context, userId uuid.UUID, req *dto.AwardResponseRequest) (*dto.AwardResponseResponse, error) {
	response, err := s.ownedResponse(ctx, userId, req.ResponseId)
	if err != nil {
		return nil, err
	}
	if response.Status != entity.ResponseStatusComplete {
		return nil, errors.New("only complete responses can be awarded")
	}

	award := req.Award
	response.Award = &award
	if err := s.store.UpdateResponse(ctx, response); err != nil {
		return nil, err
	}

	return &dto.AwardResponseResponse{
		ResponseId: response.Id,
		Award:      award,
	}, nil
}

func (s *orchestratorService) GetProviders(ctx context.Context) ([]*dto.ProviderInfoResponse, error) {
	infos := s.registry.List()
	result := make([]*dto.ProviderInfoResponse, 0, len(infos))
	for _, info := range infos {
		result = append(result, &dto.ProviderInfoResponse{
			Id:         info.ID,
			Enabled:    info.Enabled,
			Configured: info.Configured,
		})
	}
	return result, nil
}

// ensureUser resolves the authenticated subject to a stored user row.
// Tokens are verified upstream; this rejects subjects that were never
// provisioned.
func (s *orchestratorService) ensureUser(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return err
	}
	if user == nil {
		return errors.New("user not found")
	}
	return nil
}

// resolveConversation returns the submission target: the caller's
// existing conversation when a conversation id was supplied, otherwise
// a freshly created one.
func (s *orchestratorService) resolveConversation(ctx context.Context, userId uuid.UUID, mode entity.ConversationMode, req *dto.SubmitQueryRequest) (*entity.Conversation, error) {
	if req.ConversationId != nil {
		conversation, err := s.ownedConversation(ctx, userId, *req.ConversationId)
		if err != nil {
			return nil, err
		}
		if conversation.Mode != mode {
			return nil, fmt.Errorf("conversation %s is a %s conversation, not %s", conversation.Id, conversation.Mode, mode)
		}
		// The adapters are invoked with the conversation's query, so a
		// follow-up submission replaces it.
		conversation.Query = req.Query
		if err := s.store.UpdateConversation(ctx, conversation); err != nil {
			return nil, err
		}
		return conversation, nil
	}

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    userId,
		Query:     req.Query,
		Mode:      mode,
		CreatedAt: time.Now(),
	}
	if err := s.store.CreateConversation(ctx, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

func (s *orchestratorService) ownedConversation(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Conversation, error) {
	conversation, err := s.store.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil || conversation.UserId != userId {
		return nil, errors.New("conversation not found")
	}
	return conversation, nil
}

func (s *orchestratorService) ownedResponse(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*entity.Response, error) {
	response, err := s.store.GetResponse(ctx, id)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, errors.New("response not found")
	}
	if _, err := s.ownedConversation(ctx, userId, response.ConversationId); err != nil {
		return nil, errors.New("response not found")
	}
	return response, nil
}

func toResponseOverviews(responses []*entity.Response) []*dto.ResponseOverview {
	result := make([]*dto.ResponseOverview, 0, len(responses))
	for _, response := range responses {
		result = append(result, &dto.ResponseOverview{
			Id:       response.Id,
			Provider: response.Provider,
			Status:   string(response.Status),
			WorkStep: response.WorkStep,
		})
	}
	return result
}

func toWorkflowDTO(workflow *entity.WorkflowState) *dto.WorkflowStateDTO {
	if workflow == nil {
		return nil
	}
	steps := make([]dto.WorkStepDTO, 0, len(workflow.Steps))
	for _, step := range workflow.Steps {
		steps = append(steps, dto.WorkStepDTO{
			Number:    step.Number,
			Provider:  step.Provider,
			Objective: step.Objective,
			Completed: step.Completed,
		})
	}
	return &dto.WorkflowStateDTO{
		Steps:            steps,
		CurrentStep:      workflow.CurrentStep,
		TotalSteps:       workflow.TotalSteps,
		CollaborativeDoc: workflow.CollaborativeDoc,
		Complete:         workflow.Complete(),
	}
}

func toVerificationDTO(v entity.VerificationResult) dto.VerificationResultDTO {
	return dto.VerificationResultDTO{
		Verifier:          v.Verifier,
		AccuracyScore:     v.AccuracyScore,
		FactualErrors:     v.FactualErrors,
		Strengths:         v.Strengths,
		Weaknesses:        v.Weaknesses,
		OverallAssessment: v.OverallAssessment,
		Recommendations:   v.Recommendations,
		ParseDegraded:     v.ParseDegraded,
		CreatedAt:         v.CreatedAt,
	}
}
