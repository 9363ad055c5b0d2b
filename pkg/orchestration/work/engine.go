// Package work implements the sequential multi-step collaboration mode:
// a planned chain of provider calls where each step's output feeds the
// next step's prompt and a cumulative collaborative document grows with
// every completed step.
package work

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ai-orchestra-be/internal/constant"
	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/pkg/logger"
	"ai-orchestra-be/pkg/orchestration"
	"ai-orchestra-be/pkg/provider"

	"github.com/google/uuid"
)

var (
	// ErrStepInProgress means another executor already holds this
	// workflow's current step.
	ErrStepInProgress = errors.New("a workflow step is already in progress")

	// ErrWorkflowComplete means every planned step has run.
	ErrWorkflowComplete = errors.New("workflow is already complete")

	// ErrNoWorkflow means the conversation is not a work-mode
	// conversation with a planned workflow.
	ErrNoWorkflow = errors.New("conversation has no workflow")
)

// Guard serializes step execution per conversation. At most one step of
// a given workflow may be in flight at a time; this is a correctness
// invariant because each step's prompt depends on all prior outputs.
type Guard interface {
	Acquire(conversationID uuid.UUID) bool
	Release(conversationID uuid.UUID)
}

type Engine struct {
	store    orchestration.Store
	registry *provider.Registry
	guard    Guard
	notifier orchestration.Notifier
	logger   logger.ILogger
}

func NewEngine(
	store orchestration.Store,
	registry *provider.Registry,
	guard Guard,
	notifier orchestration.Notifier,
	log logger.ILogger,
) *Engine {
	if notifier == nil {
		notifier = orchestration.NopNotifier{}
	}
	return &Engine{
		store:    store,
		registry: registry,
		guard:    guard,
		notifier: notifier,
		logger:   log,
	}
}

// Initialize plans the workflow for a freshly created work-mode
// conversation and persists the state. It does not start execution.
func (e *Engine) Initialize(ctx context.Context, conversation *entity.Conversation, providers []string) error {
	if conversation.Workflow != nil {
		return ErrWorkflowExists
	}
	workflow, err := Plan(conversation.Query, providers)
	if err != nil {
		return err
	}
	conversation.Workflow = workflow
	return e.store.UpdateConversation(ctx, conversation)
}

// Advance executes the workflow's next step and chains forward. The
// pending Response for the next step is created synchronously so the
// caller immediately sees a placeholder; the provider call and any
// subsequent steps run in the background, strictly one at a time. A
// concurrent Advance on the same conversation gets ErrStepInProgress.
//
// Advance is idempotent in the sense required by the state machine:
// invoking it on a stalled workflow retries the failed step, and
// invoking it on a finished workflow returns ErrWorkflowComplete.
func (e *Engine) Advance(ctx context.Context, conversationID uuid.UUID) (*entity.Response, error) {
	conversation, err := e.store.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, fmt.Errorf("conversation %s not found", conversationID)
	}
	if conversation.Mode != entity.ModeWork || conversation.Workflow == nil {
		return nil, ErrNoWorkflow
	}
	if conversation.Workflow.Complete() {
		return nil, ErrWorkflowComplete
	}

	if !e.guard.Acquire(conversationID) {
		return nil, ErrStepInProgress
	}

	pending, err := e.beginStep(ctx, conversation)
	if err != nil {
		e.guard.Release(conversationID)
		return nil, err
	}

	go e.drive(conversation, pending)

	return pending, nil
}

// drive completes the current step, then self-chains through the
// remaining steps. A step failure stalls the workflow: completed
// outputs and the partial document are preserved, the cursor does not
// move, and a later Advance may retry.
func (e *Engine) drive(conversation *entity.Conversation, pending *entity.Response) {
	defer e.guard.Release(conversation.Id)

	// Provider calls outlive the submitting request; there is no
	// cancellation primitive for an issued call.
	ctx := context.Background()

	for {
		if err := e.completeStep(ctx, conversation, pending); err != nil {
			e.logger.Warn("WorkEngine", "Workflow stalled", map[string]interface{}{
				"conversation_id": conversation.Id,
				"step":            conversation.Workflow.CurrentStep + 1,
				"error":           err.Error(),
			})
			return
		}
		if conversation.Workflow.Complete() {
			e.logger.Info("WorkEngine", "Workflow complete", map[string]interface{}{
				"conversation_id": conversation.Id,
				"total_steps":     conversation.Workflow.TotalSteps,
			})
			return
		}

		var err error
		pending, err = e.beginStep(ctx, conversation)
		if err != nil {
			e.logger.Error("WorkEngine", "Failed to create step response", map[string]interface{}{
				"conversation_id": conversation.Id,
				"error":           err.Error(),
			})
			return
		}
	}
}

// beginStep creates the pending Response for the workflow's current
// step.
func (e *Engine) beginStep(ctx context.Context, conversation *entity.Conversation) (*entity.Response, error) {
	step := conversation.Workflow.Steps[conversation.Workflow.CurrentStep]

	response := &entity.Response{
		Id:                 uuid.New(),
		ConversationId:     conversation.Id,
		Provider:           step.Provider,
		Status:             entity.ResponseStatusPending,
		VerificationStatus: entity.VerificationStatusNone,
		WorkStep:           fmt.Sprintf(constant.WorkStepLabelFormat, step.Number),
		CreatedAt:          time.Now(),
	}
	if err := e.store.CreateResponse(ctx, response); err != nil {
		return nil, err
	}
	e.notify(ctx, conversation.UserId, response)
	return response, nil
}

// completeStep invokes the current step's provider and finalizes both
// the Response and the WorkflowState. On success the step output is
// recorded exactly once, the collaborative document gains one section,
// and the cursor advances. On failure nothing advances.
func (e *Engine) completeStep(ctx context.Context, conversation *entity.Conversation, response *entity.Response) error {
	workflow := conversation.Workflow
	step := &workflow.Steps[workflow.CurrentStep]

	var result provider.Result
	if adapter, ok := e.registry.Lookup(step.Provider); ok {
		result = adapter.Invoke(ctx, AssemblePrompt(workflow, *step))
	} else {
		result = provider.Failure("unknown provider %s", step.Provider)
	}

	if !result.Success {
		response.Status = entity.ResponseStatusError
		response.Content = result.Error
		if err := e.store.UpdateResponse(ctx, response); err != nil {
			return err
		}
		e.notify(ctx, conversation.UserId, response)
		return fmt.Errorf("step %d (%s) failed: %s", step.Number, step.Provider, result.Error)
	}

	response.Status = entity.ResponseStatusComplete
	response.Content = result.Content
	if err := e.store.UpdateResponse(ctx, response); err != nil {
		return err
	}

	step.Completed = true
	step.Output = result.Content
	workflow.CollaborativeDoc = AppendSection(workflow.CollaborativeDoc, *step)
	workflow.CurrentStep++

	if err := e.store.UpdateConversation(ctx, conversation); err != nil {
		return err
	}

	e.notify(ctx, conversation.UserId, response)
	e.logger.Info("WorkEngine", "Step complete", map[string]interface{}{
		"conversation_id": conversation.Id,
		"step":            step.Number,
		"provider":        step.Provider,
	})
	return nil
}

func (e *Engine) notify(ctx context.Context, userID uuid.UUID, response *entity.Response) {
	e.notifier.ResponseUpdated(ctx, orchestration.ResponseEvent{
		UserId:         userID,
		ConversationId: response.ConversationId,
		ResponseId:     response.Id,
		Provider:       response.Provider,
		Status:         string(response.Status),
		WorkStep:       response.WorkStep,
		OccurredAt:     time.Now(),
	})
}
