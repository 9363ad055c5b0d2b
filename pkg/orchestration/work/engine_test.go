package work

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/repository/memory"
	"ai-orchestra-be/pkg/provider"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type memStore struct {
	mu            sync.Mutex
	conversations map[uuid.UUID]*entity.Conversation
	responses     map[uuid.UUID]*entity.Response
}

func newMemStore() *memStore {
	return &memStore{
		conversations: make(map[uuid.UUID]*entity.Conversation),
		responses:     make(map[uuid.UUID]*entity.Response),
	}
}

func cloneConversation(c *entity.Conversation) *entity.Conversation {
	cp := *c
	if c.Workflow != nil {
		workflow := *c.Workflow
		workflow.Steps = append([]entity.WorkStep(nil), c.Workflow.Steps...)
		cp.Workflow = &workflow
	}
	return &cp
}

func (s *memStore) CreateConversation(ctx context.Context, c *entity.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.Id] = cloneConversation(c)
	return nil
}

func (s *memStore) GetConversation(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	return cloneConversation(c), nil
}

func (s *memStore) UpdateConversation(ctx context.Context, c *entity.Conversation) error {
	return s.CreateConversation(ctx, c)
}

func (s *memStore) CreateResponse(ctx context.Context, r *entity.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.responses[r.Id] = &cp
	return nil
}

func (s *memStore) GetResponse(ctx context.Context, id uuid.UUID) (*entity.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.responses[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *memStore) UpdateResponse(ctx context.Context, r *entity.Response) error {
	return s.CreateResponse(ctx, r)
}

func (s *memStore) ListResponses(ctx context.Context, conversationID uuid.UUID) ([]*entity.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Response
	for _, r := range s.responses {
		if r.ConversationId == conversationID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

// callRecorder tracks the order providers were invoked in across a
// whole workflow run.
type callRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *callRecorder) record(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, id)
}

func (r *callRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

type stepAdapter struct {
	id       string
	recorder *callRecorder
	delay    time.Duration

	mu       sync.Mutex
	failures int
}

func (a *stepAdapter) ID() string { return a.id }

func (a *stepAdapter) Invoke(ctx context.Context, prompt string) provider.Result {
	if a.recorder != nil {
		a.recorder.record(a.id)
	}
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.failures > 0 {
		a.failures--
		return provider.Failure("%s is overloaded", a.id)
	}
	return provider.Result{Success: true, Content: a.id + " output"}
}

func newWorkConversation(t *testing.T, store *memStore) *entity.Conversation {
	t.Helper()
	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Query:     "design a rate limiter",
		Mode:      entity.ModeWork,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateConversation(context.Background(), conversation))
	return conversation
}

func newEngine(store *memStore, registry *provider.Registry) *Engine {
	return NewEngine(store, registry, memory.NewWorkflowGuardRepository(), nil, nopLogger{})
}

func TestEngineRunsStepsSequentially(t *testing.T) {
	store := newMemStore()
	recorder := &callRecorder{}
	registry := provider.NewRegistry()
	registry.Register(&stepAdapter{id: "openai", recorder: recorder}, true)
	registry.Register(&stepAdapter{id: "anthropic", recorder: recorder}, true)
	registry.Register(&stepAdapter{id: "google", recorder: recorder}, true)

	engine := newEngine(store, registry)
	conversation := newWorkConversation(t, store)

	require.NoError(t, engine.Initialize(context.Background(), conversation, []string{"openai", "anthropic", "google"}))

	pending, err := engine.Advance(context.Background(), conversation.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.ResponseStatusPending, pending.Status)
	assert.Equal(t, "openai", pending.Provider)
	assert.Equal(t, "step-1", pending.WorkStep)

	require.Eventually(t, func() bool {
		stored, _ := store.GetConversation(context.Background(), conversation.Id)
		return stored.Workflow.Complete()
	}, 3*time.Second, 10*time.Millisecond)

	assert.Equal(t, []string{"openai", "anthropic", "google"}, recorder.snapshot())

	stored, _ := store.GetConversation(context.Background(), conversation.Id)
	assert.Equal(t, 3, stored.Workflow.CurrentStep)
	for i, step := range stored.Workflow.Steps {
		assert.True(t, step.Completed, "step %d should be completed", i+1)
		assert.NotEmpty(t, step.Output)
	}

	// One document section per completed step, in order.
	doc := stored.Workflow.CollaborativeDoc
	assert.Contains(t, doc, "## Step 1 (openai)")
	assert.Contains(t, doc, "## Step 2 (anthropic)")
	assert.Contains(t, doc, "## Step 3 (google)")

	responses, _ := store.ListResponses(context.Background(), conversation.Id)
	assert.Len(t, responses, 3)
	for _, r := range responses {
		assert.Equal(t, entity.ResponseStatusComplete, r.Status)
	}
}

func TestEngineStallsOnFailureAndRetries(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.Register(&stepAdapter{id: "openai"}, true)
	registry.Register(&stepAdapter{id: "anthropic", failures: 1}, true)

	engine := newEngine(store, registry)
	conversation := newWorkConversation(t, store)

	require.NoError(t, engine.Initialize(context.Background(), conversation, []string{"openai", "anthropic"}))

	_, err := engine.Advance(context.Background(), conversation.Id)
	require.NoError(t, err)

	// Step 1 succeeds, step 2 fails: the workflow stalls with the cursor
	// still on step 2.
	require.Eventually(t, func() bool {
		responses, _ := store.ListResponses(context.Background(), conversation.Id)
		for _, r := range responses {
			if r.Status == entity.ResponseStatusError {
				return true
			}
		}
		return false
	}, 3*time.Second, 10*time.Millisecond)

	stored, _ := store.GetConversation(context.Background(), conversation.Id)
	assert.Equal(t, 1, stored.Workflow.CurrentStep)
	assert.True(t, stored.Workflow.Steps[0].Completed)
	assert.False(t, stored.Workflow.Steps[1].Completed)
	assert.False(t, stored.Workflow.Complete())
	assert.NotContains(t, stored.Workflow.CollaborativeDoc, "## Step 2")

	// A later Advance retries the failed step.
	require.Eventually(t, func() bool {
		pending, err := engine.Advance(context.Background(), conversation.Id)
		return err == nil && pending.Provider == "anthropic"
	}, 3*time.Second, 50*time.Millisecond)

	require.Eventually(t, func() bool {
		stored, _ := store.GetConversation(context.Background(), conversation.Id)
		return stored.Workflow.Complete()
	}, 3*time.Second, 10*time.Millisecond)

	stored, _ = store.GetConversation(context.Background(), conversation.Id)
	assert.Contains(t, stored.Workflow.CollaborativeDoc, "## Step 2 (anthropic)")
}

func TestEngineRejectsConcurrentAdvance(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.Register(&stepAdapter{id: "openai", delay: 500 * time.Millisecond}, true)

	engine := newEngine(store, registry)
	conversation := newWorkConversation(t, store)

	require.NoError(t, engine.Initialize(context.Background(), conversation, []string{"openai"}))

	_, err := engine.Advance(context.Background(), conversation.Id)
	require.NoError(t, err)

	_, err = engine.Advance(context.Background(), conversation.Id)
	assert.ErrorIs(t, err, ErrStepInProgress)
}

func TestEngineFinishedWorkflow(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.Register(&stepAdapter{id: "openai"}, true)

	engine := newEngine(store, registry)
	conversation := newWorkConversation(t, store)

	require.NoError(t, engine.Initialize(context.Background(), conversation, []string{"openai"}))

	_, err := engine.Advance(context.Background(), conversation.Id)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored, _ := store.GetConversation(context.Background(), conversation.Id)
		return stored.Workflow.Complete()
	}, 3*time.Second, 10*time.Millisecond)

	_, err = engine.Advance(context.Background(), conversation.Id)
	assert.ErrorIs(t, err, ErrWorkflowComplete)
}

func TestEngineRejectsNonWorkConversation(t *testing.T) {
	store := newMemStore()
	engine := newEngine(store, provider.NewRegistry())

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Query:     "q",
		Mode:      entity.ModeDive,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateConversation(context.Background(), conversation))

	_, err := engine.Advance(context.Background(), conversation.Id)
	assert.ErrorIs(t, err, ErrNoWorkflow)
}

func TestInitializeRejectsExistingWorkflow(t *testing.T) {
	store := newMemStore()
	engine := newEngine(store, provider.NewRegistry())
	conversation := newWorkConversation(t, store)

	require.NoError(t, engine.Initialize(context.Background(), conversation, []string{"openai"}))
	err := engine.Initialize(context.Background(), conversation, []string{"openai"})
	assert.ErrorIs(t, err, ErrWorkflowExists)
}
