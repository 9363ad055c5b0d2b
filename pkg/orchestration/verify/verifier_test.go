package verify

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-orchestra-be/internal/entity"
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

func (s *memStore) CreateConversation(ctx context.Context, c *entity.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.conversations[c.Id] = &cp
	return nil
}

func (s *memStore) GetConversation(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
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

type stubAdapter struct {
	id     string
	result provider.Result
	delay  time.Duration

	mu      sync.Mutex
	prompts []string
}

func (a *stubAdapter) ID() string { return a.id }

func (a *stubAdapter) Invoke(ctx context.Context, prompt string) provider.Result {
	a.mu.Lock()
	a.prompts = append(a.prompts, prompt)
	a.mu.Unlock()
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	return a.result
}

func seedCompleteResponse(t *testing.T, store *memStore) *entity.Response {
	t.Helper()

	conversation := &entity.Conversation{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Query:     "explain mutexes",
		Mode:      entity.ModeDive,
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.CreateConversation(context.Background(), conversation))

	response := &entity.Response{
		Id:                 uuid.New(),
		ConversationId:     conversation.Id,
		Provider:           "openai",
		Content:            "a mutex serializes access",
		Status:             entity.ResponseStatusComplete,
		VerificationStatus: entity.VerificationStatusNone,
		CreatedAt:          time.Now(),
	}
	require.NoError(t, store.CreateResponse(context.Background(), response))
	return response
}

func TestVerifyAppendsResult(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)

	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "openai", result: provider.Result{Success: true, Content: "x"}}, true)
	critic := &stubAdapter{id: "anthropic", result: provider.Result{
		Success: true,
		Content: `{"accuracyScore": 8, "overallAssessment": "solid"}`,
	}}
	registry.Register(critic, true)

	v := NewVerifier(store, registry, nopLogger{})

	result, err := v.Verify(context.Background(), response.Id, "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", result.Verifier)
	assert.Equal(t, float64(8), result.AccuracyScore)
	assert.False(t, result.ParseDegraded)

	stored, err := store.GetResponse(context.Background(), response.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.VerificationStatusComplete, stored.VerificationStatus)
	require.Len(t, stored.Verifications, 1)

	// Critique prompt must carry the original query and answer.
	require.Len(t, critic.prompts, 1)
	assert.Contains(t, critic.prompts[0], "explain mutexes")
	assert.Contains(t, critic.prompts[0], "a mutex serializes access")
}

func TestVerifyAccumulatesMultipleVerifications(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)

	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "anthropic", result: provider.Result{
		Success: true, Content: `{"accuracyScore": 8, "overallAssessment": "solid"}`,
	}}, true)
	registry.Register(&stubAdapter{id: "google", result: provider.Result{
		Success: true, Content: `{"accuracyScore": 6, "overallAssessment": "fair"}`,
	}}, true)

	v := NewVerifier(store, registry, nopLogger{})

	_, err := v.Verify(context.Background(), response.Id, "anthropic")
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), response.Id, "google")
	require.NoError(t, err)

	stored, _ := store.GetResponse(context.Background(), response.Id)
	require.Len(t, stored.Verifications, 2)
	assert.Equal(t, "anthropic", stored.Verifications[0].Verifier)
	assert.Equal(t, "google", stored.Verifications[1].Verifier)
}

func TestVerifyConcurrentAppendsBothResults(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)

	// Slow verifiers so both calls overlap in flight.
	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "anthropic", delay: 200 * time.Millisecond, result: provider.Result{
		Success: true, Content: `{"accuracyScore": 8, "overallAssessment": "solid"}`,
	}}, true)
	registry.Register(&stubAdapter{id: "google", delay: 200 * time.Millisecond, result: provider.Result{
		Success: true, Content: `{"accuracyScore": 6, "overallAssessment": "fair"}`,
	}}, true)

	v := NewVerifier(store, registry, nopLogger{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, verifier := range []string{"anthropic", "google"} {
		wg.Add(1)
		go func(i int, verifier string) {
			defer wg.Done()
			_, errs[i] = v.Verify(context.Background(), response.Id, verifier)
		}(i, verifier)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	stored, err := store.GetResponse(context.Background(), response.Id)
	require.NoError(t, err)
	require.Len(t, stored.Verifications, 2)

	seen := map[string]bool{}
	for _, verification := range stored.Verifications {
		seen[verification.Verifier] = true
	}
	assert.True(t, seen["anthropic"])
	assert.True(t, seen["google"])
	assert.Equal(t, entity.VerificationStatusComplete, stored.VerificationStatus)
}

func TestVerifyRejectsPendingResponse(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)
	response.Status = entity.ResponseStatusPending
	require.NoError(t, store.UpdateResponse(context.Background(), response))

	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "anthropic", result: provider.Result{Success: true, Content: "{}"}}, true)

	v := NewVerifier(store, registry, nopLogger{})

	_, err := v.Verify(context.Background(), response.Id, "anthropic")
	assert.ErrorIs(t, err, ErrResponseNotComplete)
}

func TestVerifyAdapterFailureSetsFailedStatus(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)

	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "anthropic", result: provider.Failure("anthropic provider is not configured")}, false)

	v := NewVerifier(store, registry, nopLogger{})

	_, err := v.Verify(context.Background(), response.Id, "anthropic")
	require.ErrorIs(t, err, ErrVerifierFailed)

	stored, _ := store.GetResponse(context.Background(), response.Id)
	assert.Equal(t, entity.VerificationStatusFailed, stored.VerificationStatus)
	assert.Empty(t, stored.Verifications)
}

func TestVerifyUnknownVerifier(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)

	v := NewVerifier(store, provider.NewRegistry(), nopLogger{})

	_, err := v.Verify(context.Background(), response.Id, "nope")
	assert.Error(t, err)
}

func TestShareCritiqueStoresRebuttal(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)

	registry := provider.NewRegistry()
	original := &stubAdapter{id: "openai", result: provider.Result{Success: true, Content: "I stand by my answer, with one correction."}}
	registry.Register(original, true)
	registry.Register(&stubAdapter{id: "anthropic", result: provider.Result{
		Success: true, Content: `{"accuracyScore": 4, "weaknesses": ["missing edge cases"], "overallAssessment": "incomplete"}`,
	}}, true)

	v := NewVerifier(store, registry, nopLogger{})

	_, err := v.Verify(context.Background(), response.Id, "anthropic")
	require.NoError(t, err)

	rebuttal, err := v.ShareCritique(context.Background(), response.Id)
	require.NoError(t, err)
	assert.Equal(t, "I stand by my answer, with one correction.", rebuttal)

	// Rebuttal prompt goes to the original provider and carries the critique.
	require.Len(t, original.prompts, 1)
	assert.Contains(t, original.prompts[0], "anthropic")
	assert.Contains(t, original.prompts[0], "missing edge cases")

	stored, _ := store.GetResponse(context.Background(), response.Id)
	assert.Equal(t, rebuttal, stored.Metadata["rebuttal"])
	assert.Equal(t, "anthropic", stored.Metadata["rebuttal_verifier"])
}

func TestShareCritiqueWithoutVerification(t *testing.T) {
	store := newMemStore()
	response := seedCompleteResponse(t, store)

	v := NewVerifier(store, provider.NewRegistry(), nopLogger{})

	_, err := v.ShareCritique(context.Background(), response.Id)
	assert.ErrorIs(t, err, ErrNoVerification)
}
