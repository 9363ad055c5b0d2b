package dive

import (
	"context"
	"sync"
	"testing"
	"time"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/pkg/orchestration"
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
	mu        sync.Mutex
	responses map[uuid.UUID]*entity.Response
	updates   map[uuid.UUID]int
}

func newMemStore() *memStore {
	return &memStore{
		responses: make(map[uuid.UUID]*entity.Response),
		updates:   make(map[uuid.UUID]int),
	}
}

func (s *memStore) CreateConversation(ctx context.Context, c *entity.Conversation) error { return nil }
func (s *memStore) GetConversation(ctx context.Context, id uuid.UUID) (*entity.Conversation, error) {
	return nil, nil
}
func (s *memStore) UpdateConversation(ctx context.Context, c *entity.Conversation) error { return nil }

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
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.responses[r.Id] = &cp
	s.updates[r.Id]++
	return nil
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

func (s *memStore) updateCount(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updates[id]
}

type stubAdapter struct {
	id     string
	result provider.Result
	delay  time.Duration
}

func (a *stubAdapter) ID() string { return a.id }

func (a *stubAdapter) Invoke(ctx context.Context, prompt string) provider.Result {
	if a.delay > 0 {
		time.Sleep(a.delay)
	}
	return a.result
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []orchestration.ResponseEvent
}

func (n *recordingNotifier) ResponseUpdated(ctx context.Context, event orchestration.ResponseEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) snapshot() []orchestration.ResponseEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]orchestration.ResponseEvent(nil), n.events...)
}

func testConversation() *entity.Conversation {
	return &entity.Conversation{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Query:     "compare raft and paxos",
		Mode:      entity.ModeDive,
		CreatedAt: time.Now(),
	}
}

func TestDispatchCreatesPendingPlaceholders(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "openai", delay: 100 * time.Millisecond, result: provider.Result{Success: true, Content: "a"}}, true)
	registry.Register(&stubAdapter{id: "anthropic", delay: 100 * time.Millisecond, result: provider.Result{Success: true, Content: "b"}}, true)

	d := NewDispatcher(store, registry, nil, nopLogger{})
	conversation := testConversation()

	responses, err := d.Dispatch(context.Background(), conversation, []string{"openai", "anthropic"})
	require.NoError(t, err)
	require.Len(t, responses, 2)

	// Placeholders exist before any provider call resolves.
	for _, r := range responses {
		assert.Equal(t, entity.ResponseStatusPending, r.Status)
		stored, err := store.GetResponse(context.Background(), r.Id)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, entity.ResponseStatusPending, stored.Status)
	}

	require.Eventually(t, func() bool {
		for _, r := range responses {
			stored, _ := store.GetResponse(context.Background(), r.Id)
			if stored.Status != entity.ResponseStatusComplete {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDispatchResolvesIndependently(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "openai", result: provider.Result{Success: true, Content: "fast answer"}}, true)
	registry.Register(&stubAdapter{id: "anthropic", delay: 300 * time.Millisecond, result: provider.Failure("rate limited")}, true)

	d := NewDispatcher(store, registry, nil, nopLogger{})
	conversation := testConversation()

	responses, err := d.Dispatch(context.Background(), conversation, []string{"openai", "anthropic"})
	require.NoError(t, err)

	var fast, slow *entity.Response
	for _, r := range responses {
		if r.Provider == "openai" {
			fast = r
		} else {
			slow = r
		}
	}

	// The fast provider completes while the slow one is still pending.
	require.Eventually(t, func() bool {
		stored, _ := store.GetResponse(context.Background(), fast.Id)
		return stored.Status == entity.ResponseStatusComplete
	}, 2*time.Second, 5*time.Millisecond)

	stored, _ := store.GetResponse(context.Background(), slow.Id)
	assert.Equal(t, entity.ResponseStatusPending, stored.Status)

	require.Eventually(t, func() bool {
		stored, _ := store.GetResponse(context.Background(), slow.Id)
		return stored.Status == entity.ResponseStatusError
	}, 2*time.Second, 10*time.Millisecond)

	stored, _ = store.GetResponse(context.Background(), slow.Id)
	assert.Equal(t, "rate limited", stored.Content)

	stored, _ = store.GetResponse(context.Background(), fast.Id)
	assert.Equal(t, "fast answer", stored.Content)
}

func TestDispatchSingleTerminalTransition(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "openai", result: provider.Result{Success: true, Content: "done"}}, true)

	d := NewDispatcher(store, registry, nil, nopLogger{})
	conversation := testConversation()

	responses, err := d.Dispatch(context.Background(), conversation, []string{"openai"})
	require.NoError(t, err)
	require.Len(t, responses, 1)

	require.Eventually(t, func() bool {
		stored, _ := store.GetResponse(context.Background(), responses[0].Id)
		return stored.Status == entity.ResponseStatusComplete
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 1, store.updateCount(responses[0].Id))
}

func TestDispatchDisabledProviderErrors(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.RegisterDisabled("microsoft")

	d := NewDispatcher(store, registry, nil, nopLogger{})
	conversation := testConversation()

	responses, err := d.Dispatch(context.Background(), conversation, []string{"microsoft"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		stored, _ := store.GetResponse(context.Background(), responses[0].Id)
		return stored.Status == entity.ResponseStatusError
	}, 2*time.Second, 10*time.Millisecond)

	stored, _ := store.GetResponse(context.Background(), responses[0].Id)
	assert.Contains(t, stored.Content, "not yet available")
}

func TestDispatchNotifiesPendingAndTerminal(t *testing.T) {
	store := newMemStore()
	registry := provider.NewRegistry()
	registry.Register(&stubAdapter{id: "openai", result: provider.Result{Success: true, Content: "done"}}, true)

	notifier := &recordingNotifier{}
	d := NewDispatcher(store, registry, notifier, nopLogger{})
	conversation := testConversation()

	responses, err := d.Dispatch(context.Background(), conversation, []string{"openai"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(notifier.snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	events := notifier.snapshot()
	assert.Equal(t, string(entity.ResponseStatusPending), events[0].Status)
	assert.Equal(t, string(entity.ResponseStatusComplete), events[1].Status)
	assert.Equal(t, conversation.UserId, events[0].UserId)
	assert.Equal(t, responses[0].Id, events[0].ResponseId)
}
