package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// WorkflowGuardRepository tracks which work-mode conversations have a
// step in flight. The TTL is a liveness backstop: if an executor dies
// without releasing, the marker expires and the workflow can be
// re-triggered manually.
type WorkflowGuardRepository struct {
	cache *cache.Cache
}

func NewWorkflowGuardRepository() *WorkflowGuardRepository {
	c := cache.New(10*time.Minute, time.Minute)
	return &WorkflowGuardRepository{
		cache: c,
	}
}

// Acquire marks the conversation as having a step in flight. Returns
// false if a marker already exists (another executor holds the step).
func (r *WorkflowGuardRepository) Acquire(conversationID uuid.UUID) bool {
	return r.cache.Add(conversationID.String(), true, cache.DefaultExpiration) == nil
}

// Release clears the in-flight marker.
func (r *WorkflowGuardRepository) Release(conversationID uuid.UUID) {
	r.cache.Delete(conversationID.String())
}

// InFlight reports whether a step is currently executing.
func (r *WorkflowGuardRepository) InFlight(conversationID uuid.UUID) bool {
	_, found := r.cache.Get(conversationID.String())
	return found
}
