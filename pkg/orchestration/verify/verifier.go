// Package verify implements AI-to-AI critique: one provider reviews
// another provider's completed response, and the critique can be shared
// back with the original provider for a rebuttal.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-orchestra-be/internal/constant"
	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/pkg/logger"
	"ai-orchestra-be/pkg/orchestration"
	"ai-orchestra-be/pkg/provider"

	"github.com/google/uuid"
)

var (
	// ErrResponseNotComplete rejects verification of a response that has
	// not reached the complete status.
	ErrResponseNotComplete = errors.New("response is not complete yet")

	// ErrNoVerification rejects share-critique on a response that has no
	// verification result to share.
	ErrNoVerification = errors.New("response has no verification result")

	// ErrVerifierFailed wraps an adapter failure during verification.
	ErrVerifierFailed = errors.New("verifier provider call failed")
)

type Verifier struct {
	store    orchestration.Store
	registry *provider.Registry
	logger   logger.ILogger

	// Per-response mutexes. Updates to a response are whole-row writes,
	// so concurrent verifications must not interleave their
	// read-modify-write cycles or one verifier's appended result is
	// lost. Provider calls never run under the lock.
	locks sync.Map
}

func NewVerifier(store orchestration.Store, registry *provider.Registry, log logger.ILogger) *Verifier {
	return &Verifier{
		store:    store,
		registry: registry,
		logger:   log,
	}
}

func (v *Verifier) lockResponse(id uuid.UUID) func() {
	m, _ := v.locks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// mutateResponse re-reads the response under the per-response lock,
// applies fn, and persists the result. The re-read guarantees fn sees
// every previously committed verification, even ones appended while a
// provider call was in flight.
func (v *Verifier) mutateResponse(ctx context.Context, id uuid.UUID, fn func(*entity.Response)) (*entity.Response, error) {
	unlock := v.lockResponse(id)
	defer unlock()

	response, err := v.store.GetResponse(ctx, id)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("response %s not found", id)
	}
	fn(response)
	if err := v.store.UpdateResponse(ctx, response); err != nil {
		return nil, err
	}
	return response, nil
}

// Verify has the verifier provider critique the target response and
// appends the parsed result to the response's verification list.
// Multiple verifications may accumulate over time, including
// concurrently; the list is append-only and no result is ever dropped.
// The target must already be complete.
func (v *Verifier) Verify(ctx context.Context, responseID uuid.UUID, verifierID string) (*entity.VerificationResult, error) {
	adapter, ok := v.registry.Lookup(verifierID)
	if !ok {
		return nil, fmt.Errorf("unknown verifier provider %s", verifierID)
	}

	response, err := v.store.GetResponse(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, fmt.Errorf("response %s not found", responseID)
	}
	if response.Status != entity.ResponseStatusComplete {
		return nil, ErrResponseNotComplete
	}

	conversation, err := v.store.GetConversation(ctx, response.ConversationId)
	if err != nil {
		return nil, err
	}

	// Mark in-progress first so concurrent readers see the pending state.
	if _, err := v.mutateResponse(ctx, responseID, func(r *entity.Response) {
		r.VerificationStatus = entity.VerificationStatusPending
	}); err != nil {
		return nil, err
	}

	prompt := BuildCritiquePrompt(conversation.Query, response.Provider, response.Content)
	result := adapter.Invoke(ctx, prompt)

	if !result.Success {
		if _, err := v.mutateResponse(ctx, responseID, func(r *entity.Response) {
			r.VerificationStatus = entity.VerificationStatusFailed
		}); err != nil {
			return nil, err
		}
		v.logger.Warn("TurnVerifier", "Verifier adapter failed", map[string]interface{}{
			"response_id": responseID,
			"verifier":    verifierID,
			"error":       result.Error,
		})
		return nil, fmt.Errorf("%w: %s", ErrVerifierFailed, result.Error)
	}

	verification := ParseCritique(verifierID, result.Content)
	if _, err := v.mutateResponse(ctx, responseID, func(r *entity.Response) {
		r.Verifications = append(r.Verifications, *verification)
		r.VerificationStatus = entity.VerificationStatusComplete
	}); err != nil {
		return nil, err
	}

	v.logger.Info("TurnVerifier", "Verification complete", map[string]interface{}{
		"response_id":    responseID,
		"verifier":       verifierID,
		"accuracy_score": verification.AccuracyScore,
		"parse_degraded": verification.ParseDegraded,
	})
	return verification, nil
}

// ShareCritique presents the latest critique back to the provider that
// produced the response and stores the rebuttal in the response
// metadata. Requires at least one existing verification result.
func (v *Verifier) ShareCritique(ctx context.Context, responseID uuid.UUID) (string, error) {
	response, err := v.store.GetResponse(ctx, responseID)
	if err != nil {
		return "", err
	}
	if response == nil {
		return "", fmt.Errorf("response %s not found", responseID)
	}
	if len(response.Verifications) == 0 {
		return "", ErrNoVerification
	}

	adapter, ok := v.registry.Lookup(response.Provider)
	if !ok {
		return "", fmt.Errorf("unknown provider %s", response.Provider)
	}

	conversation, err := v.store.GetConversation(ctx, response.ConversationId)
	if err != nil {
		return "", err
	}

	latest := response.Verifications[len(response.Verifications)-1]
	prompt := BuildRebuttalPrompt(
		conversation.Query,
		response.Content,
		latest.Verifier,
		latest.AccuracyScore,
		latest.OverallAssessment,
		strings.Join(latest.Weaknesses, "; "),
	)

	result := adapter.Invoke(ctx, prompt)
	if !result.Success {
		return "", fmt.Errorf("rebuttal call to %s failed: %s", response.Provider, result.Error)
	}

	if _, err := v.mutateResponse(ctx, responseID, func(r *entity.Response) {
		if r.Metadata == nil {
			r.Metadata = make(map[string]string)
		}
		r.Metadata[constant.MetadataKeyRebuttal] = result.Content
		r.Metadata[constant.MetadataKeyRebuttalVerifier] = latest.Verifier
		r.Metadata[constant.MetadataKeyRebuttalAt] = time.Now().Format(time.RFC3339)
	}); err != nil {
		return "", err
	}

	return result.Content, nil
}
