package entity

import (
	"time"

	"github.com/google/uuid"
)

type ResponseStatus string

const (
	ResponseStatusPending  ResponseStatus = "pending"
	ResponseStatusComplete ResponseStatus = "complete"
	ResponseStatusError    ResponseStatus = "error"
)

type VerificationStatus string

const (
	VerificationStatusNone     VerificationStatus = "none"
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusComplete VerificationStatus = "complete"
	VerificationStatusFailed   VerificationStatus = "failed"
)

// Response is one provider call (or one workflow step). It is created
// pending and moved to a terminal status exactly once; verification and
// award fields may still be added after that.
type Response struct {
	Id                 uuid.UUID
	ConversationId     uuid.UUID
	Provider           string
	Content            string
	Status             ResponseStatus
	Award              *string
	WorkStep           string // "step-N" when part of a work workflow
	VerificationStatus VerificationStatus
	Verifications      []VerificationResult
	Metadata           map[string]string
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// Terminal reports whether the response reached complete or error.
func (r *Response) Terminal() bool {
	return r.Status == ResponseStatusComplete || r.Status == ResponseStatusError
}

// VerificationResult is one verifier's structured critique of a
// response. Results are append-only; a response may accumulate several
// from different verifiers.
type VerificationResult struct {
	Verifier          string    `json:"verifier"`
	AccuracyScore     float64   `json:"accuracy_score"`
	FactualErrors     []string  `json:"factual_errors,omitempty"`
	Strengths         []string  `json:"strengths,omitempty"`
	Weaknesses        []string  `json:"weaknesses,omitempty"`
	OverallAssessment string    `json:"overall_assessment"`
	Recommendations   []string  `json:"recommendations,omitempty"`
	ParseDegraded     bool      `json:"parse_degraded,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
