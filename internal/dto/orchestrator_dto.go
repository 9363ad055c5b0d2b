package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitQueryRequest struct {
	Query          string     `json:"query" validate:"required"`
	Mode           string     `json:"mode" validate:"required,oneof=dive turn work"`
	Providers      []string   `json:"providers" validate:"required,min=1"`
	ConversationId *uuid.UUID `json:"conversation_id,omitempty"`
}

type SubmitQueryResponse struct {
	ConversationId uuid.UUID           `json:"conversation_id"`
	Mode           string              `json:"mode"`
	Responses      []*ResponseOverview `json:"responses"`
	Workflow       *WorkflowStateDTO   `json:"workflow,omitempty"`
}

type ResponseOverview struct {
	Id       uuid.UUID `json:"id"`
	Provider string    `json:"provider"`
	Status   string    `json:"status"`
	WorkStep string    `json:"work_step,omitempty"`
}

type GetAllConversationsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Query     string     `json:"query"`
	Mode      string     `json:"mode"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ShowConversationResponse struct {
	Id        uuid.UUID         `json:"id"`
	Query     string            `json:"query"`
	Mode      string            `json:"mode"`
	Workflow  *WorkflowStateDTO `json:"workflow,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt *time.Time        `json:"updated_at"`
}

type WorkflowStateDTO struct {
	Steps            []WorkStepDTO `json:"steps"`
	CurrentStep      int           `json:"current_step"`
	TotalSteps       int           `json:"total_steps"`
	CollaborativeDoc string        `json:"collaborative_doc"`
	Complete         bool          `json:"complete"`
}

type WorkStepDTO struct {
	Number    int    `json:"number"`
	Provider  string `json:"provider"`
	Objective string `json:"objective"`
	Completed bool   `json:"completed"`
}

type GetResponsesResponse struct {
	Id                 uuid.UUID               `json:"id"`
	Provider           string                  `json:"provider"`
	Content            string                  `json:"content"`
	Status             string                  `json:"status"`
	Award              *string                 `json:"award,omitempty"`
	WorkStep           string                  `json:"work_step,omitempty"`
	VerificationStatus string                  `json:"verification_status"`
	Verifications      []VerificationResultDTO `json:"verifications,omitempty"`
	Rebuttal           string                  `json:"rebuttal,omitempty"`
	CreatedAt          time.Time               `json:"created_at"`
}

type VerificationResultDTO struct {
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

type VerifyResponseRequest struct {
	ResponseId uuid.UUID `json:"response_id"`
	Verifier   string    `json:"verifier" validate:"required"`
}

type VerifyResponseResponse struct {
	ResponseId   uuid.UUID             `json:"response_id"`
	Verification VerificationResultDTO `json:"verification"`
}

type ShareCritiqueResponse struct {
	ResponseId uuid.UUID `json:"response_id"`
	Rebuttal   string    `json:"rebuttal"`
}

type ContinueWorkflowResponse struct {
	ConversationId uuid.UUID         `json:"conversation_id"`
	Response       *ResponseOverview `json:"response"`
	Workflow       *WorkflowStateDTO `json:"workflow"`
}

type AwardResponseRequest struct {
	ResponseId uuid.UUID `json:"response_id"`
	Award      string    `json:"award" validate:"required,oneof=best most_helpful most_creative"`
}

type AwardResponseResponse struct {
	ResponseId uuid.UUID `json:"response_id"`
	Award      string    `json:"award"`
}

type ProviderInfoResponse struct {
	Id         string `json:"id"`
	Enabled    bool   `json:"enabled"`
	Configured bool   `json:"configured"`
}

// ResponseEventMessage is the payload published on the internal event
// bus whenever a response changes status, and is what websocket clients
// receive.
type ResponseEventMessage struct {
	UserId         uuid.UUID `json:"user_id"`
	ConversationId uuid.UUID `json:"conversation_id"`
	ResponseId     uuid.UUID `json:"response_id"`
	Provider       string    `json:"provider"`
	Status         string    `json:"status"`
	WorkStep       string    `json:"work_step,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}
