package mapper

import (
	"encoding/json"
	"time"

	"ai-orchestra-be/internal/entity"
	"ai-orchestra-be/internal/model"

	"gorm.io/datatypes"
)

type OrchestrationMapper struct{}

func NewOrchestrationMapper() *OrchestrationMapper {
	return &OrchestrationMapper{}
}

// Conversation mappers

func (m *OrchestrationMapper) ConversationToEntity(c *model.Conversation) *entity.Conversation {
	if c == nil {
		return nil
	}

	var workflow *entity.WorkflowState
	if len(c.Workflow) > 0 {
		var w entity.WorkflowState
		if err := json.Unmarshal(c.Workflow, &w); err == nil {
			workflow = &w
		}
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Query:     c.Query,
		Mode:      entity.ConversationMode(c.Mode),
		Workflow:  workflow,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *OrchestrationMapper) ConversationToModel(c *entity.Conversation) *model.Conversation {
	if c == nil {
		return nil
	}

	var workflow datatypes.JSON
	if c.Workflow != nil {
		if data, err := json.Marshal(c.Workflow); err == nil {
			workflow = data
		}
	}

	out := &model.Conversation{
		Id:        c.Id,
		UserId:    c.UserId,
		Query:     c.Query,
		Mode:      string(c.Mode),
		Workflow:  workflow,
		CreatedAt: c.CreatedAt,
	}
	if c.UpdatedAt != nil {
		out.UpdatedAt = *c.UpdatedAt
	}
	return out
}

// Response mappers

func (m *OrchestrationMapper) ResponseToEntity(r *model.Response) *entity.Response {
	if r == nil {
		return nil
	}

	var verifications []entity.VerificationResult
	if len(r.Verifications) > 0 {
		_ = json.Unmarshal(r.Verifications, &verifications)
	}

	var metadata map[string]string
	if len(r.Metadata) > 0 {
		_ = json.Unmarshal(r.Metadata, &metadata)
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	verificationStatus := entity.VerificationStatus(r.VerificationStatus)
	if verificationStatus == "" {
		verificationStatus = entity.VerificationStatusNone
	}

	return &entity.Response{
		Id:                 r.Id,
		ConversationId:     r.ConversationId,
		Provider:           r.Provider,
		Content:            r.Content,
		Status:             entity.ResponseStatus(r.Status),
		Award:              r.Award,
		WorkStep:           r.WorkStep,
		VerificationStatus: verificationStatus,
		Verifications:      verifications,
		Metadata:           metadata,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *OrchestrationMapper) ResponseToModel(r *entity.Response) *model.Response {
	if r == nil {
		return nil
	}

	var verifications datatypes.JSON
	if len(r.Verifications) > 0 {
		if data, err := json.Marshal(r.Verifications); err == nil {
			verifications = data
		}
	}

	var metadata datatypes.JSON
	if len(r.Metadata) > 0 {
		if data, err := json.Marshal(r.Metadata); err == nil {
			metadata = data
		}
	}

	out := &model.Response{
		Id:                 r.Id,
		ConversationId:     r.ConversationId,
		Provider:           r.Provider,
		Content:            r.Content,
		Status:             string(r.Status),
		Award:              r.Award,
		WorkStep:           r.WorkStep,
		VerificationStatus: string(r.VerificationStatus),
		Verifications:      verifications,
		Metadata:           metadata,
		CreatedAt:          r.CreatedAt,
	}
	if r.UpdatedAt != nil {
		out.UpdatedAt = *r.UpdatedAt
	}
	return out
}

func (m *OrchestrationMapper) ResponsesToEntities(models []*model.Response) []*entity.Response {
	entities := make([]*entity.Response, len(models))
	for i, r := range models {
		entities[i] = m.ResponseToEntity(r)
	}
	return entities
}
