package entity

import (
	"time"

	"github.com/google/uuid"
)

type ConversationMode string

const (
	ModeDive ConversationMode = "dive"
	ModeTurn ConversationMode = "turn"
	ModeWork ConversationMode = "work"
)

// Conversation is one submitted query plus everything produced for it.
// Workflow is present only for work mode and is mutated exclusively by
// the workflow engine.
type Conversation struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Query     string
	Mode      ConversationMode
	Workflow  *WorkflowState
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// WorkflowState is the embedded state machine of a work-mode
// conversation. CurrentStep is the 0-based index of the next step to
// execute; the workflow is complete when CurrentStep == TotalSteps.
type WorkflowState struct {
	Steps            []WorkStep `json:"steps"`
	CurrentStep      int        `json:"current_step"`
	TotalSteps       int        `json:"total_steps"`
	CollaborativeDoc string     `json:"collaborative_doc"`
}

// Complete reports whether every step has run.
func (w *WorkflowState) Complete() bool {
	return w.CurrentStep >= w.TotalSteps
}

// WorkStep binds one provider to one objective. Output is set exactly
// once, at the same moment Completed flips to true.
type WorkStep struct {
	Number         int    `json:"number"`
	Provider       string `json:"provider"`
	Objective      string `json:"objective"`
	PromptTemplate string `json:"prompt_template"`
	Completed      bool   `json:"completed"`
	Output         string `json:"output,omitempty"`
}
