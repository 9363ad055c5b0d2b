package work

import (
	"errors"
	"fmt"
	"strings"

	"ai-orchestra-be/internal/entity"
)

// MaxSteps bounds the fixed-shape plan: analysis, development, and
// (with a third provider) synthesis.
const MaxSteps = 3

var (
	ErrNoProviders      = errors.New("work workflow requires at least one provider")
	ErrTooManyProviders = fmt.Errorf("work workflow supports at most %d providers", MaxSteps)
	ErrWorkflowExists   = errors.New("conversation already has a workflow")
)

const (
	objectiveAnalyze    = "Analyze the core problem and decompose the requirements."
	objectiveDevelop    = "Build on the analysis from step 1 and develop a detailed solution."
	objectiveSynthesize = "Synthesize all prior steps into a final, polished deliverable."
)

// Plan deterministically constructs the step sequence for a work-mode
// conversation:
//   - step 1: providers[0] analyzes the problem
//   - step 2: providers[1] (or providers[0] if only one was given)
//     develops the solution
//   - step 3: providers[2] synthesizes, only when a third provider was
//     supplied
func Plan(query string, providers []string) (*entity.WorkflowState, error) {
	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	if len(providers) > MaxSteps {
		return nil, ErrTooManyProviders
	}

	second := providers[0]
	if len(providers) > 1 {
		second = providers[1]
	}

	steps := []entity.WorkStep{
		{
			Number:         1,
			Provider:       providers[0],
			Objective:      objectiveAnalyze,
			PromptTemplate: buildStepTemplate(1, objectiveAnalyze, query),
		},
		{
			Number:         2,
			Provider:       second,
			Objective:      objectiveDevelop,
			PromptTemplate: buildStepTemplate(2, objectiveDevelop, query),
		},
	}

	if len(providers) >= 3 {
		steps = append(steps, entity.WorkStep{
			Number:         3,
			Provider:       providers[2],
			Objective:      objectiveSynthesize,
			PromptTemplate: buildStepTemplate(3, objectiveSynthesize, query),
		})
	}

	return &entity.WorkflowState{
		Steps:            steps,
		CurrentStep:      0,
		TotalSteps:       len(steps),
		CollaborativeDoc: seedDocument(query, providers),
	}, nil
}

func buildStepTemplate(number int, objective, query string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are step %d of a collaborative multi-AI workflow.\n\n", number)
	fmt.Fprintf(&b, "Task: %s\n\n", query)
	fmt.Fprintf(&b, "Your objective: %s\n", objective)
	if number > 1 {
		b.WriteString("\nBuild directly on the prior step outputs included below. Do not repeat them; extend them.\n")
	}
	return b.String()
}

func seedDocument(query string, providers []string) string {
	return fmt.Sprintf("# Collaborative Work: %s\n\nParticipants: %s\n",
		query, strings.Join(providers, ", "))
}
