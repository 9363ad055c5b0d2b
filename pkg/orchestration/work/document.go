package work

import (
	"fmt"
	"strings"

	"ai-orchestra-be/internal/entity"
)

// AssemblePrompt builds the prompt for a step by concatenating its
// template with every prior completed step's output, each prior section
// labeled with its step number and provider.
func AssemblePrompt(workflow *entity.WorkflowState, step entity.WorkStep) string {
	var b strings.Builder
	b.WriteString(step.PromptTemplate)

	wrotePrior := false
	for _, prior := range workflow.Steps {
		if prior.Number >= step.Number || !prior.Completed {
			continue
		}
		if !wrotePrior {
			b.WriteString("\n--- Prior step outputs ---\n")
			wrotePrior = true
		}
		fmt.Fprintf(&b, "\n### Step %d (%s)\n%s\n", prior.Number, prior.Provider, prior.Output)
	}

	return b.String()
}

// AppendSection adds a completed step's output to the collaborative
// document. The document is append-only and always reflects exactly the
// completed steps in order.
func AppendSection(doc string, step entity.WorkStep) string {
	return fmt.Sprintf("%s\n## Step %d (%s)\n\n*%s*\n\n%s\n",
		doc, step.Number, step.Provider, step.Objective, step.Output)
}
