package verify

import "fmt"

const critiquePromptTemplate = `You are acting as an impartial reviewer of another AI's answer.

Original question:
%s

Answer under review (produced by %s):
%s

Evaluate the answer carefully and respond with ONLY a JSON object using
exactly these fields:
{
  "accuracyScore": <number 1-10>,
  "factualErrors": [<strings, empty if none>],
  "strengths": [<strings>],
  "weaknesses": [<strings>],
  "overallAssessment": <string>,
  "recommendations": [<strings>]
}

Do not include any text outside the JSON object.`

const rebuttalPromptTemplate = `Your answer to the question below was reviewed by another AI (%s).

Original question:
%s

Your answer:
%s

The reviewer's critique:
- Accuracy score: %.0f/10
- Assessment: %s
- Weaknesses: %s

Write a professional response to this critique. Acknowledge valid
points, respectfully rebut anything you believe is wrong, and correct
your answer where needed.`

// BuildCritiquePrompt embeds the original query and the response content
// into the structured critique instructions.
func BuildCritiquePrompt(query, providerID, content string) string {
	return fmt.Sprintf(critiquePromptTemplate, query, providerID, content)
}

// BuildRebuttalPrompt presents the latest critique back to the original
// provider for acknowledgment or rebuttal.
func BuildRebuttalPrompt(query, content, verifierID string, score float64, assessment, weaknesses string) string {
	return fmt.Sprintf(rebuttalPromptTemplate, verifierID, query, content, score, assessment, weaknesses)
}
