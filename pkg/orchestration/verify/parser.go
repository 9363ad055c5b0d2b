package verify

import (
	"encoding/json"
	"strings"
	"time"

	"ai-orchestra-be/internal/entity"
)

// Score assigned when the verifier's reply cannot be parsed as the
// structured critique JSON.
const degradedScore = 5

type critiqueJSON struct {
	AccuracyScore     float64  `json:"accuracyScore"`
	FactualErrors     []string `json:"factualErrors"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	OverallAssessment string   `json:"overallAssessment"`
	Recommendations   []string `json:"recommendations"`
}

// ParseCritique extracts a VerificationResult from free-text model
// output. Models frequently wrap the JSON in a markdown code fence or
// surround it with prose, so the parser strips fences and falls back to
// the outermost brace pair. When nothing parses, it synthesizes a
// degraded result carrying the raw text as the overall assessment;
// a parse failure is never a hard error.
func ParseCritique(verifierID, raw string) *entity.VerificationResult {
	if critique, ok := extractJSON(raw); ok {
		return &entity.VerificationResult{
			Verifier:          verifierID,
			AccuracyScore:     clampScore(critique.AccuracyScore),
			FactualErrors:     critique.FactualErrors,
			Strengths:         critique.Strengths,
			Weaknesses:        critique.Weaknesses,
			OverallAssessment: critique.OverallAssessment,
			Recommendations:   critique.Recommendations,
			CreatedAt:         time.Now(),
		}
	}

	return &entity.VerificationResult{
		Verifier:          verifierID,
		AccuracyScore:     degradedScore,
		OverallAssessment: strings.TrimSpace(raw),
		ParseDegraded:     true,
		CreatedAt:         time.Now(),
	}
}

func extractJSON(raw string) (*critiqueJSON, bool) {
	candidate := stripCodeFence(raw)

	// Tolerate prose around the object: try the outermost brace pair.
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	candidate = candidate[start : end+1]

	var critique critiqueJSON
	if err := json.Unmarshal([]byte(candidate), &critique); err != nil {
		return nil, false
	}
	if critique.OverallAssessment == "" && critique.AccuracyScore == 0 {
		// An empty object parses but carries no critique.
		return nil, false
	}
	return &critique, true
}

func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func clampScore(score float64) float64 {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
