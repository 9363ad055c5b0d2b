package verify

import (
	"strings"
	"testing"
)

func TestParseCritique(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantScore    float64
		wantDegraded bool
		wantVerifier string
	}{
		{
			name:         "plain JSON",
			raw:          `{"accuracyScore": 8, "factualErrors": [], "strengths": ["clear"], "weaknesses": ["terse"], "overallAssessment": "solid", "recommendations": ["expand"]}`,
			wantScore:    8,
			wantDegraded: false,
			wantVerifier: "anthropic",
		},
		{
			name:         "fenced JSON",
			raw:          "```json\n{\"accuracyScore\": 7, \"overallAssessment\": \"good\"}\n```",
			wantScore:    7,
			wantDegraded: false,
			wantVerifier: "anthropic",
		},
		{
			name:         "fence without language tag",
			raw:          "```\n{\"accuracyScore\": 6, \"overallAssessment\": \"ok\"}\n```",
			wantScore:    6,
			wantDegraded: false,
			wantVerifier: "anthropic",
		},
		{
			name:         "JSON surrounded by prose",
			raw:          "Here is my critique:\n{\"accuracyScore\": 9, \"overallAssessment\": \"excellent\"}\nHope that helps!",
			wantScore:    9,
			wantDegraded: false,
			wantVerifier: "anthropic",
		},
		{
			name:         "score above range is clamped",
			raw:          `{"accuracyScore": 42, "overallAssessment": "inflated"}`,
			wantScore:    10,
			wantDegraded: false,
			wantVerifier: "anthropic",
		},
		{
			name:         "score below range is clamped",
			raw:          `{"accuracyScore": -3, "overallAssessment": "deflated"}`,
			wantScore:    1,
			wantDegraded: false,
			wantVerifier: "anthropic",
		},
		{
			name:         "free text falls back to degraded",
			raw:          "I think the answer is mostly right but misses nuance.",
			wantScore:    degradedScore,
			wantDegraded: true,
			wantVerifier: "anthropic",
		},
		{
			name:         "empty object falls back to degraded",
			raw:          "{}",
			wantScore:    degradedScore,
			wantDegraded: true,
			wantVerifier: "anthropic",
		},
		{
			name:         "malformed JSON falls back to degraded",
			raw:          `{"accuracyScore": "high",`,
			wantScore:    degradedScore,
			wantDegraded: true,
			wantVerifier: "anthropic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCritique("anthropic", tt.raw)

			if got.AccuracyScore != tt.wantScore {
				t.Errorf("AccuracyScore = %v, want %v", got.AccuracyScore, tt.wantScore)
			}
			if got.ParseDegraded != tt.wantDegraded {
				t.Errorf("ParseDegraded = %v, want %v", got.ParseDegraded, tt.wantDegraded)
			}
			if got.Verifier != tt.wantVerifier {
				t.Errorf("Verifier = %q, want %q", got.Verifier, tt.wantVerifier)
			}
			if got.CreatedAt.IsZero() {
				t.Error("CreatedAt should be set")
			}
		})
	}
}

func TestParseCritiqueDegradedKeepsRawText(t *testing.T) {
	raw := "  The response contains two factual errors.  "
	got := ParseCritique("openai", raw)

	if !got.ParseDegraded {
		t.Fatal("expected degraded result")
	}
	if got.OverallAssessment != "The response contains two factual errors." {
		t.Errorf("OverallAssessment = %q, want trimmed raw text", got.OverallAssessment)
	}
}

func TestParseCritiqueListFields(t *testing.T) {
	raw := `{"accuracyScore": 5, "factualErrors": ["date wrong"], "strengths": ["structure"], "weaknesses": ["depth", "sources"], "overallAssessment": "mixed", "recommendations": ["cite sources"]}`
	got := ParseCritique("google", raw)

	if len(got.FactualErrors) != 1 || got.FactualErrors[0] != "date wrong" {
		t.Errorf("FactualErrors = %v", got.FactualErrors)
	}
	if len(got.Weaknesses) != 2 {
		t.Errorf("Weaknesses = %v, want 2 entries", got.Weaknesses)
	}
	if len(got.Recommendations) != 1 {
		t.Errorf("Recommendations = %v, want 1 entry", got.Recommendations)
	}
}

func TestBuildCritiquePromptEmbedsContext(t *testing.T) {
	prompt := BuildCritiquePrompt("what is raft?", "openai", "raft is a consensus algorithm")

	for _, want := range []string{"what is raft?", "openai", "raft is a consensus algorithm", "accuracyScore"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("critique prompt missing %q", want)
		}
	}
}
