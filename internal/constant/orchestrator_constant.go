package constant

// Provider identifiers form the fixed enumerated set the orchestration
// layer dispatches on. Adapters register under these keys.
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderGoogle     = "google"
	ProviderPerplexity = "perplexity"
	ProviderGrok       = "grok"
	ProviderDeepSeek   = "deepseek"

	// Placeholders kept in the set but not yet wired to a vendor API.
	ProviderMicrosoft = "microsoft"
	ProviderLlama     = "llama"
)

// WorkStepLabelFormat builds the workStep tag on a Response, 1-based
// (step-1, step-2, ...).
const WorkStepLabelFormat = "step-%d"

// Internal event bus topic carrying response status transitions.
const ResponseEventsTopic = "RESPONSE_EVENTS"

// Metadata keys for the critique-exchange data stored on a Response.
const (
	MetadataKeyRebuttal         = "rebuttal"
	MetadataKeyRebuttalVerifier = "rebuttal_verifier"
	MetadataKeyRebuttalAt       = "rebuttal_at"
)
