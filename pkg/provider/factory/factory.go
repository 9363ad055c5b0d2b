package factory

import (
	"ai-orchestra-be/internal/constant"
	"ai-orchestra-be/pkg/provider"
	"ai-orchestra-be/pkg/provider/anthropic"
	"ai-orchestra-be/pkg/provider/googleai"
	"ai-orchestra-be/pkg/provider/openai"
	"ai-orchestra-be/pkg/provider/openaicompat"
)

// NewRegistry builds the full provider registry from a flat credential
// map (provider id -> secret). Providers with no credential are still
// registered; their adapters return a deterministic "not configured"
// failure without touching the network.
func NewRegistry(credentials map[string]string) *provider.Registry {
	registry := provider.NewRegistry()

	registry.Register(openai.New(credentials[constant.ProviderOpenAI]),
		credentials[constant.ProviderOpenAI] != "")
	registry.Register(anthropic.New(credentials[constant.ProviderAnthropic]),
		credentials[constant.ProviderAnthropic] != "")
	registry.Register(googleai.New(credentials[constant.ProviderGoogle]),
		credentials[constant.ProviderGoogle] != "")

	registry.Register(openaicompat.New(
		constant.ProviderPerplexity,
		credentials[constant.ProviderPerplexity],
		"https://api.perplexity.ai",
		"sonar",
	), credentials[constant.ProviderPerplexity] != "")

	registry.Register(openaicompat.New(
		constant.ProviderGrok,
		credentials[constant.ProviderGrok],
		"https://api.x.ai/v1",
		"grok-3",
	), credentials[constant.ProviderGrok] != "")

	registry.Register(openaicompat.New(
		constant.ProviderDeepSeek,
		credentials[constant.ProviderDeepSeek],
		"https://api.deepseek.com",
		"deepseek-chat",
	), credentials[constant.ProviderDeepSeek] != "")

	registry.RegisterDisabled(constant.ProviderMicrosoft)
	registry.RegisterDisabled(constant.ProviderLlama)

	return registry
}
