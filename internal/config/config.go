package config

import (
	"log"
	"os"

	"ai-orchestra-be/internal/constant"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Keys     APIKeys
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	EventTopic         string
}

type DatabaseConfig struct {
	Connection string
}

// APIKeys holds one credential per AI provider. An empty key leaves the
// provider registered but unconfigured; its adapter fails
// deterministically instead of calling out.
type APIKeys struct {
	OpenAI     string
	Anthropic  string
	Google     string
	Perplexity string
	Grok       string
	DeepSeek   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			EventTopic:         getEnv("RESPONSE_EVENTS_TOPIC_NAME", constant.ResponseEventsTopic),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			OpenAI:     getEnv("OPENAI_API_KEY", ""),
			Anthropic:  getEnv("ANTHROPIC_API_KEY", ""),
			Google:     getEnv("GOOGLE_API_KEY", ""),
			Perplexity: getEnv("PERPLEXITY_API_KEY", ""),
			Grok:       getEnv("GROK_API_KEY", ""),
			DeepSeek:   getEnv("DEEPSEEK_API_KEY", ""),
		},
	}
}

// CredentialMap shapes the keys for the provider registry factory.
func (c *Config) CredentialMap() map[string]string {
	return map[string]string{
		constant.ProviderOpenAI:     c.Keys.OpenAI,
		constant.ProviderAnthropic:  c.Keys.Anthropic,
		constant.ProviderGoogle:     c.Keys.Google,
		constant.ProviderPerplexity: c.Keys.Perplexity,
		constant.ProviderGrok:       c.Keys.Grok,
		constant.ProviderDeepSeek:   c.Keys.DeepSeek,
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
