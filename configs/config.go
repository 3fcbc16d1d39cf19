package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Port        string
	Environment string
	AppVersion  string
	DataPath    string
	PromptsPath string

	// Admin credentials guard the maintenance endpoints; APIKey guards /api/v1.
	AdminUsername string
	AdminPassword string
	APIKey        string

	LLMProvider    string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float32

	AzureOpenAIEndpoint   string
	AzureOpenAIAPIKey     string
	AzureOpenAIAPIVersion string

	WikiAPIURL    string
	WikiRESTURL   string
	WikiCacheTTL  time.Duration
	WikiRateLimit float64
	HTTPTimeout   time.Duration

	EvidenceTopK   int
	ForestTrees    int
	ForestMaxDepth int
	RandomSeed     int64

	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	provider := strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER")))

	// GROQ_API_KEY is the historical name of the credential; LLM_API_KEY wins when both are set.
	apiKey := v.GetString("LLM_API_KEY")
	if apiKey == "" {
		apiKey = v.GetString("GROQ_API_KEY")
	}

	return &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		AppVersion:  v.GetString("APP_VERSION"),
		DataPath:    v.GetString("DATA_PATH"),
		PromptsPath: v.GetString("PROMPTS_PATH"),

		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		APIKey:        v.GetString("API_KEY"),

		LLMProvider:    provider,
		LLMAPIKey:      apiKey,
		LLMBaseURL:     v.GetString("LLM_BASE_URL"),
		LLMModel:       v.GetString("LLM_MODEL"),
		LLMMaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
		LLMTemperature: float32(v.GetFloat64("LLM_TEMPERATURE")),

		AzureOpenAIEndpoint:   v.GetString("AZURE_OPENAI_ENDPOINT"),
		AzureOpenAIAPIKey:     v.GetString("AZURE_OPENAI_API_KEY"),
		AzureOpenAIAPIVersion: v.GetString("AZURE_OPENAI_API_VERSION"),

		WikiAPIURL:    v.GetString("WIKI_API_URL"),
		WikiRESTURL:   v.GetString("WIKI_REST_URL"),
		WikiCacheTTL:  v.GetDuration("WIKI_CACHE_TTL"),
		WikiRateLimit: v.GetFloat64("WIKI_RATE_LIMIT"),
		HTTPTimeout:   v.GetDuration("HTTP_TIMEOUT"),

		EvidenceTopK:   v.GetInt("EVIDENCE_TOP_K"),
		ForestTrees:    v.GetInt("FOREST_TREES"),
		ForestMaxDepth: v.GetInt("FOREST_MAX_DEPTH"),
		RandomSeed:     v.GetInt64("RANDOM_SEED"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}
}

// IsProduction reports whether the service runs with ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("DATA_PATH", "data/clean_iucn_species.csv")
	v.SetDefault("PROMPTS_PATH", "")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "")
	v.SetDefault("API_KEY", "")

	v.SetDefault("LLM_PROVIDER", "groq")
	v.SetDefault("LLM_BASE_URL", "")
	v.SetDefault("LLM_MODEL", "llama-3.3-70b-versatile")
	v.SetDefault("LLM_MAX_TOKENS", 200)
	v.SetDefault("LLM_TEMPERATURE", 0.7)

	v.SetDefault("AZURE_OPENAI_ENDPOINT", "")
	v.SetDefault("AZURE_OPENAI_API_KEY", "")
	v.SetDefault("AZURE_OPENAI_API_VERSION", "2023-12-01-preview")

	v.SetDefault("WIKI_API_URL", "https://en.wikipedia.org/w/api.php")
	v.SetDefault("WIKI_REST_URL", "https://en.wikipedia.org/api/rest_v1")
	v.SetDefault("WIKI_CACHE_TTL", "1h")
	v.SetDefault("WIKI_RATE_LIMIT", 5.0)
	v.SetDefault("HTTP_TIMEOUT", "30s")

	v.SetDefault("EVIDENCE_TOP_K", 5)
	v.SetDefault("FOREST_TREES", 400)
	v.SetDefault("FOREST_MAX_DEPTH", 14)
	v.SetDefault("RANDOM_SEED", 42)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}
