// Package llm wraps an OpenAI-compatible chat completion API (Groq, OpenAI or
// Azure OpenAI) behind a call that never fails: callers get an explicit Result.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"wildlife-threat-api/pkg/logger"
)

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderAzure  = "azure"

	groqBaseURL = "https://api.groq.com/openai/v1"

	DefaultModel       = "llama-3.3-70b-versatile"
	DefaultMaxTokens   = 200
	DefaultTemperature = 0.7
	DefaultSystem      = "You are a helpful assistant."
)

// ErrNoCredential is the reason reported when no API key is configured.
var ErrNoCredential = errors.New("no API key configured")

// Config selects the provider and sampling parameters.
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration

	// Azure only.
	AzureEndpoint   string
	AzureAPIVersion string
}

// Client sends single-turn chat completions. A Client without a credential
// is valid and reports every call as unavailable.
type Client struct {
	client      *openai.Client
	provider    string
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

// NewClient builds a client for cfg.Provider. An empty API key yields a
// disabled client rather than an error.
func NewClient(cfg Config) (*Client, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGroq
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &Client{
		provider:    provider,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}

	if cfg.APIKey == "" {
		logger.Warn("LLM API key not set, explanations will use local fallbacks",
			zap.String("provider", provider))
		return c, nil
	}

	var oc openai.ClientConfig
	switch provider {
	case ProviderGroq:
		oc = openai.DefaultConfig(cfg.APIKey)
		oc.BaseURL = groqBaseURL
	case ProviderOpenAI:
		oc = openai.DefaultConfig(cfg.APIKey)
	case ProviderAzure:
		if cfg.AzureEndpoint == "" {
			return nil, fmt.Errorf("azure provider requires an endpoint")
		}
		oc = openai.DefaultAzureConfig(cfg.APIKey, cfg.AzureEndpoint)
		if cfg.AzureAPIVersion != "" {
			oc.APIVersion = cfg.AzureAPIVersion
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	c.client = openai.NewClientWithConfig(oc)

	logger.Info("LLM client initialized",
		zap.String("provider", provider),
		zap.String("model", cfg.Model),
		zap.Int("max_tokens", cfg.MaxTokens),
	)
	return c, nil
}

// Enabled reports whether the client has a credential.
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Generate sends system and prompt as a two-message chat and returns the
// first choice. Any failure is reported as Unavailable; no call is retried.
func (c *Client) Generate(ctx context.Context, system, prompt string) Result {
	if !c.Enabled() {
		return Unavailable(ErrNoCredential)
	}
	if system == "" {
		system = DefaultSystem
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		logger.Warn("LLM completion failed",
			zap.String("provider", c.provider),
			zap.Error(err))
		return Unavailable(fmt.Errorf("failed to create completion: %w", err))
	}
	if len(resp.Choices) == 0 {
		return Unavailable(errors.New("completion returned no choices"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Unavailable(errors.New("completion returned empty content"))
	}

	logger.Debug("LLM completion generated",
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)
	return Ok(text)
}
