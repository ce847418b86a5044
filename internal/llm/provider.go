package llm

import (
	"context"
	"strings"
	"time"

	"github.com/JustinChaney2023/ARA-Multipurpose-AI-App/internal/model"
)

// Provider defines the interface for model runtimes
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate runs one completion and returns the raw response text
	Generate(ctx context.Context, req GenerateRequest) (string, error)

	// ListModels returns the model names the runtime is serving
	ListModels(ctx context.Context) ([]string, error)

	// IsAvailable checks if the runtime is reachable, within the probe timeout
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one completion call
type GenerateRequest struct {
	// Model overrides the configured default model for this call
	Model string

	// Prompt is the full prompt text
	Prompt string

	// Images holds raw image bytes for multimodal calls; encoded per provider
	Images [][]byte

	// Temperature controls sampling; extraction prompts run near zero
	Temperature float64

	// MaxTokens bounds the completion length
	MaxTokens int

	// Stop sequences cut the completion off early
	Stop []string

	// Timeout bounds this call; zero means the provider default
	Timeout time.Duration
}

// Config holds provider configuration
type Config struct {
	// Provider name: "ollama", "openai", ""
	Provider string

	// Model is the default text model
	Model string

	// VisionModel handles image calls; empty falls back to Model
	VisionModel string

	// APIKey for OpenAI-compatible gateways
	APIKey string

	// BaseURL of the runtime
	BaseURL string

	// ProbeTimeout bounds the liveness check
	ProbeTimeout time.Duration

	// TextTimeout bounds structuring and categorizing calls
	TextTimeout time.Duration

	// VisionTimeout bounds image calls
	VisionTimeout time.Duration

	// MaxTokens is the default completion bound
	MaxTokens int

	// RequestsPerSecond and Burst pace generate calls; local runtimes queue
	// rather than parallelize, so pacing keeps probe latency honest
	RequestsPerSecond float64
	Burst             int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:          "ollama",
		BaseURL:           "http://localhost:11434",
		Model:             "llama3.2",
		VisionModel:       "llava",
		ProbeTimeout:      2 * time.Second,
		TextTimeout:       60 * time.Second,
		VisionTimeout:     120 * time.Second,
		MaxTokens:         1024,
		RequestsPerSecond: 1,
		Burst:             2,
	}
}

// ConfigFromModel converts the application config into provider config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:          cfg.LLM.Provider,
		Model:             cfg.LLM.Model,
		VisionModel:       cfg.LLM.VisionModel,
		APIKey:            cfg.LLM.APIKey,
		BaseURL:           cfg.LLM.BaseURL,
		ProbeTimeout:      cfg.LLM.ProbeTimeout,
		TextTimeout:       cfg.LLM.TextTimeout,
		VisionTimeout:     cfg.LLM.VisionTimeout,
		MaxTokens:         cfg.LLM.MaxTokens,
		RequestsPerSecond: cfg.RateLimiting.RequestsPerSecond,
		Burst:             cfg.RateLimiting.BurstSize,
		HTTPProxy:         cfg.LLM.HTTPProxy,
		HTTPSProxy:        cfg.LLM.HTTPSProxy,
		NoProxy:           cfg.LLM.NoProxy,
	}
}

// VisionModelName returns the model to use for image calls
func (c Config) VisionModelName() string {
	if c.VisionModel != "" {
		return c.VisionModel
	}
	return c.Model
}

// multimodalPatterns are name fragments of model families that accept
// images. There is no capability endpoint to ask, so the name is the signal.
var multimodalPatterns = []string{"llava", "bakllava", "moondream", "minicpm", "vision"}

// IsMultimodal reports whether a model name looks like an image-capable model
func IsMultimodal(name string) bool {
	lower := strings.ToLower(name)
	for _, p := range multimodalPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
