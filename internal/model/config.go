package model

import (
	"runtime"
	"time"
)

// Config holds all runtime configuration
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	OCR          OCRConfig          `yaml:"ocr" mapstructure:"ocr"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the local model runtime connection
type LLMConfig struct {
	Provider      string        `yaml:"provider" mapstructure:"provider"`             // ollama, openai (OpenAI-compatible gateways)
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`             // Runtime endpoint
	Model         string        `yaml:"model" mapstructure:"model"`                   // Text model name
	VisionModel   string        `yaml:"vision_model" mapstructure:"vision_model"`     // Multimodal model; empty means use Model
	APIKey        string        `yaml:"api_key,omitempty" mapstructure:"api_key"`     // OpenAI-compatible gateways only
	Disabled      bool          `yaml:"disabled" mapstructure:"disabled"`             // Hard switch: never contact the runtime
	ProbeTimeout  time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`   // Liveness check budget
	TextTimeout   time.Duration `yaml:"text_timeout" mapstructure:"text_timeout"`     // Structuring/categorizing calls
	VisionTimeout time.Duration `yaml:"vision_timeout" mapstructure:"vision_timeout"` // Image calls run much longer
	MaxTokens     int           `yaml:"max_tokens" mapstructure:"max_tokens"`         // Completion length bound (num_predict)
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// OCRConfig configures the external OCR tool invocations
type OCRConfig struct {
	Language      string        `yaml:"language" mapstructure:"language"`             // Tesseract language code
	DPI           int           `yaml:"dpi" mapstructure:"dpi"`                       // Rasterization density for scanned PDFs
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`               // Per-tool-invocation budget
	TSVConfidence bool          `yaml:"tsv_confidence" mapstructure:"tsv_confidence"` // Use tesseract word confidences instead of text heuristic only
}

// ServerConfig configures the HTTP extraction service
type ServerConfig struct {
	Host           string        `yaml:"host" mapstructure:"host"`
	Port           int           `yaml:"port" mapstructure:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"` // Must cover a full vision call
	IdleTimeout    time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// CacheConfig configures OCR artifact caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"` // Empty disables the disk layer
}

// ConcurrencyConfig configures batch processing parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig paces generate calls against the runtime.
// Local runtimes are typically single-threaded or GPU-bound; hammering them
// only grows the queue until probes start timing out.
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls CLI output behavior
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the standard configuration
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:      "ollama",
			BaseURL:       "http://localhost:11434",
			Model:         "llama3.2",
			VisionModel:   "llava",
			Disabled:      false,
			ProbeTimeout:  2 * time.Second,
			TextTimeout:   60 * time.Second,
			VisionTimeout: 120 * time.Second,
			MaxTokens:     1024,
		},
		OCR: OCRConfig{
			Language:      "eng",
			DPI:           300,
			Timeout:       2 * time.Minute,
			TSVConfidence: true,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   3 * time.Minute,
			IdleTimeout:    2 * time.Minute,
			MaxUploadBytes: 25 << 20,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
