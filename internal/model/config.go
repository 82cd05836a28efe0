package model

import "time"

// Config is the complete application configuration
type Config struct {
	Data         DataConfig         `yaml:"data" mapstructure:"data"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Summary      SummaryConfig      `yaml:"summary" mapstructure:"summary"`
	Revision     RevisionConfig     `yaml:"revision" mapstructure:"revision"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the knowledge base on disk
type DataConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"` // Base directory; data/ lives under it
}

// HTTPConfig configures web page ingestion and reference lookups
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// CacheConfig configures the reference lookup cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	Dir       string        `yaml:"dir,omitempty" mapstructure:"dir"` // Defaults to <data>/data/cache
}

// LLMConfig configures the optional generative bullet producer
type LLMConfig struct {
	Provider       string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model          string `yaml:"model" mapstructure:"model"`
	APIKey         string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL        string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout        int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens      int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	MaxInputTokens int    `yaml:"max_input_tokens" mapstructure:"max_input_tokens"`
}

// SummaryConfig configures per-document summaries
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences" mapstructure:"max_sentences"`
}

// RevisionConfig configures revision sheet generation
type RevisionConfig struct {
	MaxDocs       int           `yaml:"max_docs" mapstructure:"max_docs"`
	ExternalRefs  int           `yaml:"external_refs" mapstructure:"external_refs"`
	WikipediaLang string        `yaml:"wikipedia_lang" mapstructure:"wikipedia_lang"`
	LookupTimeout time.Duration `yaml:"lookup_timeout" mapstructure:"lookup_timeout"`
}

// RateLimitingConfig configures per-host request rates
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig configures batch URL ingestion
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig selects the logger mode
type LogConfig struct {
	Mode string `yaml:"mode" mapstructure:"mode"` // dev, prod, quiet
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{Dir: "."},
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Savoir/0.1 (+https://github.com/ppiankov/savoir)",
			MaxBodyBytes:  5_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		LLM: LLMConfig{
			Provider:       "", // Disabled by default
			Timeout:        60,
			MaxTokens:      320,
			MaxInputTokens: 8192,
		},
		Summary: SummaryConfig{MaxSentences: 12},
		Revision: RevisionConfig{
			MaxDocs:       8,
			ExternalRefs:  3,
			WikipediaLang: "fr",
			LookupTimeout: 10 * time.Second,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Concurrency: ConcurrencyConfig{Workers: 4},
		Log:         LogConfig{Mode: "quiet"},
	}
}
