package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process-wide configuration assembled from flags and environment.
type Config struct {
	Port        string
	LogMode     string
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	LLMProvider     string
	GroqAPIKey      string
	GroqBaseURL     string
	GroqModel       string
	AnthropicAPIKey string
	AnthropicModel  string

	AICallTimeout      time.Duration
	ExplainConcurrency int
	AIRatePerMinute    int
	AIRateBurst        int

	OCRProvider    string
	OCRSpaceAPIKey string
	OCRSpaceURL    string
	OCRTimeout     time.Duration
	MaxUploadBytes int64
	// GCPCredentials is a service-account JSON document or a path to one.
	// Empty means application default credentials.
	GCPCredentials string

	CORSAllowedOrigins []string
	ShutdownTimeout    time.Duration
}

const (
	ProviderGroq      = "groq"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"

	OCRProviderSpace  = "ocrspace"
	OCRProviderVision = "gcp_vision"
)

// SetDefaults registers every recognized key on v so AutomaticEnv can resolve it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("database_url", "")
	v.SetDefault("jwt_secret", "")
	v.SetDefault("token_ttl", 7*24*time.Hour)
	v.SetDefault("llm_provider", ProviderGroq)
	v.SetDefault("groq_api_key", "")
	v.SetDefault("groq_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq_model", "llama-3.1-8b-instant")
	v.SetDefault("anthropic_api_key", "")
	v.SetDefault("anthropic_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("ai_call_timeout", 30*time.Second)
	v.SetDefault("explain_concurrency", 8)
	v.SetDefault("ai_rate_per_minute", 30)
	v.SetDefault("ai_rate_burst", 10)
	v.SetDefault("ocr_provider", OCRProviderSpace)
	v.SetDefault("ocr_space_api_key", "")
	v.SetDefault("ocr_space_url", "https://api.ocr.space/parse/image")
	v.SetDefault("ocr_timeout", 60*time.Second)
	v.SetDefault("max_upload_bytes", int64(10<<20))
	v.SetDefault("gcp_credentials", "")
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("shutdown_timeout", 15*time.Second)
}

// New returns a viper instance wired to read the environment (PORT, JWT_SECRET, ...).
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads a Config out of v. It only fails on values that cannot be interpreted;
// absent secrets are reported by the components that need them.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:            v.GetString("port"),
		LogMode:         v.GetString("log_mode"),
		DatabaseURL:     strings.TrimSpace(v.GetString("database_url")),
		JWTSecret:       v.GetString("jwt_secret"),
		TokenTTL:        v.GetDuration("token_ttl"),
		LLMProvider:     strings.ToLower(strings.TrimSpace(v.GetString("llm_provider"))),
		GroqAPIKey:      strings.TrimSpace(v.GetString("groq_api_key")),
		GroqBaseURL:     v.GetString("groq_base_url"),
		GroqModel:       v.GetString("groq_model"),
		AnthropicAPIKey: strings.TrimSpace(v.GetString("anthropic_api_key")),
		AnthropicModel:  v.GetString("anthropic_model"),

		AICallTimeout:      v.GetDuration("ai_call_timeout"),
		ExplainConcurrency: v.GetInt("explain_concurrency"),
		AIRatePerMinute:    v.GetInt("ai_rate_per_minute"),
		AIRateBurst:        v.GetInt("ai_rate_burst"),

		OCRProvider:    strings.ToLower(strings.TrimSpace(v.GetString("ocr_provider"))),
		OCRSpaceAPIKey: strings.TrimSpace(v.GetString("ocr_space_api_key")),
		OCRSpaceURL:    v.GetString("ocr_space_url"),
		OCRTimeout:     v.GetDuration("ocr_timeout"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
		GCPCredentials: strings.TrimSpace(v.GetString("gcp_credentials")),

		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		ShutdownTimeout:    v.GetDuration("shutdown_timeout"),
	}

	switch cfg.LLMProvider {
	case ProviderGroq, ProviderAnthropic, ProviderMock:
	default:
		return nil, fmt.Errorf("unknown llm_provider %q", cfg.LLMProvider)
	}
	switch cfg.OCRProvider {
	case OCRProviderSpace, OCRProviderVision:
	default:
		return nil, fmt.Errorf("unknown ocr_provider %q", cfg.OCRProvider)
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 7 * 24 * time.Hour
	}
	if cfg.AICallTimeout <= 0 {
		cfg.AICallTimeout = 30 * time.Second
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 60 * time.Second
	}
	if cfg.ExplainConcurrency < 1 {
		cfg.ExplainConcurrency = 1
	}
	if cfg.AIRatePerMinute < 1 {
		cfg.AIRatePerMinute = 30
	}
	if cfg.AIRateBurst < 1 {
		cfg.AIRateBurst = 1
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 15 * time.Second
	}

	return cfg, nil
}

// AIConfigured reports whether the selected LLM provider has what it needs to make calls.
func (c *Config) AIConfigured() bool {
	switch c.LLMProvider {
	case ProviderMock:
		return true
	case ProviderAnthropic:
		return c.AnthropicAPIKey != ""
	default:
		return c.GroqAPIKey != ""
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
