package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	LLM      LLMConfig      `yaml:"llm"`
	Coach    CoachConfig    `yaml:"coach"`
	Report   ReportConfig   `yaml:"report"`
	QA       QAConfig       `yaml:"qa"`
	Cache    CacheConfig    `yaml:"cache"`
	Postgres PostgresConfig `yaml:"postgres"`
	Clips    ClipsConfig    `yaml:"clips"`
	Auth     AuthConfig     `yaml:"auth"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Retry          RetryConfig     `yaml:"retry"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// RetryConfig configures best-effort retries for idempotent requests.
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
	Exclude     []string      `yaml:"exclude"`
}

// LLMConfig contains OpenAI-compatible provider settings.
type LLMConfig struct {
	APIKey             string  `yaml:"apiKey"`
	BaseURL            string  `yaml:"baseUrl"`
	Model              string  `yaml:"model"`
	EmbeddingModel     string  `yaml:"embeddingModel"`
	TranscriptionModel string  `yaml:"transcriptionModel"`
	Temperature        float32 `yaml:"temperature"`
}

// CoachConfig controls the free-form coaching chat.
type CoachConfig struct {
	MaxHistory int `yaml:"maxHistory"`
}

// ReportConfig controls swing report synthesis and handoff.
type ReportConfig struct {
	ReportTTL    time.Duration `yaml:"reportTtl"`
	MaxClipBytes int64         `yaml:"maxClipBytes"`
}

// QAConfig controls report-grounded question answering.
type QAConfig struct {
	CacheTTL            time.Duration `yaml:"cacheTtl"`
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	TopQuestions        int           `yaml:"topQuestions"`
}

// CacheConfig points at the Valkey instance backing report handoff and
// answer caching. When disabled both fall back to process memory.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// PostgresConfig contains DSN and pooling settings shared by repositories.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// ClipsConfig configures S3-compatible storage for uploaded swing clips.
type ClipsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// AuthConfig drives authentication behavior.
type AuthConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Secret          string        `yaml:"secret"`
	TokenTTL        time.Duration `yaml:"tokenTtl"`
	RefreshTokenTTL time.Duration `yaml:"refreshTokenTtl"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TRANSCRIPTION_MODEL"); v != "" {
		cfg.LLM.TranscriptionModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("COACH_MAX_HISTORY"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Coach.MaxHistory = parsed
		}
	}
	if v := os.Getenv("REPORT_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Report.ReportTTL = parsed
		}
	}
	if v := os.Getenv("REPORT_MAX_CLIP_BYTES"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Report.MaxClipBytes = parsed
		}
	}
	if v := os.Getenv("QA_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.QA.CacheTTL = parsed
		}
	}
	if v := os.Getenv("QA_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.QA.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("QA_TOP_QUESTIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.QA.TopQuestions = parsed
		}
	}
	if v := os.Getenv("CACHE_ENABLED"); v != "" {
		cfg.Cache.Enabled = isTruthy(v)
	}
	if v := os.Getenv("CACHE_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("POSTGRES_MIN_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.MinConns = int32(parsed)
		}
	}
	if v := os.Getenv("CLIPS_ENABLED"); v != "" {
		cfg.Clips.Enabled = isTruthy(v)
	}
	if v := os.Getenv("CLIPS_ENDPOINT"); v != "" {
		cfg.Clips.Endpoint = v
	}
	if v := os.Getenv("CLIPS_ACCESS_KEY"); v != "" {
		cfg.Clips.AccessKey = v
	}
	if v := os.Getenv("CLIPS_SECRET_KEY"); v != "" {
		cfg.Clips.SecretKey = v
	}
	if v := os.Getenv("CLIPS_BUCKET"); v != "" {
		cfg.Clips.Bucket = v
	}
	if v := os.Getenv("CLIPS_REGION"); v != "" {
		cfg.Clips.Region = v
	}
	if v := os.Getenv("AUTH_ENABLED"); v != "" {
		cfg.Auth.Enabled = isTruthy(v)
	}
	if v := os.Getenv("AUTH_SECRET"); v != "" {
		cfg.Auth.Secret = v
	}
	if v := os.Getenv("AUTH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = parsed
		}
	}
	if v := os.Getenv("AUTH_REFRESH_TOKEN_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Auth.RefreshTokenTTL = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_ENABLED"); v != "" {
		cfg.HTTP.Retry.Enabled = isTruthy(v)
	}
	if v := os.Getenv("HTTP_RETRY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Retry.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("HTTP_RETRY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.HTTP.Retry.BaseBackoff = parsed
		}
	}
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Retry: RetryConfig{
				Enabled:     true,
				MaxAttempts: 3,
				BaseBackoff: 150 * time.Millisecond,
				Exclude: []string{
					"/api/v1/coach/chat/stream",
					"/api/v1/reports",
					"/api/v1/transcriptions",
				},
			},
		},
		LLM: LLMConfig{
			Model:              "gpt-4.1-mini",
			EmbeddingModel:     "text-embedding-3-small",
			TranscriptionModel: "whisper-1",
			Temperature:        0.7,
		},
		Coach: CoachConfig{
			MaxHistory: 40,
		},
		Report: ReportConfig{
			ReportTTL:    24 * time.Hour,
			MaxClipBytes: 64 << 20,
		},
		QA: QAConfig{
			CacheTTL:            6 * time.Hour,
			SimilarityThreshold: 0.7,
			TopQuestions:        10,
		},
		Postgres: PostgresConfig{
			MaxConns: 4,
		},
		Auth: AuthConfig{
			Enabled:         false,
			TokenTTL:        time.Hour,
			RefreshTokenTTL: 30 * 24 * time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return errors.New("llm.model cannot be empty")
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if strings.TrimSpace(c.LLM.TranscriptionModel) == "" {
		return errors.New("llm.transcriptionModel cannot be empty")
	}
	if c.Coach.MaxHistory <= 0 {
		return errors.New("coach.maxHistory must be positive")
	}
	if c.Report.ReportTTL < 0 {
		return errors.New("report.reportTtl cannot be negative")
	}
	if c.Report.MaxClipBytes <= 0 {
		return errors.New("report.maxClipBytes must be positive")
	}
	if c.QA.CacheTTL < 0 {
		return errors.New("qa.cacheTtl cannot be negative")
	}
	if c.QA.SimilarityThreshold < 0 {
		return errors.New("qa.similarityThreshold must be non-negative")
	}
	if c.QA.TopQuestions < 0 {
		return errors.New("qa.topQuestions cannot be negative")
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when cache is enabled")
	}
	if c.Clips.Enabled {
		if strings.TrimSpace(c.Clips.Endpoint) == "" {
			return errors.New("clips.endpoint cannot be empty when clip storage is enabled")
		}
		if strings.TrimSpace(c.Clips.Bucket) == "" {
			return errors.New("clips.bucket cannot be empty when clip storage is enabled")
		}
	}
	if c.Auth.Enabled {
		if strings.TrimSpace(c.Auth.Secret) == "" {
			return errors.New("auth.secret cannot be empty when auth is enabled")
		}
		if c.Auth.TokenTTL <= 0 {
			return errors.New("auth.tokenTtl must be positive")
		}
		if c.Auth.RefreshTokenTTL <= 0 {
			return errors.New("auth.refreshTokenTtl must be positive")
		}
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if c.HTTP.Retry.Enabled {
		if c.HTTP.Retry.MaxAttempts <= 0 {
			return errors.New("http.retry.maxAttempts must be positive")
		}
		if c.HTTP.Retry.BaseBackoff <= 0 {
			return errors.New("http.retry.baseBackoff must be positive")
		}
	}
	return nil
}

func isTruthy(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if clean := strings.TrimSpace(p); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
