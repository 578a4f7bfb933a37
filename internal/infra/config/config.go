package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	LLM          LLMConfig          `yaml:"llm"`
	Embedder     EmbedderConfig     `yaml:"embedder"`
	FAQ          FAQConfig          `yaml:"faq"`
	Catalog      CatalogConfig      `yaml:"catalog"`
	Cache        CacheConfig        `yaml:"cache"`
	Conversation ConversationConfig `yaml:"conversation"`
	Admin        AdminConfig        `yaml:"admin"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	Gzip           bool            `yaml:"gzip"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Session        SessionConfig   `yaml:"session"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// SessionConfig controls the chat session cookie.
type SessionConfig struct {
	CookieName string        `yaml:"cookieName"`
	MaxAge     time.Duration `yaml:"maxAge"`
	Secure     bool          `yaml:"secure"`
}

// LLMConfig contains settings for the OpenAI compatible endpoint.
type LLMConfig struct {
	APIKey  string        `yaml:"apiKey"`
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
}

// EmbedderConfig selects and tunes the embedding provider.
type EmbedderConfig struct {
	Provider       string        `yaml:"provider"`
	Model          string        `yaml:"model"`
	Dimension      int           `yaml:"dimension"`
	MaxInputTokens int           `yaml:"maxInputTokens"`
	CacheSize      int           `yaml:"cacheSize"`
	CacheTTL       time.Duration `yaml:"cacheTtl"`
}

// FAQConfig controls matching and reply behavior.
type FAQConfig struct {
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	KeywordWeight       float64       `yaml:"keywordWeight"`
	RequestTimeout      time.Duration `yaml:"requestTimeout"`
	Brand               string        `yaml:"brand"`
	ContactPhone        string        `yaml:"contactPhone"`
	Apology             string        `yaml:"apology"`
	Lemmatize           bool          `yaml:"lemmatize"`
	StripPunctuation    bool          `yaml:"stripPunctuation"`
}

// CatalogConfig locates the FAQ catalog.
type CatalogConfig struct {
	DSN               string        `yaml:"dsn"`
	File              string        `yaml:"file"`
	Object            ObjectConfig  `yaml:"object"`
	MaxConns          int32         `yaml:"maxConns"`
	MinConns          int32         `yaml:"minConns"`
	AllowEmpty        bool          `yaml:"allowEmpty"`
	ArchiveEmbeddings bool          `yaml:"archiveEmbeddings"`
	EmbedConcurrency  int           `yaml:"embedConcurrency"`
	ReloadSchedule    string        `yaml:"reloadSchedule"`
	LoadTimeout       time.Duration `yaml:"loadTimeout"`
}

// ObjectConfig points at a YAML seed stored in an S3 compatible bucket.
type ObjectConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Key       string `yaml:"key"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"useSsl"`
}

// Enabled reports whether the object source is configured.
func (o ObjectConfig) Enabled() bool {
	return strings.TrimSpace(o.Endpoint) != "" && strings.TrimSpace(o.Bucket) != ""
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend string        `yaml:"backend"`
	TTL     time.Duration `yaml:"ttl"`
	Size    int           `yaml:"size"`
	Valkey  ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for Valkey or Redis.
type ValkeyConfig struct {
	Addr         string        `yaml:"addr"`
	Prefix       string        `yaml:"prefix"`
	LockTTL      time.Duration `yaml:"lockTtl"`
	PollInterval time.Duration `yaml:"pollInterval"`
}

// ConversationConfig controls the chat transcript log.
type ConversationConfig struct {
	Enabled  bool   `yaml:"enabled"`
	DSN      string `yaml:"dsn"`
	Queue    string `yaml:"queue"`
	QueueKey string `yaml:"queueKey"`
	Workers  int    `yaml:"workers"`
}

// AdminConfig enables the operator endpoints.
type AdminConfig struct {
	Username     string        `yaml:"username"`
	PasswordHash string        `yaml:"passwordHash"`
	Secret       string        `yaml:"secret"`
	TokenTTL     time.Duration `yaml:"tokenTtl"`
}

const (
	CacheBackendMemory = "memory"
	CacheBackendValkey = "valkey"

	EmbedderOpenAI  = "openai"
	EmbedderLexical = "lexical"

	QueueImmediate = "immediate"
	QueueValkey    = "valkey"
)

// Load reads configuration from a YAML file, an optional .env file and
// environment variables, in that order of precedence.
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

	if err := loadDotEnv(); err != nil {
		return nil, err
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

// loadDotEnv never overrides variables already present in the environment.
func loadDotEnv() error {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	envString("HTTP_ADDRESS", &cfg.HTTP.Address)
	envDuration("HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout)
	envDuration("HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout)
	envList("HTTP_ALLOWED_ORIGINS", &cfg.HTTP.AllowedOrigins)
	envBool("HTTP_GZIP", &cfg.HTTP.Gzip)
	envBool("HTTP_RATE_LIMIT_ENABLED", &cfg.HTTP.RateLimit.Enabled)
	envInt("HTTP_RATE_LIMIT_RPM", &cfg.HTTP.RateLimit.RequestsPerMinute)
	envInt("HTTP_RATE_LIMIT_BURST", &cfg.HTTP.RateLimit.Burst)
	envBool("HTTP_SESSION_SECURE", &cfg.HTTP.Session.Secure)

	envString("LLM_API_KEY", &cfg.LLM.APIKey)
	envString("LLM_BASE_URL", &cfg.LLM.BaseURL)
	envDuration("LLM_TIMEOUT", &cfg.LLM.Timeout)

	envString("EMBEDDER_PROVIDER", &cfg.Embedder.Provider)
	envString("EMBEDDER_MODEL", &cfg.Embedder.Model)
	envInt("EMBEDDER_DIMENSION", &cfg.Embedder.Dimension)
	envInt("EMBEDDER_MAX_INPUT_TOKENS", &cfg.Embedder.MaxInputTokens)
	envInt("EMBEDDER_CACHE_SIZE", &cfg.Embedder.CacheSize)
	envDuration("EMBEDDER_CACHE_TTL", &cfg.Embedder.CacheTTL)

	envFloat("FAQ_SIMILARITY_THRESHOLD", &cfg.FAQ.SimilarityThreshold)
	envFloat("FAQ_KEYWORD_WEIGHT", &cfg.FAQ.KeywordWeight)
	envDuration("FAQ_REQUEST_TIMEOUT", &cfg.FAQ.RequestTimeout)
	envString("FAQ_BRAND", &cfg.FAQ.Brand)
	envString("FAQ_CONTACT_PHONE", &cfg.FAQ.ContactPhone)
	envBool("FAQ_LEMMATIZE", &cfg.FAQ.Lemmatize)

	envString("CATALOG_DSN", &cfg.Catalog.DSN)
	envString("CATALOG_FILE", &cfg.Catalog.File)
	envString("CATALOG_OBJECT_ENDPOINT", &cfg.Catalog.Object.Endpoint)
	envString("CATALOG_OBJECT_BUCKET", &cfg.Catalog.Object.Bucket)
	envString("CATALOG_OBJECT_KEY", &cfg.Catalog.Object.Key)
	envString("CATALOG_OBJECT_ACCESS_KEY", &cfg.Catalog.Object.AccessKey)
	envString("CATALOG_OBJECT_SECRET_KEY", &cfg.Catalog.Object.SecretKey)
	envBool("CATALOG_OBJECT_USE_SSL", &cfg.Catalog.Object.UseSSL)
	envBool("CATALOG_ALLOW_EMPTY", &cfg.Catalog.AllowEmpty)
	envBool("CATALOG_ARCHIVE_EMBEDDINGS", &cfg.Catalog.ArchiveEmbeddings)
	envString("CATALOG_RELOAD_SCHEDULE", &cfg.Catalog.ReloadSchedule)
	if v := os.Getenv("CATALOG_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Catalog.MaxConns = int32(parsed)
		}
	}

	envString("CACHE_BACKEND", &cfg.Cache.Backend)
	envDuration("CACHE_TTL", &cfg.Cache.TTL)
	envInt("CACHE_SIZE", &cfg.Cache.Size)
	envString("CACHE_VALKEY_ADDR", &cfg.Cache.Valkey.Addr)
	envString("CACHE_VALKEY_PREFIX", &cfg.Cache.Valkey.Prefix)

	envBool("CONVERSATION_ENABLED", &cfg.Conversation.Enabled)
	envString("CONVERSATION_DSN", &cfg.Conversation.DSN)
	envString("CONVERSATION_QUEUE", &cfg.Conversation.Queue)

	envString("ADMIN_USERNAME", &cfg.Admin.Username)
	envString("ADMIN_PASSWORD_HASH", &cfg.Admin.PasswordHash)
	envString("ADMIN_SECRET", &cfg.Admin.Secret)
	envDuration("ADMIN_TOKEN_TTL", &cfg.Admin.TokenTTL)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func envFloat(key string, dst *float64) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = parsed
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		*dst = v == "1" || strings.EqualFold(v, "true")
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}

func envList(key string, dst *[]string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*dst = out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
			Gzip:         true,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Session: SessionConfig{
				CookieName: "session_id",
				MaxAge:     30 * 24 * time.Hour,
			},
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com/v1",
			Timeout: 8 * time.Second,
		},
		Embedder: EmbedderConfig{
			Provider:       EmbedderLexical,
			Model:          "paraphrase-multilingual-MiniLM-L12-v2",
			Dimension:      384,
			MaxInputTokens: 256,
			CacheSize:      1024,
			CacheTTL:       time.Hour,
		},
		FAQ: FAQConfig{
			SimilarityThreshold: 0.7,
			RequestTimeout:      10 * time.Second,
			Brand:               "EXCEL Vision",
			ContactPhone:        "0800 200 388",
			Lemmatize:           true,
			StripPunctuation:    true,
		},
		Catalog: CatalogConfig{
			File:             "configs/faq.yaml",
			MaxConns:         4,
			EmbedConcurrency: 4,
			LoadTimeout:      2 * time.Minute,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			TTL:     300 * time.Second,
			Size:    4096,
			Valkey: ValkeyConfig{
				Prefix:       "faqbot:reply",
				LockTTL:      15 * time.Second,
				PollInterval: 50 * time.Millisecond,
			},
		},
		Conversation: ConversationConfig{
			Queue:    QueueImmediate,
			QueueKey: "faqbot:turns",
			Workers:  2,
		},
		Admin: AdminConfig{
			Username: "admin",
			TokenTTL: time.Hour,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.HTTP.Session.CookieName) == "" {
		return errors.New("http.session.cookieName cannot be empty")
	}
	switch c.Embedder.Provider {
	case EmbedderLexical:
		if c.Embedder.Dimension <= 0 {
			return errors.New("embedder.dimension must be positive for the lexical provider")
		}
	case EmbedderOpenAI:
		if strings.TrimSpace(c.LLM.BaseURL) == "" {
			return errors.New("llm.baseUrl cannot be empty for the openai provider")
		}
	default:
		return fmt.Errorf("embedder.provider %q is not supported", c.Embedder.Provider)
	}
	if strings.TrimSpace(c.Embedder.Model) == "" {
		return errors.New("embedder.model cannot be empty")
	}
	if c.FAQ.SimilarityThreshold < -1 || c.FAQ.SimilarityThreshold > 1 {
		return errors.New("faq.similarityThreshold must be within [-1, 1]")
	}
	if c.FAQ.KeywordWeight < 0 || c.FAQ.KeywordWeight > 1 {
		return errors.New("faq.keywordWeight must be within [0, 1]")
	}
	if c.FAQ.RequestTimeout < 0 {
		return errors.New("faq.requestTimeout cannot be negative")
	}
	if strings.TrimSpace(c.FAQ.Brand) == "" {
		return errors.New("faq.brand cannot be empty")
	}
	if c.Catalog.DSN == "" && c.Catalog.File == "" && !c.Catalog.Object.Enabled() {
		return errors.New("catalog requires a dsn, a file or an object location")
	}
	if c.Catalog.Object.Enabled() && strings.TrimSpace(c.Catalog.Object.Key) == "" {
		return errors.New("catalog.object.key cannot be empty")
	}
	if c.Catalog.EmbedConcurrency <= 0 {
		return errors.New("catalog.embedConcurrency must be positive")
	}
	switch c.Cache.Backend {
	case CacheBackendMemory:
		if c.Cache.Size <= 0 {
			return errors.New("cache.size must be positive")
		}
	case CacheBackendValkey:
		if strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
			return errors.New("cache.valkey.addr cannot be empty when the valkey cache is enabled")
		}
		if c.Cache.Valkey.LockTTL < time.Second {
			return errors.New("cache.valkey.lockTtl must be at least one second")
		}
	default:
		return fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Conversation.Enabled {
		if c.Conversation.DSN == "" && c.Catalog.DSN == "" {
			return errors.New("conversation.dsn or catalog.dsn is required when the conversation log is enabled")
		}
		switch c.Conversation.Queue {
		case QueueImmediate:
		case QueueValkey:
			if strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
				return errors.New("cache.valkey.addr is required for the valkey conversation queue")
			}
		default:
			return fmt.Errorf("conversation.queue %q is not supported", c.Conversation.Queue)
		}
	}
	if (c.Admin.PasswordHash == "") != (c.Admin.Secret == "") {
		return errors.New("admin.passwordHash and admin.secret must be set together")
	}
	return nil
}

// ConversationDSN falls back to the catalog store when no dedicated log DSN is set.
func (c *Config) ConversationDSN() string {
	if c.Conversation.DSN != "" {
		return c.Conversation.DSN
	}
	return c.Catalog.DSN
}
