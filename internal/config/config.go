package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all worker configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Storage    StorageConfig
	Extractor  ExtractorConfig
	Summarizer SummarizerConfig
	Queue      QueueConfig
	Log        LogConfig
	Redis      RedisConfig
	Telemetry  TelemetryConfig
}

// ServerConfig holds the health server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StorageConfig selects the blob store and the bucket documents live in.
type StorageConfig struct {
	Provider string    `mapstructure:"provider"`
	Bucket   string    `mapstructure:"bucket"`
	S3       S3Config  `mapstructure:"s3"`
	GCS      GCSConfig `mapstructure:"gcs"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// GCSConfig holds Google Cloud Storage settings.
type GCSConfig struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	Endpoint        string `mapstructure:"endpoint"`
}

// ProviderConfig holds settings for a single extraction or summarization provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	Endpoint     string `mapstructure:"endpoint"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// Timeout returns the configured request timeout, or def when unset.
func (p *ProviderConfig) Timeout(def time.Duration) time.Duration {
	if p.TimeoutSecs <= 0 {
		return def
	}
	return time.Duration(p.TimeoutSecs) * time.Second
}

// ExtractorConfig holds text extraction settings with multi-provider support.
type ExtractorConfig struct {
	Primary      ProviderConfig `mapstructure:"primary"`
	Secondary    ProviderConfig `mapstructure:"secondary"`
	Tertiary     ProviderConfig `mapstructure:"tertiary"`
	PDFPreflight bool           `mapstructure:"pdf_preflight"`
	RatePerMin   int            `mapstructure:"rate_per_min"`
}

// Chain returns the configured providers in fallback order.
func (e *ExtractorConfig) Chain() []*ProviderConfig {
	return chain(&e.Primary, &e.Secondary, &e.Tertiary)
}

// SummarizerConfig holds summarization settings with multi-provider support.
type SummarizerConfig struct {
	Primary      ProviderConfig `mapstructure:"primary"`
	Secondary    ProviderConfig `mapstructure:"secondary"`
	Tertiary     ProviderConfig `mapstructure:"tertiary"`
	MaxTokens    int            `mapstructure:"max_tokens"`
	ChunkSize    int            `mapstructure:"chunk_size"`
	ChunkOverlap int            `mapstructure:"chunk_overlap"`
	RatePerMin   int            `mapstructure:"rate_per_min"`
}

// Chain returns the configured providers in fallback order.
func (s *SummarizerConfig) Chain() []*ProviderConfig {
	return chain(&s.Primary, &s.Secondary, &s.Tertiary)
}

func chain(cfgs ...*ProviderConfig) []*ProviderConfig {
	var out []*ProviderConfig
	for _, c := range cfgs {
		if c.Provider != "" {
			out = append(out, c)
		}
	}
	return out
}

// QueueConfig holds polling worker settings.
type QueueConfig struct {
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	DocumentTimeout time.Duration `mapstructure:"document_timeout"`
	// StaleAfter requeues documents left in processing longer than this. Zero disables it.
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RedisConfig holds the single-active-worker lease settings.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LeaseKey string        `mapstructure:"lease_key"`
	LeaseTTL time.Duration `mapstructure:"lease_ttl"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
	Endpoint    string `mapstructure:"endpoint"`
	Insecure    bool   `mapstructure:"insecure"`
}

var (
	storageProviders    = map[string]bool{"s3": true, "gcs": true}
	extractorProviders  = map[string]bool{"azure": true, "gemini": true, "plaintext": true}
	summarizerProviders = map[string]bool{"claude": true, "openai": true, "gemini": true}
)

// Validate reports the first configuration problem that would stop the worker from running.
func (c *Config) Validate() error {
	if c.Queue.PollInterval <= 0 {
		return errors.New("queue.poll_interval must be positive")
	}
	if c.Queue.DocumentTimeout <= 0 {
		return errors.New("queue.document_timeout must be positive")
	}
	if c.Queue.StaleAfter < 0 {
		return errors.New("queue.stale_after must not be negative")
	}
	if !storageProviders[c.Storage.Provider] {
		return fmt.Errorf("unknown storage provider: %s", c.Storage.Provider)
	}
	if c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required")
	}
	if err := validateChain("extractor", c.Extractor.Chain(), extractorProviders); err != nil {
		return err
	}
	if err := validateChain("summarizer", c.Summarizer.Chain(), summarizerProviders); err != nil {
		return err
	}
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return errors.New("redis.addr is required when the lease is enabled")
		}
		if c.Redis.LeaseTTL <= c.Queue.DocumentTimeout {
			return fmt.Errorf("redis.lease_ttl (%s) must exceed queue.document_timeout (%s)", c.Redis.LeaseTTL, c.Queue.DocumentTimeout)
		}
	}
	return nil
}

func validateChain(section string, providers []*ProviderConfig, known map[string]bool) error {
	if len(providers) == 0 {
		return fmt.Errorf("%s.primary.provider is required", section)
	}
	for _, p := range providers {
		if !known[p.Provider] {
			return fmt.Errorf("unknown %s provider: %s", section, p.Provider)
		}
	}
	return nil
}

var providerSlots = []string{"primary", "secondary", "tertiary"}

// Load reads configuration from environment variables with the DOCWORKER_ prefix,
// layered over an optional config file named by DOCWORKER_CONFIG_FILE.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCWORKER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := os.Getenv("DOCWORKER_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", file, err)
		}
	}

	// Server defaults
	v.SetDefault("server.port", ":8081")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "5s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docworker")
	v.SetDefault("db.password", "docworker_secret")
	v.SetDefault("db.name", "docworker_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Storage defaults
	v.SetDefault("storage.provider", "s3")
	v.SetDefault("storage.bucket", "docworker-documents")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.gcs.credentials_file", "")
	v.SetDefault("storage.gcs.endpoint", "")

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "azure")
	v.SetDefault("extractor.primary.default_model", "prebuilt-read")
	v.SetDefault("extractor.pdf_preflight", true)
	v.SetDefault("extractor.rate_per_min", 0)

	// Summarizer defaults
	v.SetDefault("summarizer.primary.provider", "claude")
	v.SetDefault("summarizer.primary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("summarizer.max_tokens", 1024)
	v.SetDefault("summarizer.chunk_size", 12000)
	v.SetDefault("summarizer.chunk_overlap", 200)
	v.SetDefault("summarizer.rate_per_min", 0)

	for _, section := range []string{"extractor", "summarizer"} {
		for _, slot := range providerSlots {
			v.SetDefault(section+"."+slot+".max_retries", 2)
			v.SetDefault(section+"."+slot+".timeout_secs", 120)
		}
	}

	// Queue defaults
	v.SetDefault("queue.poll_interval", "10s")
	v.SetDefault("queue.document_timeout", "5m")
	v.SetDefault("queue.stale_after", "0s")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Redis lease defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lease_key", "docworker:lease")
	v.SetDefault("redis.lease_ttl", "10m")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "docworker")
	v.SetDefault("telemetry.endpoint", "localhost:4318")
	v.SetDefault("telemetry.insecure", true)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "DOCWORKER_SERVER_PORT",
		"server.read_timeout":           "DOCWORKER_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "DOCWORKER_SERVER_WRITE_TIMEOUT",
		"server.environment":            "DOCWORKER_SERVER_ENVIRONMENT",
		"db.host":                       "DOCWORKER_DB_HOST",
		"db.port":                       "DOCWORKER_DB_PORT",
		"db.user":                       "DOCWORKER_DB_USER",
		"db.password":                   "DOCWORKER_DB_PASSWORD",
		"db.name":                       "DOCWORKER_DB_NAME",
		"db.sslmode":                    "DOCWORKER_DB_SSLMODE",
		"db.max_open":                   "DOCWORKER_DB_MAX_OPEN",
		"db.max_idle":                   "DOCWORKER_DB_MAX_IDLE",
		"storage.provider":              "DOCWORKER_STORAGE_PROVIDER",
		"storage.bucket":                "DOCWORKER_STORAGE_BUCKET",
		"storage.s3.region":             "DOCWORKER_STORAGE_S3_REGION",
		"storage.s3.endpoint":           "DOCWORKER_STORAGE_S3_ENDPOINT",
		"storage.s3.access_key":         "DOCWORKER_STORAGE_S3_ACCESS_KEY",
		"storage.s3.secret_key":         "DOCWORKER_STORAGE_S3_SECRET_KEY",
		"storage.gcs.credentials_file":  "DOCWORKER_STORAGE_GCS_CREDENTIALS_FILE",
		"storage.gcs.endpoint":          "DOCWORKER_STORAGE_GCS_ENDPOINT",
		"extractor.pdf_preflight":       "DOCWORKER_EXTRACTOR_PDF_PREFLIGHT",
		"extractor.rate_per_min":        "DOCWORKER_EXTRACTOR_RATE_PER_MIN",
		"summarizer.max_tokens":         "DOCWORKER_SUMMARIZER_MAX_TOKENS",
		"summarizer.chunk_size":         "DOCWORKER_SUMMARIZER_CHUNK_SIZE",
		"summarizer.chunk_overlap":      "DOCWORKER_SUMMARIZER_CHUNK_OVERLAP",
		"summarizer.rate_per_min":       "DOCWORKER_SUMMARIZER_RATE_PER_MIN",
		"queue.poll_interval":           "DOCWORKER_QUEUE_POLL_INTERVAL",
		"queue.document_timeout":        "DOCWORKER_QUEUE_DOCUMENT_TIMEOUT",
		"queue.stale_after":             "DOCWORKER_QUEUE_STALE_AFTER",
		"log.level":                     "DOCWORKER_LOG_LEVEL",
		"log.format":                    "DOCWORKER_LOG_FORMAT",
		"redis.enabled":                 "DOCWORKER_REDIS_ENABLED",
		"redis.addr":                    "DOCWORKER_REDIS_ADDR",
		"redis.password":                "DOCWORKER_REDIS_PASSWORD",
		"redis.db":                      "DOCWORKER_REDIS_DB",
		"redis.lease_key":               "DOCWORKER_REDIS_LEASE_KEY",
		"redis.lease_ttl":               "DOCWORKER_REDIS_LEASE_TTL",
		"telemetry.enabled":             "DOCWORKER_TELEMETRY_ENABLED",
		"telemetry.service_name":        "DOCWORKER_TELEMETRY_SERVICE_NAME",
		"telemetry.endpoint":            "DOCWORKER_TELEMETRY_ENDPOINT",
		"telemetry.insecure":            "DOCWORKER_TELEMETRY_INSECURE",
	}
	for _, section := range []string{"extractor", "summarizer"} {
		for _, slot := range providerSlots {
			for _, field := range []string{"provider", "api_key", "default_model", "endpoint", "max_retries", "timeout_secs"} {
				key := section + "." + slot + "." + field
				envBindings[key] = "DOCWORKER_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
			}
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms that inject PORT win unless DOCWORKER_SERVER_PORT is set explicitly.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCWORKER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Storage = StorageConfig{
		Provider: v.GetString("storage.provider"),
		Bucket:   v.GetString("storage.bucket"),
		S3: S3Config{
			Region:    v.GetString("storage.s3.region"),
			Endpoint:  v.GetString("storage.s3.endpoint"),
			AccessKey: v.GetString("storage.s3.access_key"),
			SecretKey: v.GetString("storage.s3.secret_key"),
		},
		GCS: GCSConfig{
			CredentialsFile: v.GetString("storage.gcs.credentials_file"),
			Endpoint:        v.GetString("storage.gcs.endpoint"),
		},
	}
	cfg.Extractor = ExtractorConfig{
		Primary:      providerConfig(v, "extractor.primary"),
		Secondary:    providerConfig(v, "extractor.secondary"),
		Tertiary:     providerConfig(v, "extractor.tertiary"),
		PDFPreflight: v.GetBool("extractor.pdf_preflight"),
		RatePerMin:   v.GetInt("extractor.rate_per_min"),
	}
	cfg.Summarizer = SummarizerConfig{
		Primary:      providerConfig(v, "summarizer.primary"),
		Secondary:    providerConfig(v, "summarizer.secondary"),
		Tertiary:     providerConfig(v, "summarizer.tertiary"),
		MaxTokens:    v.GetInt("summarizer.max_tokens"),
		ChunkSize:    v.GetInt("summarizer.chunk_size"),
		ChunkOverlap: v.GetInt("summarizer.chunk_overlap"),
		RatePerMin:   v.GetInt("summarizer.rate_per_min"),
	}
	cfg.Queue = QueueConfig{
		PollInterval:    v.GetDuration("queue.poll_interval"),
		DocumentTimeout: v.GetDuration("queue.document_timeout"),
		StaleAfter:      v.GetDuration("queue.stale_after"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("redis.enabled"),
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
		LeaseKey: v.GetString("redis.lease_key"),
		LeaseTTL: v.GetDuration("redis.lease_ttl"),
	}
	cfg.Telemetry = TelemetryConfig{
		Enabled:     v.GetBool("telemetry.enabled"),
		ServiceName: v.GetString("telemetry.service_name"),
		Endpoint:    v.GetString("telemetry.endpoint"),
		Insecure:    v.GetBool("telemetry.insecure"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ProviderConfig {
	return ProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		Endpoint:     v.GetString(prefix + ".endpoint"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}
