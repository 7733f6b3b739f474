package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docworker/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.Queue.PollInterval)
	assert.Equal(t, 5*time.Minute, cfg.Queue.DocumentTimeout)
	assert.Zero(t, cfg.Queue.StaleAfter)
	assert.Equal(t, "s3", cfg.Storage.Provider)
	assert.Equal(t, "azure", cfg.Extractor.Primary.Provider)
	assert.Equal(t, "claude", cfg.Summarizer.Primary.Provider)
	assert.Len(t, cfg.Extractor.Chain(), 1)
	assert.Len(t, cfg.Summarizer.Chain(), 1)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DOCWORKER_QUEUE_POLL_INTERVAL", "2s")
	t.Setenv("DOCWORKER_QUEUE_STALE_AFTER", "15m")
	t.Setenv("DOCWORKER_STORAGE_PROVIDER", "gcs")
	t.Setenv("DOCWORKER_SUMMARIZER_SECONDARY_PROVIDER", "openai")
	t.Setenv("DOCWORKER_SUMMARIZER_SECONDARY_API_KEY", "sk-test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Queue.PollInterval)
	assert.Equal(t, 15*time.Minute, cfg.Queue.StaleAfter)
	assert.Equal(t, "gcs", cfg.Storage.Provider)

	chain := cfg.Summarizer.Chain()
	require.Len(t, chain, 2)
	assert.Equal(t, "claude", chain[0].Provider)
	assert.Equal(t, "openai", chain[1].Provider)
	assert.Equal(t, "sk-test", chain[1].APIKey)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docworker.yaml")
	content := []byte("queue:\n  poll_interval: 30s\nstorage:\n  bucket: from-file\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("DOCWORKER_CONFIG_FILE", path)
	t.Setenv("DOCWORKER_STORAGE_BUCKET", "from-env")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Queue.PollInterval)
	assert.Equal(t, "from-env", cfg.Storage.Bucket)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("DOCWORKER_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidPollInterval(t *testing.T) {
	t.Setenv("DOCWORKER_QUEUE_POLL_INTERVAL", "0s")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")
}

func validConfig() *config.Config {
	return &config.Config{
		Storage:    config.StorageConfig{Provider: "s3", Bucket: "docs"},
		Extractor:  config.ExtractorConfig{Primary: config.ProviderConfig{Provider: "azure"}},
		Summarizer: config.SummarizerConfig{Primary: config.ProviderConfig{Provider: "claude"}},
		Queue:      config.QueueConfig{PollInterval: time.Second, DocumentTimeout: time.Minute},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *config.Config) {}},
		{name: "negative poll interval", mutate: func(c *config.Config) { c.Queue.PollInterval = -time.Second }, wantErr: "poll_interval"},
		{name: "zero document timeout", mutate: func(c *config.Config) { c.Queue.DocumentTimeout = 0 }, wantErr: "document_timeout"},
		{name: "negative stale after", mutate: func(c *config.Config) { c.Queue.StaleAfter = -time.Minute }, wantErr: "stale_after"},
		{name: "unknown storage", mutate: func(c *config.Config) { c.Storage.Provider = "ftp" }, wantErr: "storage provider"},
		{name: "missing bucket", mutate: func(c *config.Config) { c.Storage.Bucket = "" }, wantErr: "bucket"},
		{name: "no extractor", mutate: func(c *config.Config) { c.Extractor.Primary.Provider = "" }, wantErr: "extractor.primary"},
		{name: "unknown summarizer", mutate: func(c *config.Config) { c.Summarizer.Secondary.Provider = "llama" }, wantErr: "summarizer provider"},
		{name: "lease without addr", mutate: func(c *config.Config) {
			c.Redis = config.RedisConfig{Enabled: true, LeaseTTL: time.Second}
		}, wantErr: "redis.addr"},
		{name: "lease ttl not above document timeout", mutate: func(c *config.Config) {
			c.Redis = config.RedisConfig{Enabled: true, Addr: "localhost:6379", LeaseTTL: time.Minute}
		}, wantErr: "redis.lease_ttl"},
		{name: "lease ttl above document timeout", mutate: func(c *config.Config) {
			c.Redis = config.RedisConfig{Enabled: true, Addr: "localhost:6379", LeaseTTL: 2 * time.Minute}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviderConfig_Timeout(t *testing.T) {
	p := config.ProviderConfig{}
	assert.Equal(t, 90*time.Second, p.Timeout(90*time.Second))

	p.TimeoutSecs = 5
	assert.Equal(t, 5*time.Second, p.Timeout(90*time.Second))
}
