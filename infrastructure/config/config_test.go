package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "SK-PK-index", cfg.SKPKIndexName)
	assert.Equal(t, "session_token", cfg.SessionCookieName)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
table_name: from-file
image_bucket: file-bucket
breaker_timeout: 10s
cors_allowed_origins:
  - https://plants.example.com
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TABLE_NAME", "from-env")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.TableName)
	assert.Equal(t, "file-bucket", cfg.ImageBucket)
	assert.Equal(t, 10*time.Second, cfg.BreakerTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_BadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("table_name: [unterminated"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate_Production(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "complete", mutate: func(c *Config) { c.JWTSecret = "s3cret" }},
		{name: "missing secret", mutate: func(c *Config) {}, wantErr: true},
		{name: "wildcard origin", mutate: func(c *Config) {
			c.JWTSecret = "s3cret"
			c.CORSAllowedOrigins = []string{"*"}
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			cfg.Environment = "production"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
