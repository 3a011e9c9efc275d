package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configData := `
http:
  article_url: "http://localhost:8080/articles/PMC%d"
  table_url: "http://localhost:8080/articles/PMC%d/table/%s/"
  user_agent: "test-agent"
  timeout_sec: 10
  delay_floor_sec: 0.5
  delay_mean_sec: 1.5
  rate_limit: 4

log:
  level: debug
`
	err := os.WriteFile(configPath, []byte(configData), 0644)
	require.NoError(t, err)

	config, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/articles/PMC%d", config.HTTP.ArticleURL)
	assert.Equal(t, "test-agent", config.HTTP.UserAgent)
	assert.Equal(t, 10, config.HTTP.TimeoutSec)
	assert.Equal(t, 0.5, config.HTTP.DelayFloorSec)
	assert.Equal(t, 1.5, config.HTTP.DelayMeanSec)
	assert.Equal(t, 4.0, config.HTTP.RateLimit)
	assert.Equal(t, "debug", config.Log.Level)
	assert.Empty(t, config.Validate())
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultArticleURL, config.HTTP.ArticleURL)
	assert.Equal(t, DefaultTableURL, config.HTTP.TableURL)
	assert.Equal(t, DefaultUserAgent, config.HTTP.UserAgent)
	assert.Equal(t, 30, config.HTTP.TimeoutSec)
	assert.Equal(t, 2.0, config.HTTP.DelayFloorSec)
	assert.Equal(t, 10.0, config.HTTP.DelayMeanSec)
	assert.Equal(t, "info", config.Log.Level)
	assert.Empty(t, config.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{
			name:   "article url without placeholder",
			mutate: func(c *Config) { c.HTTP.ArticleURL = "http://localhost/articles" },
			field:  "http.article_url",
		},
		{
			name:   "table url missing table placeholder",
			mutate: func(c *Config) { c.HTTP.TableURL = "http://localhost/articles/PMC%d/table" },
			field:  "http.table_url",
		},
		{
			name:   "unbounded timeout",
			mutate: func(c *Config) { c.HTTP.TimeoutSec = -1 },
			field:  "http.timeout_sec",
		},
		{
			name:   "mean below floor",
			mutate: func(c *Config) { c.HTTP.DelayFloorSec = 5; c.HTTP.DelayMeanSec = 3 },
			field:  "http.delay_mean_sec",
		},
		{
			name:   "negative rate limit",
			mutate: func(c *Config) { c.HTTP.RateLimit = -1 },
			field:  "http.rate_limit",
		},
		{
			name:   "bogus log level",
			mutate: func(c *Config) { c.Log.Level = "verbose" },
			field:  "log.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := Load("")
			require.NoError(t, err)
			tt.mutate(config)

			errs := config.Validate()
			require.Len(t, errs, 1)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PMCOORDS_ARTICLE_URL", "http://env-host/articles/PMC%d")
	t.Setenv("PMCOORDS_LOG_LEVEL", "warn")

	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://env-host/articles/PMC%d", config.HTTP.ArticleURL)
	assert.Equal(t, "warn", config.Log.Level)
}
