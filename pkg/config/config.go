package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults mirror the politeness parameters the PMC host has tolerated in
// practice: a 2s floor plus exponential jitter averaging 8s on top.
const (
	DefaultArticleURL = "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC%d"
	DefaultTableURL   = "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC%d/table/%s/?report=objectonly"
	DefaultUserAgent  = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:52.0) Gecko/20100101 Firefox/52.0"
)

type Config struct {
	HTTP struct {
		ArticleURL    string  `yaml:"article_url"`
		TableURL      string  `yaml:"table_url"`
		UserAgent     string  `yaml:"user_agent"`
		TimeoutSec    int     `yaml:"timeout_sec"`
		DelayFloorSec float64 `yaml:"delay_floor_sec"`
		DelayMeanSec  float64 `yaml:"delay_mean_sec"`
		RateLimit     float64 `yaml:"rate_limit"`
	} `yaml:"http"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Load reads the config file at path. An empty path tries the default
// locations and falls back to built-in defaults when none exist.
func Load(path string) (*Config, error) {
	if path == "" {
		locations := []string{
			"pmcoords.yaml",
			filepath.Join(os.Getenv("HOME"), ".config/pmcoords/config.yaml"),
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	config := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	mergeWithEnv(config)
	applyDefaults(config)

	return config, nil
}

func applyDefaults(config *Config) {
	if config.HTTP.ArticleURL == "" {
		config.HTTP.ArticleURL = DefaultArticleURL
	}
	if config.HTTP.TableURL == "" {
		config.HTTP.TableURL = DefaultTableURL
	}
	if config.HTTP.UserAgent == "" {
		config.HTTP.UserAgent = DefaultUserAgent
	}
	if config.HTTP.TimeoutSec == 0 {
		config.HTTP.TimeoutSec = 30
	}
	if config.HTTP.DelayFloorSec == 0 {
		config.HTTP.DelayFloorSec = 2.0
	}
	if config.HTTP.DelayMeanSec == 0 {
		config.HTTP.DelayMeanSec = 10.0
	}
	if config.HTTP.RateLimit == 0 {
		config.HTTP.RateLimit = 0.5
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
}

func mergeWithEnv(config *Config) {
	if articleURL := os.Getenv("PMCOORDS_ARTICLE_URL"); articleURL != "" {
		config.HTTP.ArticleURL = articleURL
	}
	if tableURL := os.Getenv("PMCOORDS_TABLE_URL"); tableURL != "" {
		config.HTTP.TableURL = tableURL
	}
	if level := os.Getenv("PMCOORDS_LOG_LEVEL"); level != "" {
		config.Log.Level = level
	}
}
