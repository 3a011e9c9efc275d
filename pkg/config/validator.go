package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if !strings.Contains(c.HTTP.ArticleURL, "%d") {
		errors = append(errors, ValidationError{
			Field:   "http.article_url",
			Message: "article URL template must contain a %d placeholder for the PMCID",
		})
	}

	if !strings.Contains(c.HTTP.TableURL, "%d") || !strings.Contains(c.HTTP.TableURL, "%s") {
		errors = append(errors, ValidationError{
			Field:   "http.table_url",
			Message: "table URL template must contain %d (PMCID) and %s (table id) placeholders",
		})
	}

	if c.HTTP.TimeoutSec < 1 {
		errors = append(errors, ValidationError{
			Field:   "http.timeout_sec",
			Message: "timeout_sec must be a positive number of seconds",
		})
	}

	if c.HTTP.DelayFloorSec < 0 {
		errors = append(errors, ValidationError{
			Field:   "http.delay_floor_sec",
			Message: "delay_floor_sec must not be negative",
		})
	}

	if c.HTTP.DelayMeanSec < c.HTTP.DelayFloorSec {
		errors = append(errors, ValidationError{
			Field:   "http.delay_mean_sec",
			Message: "delay_mean_sec must be at least delay_floor_sec",
		})
	}

	if c.HTTP.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "http.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("unknown log level: %s", c.Log.Level),
		})
	}

	return errors
}
