package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type APIConfig struct {
	BaseURL              string        `mapstructure:"base_url"`
	MaxRequestsPerSecond float32       `mapstructure:"max_requests_per_second"`
	RosterCacheTTL       time.Duration `mapstructure:"roster_cache_ttl"`
}

func (config APIConfig) validate() error {
	var missingFields []string

	if config.BaseURL == "" {
		missingFields = append(missingFields, "base_url")
	}
	if config.MaxRequestsPerSecond < 0 {
		return fmt.Errorf("max_requests_per_second must not be negative")
	}

	return missing(missingFields)
}

func (config APIConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"api.base_url":                "API_BASE_URL",
		"api.max_requests_per_second": "API_MAX_REQUESTS_PER_SECOND",
		"api.roster_cache_ttl":        "API_ROSTER_CACHE_TTL",
	})
}
