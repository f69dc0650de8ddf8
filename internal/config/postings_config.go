package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type PostingsConfig struct {
	ExpirationInDays int `mapstructure:"expiration_in_days"`
}

func (config PostingsConfig) validate() error {
	if config.ExpirationInDays <= 0 {
		return fmt.Errorf("expiration_in_days must be greater than zero")
	}
	return nil
}

func (config PostingsConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("postings.expiration_in_days", "POSTINGS_EXPIRATION_DAYS")
}
