package config

import "github.com/spf13/viper"

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

func (config MetricsConfig) validate() error {
	return nil
}

func (config MetricsConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("metrics.addr", "METRICS_ADDR")
}
