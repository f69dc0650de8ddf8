package config

import "github.com/spf13/viper"

// AuthConfig holds the key shared with the identity provider that issues session tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

func (config AuthConfig) validate() error {
	var missingFields []string

	if config.JWTSecret == "" {
		missingFields = append(missingFields, "jwt_secret")
	}

	return missing(missingFields)
}

func (config AuthConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindAll(v, map[string]string{
		"auth.jwt_secret": "JWT_SECRET",
		"auth.issuer":     "JWT_ISSUER",
	})
}
