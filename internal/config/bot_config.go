package config

import "github.com/spf13/viper"

type BotConfig struct {
	Token string `mapstructure:"token"`
}

// validate accepts an empty token, the postings commands run without the bot.
// The bot command checks the token itself.
func (config BotConfig) validate() error {
	return nil
}

func (config BotConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("bot.token", "TG_TOKEN")
}
