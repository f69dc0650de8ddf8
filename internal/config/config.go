package config

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	API      APIConfig      `mapstructure:"api"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Bot      BotConfig      `mapstructure:"bot"`
	DB       DBConfig       `mapstructure:"db"`
	Postings PostingsConfig `mapstructure:"postings"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

var configFile = "./configs/config.yaml"

type section interface {
	validate() error
	bindEnvironmentVariables(v *viper.Viper) error
}

type namedSection struct {
	name string
	section
}

func Get() *Config {

	config, err := Load(Path())
	if err != nil {
		log.Fatal(err)
	}

	return config
}

// Path returns CONFIG_PATH when it is set and the default config location otherwise.
func Path() string {
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		return value
	}
	return configFile
}

func Load(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	v.AutomaticEnv()

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (config Config) sections() []namedSection {
	return []namedSection{
		{"LoggerConfig", config.Logger},
		{"APIConfig", config.API},
		{"AuthConfig", config.Auth},
		{"BotConfig", config.Bot},
		{"DBConfig", config.DB},
		{"PostingsConfig", config.Postings},
		{"MetricsConfig", config.Metrics},
	}
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	for _, s := range (Config{}).sections() {
		if err := s.bindEnvironmentVariables(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for _, s := range config.sections() {
		if err := s.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindAll(v *viper.Viper, bindings map[string]string) error {
	var errs []error
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func missing(fields []string) error {
	if len(fields) == 0 {
		return nil
	}
	return fmt.Errorf("missing required variables: %v", fields)
}
