package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string        `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string        `mapstructure:"APP_ENV"`        // "production" switches gin to release mode
	LogLevel      string        `mapstructure:"LOG_LEVEL"`      // logrus level name
	WriteTimeout  time.Duration `mapstructure:"WRITE_TIMEOUT"`  // generation requests chain several model calls

	// AI Configuration
	LLMProvider   string `mapstructure:"LLM_PROVIDER"`    // "openai" or "gemini"
	ModelID       string `mapstructure:"MODEL_ID"`        // fixed model identifier for every call
	OpenAIKey     string `mapstructure:"OPENAI_API_KEY"`  // API key for OpenAI
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"` // optional OpenAI-compatible gateway
	GoogleAPIKey  string `mapstructure:"GOOGLE_API_KEY"`  // API key for Gemini

	// Gist Configuration
	GitHubToken  string `mapstructure:"GITHUB_TOKEN"`   // bearer token for gist creation
	GitHubAPIURL string `mapstructure:"GITHUB_API_URL"` // e.g., "https://api.github.com"

	// Project Storage
	DatabaseURL string `mapstructure:"DATABASE_URL"` // sqlite file path or postgres:// URL
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

var defaultModels = map[string]string{
	ProviderOpenAI: "gpt-4o",
	ProviderGemini: "gemini-2.5-pro",
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)      // Path to look for the config file in
	v.SetConfigName("config") // Name of config file (without extension)
	v.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WRITE_TIMEOUT", 10*time.Minute)
	v.SetDefault("LLM_PROVIDER", ProviderOpenAI)
	v.SetDefault("MODEL_ID", "")
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("OPENAI_BASE_URL", "")
	v.SetDefault("GOOGLE_API_KEY", "")
	v.SetDefault("GITHUB_TOKEN", "")
	v.SetDefault("GITHUB_API_URL", "https://api.github.com")
	v.SetDefault("DATABASE_URL", "zapp.db")

	v.AutomaticEnv() // Read environment variables that match keys

	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			logrus.Info("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		logrus.Infof("Using configuration file: %s", v.ConfigFileUsed())
	}

	err = v.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.normalize(); err != nil {
		return Config{}, err
	}
	return config, nil
}

func (c *Config) normalize() error {
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	def, ok := defaultModels[c.LLMProvider]
	if !ok {
		return fmt.Errorf("unsupported LLM_PROVIDER %q (want %q or %q)", c.LLMProvider, ProviderOpenAI, ProviderGemini)
	}
	if c.ModelID == "" {
		c.ModelID = def
	}

	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			logrus.Warn("OPENAI_API_KEY is not set; generation requests will fail.")
		}
	case ProviderGemini:
		if c.GoogleAPIKey == "" {
			logrus.Warn("GOOGLE_API_KEY is not set; generation requests will fail.")
		}
	}
	if c.GitHubToken == "" {
		logrus.Warn("GITHUB_TOKEN is not set; gist creation will be rejected by GitHub.")
	}
	return nil
}

// APIKey returns the credential for the configured provider.
func (c Config) APIKey() string {
	if c.LLMProvider == ProviderGemini {
		return c.GoogleAPIKey
	}
	return c.OpenAIKey
}
