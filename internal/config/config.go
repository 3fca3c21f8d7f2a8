package config

import (
	"os"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Backend BackendConfig
	Log     LogConfig
	History HistoryConfig
}

// BackendConfig points the client at the QA service.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url"`
	QAPath  string `mapstructure:"qa_path"`
	// Buffered forces the single-update fallback strategy instead of
	// consuming the response body chunk by chunk.
	Buffered       bool `mapstructure:"buffered"`
	TimeoutSeconds int  `mapstructure:"timeout_seconds"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// HistoryConfig holds the transcript recorder configuration.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// Load reads config.yaml from the working directory, or the file named by the
// CONFIG_PATH environment variable. Every key has a default, so a missing
// config file is not an error: the client runs with zero configuration.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("backend.base_url", "http://localhost:8001")
	v.SetDefault("backend.qa_path", "/api/qa")
	v.SetDefault("backend.buffered", false)
	v.SetDefault("backend.timeout_seconds", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("history.path", "transcript.db")

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
