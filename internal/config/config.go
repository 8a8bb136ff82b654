// Package config provides configuration management using Viper for flexible
// loading from files, environment variables, and command-line flags.
//
// Configuration is read from .handlebar.yml, with HANDLEBAR_ prefixed
// environment variable overrides. It covers the template store (where
// templates live, which extensions count), the preview server, and logging.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Templates TemplatesConfig `yaml:"templates"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TemplatesConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
	// Reload controls whether the store recompiles templates when their
	// files change.
	Reload bool `yaml:"reload"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8620
	}

	if config.Templates.Dir == "" {
		config.Templates.Dir = "./templates"
	}
	if len(config.Templates.Extensions) == 0 {
		config.Templates.Extensions = []string{".hb", ".handlebar"}
	}
	if !viper.IsSet("templates.reload") {
		config.Templates.Reload = true
	}

	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects configurations the rest of the program cannot act on.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}
	for _, ext := range c.Templates.Extensions {
		if ext == "" || ext[0] != '.' {
			return fmt.Errorf("invalid template extension %q (must start with a dot)", ext)
		}
	}
	return nil
}

// Addr returns the host:port the preview server binds to.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
