package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Load reads a yaml/.env file when path is set, environment variables otherwise.
// Environment variables always override file values.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if strings.TrimSpace(path) != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	switch c.Identity.Provider {
	case "firebase":
		if strings.TrimSpace(c.Identity.Firebase.APIKey) == "" {
			return fmt.Errorf("firebase identity provider requires api_key")
		}
	case "local":
	default:
		return fmt.Errorf("unsupported identity provider %q", c.Identity.Provider)
	}
	switch c.Incidents.Source {
	case "firestore", "sql":
	default:
		return fmt.Errorf("unsupported incidents source %q", c.Incidents.Source)
	}
	if strings.TrimSpace(c.Incidents.Collection) == "" {
		return fmt.Errorf("incidents collection is required")
	}
	return nil
}

// Usage renders the env variable reference for --help output.
func Usage() string {
	var cfg AppConfig
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
