// Package config loads the service configuration from YAML with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"dealdesk/pkg/core/agent"
	"dealdesk/pkg/core/market"

	"gopkg.in/yaml.v2"
)

// DefaultPath is read when no path is given.
const DefaultPath = "config/app.yaml"

type Config struct {
	Server   Server       `yaml:"server"`
	Database Database     `yaml:"database"`
	Prompts  Prompts      `yaml:"prompts"`
	LLM      agent.Config `yaml:"llm"`
	Market   Market       `yaml:"market"`
	Debug    bool         `yaml:"debug"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

type Database struct {
	URL       string `yaml:"url"`
	ReportDir string `yaml:"report_dir"` // file fallback when URL is empty
}

type Prompts struct {
	Dir string `yaml:"dir"`
}

type Market struct {
	Weights map[string]float64 `yaml:"weights"` // overrides, by factor name
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:   Server{Addr: ":8080"},
		Database: Database{ReportDir: ".cache/reports"},
		Prompts:  Prompts{Dir: "resources"},
		LLM: agent.Config{
			ActiveProvider: "gemini",
			Agents: map[string]agent.AgentConfig{
				agent.DealExtraction: {Description: "Offering memorandum extraction"},
				agent.MarketResearch: {Description: "Market research chat"},
			},
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DEALDESK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("DEALDESK_PROVIDER"); v != "" {
		c.LLM.ActiveProvider = v
	}
	if os.Getenv("DEALDESK_DEBUG") == "true" {
		c.Debug = true
	}
}

// Validate rejects unknown factor names and negative weights.
func (c Config) Validate() error {
	known := market.DefaultWeights()
	for name, w := range c.Market.Weights {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("config: unknown market factor %q", name)
		}
		if w < 0 {
			return fmt.Errorf("config: market weight %q is negative", name)
		}
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("config: server.addr is empty")
	}
	return nil
}

// MarketWeights returns the default weights with overrides applied.
func (c Config) MarketWeights() market.Weights {
	return market.DefaultWeights().Merge(c.Market.Weights)
}
