package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"ziwei/internal/chart"
)

const DefaultPath = "ziwei.yaml"

type ProjectConfig struct {
	Project       string              `yaml:"project"`
	Version       int                 `yaml:"version"`
	Database      DatabaseConfig      `yaml:"database"`
	Chart         ChartConfig         `yaml:"chart"`
	KnowledgeBase KnowledgeBaseConfig `yaml:"knowledge_base"`
	Log           LogConfig           `yaml:"log"`
	Profiles      ProfilesConfig      `yaml:"profiles"`
	Batch         BatchConfig         `yaml:"batch"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type ChartConfig struct {
	MainStarLayout string `yaml:"main_star_layout"`
}

// KnowledgeBaseConfig lists directories of meaning files layered over the
// embedded knowledge base, later paths winning.
type KnowledgeBaseConfig struct {
	Paths []string `yaml:"paths"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ProfilesConfig struct {
	Paths   []string `yaml:"paths"`
	Exclude []string `yaml:"exclude"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

// Layout returns the configured main star layout. The value was checked on
// load, so a parse failure falls back to the default.
func (c *ProjectConfig) Layout() chart.MainStarLayout {
	layout, err := chart.ParseMainStarLayout(c.Chart.MainStarLayout)
	if err != nil {
		return chart.LayoutFixedOffset
	}
	return layout
}

// DatabaseBackend reports "sqlite" or "postgres" from the DSN scheme.
func (c *ProjectConfig) DatabaseBackend() string {
	return backendFor(c.Database.DSN)
}

func backendFor(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite"
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	default:
		return ""
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn is required")
	}
	if backendFor(cfg.Database.DSN) == "" {
		return fmt.Errorf("database dsn must start with sqlite:// or postgres://")
	}
	if _, err := chart.ParseMainStarLayout(cfg.Chart.MainStarLayout); err != nil {
		return err
	}
	switch strings.ToLower(cfg.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", cfg.Log.Level)
	}
	if cfg.Batch.Concurrency < 0 {
		return fmt.Errorf("batch concurrency must not be negative")
	}
	for i, path := range cfg.Profiles.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("profile path %d is empty", i)
		}
	}
	for i, path := range cfg.KnowledgeBase.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("knowledge base path %d is empty", i)
		}
	}

	return nil
}
