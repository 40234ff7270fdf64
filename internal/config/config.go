package config

import "fmt"

const maxProviders = 3

type Config struct {
	Providers []ProviderConfig `yaml:"providers"`
	Pipeline  PipelineConfig   `yaml:"pipeline"`
	Paths     PathsConfig      `yaml:"paths"`
	Logging   LoggingConfig    `yaml:"logging"`
}

// ProviderConfig is one named completion endpoint slot. Up to three slots
// can be configured; stages pick one by name.
type ProviderConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	Backend string `yaml:"backend"`
}

type PipelineConfig struct {
	WindowMinutes  float64      `yaml:"window_minutes"`
	OverlapMinutes float64      `yaml:"overlap_minutes"`
	Summary        StageConfig  `yaml:"summary"`
	Article        *StageConfig `yaml:"article"`
	Docx           bool         `yaml:"docx"`
}

// StageConfig binds one pipeline stage to a provider slot, a model override
// and a prompt. An empty Model falls back to the slot's default model.
type StageConfig struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Prompt   string `yaml:"prompt"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	if len(c.Providers) > maxProviders {
		return fmt.Errorf("at most %d providers are supported, got %d", maxProviders, len(c.Providers))
	}
	seen := make(map[string]bool)
	for i := range c.Providers {
		p := &c.Providers[i]
		if p.Name == "" {
			return fmt.Errorf("providers[%d].name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate provider name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Backend == "" {
			p.Backend = "openai"
		}
		if p.Backend != "openai" && p.Backend != "gemini" {
			return fmt.Errorf("providers[%d].backend must be openai or gemini, got %q", i, p.Backend)
		}
		if p.Backend == "openai" && p.BaseURL == "" {
			return fmt.Errorf("providers[%d].base_url is required for openai backend", i)
		}
		if p.APIKey == "" {
			return fmt.Errorf("providers[%d].api_key is required", i)
		}
	}

	if c.Pipeline.WindowMinutes == 0 {
		c.Pipeline.WindowMinutes = 30
	}
	if c.Pipeline.WindowMinutes < 0 {
		return fmt.Errorf("pipeline.window_minutes must be positive")
	}
	if c.Pipeline.OverlapMinutes < 0 {
		return fmt.Errorf("pipeline.overlap_minutes must not be negative")
	}

	if c.Pipeline.Summary.Provider == "" {
		return fmt.Errorf("pipeline.summary.provider is required")
	}
	if !seen[c.Pipeline.Summary.Provider] {
		return fmt.Errorf("pipeline.summary.provider %q does not match any provider", c.Pipeline.Summary.Provider)
	}
	if c.Pipeline.Summary.Prompt == "" {
		return fmt.Errorf("pipeline.summary.prompt is required")
	}

	if c.Pipeline.Article != nil {
		if c.Pipeline.Article.Provider == "" {
			return fmt.Errorf("pipeline.article.provider is required when article is configured")
		}
		if !seen[c.Pipeline.Article.Provider] {
			return fmt.Errorf("pipeline.article.provider %q does not match any provider", c.Pipeline.Article.Provider)
		}
		if c.Pipeline.Article.Prompt == "" {
			return fmt.Errorf("pipeline.article.prompt is required when article is configured")
		}
	}

	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}

// Provider returns the provider slot with the given name.
func (c *Config) Provider(name string) (ProviderConfig, bool) {
	for _, p := range c.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return ProviderConfig{}, false
}
