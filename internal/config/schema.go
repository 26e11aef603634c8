package config

// Config holds spark configuration.
// Loaded from ./config.yaml or $HOME/.spark/config.yaml.
type Config struct {
	Providers map[string]ProviderCfg `mapstructure:"providers" yaml:"providers"`
	Defaults  DefaultsCfg            `mapstructure:"defaults" yaml:"defaults"`
}

// ProviderCfg configures one LLM provider.
type ProviderCfg struct {
	Type           string  `mapstructure:"type" yaml:"type"`         // "openai"
	Model          string  `mapstructure:"model" yaml:"model"`       // Model name
	APIKey         string  `mapstructure:"api_key" yaml:"api_key"`   // API key (supports ${ENV_VAR} syntax)
	BaseURL        string  `mapstructure:"base_url" yaml:"base_url"` // Optional endpoint override
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	Enabled        bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default run behavior.
type DefaultsCfg struct {
	Provider     string `mapstructure:"provider" yaml:"provider"`           // Default provider name
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"` // "csv" or "xlsx"
	VizDir       string `mapstructure:"viz_dir" yaml:"viz_dir"`             // Visualization output directory
	StrictSchema bool   `mapstructure:"strict_schema" yaml:"strict_schema"` // Require examples to appear in context
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Providers: map[string]ProviderCfg{
			"openai": {
				Type:           "openai",
				Model:          "gpt-4o-mini",
				APIKey:         "${OPENAI_API_KEY}",
				TimeoutSeconds: 120,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			Provider:     "openai",
			OutputFormat: "csv",
			VizDir:       "viz",
		},
	}
}

// GetProvider returns a provider config by name.
func (c *Config) GetProvider(name string) (ProviderCfg, bool) {
	cfg, ok := c.Providers[name]
	return cfg, ok
}

// EnabledProviders returns all enabled providers.
func (c *Config) EnabledProviders() map[string]ProviderCfg {
	result := make(map[string]ProviderCfg)
	for name, cfg := range c.Providers {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
