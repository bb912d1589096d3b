package models

import "time"

// OfflineConfig configures the local Ollama backend.
type OfflineConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HostedConfig configures the hosted inference backend.
type HostedConfig struct {
	APIKey  string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Model   string `yaml:"model" mapstructure:"model"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EnhancerConfig groups the task-enhancement settings.
type EnhancerConfig struct {
	Offline             OfflineConfig `yaml:"offline" mapstructure:"offline"`
	Hosted              HostedConfig  `yaml:"hosted" mapstructure:"hosted"`
	Timeout             time.Duration `yaml:"timeout" mapstructure:"timeout"`
	SimilarityThreshold float64       `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`
}

// OutputConfig controls where reports are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// GlobalConfig holds the settings read from .iarconfig via Viper.
type GlobalConfig struct {
	Employee    Employee       `yaml:"employee" mapstructure:"employee"`
	Signatories Signatories    `yaml:"signatories" mapstructure:"signatories"`
	Enhancer    EnhancerConfig `yaml:"enhancer" mapstructure:"enhancer"`
	Output      OutputConfig   `yaml:"output" mapstructure:"output"`
}
