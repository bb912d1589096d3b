// Package core contains the business logic of iar: date-range extraction,
// week planning, task assignment, task enhancement, output sanitizing,
// configuration and report generation.
package core

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/iar/pkg/models"
)

// ConfigFileName is the name of the YAML settings file, without extension.
const ConfigFileName = ".iarconfig"

// ConfigurationManager loads and validates iar settings.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading the YAML configuration file and IAR_* environment overrides.
type viperConfigManager struct {
	// basePath is the directory where .iarconfig resides.
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .iarconfig from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Enhancer: models.EnhancerConfig{
			Offline: models.OfflineConfig{
				Enabled: false,
				Model:   "llama3.1",
				BaseURL: "http://localhost:11434",
			},
			Hosted: models.HostedConfig{
				Model:   "meta-llama/Llama-3.1-8B-Instruct:novita",
				BaseURL: "https://router.huggingface.co/v1",
			},
			Timeout:             60 * time.Second,
			SimilarityThreshold: SimilarityThreshold,
		},
		Output: models.OutputConfig{Dir: "."},
	}
}

// LoadGlobalConfig reads .iarconfig from the base path. A missing file
// yields defaults; environment variables prefixed with IAR_ override file
// values (IAR_ENHANCER_HOSTED_API_KEY for enhancer.hosted.api_key). When no
// hosted key is set, HF_TOKEN and then HUGGINGFACE_API_KEY are consulted.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("IAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("employee.name", "")
	v.SetDefault("employee.position", "")
	v.SetDefault("employee.office", "")
	v.SetDefault("signatories.reviewed_by", "")
	v.SetDefault("signatories.verified_by", "")
	v.SetDefault("signatories.approved_by", "")
	v.SetDefault("signatories.accepted_by", "")
	v.SetDefault("enhancer.offline.enabled", cfg.Enhancer.Offline.Enabled)
	v.SetDefault("enhancer.offline.model", cfg.Enhancer.Offline.Model)
	v.SetDefault("enhancer.offline.base_url", cfg.Enhancer.Offline.BaseURL)
	v.SetDefault("enhancer.hosted.api_key", "")
	v.SetDefault("enhancer.hosted.model", cfg.Enhancer.Hosted.Model)
	v.SetDefault("enhancer.hosted.base_url", cfg.Enhancer.Hosted.BaseURL)
	v.SetDefault("enhancer.timeout", cfg.Enhancer.Timeout)
	v.SetDefault("enhancer.similarity_threshold", cfg.Enhancer.SimilarityThreshold)
	v.SetDefault("output.dir", cfg.Output.Dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.Employee = models.Employee{
		Name:     v.GetString("employee.name"),
		Position: v.GetString("employee.position"),
		Office:   v.GetString("employee.office"),
	}
	cfg.Signatories = models.Signatories{
		ReviewedBy: v.GetString("signatories.reviewed_by"),
		VerifiedBy: v.GetString("signatories.verified_by"),
		ApprovedBy: v.GetString("signatories.approved_by"),
		AcceptedBy: v.GetString("signatories.accepted_by"),
	}
	cfg.Enhancer.Offline = models.OfflineConfig{
		Enabled: v.GetBool("enhancer.offline.enabled"),
		Model:   v.GetString("enhancer.offline.model"),
		BaseURL: v.GetString("enhancer.offline.base_url"),
	}
	cfg.Enhancer.Hosted = models.HostedConfig{
		APIKey:  v.GetString("enhancer.hosted.api_key"),
		Model:   v.GetString("enhancer.hosted.model"),
		BaseURL: v.GetString("enhancer.hosted.base_url"),
	}
	if cfg.Enhancer.Hosted.APIKey == "" {
		cfg.Enhancer.Hosted.APIKey = firstEnv("HF_TOKEN", "HUGGINGFACE_API_KEY")
	}
	cfg.Enhancer.Timeout = v.GetDuration("enhancer.timeout")
	cfg.Enhancer.SimilarityThreshold = v.GetFloat64("enhancer.similarity_threshold")
	cfg.Output.Dir = v.GetString("output.dir")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and reports
// every problem found in a single error.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.Enhancer.Offline.Enabled {
		if cfg.Enhancer.Offline.Model == "" {
			errs = append(errs, "enhancer.offline.model must not be empty when the offline backend is enabled")
		}
		if !validHTTPURL(cfg.Enhancer.Offline.BaseURL) {
			errs = append(errs, fmt.Sprintf("enhancer.offline.base_url %q is not a valid http(s) URL", cfg.Enhancer.Offline.BaseURL))
		}
	}

	if cfg.Enhancer.Hosted.APIKey != "" {
		if cfg.Enhancer.Hosted.Model == "" {
			errs = append(errs, "enhancer.hosted.model must not be empty when an API key is set")
		}
		if !validHTTPURL(cfg.Enhancer.Hosted.BaseURL) {
			errs = append(errs, fmt.Sprintf("enhancer.hosted.base_url %q is not a valid http(s) URL", cfg.Enhancer.Hosted.BaseURL))
		}
	}

	if cfg.Enhancer.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("enhancer.timeout must be non-negative, got %s", cfg.Enhancer.Timeout))
	}

	if t := cfg.Enhancer.SimilarityThreshold; t <= 0 || t > 1 {
		errs = append(errs, fmt.Sprintf("enhancer.similarity_threshold %v is invalid, must be in (0, 1]", t))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
