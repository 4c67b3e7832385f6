package config

import (
	"fmt"
)

// Default policy constants. Every threshold here is overridable in the YAML
// config; the defaults mirror the values the model was tuned against.
const (
	DefaultConfidenceHigh    = 0.7
	DefaultConfidenceMedium  = 0.4
	DefaultUIConfidenceLow   = 0.2
	DefaultReturnTopK        = 3
	DefaultMaxExplainPhrases = 5
	DefaultMaxPhrases        = 5
	DefaultModelTimeout      = 30
)

// AppConfig is the main configuration for the news-guard service.
type AppConfig struct {
	// Inference holds the confidence policy of the inference core.
	Inference InferenceConfig `yaml:"inference"`

	// UI holds the presentation-layer decision policy. It is configured
	// independently from Inference: the two layers are separate bounded
	// contexts with separate tuning needs, even though the default values
	// overlap.
	UI UIConfig `yaml:"ui"`

	// Model describes the external model server that produces the
	// probability distribution.
	Model ModelConfig `yaml:"model"`

	// EDA points at the precomputed statistics artifacts.
	EDA struct {
		// Dir is the directory holding the EDA artifact files.
		Dir string `yaml:"dir"`
	} `yaml:"eda"`

	// LabelMappingPath optionally overrides the built-in label registry.
	LabelMappingPath string `yaml:"label_mapping_path,omitempty"`

	// SuspiciousKeywords optionally overrides the per-label keyword lists
	// used by the phrase matcher.
	SuspiciousKeywords map[string][]string `yaml:"suspicious_keywords,omitempty"`

	// Cache configures the optional prediction result cache.
	Cache struct {
		Enabled bool `yaml:"enabled"`
		// BackendType is "memory" or "redis".
		BackendType string `yaml:"backend_type,omitempty"`
		RedisAddr   string `yaml:"redis_addr,omitempty"`
		TTLSeconds  int    `yaml:"ttl_seconds,omitempty"`
		MaxEntries  int    `yaml:"max_entries,omitempty"`
	} `yaml:"cache"`

	// Feedback configures user feedback persistence.
	Feedback struct {
		Enabled bool   `yaml:"enabled"`
		DBPath  string `yaml:"db_path,omitempty"`
	} `yaml:"feedback"`

	// Observability configures logging, metrics and tracing.
	Observability struct {
		Metrics struct {
			Enabled *bool `yaml:"enabled,omitempty"`
		} `yaml:"metrics"`
		Tracing struct {
			Enabled  bool `yaml:"enabled"`
			Exporter struct {
				// Type is "stdout" or "otlp".
				Type     string `yaml:"type,omitempty"`
				Endpoint string `yaml:"endpoint,omitempty"`
				Insecure bool   `yaml:"insecure,omitempty"`
			} `yaml:"exporter"`
			Sampling struct {
				// Type is "always_on", "always_off" or "probabilistic".
				Type string  `yaml:"type,omitempty"`
				Rate float64 `yaml:"rate,omitempty"`
			} `yaml:"sampling"`
			ServiceName string `yaml:"service_name,omitempty"`
		} `yaml:"tracing"`
	} `yaml:"observability"`
}

// InferenceConfig is the confidence and explainability policy of the
// inference core.
type InferenceConfig struct {
	ConfidenceHigh    float64 `yaml:"confidence_high"`
	ConfidenceMedium  float64 `yaml:"confidence_medium"`
	ReturnTopK        int     `yaml:"return_top_k"`
	EnableExplain     *bool   `yaml:"enable_explain,omitempty"`
	MaxExplainPhrases int     `yaml:"max_explain_phrases"`
	MaxPhrases        int     `yaml:"max_phrases"`
}

// UIConfig is the presentation-layer decision policy.
type UIConfig struct {
	ConfidenceHigh   float64 `yaml:"confidence_high"`
	ConfidenceMedium float64 `yaml:"confidence_medium"`
	ConfidenceLow    float64 `yaml:"confidence_low"`
}

// ModelConfig describes the external classification model server.
type ModelConfig struct {
	Address        string `yaml:"address"`
	Port           int    `yaml:"port"`
	Name           string `yaml:"name,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
	AccessKey      string `yaml:"access_key,omitempty"`
}

// ExplainEnabled reports whether explanation composition is enabled
// (default true).
func (c *AppConfig) ExplainEnabled() bool {
	if c.Inference.EnableExplain == nil {
		return true
	}
	return *c.Inference.EnableExplain
}

// MetricsEnabled reports whether the metrics endpoint is enabled
// (default true).
func (c *AppConfig) MetricsEnabled() bool {
	if c.Observability.Metrics.Enabled == nil {
		return true
	}
	return *c.Observability.Metrics.Enabled
}

// applyDefaults fills unset numeric policy fields with the tuned defaults.
func (c *AppConfig) applyDefaults() {
	if c.Inference.ConfidenceHigh == 0 {
		c.Inference.ConfidenceHigh = DefaultConfidenceHigh
	}
	if c.Inference.ConfidenceMedium == 0 {
		c.Inference.ConfidenceMedium = DefaultConfidenceMedium
	}
	if c.Inference.ReturnTopK == 0 {
		c.Inference.ReturnTopK = DefaultReturnTopK
	}
	if c.Inference.MaxExplainPhrases == 0 {
		c.Inference.MaxExplainPhrases = DefaultMaxExplainPhrases
	}
	if c.Inference.MaxPhrases == 0 {
		c.Inference.MaxPhrases = DefaultMaxPhrases
	}
	if c.UI.ConfidenceHigh == 0 {
		c.UI.ConfidenceHigh = DefaultConfidenceHigh
	}
	if c.UI.ConfidenceMedium == 0 {
		c.UI.ConfidenceMedium = DefaultConfidenceMedium
	}
	if c.UI.ConfidenceLow == 0 {
		c.UI.ConfidenceLow = DefaultUIConfidenceLow
	}
	if c.Model.TimeoutSeconds == 0 {
		c.Model.TimeoutSeconds = DefaultModelTimeout
	}
	if c.Cache.BackendType == "" {
		c.Cache.BackendType = "memory"
	}
}

// validateConfigStructure rejects configs whose thresholds cannot form a
// coherent banding policy.
func validateConfigStructure(cfg *AppConfig) error {
	if err := validateBand("inference", cfg.Inference.ConfidenceHigh, cfg.Inference.ConfidenceMedium); err != nil {
		return err
	}
	if err := validateBand("ui", cfg.UI.ConfidenceHigh, cfg.UI.ConfidenceMedium); err != nil {
		return err
	}
	if cfg.UI.ConfidenceLow < 0 || cfg.UI.ConfidenceLow > cfg.UI.ConfidenceMedium {
		return fmt.Errorf("ui.confidence_low %.2f must be in [0, confidence_medium]", cfg.UI.ConfidenceLow)
	}
	if cfg.Inference.ReturnTopK < 1 {
		return fmt.Errorf("inference.return_top_k must be >= 1, got %d", cfg.Inference.ReturnTopK)
	}
	if cfg.Inference.MaxPhrases < 1 {
		return fmt.Errorf("inference.max_phrases must be >= 1, got %d", cfg.Inference.MaxPhrases)
	}
	if cfg.Inference.MaxExplainPhrases < 1 {
		return fmt.Errorf("inference.max_explain_phrases must be >= 1, got %d", cfg.Inference.MaxExplainPhrases)
	}
	if cfg.Cache.Enabled {
		switch cfg.Cache.BackendType {
		case "memory", "redis":
		default:
			return fmt.Errorf("unsupported cache backend_type: %q", cfg.Cache.BackendType)
		}
		if cfg.Cache.BackendType == "redis" && cfg.Cache.RedisAddr == "" {
			return fmt.Errorf("cache.redis_addr is required for the redis backend")
		}
	}
	return nil
}

func validateBand(section string, high, medium float64) error {
	if high <= 0 || high > 1 {
		return fmt.Errorf("%s.confidence_high %.2f must be in (0, 1]", section, high)
	}
	if medium <= 0 || medium >= high {
		return fmt.Errorf("%s.confidence_medium %.2f must be in (0, confidence_high)", section, medium)
	}
	return nil
}
