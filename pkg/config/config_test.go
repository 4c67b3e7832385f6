package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
model:
  address: 127.0.0.1
  port: 8000
`)
	cfg, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfidenceHigh, cfg.Inference.ConfidenceHigh)
	assert.Equal(t, DefaultConfidenceMedium, cfg.Inference.ConfidenceMedium)
	assert.Equal(t, DefaultReturnTopK, cfg.Inference.ReturnTopK)
	assert.Equal(t, DefaultMaxExplainPhrases, cfg.Inference.MaxExplainPhrases)
	assert.Equal(t, DefaultMaxPhrases, cfg.Inference.MaxPhrases)
	assert.Equal(t, DefaultUIConfidenceLow, cfg.UI.ConfidenceLow)
	assert.Equal(t, DefaultModelTimeout, cfg.Model.TimeoutSeconds)
	assert.Equal(t, "memory", cfg.Cache.BackendType)
	assert.True(t, cfg.ExplainEnabled())
	assert.True(t, cfg.MetricsEnabled())
}

func TestParseOverrides(t *testing.T) {
	path := writeConfig(t, `
inference:
  confidence_high: 0.9
  confidence_medium: 0.5
  return_top_k: 2
  enable_explain: false
ui:
  confidence_high: 0.8
  confidence_medium: 0.3
  confidence_low: 0.1
observability:
  metrics:
    enabled: false
`)
	cfg, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, 0.9, cfg.Inference.ConfidenceHigh)
	assert.Equal(t, 0.5, cfg.Inference.ConfidenceMedium)
	assert.Equal(t, 2, cfg.Inference.ReturnTopK)
	assert.Equal(t, 0.1, cfg.UI.ConfidenceLow)
	assert.False(t, cfg.ExplainEnabled())
	assert.False(t, cfg.MetricsEnabled())
}

func TestParseRejectsIncoherentThresholds(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "medium above high",
			yaml: `
inference:
  confidence_high: 0.4
  confidence_medium: 0.7
`,
		},
		{
			name: "high above one",
			yaml: `
inference:
  confidence_high: 1.5
  confidence_medium: 0.4
`,
		},
		{
			name: "ui low above medium",
			yaml: `
ui:
  confidence_low: 0.6
`,
		},
		{
			name: "negative top_k",
			yaml: `
inference:
  return_top_k: -1
`,
		},
		{
			name: "redis cache without address",
			yaml: `
cache:
  enabled: true
  backend_type: redis
`,
		},
		{
			name: "unknown cache backend",
			yaml: `
cache:
  enabled: true
  backend_type: memcached
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParseMissingFile(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestReplaceAndGet(t *testing.T) {
	cfg, err := Parse(writeConfig(t, `{}`))
	require.NoError(t, err)

	Replace(cfg)
	assert.Same(t, cfg, Get())
}

func TestLoadCachesFirstConfig(t *testing.T) {
	first, err := Load(writeConfig(t, `
model:
  address: 10.0.0.1
`))
	require.NoError(t, err)
	assert.Same(t, first, Get())

	// Load is once-only: a second call with a different file returns the
	// cached config.
	second, err := Load(writeConfig(t, `
model:
  address: 10.0.0.2
`))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, "10.0.0.1", second.Model.Address)
}
