package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPipelineMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadPipeline("/nonexistent/pipeline.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultPipeline(), cfg)
}

func TestLoadPipelineFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	content := "alpha: 0.5\nlookback_days: 30\nconfidence_level: 0.8\nweight_seasonal: 0.6\nweight_ewma: 0.25\nweight_ar: 0.15\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadPipeline(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Alpha)
	assert.Equal(t, 30, cfg.LookbackDays)
	assert.Equal(t, 0.8, cfg.ConfidenceLevel)
	assert.Equal(t, 0.6, cfg.WeightSeasonal)
	// 未出现的键保持默认
	assert.Equal(t, 0.1, cfg.Beta)
}

func TestLoadPipelineEnvOverridesFile(t *testing.T) {
	t.Setenv("FORECAST_LOOKBACK_DAYS", "45")
	t.Setenv("FORECAST_CONFIDENCE", "0.99")

	cfg, err := LoadPipeline("")
	require.NoError(t, err)

	assert.Equal(t, 45, cfg.LookbackDays)
	assert.Equal(t, 0.99, cfg.ConfidenceLevel)
}

func TestSanitizeRejectsOutOfRangeValues(t *testing.T) {
	cfg := Pipeline{
		Alpha:           1.5,
		Beta:            -0.2,
		Gamma:           0,
		SmoothingFactor: 2,
		ConfidenceLevel: 0.9, // 不是支持的档位
		LookbackDays:    -10,
		MaxWindowDays:   500,
	}
	fixed := cfg.sanitize()

	assert.Equal(t, 0.35, fixed.Alpha)
	assert.Equal(t, 0.1, fixed.Beta)
	assert.Equal(t, 0.2, fixed.Gamma)
	assert.Equal(t, 0.3, fixed.SmoothingFactor)
	assert.Equal(t, 0.95, fixed.ConfidenceLevel)
	assert.Equal(t, 90, fixed.LookbackDays)
	assert.Equal(t, 7, fixed.SeasonalPeriod)
	assert.Equal(t, 60, fixed.MaxWindowDays)
	assert.Equal(t, 0.5, fixed.WeightSeasonal)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("CONFIG_TEST_INT", "7")
	t.Setenv("CONFIG_TEST_BAD_INT", "abc")

	assert.Equal(t, 7, getEnvInt("CONFIG_TEST_INT", 1))
	assert.Equal(t, 1, getEnvInt("CONFIG_TEST_BAD_INT", 1))
	assert.Equal(t, 1, getEnvInt("CONFIG_TEST_UNSET", 1))
}
