package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Pipeline 预测流水线配置
// 所有阶段只接收该显式配置对象，不读环境变量，保证并发调用互不干扰。
type Pipeline struct {
	Alpha           float64 `yaml:"alpha"`            // 水平平滑系数
	Beta            float64 `yaml:"beta"`             // 趋势平滑系数
	Gamma           float64 `yaml:"gamma"`            // 季节平滑系数
	SmoothingFactor float64 `yaml:"smoothing_factor"` // 特征层营收EWMA系数
	ConfidenceLevel float64 `yaml:"confidence_level"` // 0.8 / 0.95 / 0.99
	LookbackDays    int     `yaml:"lookback_days"`
	ChurnThreshold  float64 `yaml:"churn_threshold"`
	MinConfidence   float64 `yaml:"min_confidence"`
	MaxWindowDays   int     `yaml:"max_window_days"`
	SeasonalPeriod  int     `yaml:"seasonal_period"`

	// Ensemble 各模型权重，按成功子集重新归一
	WeightSeasonal float64 `yaml:"weight_seasonal"`
	WeightEWMA     float64 `yaml:"weight_ewma"`
	WeightAR       float64 `yaml:"weight_ar"`
}

// DefaultPipeline 默认流水线配置
func DefaultPipeline() Pipeline {
	return Pipeline{
		Alpha:           0.35,
		Beta:            0.1,
		Gamma:           0.2,
		SmoothingFactor: 0.3,
		ConfidenceLevel: 0.95,
		LookbackDays:    90,
		ChurnThreshold:  0.6,
		MinConfidence:   0.1,
		MaxWindowDays:   60,
		SeasonalPeriod:  7,
		WeightSeasonal:  0.5,
		WeightEWMA:      0.3,
		WeightAR:        0.2,
	}
}

// LoadPipeline 加载流水线配置
// 优先级：默认值 < YAML 配置文件 < 环境变量。文件不存在时静默使用默认值。
func LoadPipeline(path string) (Pipeline, error) {
	cfg := DefaultPipeline()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("解析配置文件失败: %v", err)
			}
		}
	}

	cfg.Alpha = getEnvFloat("FORECAST_ALPHA", cfg.Alpha)
	cfg.Beta = getEnvFloat("FORECAST_BETA", cfg.Beta)
	cfg.Gamma = getEnvFloat("FORECAST_GAMMA", cfg.Gamma)
	cfg.SmoothingFactor = getEnvFloat("FORECAST_SMOOTHING", cfg.SmoothingFactor)
	cfg.ConfidenceLevel = getEnvFloat("FORECAST_CONFIDENCE", cfg.ConfidenceLevel)
	cfg.LookbackDays = getEnvInt("FORECAST_LOOKBACK_DAYS", cfg.LookbackDays)
	cfg.ChurnThreshold = getEnvFloat("FORECAST_CHURN_THRESHOLD", cfg.ChurnThreshold)
	cfg.MinConfidence = getEnvFloat("FORECAST_MIN_CONFIDENCE", cfg.MinConfidence)
	cfg.MaxWindowDays = getEnvInt("FORECAST_MAX_WINDOW_DAYS", cfg.MaxWindowDays)

	return cfg.sanitize(), nil
}

// sanitize 修正越界配置
func (c Pipeline) sanitize() Pipeline {
	if c.Alpha <= 0 || c.Alpha >= 1 {
		c.Alpha = 0.35
	}
	if c.Beta <= 0 || c.Beta >= 1 {
		c.Beta = 0.1
	}
	if c.Gamma <= 0 || c.Gamma >= 1 {
		c.Gamma = 0.2
	}
	if c.SmoothingFactor <= 0 || c.SmoothingFactor >= 1 {
		c.SmoothingFactor = 0.3
	}
	switch c.ConfidenceLevel {
	case 0.8, 0.95, 0.99:
	default:
		c.ConfidenceLevel = 0.95
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = 90
	}
	if c.SeasonalPeriod <= 0 {
		c.SeasonalPeriod = 7
	}
	if c.MaxWindowDays <= 0 || c.MaxWindowDays > 180 {
		c.MaxWindowDays = 60
	}
	if c.WeightSeasonal <= 0 && c.WeightEWMA <= 0 && c.WeightAR <= 0 {
		c.WeightSeasonal, c.WeightEWMA, c.WeightAR = 0.5, 0.3, 0.2
	}
	return c
}

// 辅助函数
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
