package config

import "time"

// SchedulerConfig 定时任务配置
type SchedulerConfig struct {
	// 每日预测与告警派发配置
	DailyForecast struct {
		Enabled  bool   `json:"enabled"`
		RunAt    string `json:"run_at"` // HH:MM，默认 "06:30"
		Personas string `json:"personas"`
	} `json:"daily_forecast"`

	// 样本数据刷新配置
	SampleRefresh struct {
		Enabled bool          `json:"enabled"`
		RunAt   string        `json:"run_at"` // HH:MM，默认 "04:00"
		Delay   time.Duration `json:"delay"`
	} `json:"sample_refresh"`

	// 重试配置
	Retry struct {
		Count           int `json:"count"`
		IntervalMinutes int `json:"interval_minutes"`
	} `json:"retry"`
}

// GetSchedulerConfig 获取定时任务配置
func GetSchedulerConfig() *SchedulerConfig {
	cfg := &SchedulerConfig{}

	cfg.DailyForecast.Enabled = getEnvBool("DAILY_FORECAST_ENABLED", true)
	cfg.DailyForecast.RunAt = getEnvString("DAILY_FORECAST_TIME", "06:30")
	cfg.DailyForecast.Personas = getEnvString("DAILY_FORECAST_PERSONAS", "contractor,healthcare,logistics,education,retail")

	cfg.SampleRefresh.Enabled = getEnvBool("SAMPLE_REFRESH_ENABLED", false)
	cfg.SampleRefresh.RunAt = getEnvString("SAMPLE_REFRESH_TIME", "04:00")
	cfg.SampleRefresh.Delay = getEnvDuration("SAMPLE_REFRESH_DELAY", time.Hour)

	cfg.Retry.Count = getEnvInt("SCHEDULER_RETRY_COUNT", 3)
	cfg.Retry.IntervalMinutes = getEnvInt("SCHEDULER_RETRY_INTERVAL", 10)

	return cfg
}
