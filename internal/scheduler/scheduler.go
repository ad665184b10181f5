package scheduler

import (
	"log"
	"strconv"
	"strings"
	"time"

	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/service"
	"revenue-forecast-backend/pkg/samplegen"
)

// StartDailyForecastScheduler 启动每日预测与告警派发定时任务
func StartDailyForecastScheduler(svc *service.ForecastService, cfg *config.SchedulerConfig) {
	if !cfg.DailyForecast.Enabled {
		log.Println("每日预测任务已禁用")
		return
	}

	hour, minute := parseRunAt(cfg.DailyForecast.RunAt, 6, 30)
	personas := splitPersonas(cfg.DailyForecast.Personas)

	log.Printf("每日预测任务已启动，运行时间: %02d:%02d，画像: %s，重试次数: %d",
		hour, minute, strings.Join(personas, ","), cfg.Retry.Count)

	go func() {
		for {
			now := time.Now()
			nextRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if now.After(nextRun) {
				nextRun = nextRun.Add(24 * time.Hour)
			}

			duration := nextRun.Sub(now)
			log.Printf("下次预测任务时间: %s（%v后）", nextRun.Format("2006-01-02 15:04:05"), duration.Round(time.Minute))
			time.Sleep(duration)

			runDailyForecastWithRetry(svc, personas, cfg.Retry.Count, cfg.Retry.IntervalMinutes)
		}
	}()
}

// runDailyForecastWithRetry 带重试的日批预测
func runDailyForecastWithRetry(svc *service.ForecastService, personas []string, maxRetry, intervalMinutes int) {
	for i := 0; i <= maxRetry; i++ {
		if i > 0 {
			log.Printf("第 %d 次重试日批预测...", i)
		} else {
			log.Println("开始执行日批预测任务...")
		}

		if err := svc.RunDailyForecast(personas, nil); err != nil {
			log.Printf("日批预测失败: %v", err)
			if i < maxRetry {
				log.Printf("将在 %d 分钟后重试", intervalMinutes)
				time.Sleep(time.Duration(intervalMinutes) * time.Minute)
			}
		} else {
			log.Println("日批预测完成")
			return
		}
	}
	log.Printf("日批预测失败，已重试 %d 次", maxRetry)
}

// StartSampleRefreshScheduler 启动样本数据刷新定时任务
func StartSampleRefreshScheduler(cfg *config.SchedulerConfig) {
	if !cfg.SampleRefresh.Enabled {
		log.Println("样本数据刷新任务已禁用")
		return
	}

	hour, minute := parseRunAt(cfg.SampleRefresh.RunAt, 4, 0)
	log.Printf("样本数据刷新任务已启动，运行时间: %02d:%02d", hour, minute)

	go func() {
		for {
			now := time.Now()
			nextRun := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
			if now.After(nextRun) {
				nextRun = nextRun.Add(24 * time.Hour)
			}

			duration := nextRun.Sub(now)
			log.Printf("下次样本刷新时间: %s（%v后）", nextRun.Format("2006-01-02 15:04:05"), duration.Round(time.Minute))
			time.Sleep(duration)

			if err := samplegen.Execute(nil); err != nil {
				log.Printf("样本数据刷新失败: %v", err)
			}
		}
	}()
}

// parseRunAt 解析 HH:MM，解析失败时使用默认值
func parseRunAt(runAt string, defaultHour, defaultMinute int) (int, int) {
	parts := strings.Split(strings.TrimSpace(runAt), ":")
	hour, minute := defaultHour, defaultMinute
	if len(parts) == 2 {
		if h, err := strconv.Atoi(parts[0]); err == nil && h >= 0 && h <= 23 {
			hour = h
		}
		if m, err := strconv.Atoi(parts[1]); err == nil && m >= 0 && m <= 59 {
			minute = m
		}
	}
	return hour, minute
}

func splitPersonas(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
