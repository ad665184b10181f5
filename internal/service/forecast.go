package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"revenue-forecast-backend/internal/alert"
	"revenue-forecast-backend/internal/bizdata"
	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/pipeline"
)

const forecastCacheTTL = 10 * time.Minute

// ForecastService 预测服务
// 取数、跑流水线、缓存结果、投递告警都在这一层，
// 流水线本身保持纯函数。
type ForecastService struct {
	provider   *bizdata.Provider
	cache      bizdata.CacheProvider
	cfg        config.Pipeline
	dispatcher *alert.Dispatcher
}

func NewForecastService(provider *bizdata.Provider, cache bizdata.CacheProvider, cfg config.Pipeline, dispatcher *alert.Dispatcher) *ForecastService {
	if cache == nil {
		cache = bizdata.NewInMemoryCacheProvider()
	}
	return &ForecastService{provider: provider, cache: cache, cfg: cfg, dispatcher: dispatcher}
}

// ForecastPersonas 批量预测客户画像
func (s *ForecastService) ForecastPersonas(personas []string, horizons []int) ([]model.ForecastOutput, error) {
	results := make([]model.ForecastOutput, 0, len(personas))
	var mu sync.Mutex
	var wg sync.WaitGroup
	errChan := make(chan error, len(personas))

	for _, persona := range personas {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()

			result, err := s.ForecastSingle(p, horizons)
			if err != nil {
				errChan <- fmt.Errorf("预测画像 %s 失败: %w", p, err)
				return
			}

			mu.Lock()
			results = append(results, *result)
			mu.Unlock()
		}(persona)
	}

	wg.Wait()
	close(errChan)

	// 收集错误
	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}

	if len(errs) > 0 && len(results) == 0 {
		return nil, errs[0]
	}

	return results, nil
}

// ForecastSingle 预测单个画像
func (s *ForecastService) ForecastSingle(persona string, horizons []int) (*model.ForecastOutput, error) {
	now := time.Now()
	cacheKey := forecastCacheKey(persona, horizons, now)

	var cached model.ForecastOutput
	if err := s.cache.Get(cacheKey, &cached); err == nil && cached.Persona == persona {
		return &cached, nil
	}

	raw, err := s.provider.GetRecords(persona, s.cfg.LookbackDays, now)
	if err != nil {
		return nil, fmt.Errorf("获取业务记录失败: %w", err)
	}

	out, err := pipeline.Generate(raw, persona, horizons, s.cfg, now)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, out, forecastCacheTTL); err != nil {
		log.Printf("缓存画像 %s 的预测结果失败: %v", persona, err)
	}
	return out, nil
}

// RunDailyForecast 日批任务：预测全部给定画像并投递告警
func (s *ForecastService) RunDailyForecast(personas []string, horizons []int) error {
	outputs, err := s.ForecastPersonas(personas, horizons)
	if err != nil {
		return err
	}

	delivered := 0
	for i := range outputs {
		if s.dispatcher == nil {
			break
		}
		delivered += s.dispatcher.Dispatch(outputs[i].Alerts)
	}
	log.Printf("日批预测完成: personas=%d, alerts_delivered=%d", len(outputs), delivered)
	return nil
}

func forecastCacheKey(persona string, horizons []int, now time.Time) string {
	key := fmt.Sprintf("forecast:%s:%s", persona, now.Format("2006-01-02"))
	for _, h := range horizons {
		key += fmt.Sprintf(":%d", h)
	}
	return key
}
