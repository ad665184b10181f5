package bizdata

import (
	"fmt"
	"log"
	"time"

	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/store"
	"revenue-forecast-backend/pkg/samplegen"
)

const (
	recordsCacheTTL = 10 * time.Minute
	dateLayout      = "2006-01-02"
)

// Provider 业务记录提供者
// 读取顺序：缓存 → SQLite 存储 → 合成演示数据。
// 存储为空时回退到合成数据，保证新部署也能出预测结果。
type Provider struct {
	store *store.Store
	cache CacheProvider
}

func NewProvider(st *store.Store, cache CacheProvider) *Provider {
	if cache == nil {
		cache = NewInMemoryCacheProvider()
	}
	return &Provider{store: st, cache: cache}
}

// GetRecords 获取某画像最近 lookbackDays 天的原始业务记录
func (p *Provider) GetRecords(persona string, lookbackDays int, now time.Time) (model.RawRecords, error) {
	cacheKey := fmt.Sprintf("bizdata:%s:%d", persona, lookbackDays)

	var cached model.RawRecords
	if err := p.cache.Get(cacheKey, &cached); err == nil && len(cached.Revenue) > 0 {
		return cached, nil
	}

	since := now.AddDate(0, 0, -lookbackDays).Format(dateLayout)
	until := now.Format(dateLayout)

	var raw model.RawRecords
	if p.store != nil {
		loaded, err := p.store.LoadRecords(persona, since, until)
		if err != nil {
			log.Printf("读取画像 %s 的业务记录失败: %v", persona, err)
		} else {
			raw = loaded
		}
	}

	if len(raw.Revenue) == 0 {
		log.Printf("画像 %s 无存储记录，使用合成样本数据", persona)
		raw = samplegen.GenerateRecords(persona, lookbackDays+1, now)
	}

	if err := p.cache.Set(cacheKey, raw, recordsCacheTTL); err != nil {
		log.Printf("缓存画像 %s 的业务记录失败: %v", persona, err)
	}
	return raw, nil
}
