package feature

import (
	"time"

	"revenue-forecast-backend/internal/model"
)

// 冷启动默认值
// 缺失日期不能填零，否则序列出现断崖，后续模型会把断崖当成真实信号。
const (
	DefaultSLAMet      = 0.97
	DefaultOnTime      = 0.94
	DefaultGrossMargin = 0.40
	DefaultRevenue     = 5000.0
)

const dateLayout = "2006-01-02"

// Build 构建特征集合
// 覆盖 now-lookbackDays .. now 的每个自然日，缺失记录用域默认值或前值填充，
// 永不返回错误，数据越差输出越接近默认画像。
func Build(raw model.RawRecords, lookbackDays int, smoothing float64, now time.Time) *model.FeatureSet {
	if lookbackDays <= 0 {
		lookbackDays = 90
	}
	n := lookbackDays + 1

	fs := &model.FeatureSet{
		Dates:           make([]string, n),
		Revenue:         make([]float64, n),
		Refunds:         make([]float64, n),
		GrossMargin:     make([]float64, n),
		NewLeads:        make([]float64, n),
		ConvertedLeads:  make([]float64, n),
		ActiveCustomers: make([]float64, n),
		SLAMet:          make([]float64, n),
		OnTime:          make([]float64, n),
		Sessions:        make([]float64, n),
		EmailOpens:      make([]float64, n),
		QuoteRequests:   make([]float64, n),
		GeneratedAt:     now,
	}

	revByDate := make(map[string]model.RevenueRecord, len(raw.Revenue))
	for _, r := range raw.Revenue {
		revByDate[r.Date] = r
	}
	leadByDate := make(map[string]model.LeadRecord, len(raw.Leads))
	for _, r := range raw.Leads {
		leadByDate[r.Date] = r
	}
	custByDate := make(map[string]model.CustomerRecord, len(raw.Customers))
	for _, r := range raw.Customers {
		custByDate[r.Date] = r
	}
	opsByDate := make(map[string]model.OpsRecord, len(raw.Ops))
	for _, r := range raw.Ops {
		opsByDate[r.Date] = r
	}
	engByDate := make(map[string]model.EngagementRecord, len(raw.Engagement))
	for _, r := range raw.Engagement {
		engByDate[r.Date] = r
	}

	start := now.AddDate(0, 0, -lookbackDays)
	for i := 0; i < n; i++ {
		date := start.AddDate(0, 0, i).Format(dateLayout)
		fs.Dates[i] = date

		// 营收域：计数类缺失沿用前值，比率类缺失用域默认值
		if r, ok := revByDate[date]; ok {
			fs.Revenue[i] = r.Revenue
			fs.Refunds[i] = r.Refunds
			fs.GrossMargin[i] = r.GrossMargin
		} else {
			fs.Revenue[i] = carryForward(fs.Revenue, i)
			fs.Refunds[i] = carryForward(fs.Refunds, i)
			fs.GrossMargin[i] = DefaultGrossMargin
		}

		if r, ok := leadByDate[date]; ok {
			fs.NewLeads[i] = r.NewLeads
			fs.ConvertedLeads[i] = r.ConvertedLeads
		} else {
			fs.NewLeads[i] = carryForward(fs.NewLeads, i)
			fs.ConvertedLeads[i] = carryForward(fs.ConvertedLeads, i)
		}

		if r, ok := custByDate[date]; ok {
			fs.ActiveCustomers[i] = r.ActiveCustomers
		} else {
			fs.ActiveCustomers[i] = carryForward(fs.ActiveCustomers, i)
		}

		if r, ok := opsByDate[date]; ok {
			fs.SLAMet[i] = r.SLAMet
			fs.OnTime[i] = r.OnTime
		} else {
			fs.SLAMet[i] = DefaultSLAMet
			fs.OnTime[i] = DefaultOnTime
		}

		if r, ok := engByDate[date]; ok {
			fs.Sessions[i] = r.Sessions
			fs.EmailOpens[i] = r.EmailOpens
			fs.QuoteRequests[i] = r.QuoteRequests
		} else {
			fs.Sessions[i] = carryForward(fs.Sessions, i)
			fs.EmailOpens[i] = carryForward(fs.EmailOpens, i)
			fs.QuoteRequests[i] = carryForward(fs.QuoteRequests, i)
		}
	}

	fs.PersonaMix = averageMix(raw.Customers, func(r model.CustomerRecord) map[string]float64 { return r.PersonaMix })
	fs.CategoryMix = averageMix(raw.Customers, func(r model.CustomerRecord) map[string]float64 { return r.CategoryMix })
	fs.FreightMix = averageFreightMix(raw.Ops)

	fs.RevenueSmoothed = EWMA(fs.Revenue, smoothing)
	fixColdStartRevenue(fs)

	return fs
}

// carryForward 沿用前一日取值
func carryForward(series []float64, i int) float64 {
	if i == 0 {
		return 0
	}
	return series[i-1]
}

// fixColdStartRevenue 真冷启动修正
// 平滑后营收全为零时，用历史非零均值替换；完全无历史时用固定默认值。
func fixColdStartRevenue(fs *model.FeatureSet) {
	allZero := true
	for _, v := range fs.RevenueSmoothed {
		if v != 0 {
			allZero = false
			break
		}
	}
	if !allZero {
		return
	}

	var sum float64
	var count int
	for _, v := range fs.Revenue {
		if v != 0 {
			sum += v
			count++
		}
	}
	fill := DefaultRevenue
	if count > 0 {
		fill = sum / float64(count)
	}
	for i := range fs.RevenueSmoothed {
		fs.RevenueSmoothed[i] = fill
	}
}

// averageMix 平均占比分布（按出现次数归一）
func averageMix(records []model.CustomerRecord, pick func(model.CustomerRecord) map[string]float64) map[string]float64 {
	sums := make(map[string]float64)
	count := 0
	for _, r := range records {
		mix := pick(r)
		if len(mix) == 0 {
			continue
		}
		for k, v := range mix {
			sums[k] += v
		}
		count++
	}
	if count == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(sums))
	for k, v := range sums {
		out[k] = v / float64(count)
	}
	return normalizeMix(out)
}

// averageFreightMix 平均运输方式占比
func averageFreightMix(records []model.OpsRecord) map[string]float64 {
	sums := make(map[string]float64)
	count := 0
	for _, r := range records {
		if len(r.FreightMix) == 0 {
			continue
		}
		for k, v := range r.FreightMix {
			sums[k] += v
		}
		count++
	}
	if count == 0 {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(sums))
	for k, v := range sums {
		out[k] = v / float64(count)
	}
	return normalizeMix(out)
}

// normalizeMix 归一化占比，使其和为1
func normalizeMix(mix map[string]float64) map[string]float64 {
	total := 0.0
	for _, v := range mix {
		total += v
	}
	if total == 0 {
		return mix
	}
	for k, v := range mix {
		mix[k] = v / total
	}
	return mix
}
