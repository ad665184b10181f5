package forecast

import (
	"time"

	"revenue-forecast-backend/internal/model"
)

// EWMAModel 单系数指数平滑模型
// 预测为最后平滑水平加7日平均趋势的线性外推，置信带取点估计的±10%。
// 最稳健的降级模型：三个点即可拟合。
type EWMAModel struct {
	Factor float64

	level      float64
	dailyTrend float64
	fitted     bool
}

// NewEWMAModel 创建指数平滑模型
func NewEWMAModel(factor float64) *EWMAModel {
	if factor <= 0 || factor > 1 {
		factor = 0.3
	}
	return &EWMAModel{Factor: factor}
}

// Name 模型名称
func (m *EWMAModel) Name() string { return "ewma" }

// Fit 拟合
func (m *EWMAModel) Fit(series []float64) error {
	if len(series) < 3 {
		return model.ErrInsufficientData
	}

	smoothed := make([]float64, len(series))
	smoothed[0] = series[0]
	for i := 1; i < len(series); i++ {
		smoothed[i] = m.Factor*series[i] + (1-m.Factor)*smoothed[i-1]
	}
	m.level = smoothed[len(smoothed)-1]

	// 7日平均趋势（数据不足7天时用全部差分）
	span := 7
	if len(smoothed)-1 < span {
		span = len(smoothed) - 1
	}
	var sum float64
	for i := len(smoothed) - span; i < len(smoothed); i++ {
		sum += smoothed[i] - smoothed[i-1]
	}
	m.dailyTrend = sum / float64(span)
	m.fitted = true
	return nil
}

// Forecast 生成预测序列
func (m *EWMAModel) Forecast(startDate time.Time, horizonDays int, confidenceLevel float64) (model.ForecastSeries, error) {
	if !m.fitted {
		return nil, model.ErrInsufficientData
	}
	if horizonDays <= 0 {
		return model.ForecastSeries{}, nil
	}

	series := make(model.ForecastSeries, 0, horizonDays)
	for h := 1; h <= horizonDays; h++ {
		point := m.level + float64(h)*m.dailyTrend
		p := clampPoint(model.ForecastPoint{
			Date:   startDate.AddDate(0, 0, h-1).Format(dateLayout),
			Point:  point,
			CILow:  point * 0.9,
			CIHigh: point * 1.1,
		})
		series = append(series, p)
	}
	return series, nil
}
