package forecast

import (
	"math"
	"time"

	"revenue-forecast-backend/internal/model"
)

const dateLayout = "2006-01-02"

// Model 单变量预测模型
// Fit 在数据不足时返回 model.ErrInsufficientData，由 Ensemble 捕获并跳过；
// Forecast 生成自 startDate 起连续 horizonDays 天的预测序列。
// 模型实例每次调用新建，不持有跨调用状态。
type Model interface {
	Name() string
	Fit(series []float64) error
	Forecast(startDate time.Time, horizonDays int, confidenceLevel float64) (model.ForecastSeries, error)
}

// zScore 置信水平对应的z分数
func zScore(confidenceLevel float64) float64 {
	switch confidenceLevel {
	case 0.8:
		return 1.28
	case 0.95:
		return 1.96
	case 0.99:
		return 2.58
	}
	return 1.96
}

// clampPoint 收敛预测点
// 营收不可能为负，且必须保持 ciLow <= point <= ciHigh。
func clampPoint(p model.ForecastPoint) model.ForecastPoint {
	if p.Point < 0 {
		p.Point = 0
	}
	if p.CILow < 0 {
		p.CILow = 0
	}
	if p.CIHigh < 0 {
		p.CIHigh = 0
	}
	if p.CILow > p.Point {
		p.CILow = p.Point
	}
	if p.CIHigh < p.Point {
		p.CIHigh = p.Point
	}
	return p
}

// meanOf 均值
func meanOf(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// stdOf 标准差
func stdOf(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0
	}
	mean := meanOf(data)
	sum := 0.0
	for _, v := range data {
		diff := v - mean
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n))
}
