package forecast

import (
	"math/rand"
	"sort"
	"time"

	"revenue-forecast-backend/internal/model"
)

const bootstrapDraws = 1000

// SeasonalModel 带周季节性的三参数平滑模型
// 维护水平、趋势和周季节指数，三个系数独立控制各自的更新速度。
// 预测公式: (level + h*trend) * seasonalIndex，置信带由
// 单步残差的bootstrap重采样得到。
type SeasonalModel struct {
	Alpha  float64
	Beta   float64
	Gamma  float64
	Period int

	level     float64
	trend     float64
	seasonal  []float64
	residuals []float64
	fittedLen int
}

// NewSeasonalModel 创建季节平滑模型
func NewSeasonalModel(alpha, beta, gamma float64, period int) *SeasonalModel {
	if period <= 0 {
		period = 7
	}
	return &SeasonalModel{Alpha: alpha, Beta: beta, Gamma: gamma, Period: period}
}

// Name 模型名称
func (m *SeasonalModel) Name() string { return "seasonal" }

// Fit 拟合
// 最少需要两个完整季节周期的数据，否则返回数据不足错误。
func (m *SeasonalModel) Fit(series []float64) error {
	p := m.Period
	if len(series) < 2*p {
		return model.ErrInsufficientData
	}

	// 初始水平：第一个周期的均值
	firstMean := meanOf(series[:p])
	secondMean := meanOf(series[p : 2*p])
	if firstMean <= 0 {
		firstMean = meanOf(series)
		if firstMean <= 0 {
			return model.ErrInsufficientData
		}
	}

	m.level = firstMean
	m.trend = (secondMean - firstMean) / float64(p)

	// 初始季节指数：前两个周期按日对均值的偏比
	m.seasonal = make([]float64, p)
	for i := 0; i < p; i++ {
		s1 := safeRatio(series[i], firstMean)
		s2 := safeRatio(series[p+i], secondMean)
		m.seasonal[i] = (s1 + s2) / 2
		if m.seasonal[i] <= 0 {
			m.seasonal[i] = 1
		}
	}

	// 逐步更新并记录单步残差
	m.residuals = make([]float64, 0, len(series)-2*p)
	for t := 2 * p; t < len(series); t++ {
		idx := t % p
		predicted := (m.level + m.trend) * m.seasonal[idx]
		m.residuals = append(m.residuals, series[t]-predicted)

		prevLevel := m.level
		m.level = m.Alpha*(series[t]/m.seasonal[idx]) + (1-m.Alpha)*(m.level+m.trend)
		m.trend = m.Beta*(m.level-prevLevel) + (1-m.Beta)*m.trend
		if m.level > 0 {
			m.seasonal[idx] = m.Gamma*(series[t]/m.level) + (1-m.Gamma)*m.seasonal[idx]
		}
	}

	m.fittedLen = len(series)
	return nil
}

// SeasonalIndices 拟合后的季节指数（测试与解释用）
func (m *SeasonalModel) SeasonalIndices() []float64 {
	out := make([]float64, len(m.seasonal))
	copy(out, m.seasonal)
	return out
}

// Forecast 生成预测序列
func (m *SeasonalModel) Forecast(startDate time.Time, horizonDays int, confidenceLevel float64) (model.ForecastSeries, error) {
	if m.fittedLen == 0 {
		return nil, model.ErrInsufficientData
	}
	if horizonDays <= 0 {
		return model.ForecastSeries{}, nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	lowerQ := (1 - confidenceLevel) / 2
	upperQ := 1 - lowerQ

	series := make(model.ForecastSeries, 0, horizonDays)
	for h := 1; h <= horizonDays; h++ {
		idx := (m.fittedLen + h - 1) % m.Period
		point := (m.level + float64(h)*m.trend) * m.seasonal[idx]

		low, high := m.bootstrapBand(rng, point, lowerQ, upperQ)
		p := clampPoint(model.ForecastPoint{
			Date:   startDate.AddDate(0, 0, h-1).Format(dateLayout),
			Point:  point,
			CILow:  low,
			CIHigh: high,
		})
		series = append(series, p)
	}
	return series, nil
}

// bootstrapBand 残差重采样置信带
// 对历史单步残差做1000次有放回抽样，取请求分位数围绕点估计。
func (m *SeasonalModel) bootstrapBand(rng *rand.Rand, point, lowerQ, upperQ float64) (low, high float64) {
	if len(m.residuals) == 0 {
		return point * 0.9, point * 1.1
	}

	draws := make([]float64, bootstrapDraws)
	for i := 0; i < bootstrapDraws; i++ {
		draws[i] = point + m.residuals[rng.Intn(len(m.residuals))]
	}
	sort.Float64s(draws)

	low = draws[int(lowerQ*float64(bootstrapDraws-1))]
	high = draws[int(upperQ*float64(bootstrapDraws-1))]
	return low, high
}

// safeRatio 防零除比值
func safeRatio(a, b float64) float64 {
	if b == 0 {
		return 1
	}
	return a / b
}
