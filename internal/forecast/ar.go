package forecast

import (
	"math"
	"time"

	"revenue-forecast-backend/internal/model"
)

// ARModel 自回归模型（固定阶数，默认2阶）
// 系数在滞后值上做最小二乘求解，置信带宽度随
// residualStd * sqrt(step) * z 增长。
type ARModel struct {
	Order int

	coeffs    []float64 // [截距, φ1..φp]
	lastVals  []float64 // 最近 Order 个观测，新在前
	residStd  float64
	minPoints int
	fitted    bool
}

// NewARModel 创建自回归模型
func NewARModel(order int) *ARModel {
	if order <= 0 {
		order = 2
	}
	return &ARModel{Order: order, minPoints: 14}
}

// Name 模型名称
func (m *ARModel) Name() string { return "ar" }

// Fit 拟合
// 用正态方程直接求解，阶数固定为个位数，无需数值库。
func (m *ARModel) Fit(series []float64) error {
	p := m.Order
	if len(series) < m.minPoints || len(series) <= p+1 {
		return model.ErrInsufficientData
	}

	// 构造设计矩阵: y_t = c + φ1*y_{t-1} + ... + φp*y_{t-p}
	rows := len(series) - p
	dim := p + 1
	xtx := make([][]float64, dim)
	xty := make([]float64, dim)
	for i := range xtx {
		xtx[i] = make([]float64, dim)
	}

	for t := p; t < len(series); t++ {
		row := make([]float64, dim)
		row[0] = 1
		for j := 1; j <= p; j++ {
			row[j] = series[t-j]
		}
		for i := 0; i < dim; i++ {
			for j := 0; j < dim; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * series[t]
		}
	}

	coeffs, ok := solveLinear(xtx, xty)
	if !ok {
		return model.ErrInsufficientData
	}
	m.coeffs = coeffs

	// 拟合残差
	var sumSq float64
	for t := p; t < len(series); t++ {
		pred := m.coeffs[0]
		for j := 1; j <= p; j++ {
			pred += m.coeffs[j] * series[t-j]
		}
		diff := series[t] - pred
		sumSq += diff * diff
	}
	m.residStd = math.Sqrt(sumSq / float64(rows))

	m.lastVals = make([]float64, p)
	for j := 0; j < p; j++ {
		m.lastVals[j] = series[len(series)-1-j]
	}
	m.fitted = true
	return nil
}

// Forecast 生成预测序列
func (m *ARModel) Forecast(startDate time.Time, horizonDays int, confidenceLevel float64) (model.ForecastSeries, error) {
	if !m.fitted {
		return nil, model.ErrInsufficientData
	}
	if horizonDays <= 0 {
		return model.ForecastSeries{}, nil
	}

	z := zScore(confidenceLevel)
	vals := append([]float64(nil), m.lastVals...)

	series := make(model.ForecastSeries, 0, horizonDays)
	for h := 1; h <= horizonDays; h++ {
		point := m.coeffs[0]
		for j := 1; j <= m.Order; j++ {
			point += m.coeffs[j] * vals[j-1]
		}

		width := m.residStd * math.Sqrt(float64(h)) * z
		p := clampPoint(model.ForecastPoint{
			Date:   startDate.AddDate(0, 0, h-1).Format(dateLayout),
			Point:  point,
			CILow:  point - width,
			CIHigh: point + width,
		})
		series = append(series, p)

		// 滚动推进滞后窗口
		copy(vals[1:], vals[:len(vals)-1])
		vals[0] = point
	}
	return series, nil
}

// solveLinear 高斯消元求解小规模线性方程组
func solveLinear(a [][]float64, b []float64) ([]float64, bool) {
	n := len(b)
	m := make([][]float64, n)
	for i := range m {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}

	for col := 0; col < n; col++ {
		// 选主元
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, false
		}
		m[col], m[pivot] = m[pivot], m[col]

		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := m[r][col] / m[col][col]
			for c := col; c <= n; c++ {
				m[r][c] -= factor * m[col][c]
			}
		}
	}

	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = m[i][n] / m[i][i]
	}
	return out, true
}
