package forecast

import (
	"time"

	"revenue-forecast-backend/internal/model"
)

// Ensemble 模型组合
// 运行全部子模型，跳过数据不足的，按权重对逐日输出加权平均，
// 权重在成功子集上重新归一。全部失败时组合本身失败，
// 由编排器降级为单独的指数平滑模型。
type Ensemble struct {
	models  []Model
	weights []float64
	ok      []bool
}

// NewEnsemble 创建模型组合
// models 与 weights 必须等长对应。
func NewEnsemble(models []Model, weights []float64) *Ensemble {
	return &Ensemble{models: models, weights: weights}
}

// Name 模型名称
func (e *Ensemble) Name() string { return "ensemble" }

// Fit 拟合全部子模型
func (e *Ensemble) Fit(series []float64) error {
	e.ok = make([]bool, len(e.models))
	succeeded := 0
	for i, m := range e.models {
		if err := m.Fit(series); err != nil {
			continue
		}
		e.ok[i] = true
		succeeded++
	}
	if succeeded == 0 {
		return model.ErrInsufficientData
	}
	return nil
}

// SucceededModels 成功拟合的子模型名称
func (e *Ensemble) SucceededModels() []string {
	var names []string
	for i, m := range e.models {
		if i < len(e.ok) && e.ok[i] {
			names = append(names, m.Name())
		}
	}
	return names
}

// Forecast 加权合成预测序列
func (e *Ensemble) Forecast(startDate time.Time, horizonDays int, confidenceLevel float64) (model.ForecastSeries, error) {
	if len(e.ok) == 0 {
		return nil, model.ErrInsufficientData
	}

	var outputs []model.ForecastSeries
	var usedWeights []float64
	for i, m := range e.models {
		if !e.ok[i] {
			continue
		}
		series, err := m.Forecast(startDate, horizonDays, confidenceLevel)
		if err != nil {
			continue
		}
		outputs = append(outputs, series)
		usedWeights = append(usedWeights, e.weights[i])
	}
	if len(outputs) == 0 {
		return nil, model.ErrInsufficientData
	}

	// 权重在成功子集上归一
	var total float64
	for _, w := range usedWeights {
		total += w
	}
	if total == 0 {
		for i := range usedWeights {
			usedWeights[i] = 1
		}
		total = float64(len(usedWeights))
	}
	for i := range usedWeights {
		usedWeights[i] /= total
	}

	combined := make(model.ForecastSeries, horizonDays)
	for h := 0; h < horizonDays; h++ {
		var point, low, high float64
		for i, out := range outputs {
			point += out[h].Point * usedWeights[i]
			low += out[h].CILow * usedWeights[i]
			high += out[h].CIHigh * usedWeights[i]
		}
		combined[h] = clampPoint(model.ForecastPoint{
			Date:   startDate.AddDate(0, 0, h).Format(dateLayout),
			Point:  point,
			CILow:  low,
			CIHigh: high,
		})
	}
	return combined, nil
}
