package score

import (
	"math"

	"revenue-forecast-backend/internal/feature"
	"revenue-forecast-backend/internal/model"
)

// 流失模型系数（手工标定的逻辑回归，非训练所得）
// 四个因子都是对缺失订单台账的代理启发式，可调不可信奉。
const (
	churnIntercept        = -2.0
	churnRecencyCoeff     = 1.6
	churnFrequencyCoeff   = 1.1
	churnMonetaryCoeff    = 1.3
	churnEngagementCoeff  = 0.9
	churnSparseDefault    = 0.3
	churnSparseMinDays    = 7
)

// ChurnRisk 流失风险概率
// 四个工程化因子线性组合后过sigmoid，再乘画像调整因子，收敛到[0,1]。
// 数据稀疏时退化为固定默认值而不是报错。
func ChurnRisk(fs *model.FeatureSet, params PersonaParams) model.ScoreResult {
	if fs.Len() < churnSparseMinDays || feature.Mean(fs.Revenue) == 0 {
		risk := clamp(churnSparseDefault*params.ChurnAdjust, 0, 1)
		return model.ScoreResult{Value: risk, Tier: churnTier(risk)}
	}

	z := churnIntercept +
		churnRecencyCoeff*recencyFactor(fs) +
		churnFrequencyCoeff*frequencyFactor(fs) +
		churnMonetaryCoeff*monetaryFactor(fs) +
		churnEngagementCoeff*engagementDeltaFactor(fs) +
		params.ChurnBase

	risk := sigmoid(z) * params.ChurnAdjust
	risk = clamp(risk, 0, 1)
	return model.ScoreResult{Value: risk, Tier: churnTier(risk)}
}

// churnTier 流失风险分档
func churnTier(risk float64) string {
	switch {
	case risk < 0.3:
		return model.TierLow
	case risk < 0.6:
		return model.TierMedium
	default:
		return model.TierHigh
	}
}

// recencyFactor 近度代理
// 互动信号跌破均值两成视为沉寂，沉寂天数按30天归一。
func recencyFactor(fs *model.FeatureSet) float64 {
	mean := feature.Mean(fs.Sessions)
	if mean == 0 {
		return 0.5
	}
	silentDays := 0
	for i := fs.Len() - 1; i >= 0; i-- {
		if fs.Sessions[i] > 0.2*mean {
			break
		}
		silentDays++
	}
	return clamp(float64(silentDays)/30, 0, 1)
}

// frequencyFactor 频度代理
// 以每周2次询价为基线，询价越少因子越高。
func frequencyFactor(fs *model.FeatureSet) float64 {
	n := fs.Len()
	if n == 0 {
		return 0.5
	}
	weeklyQuotes := feature.Mean(fs.QuoteRequests) * 7
	return clamp(1-weeklyQuotes/2, 0, 1)
}

// monetaryFactor 金额代理
// 近30天营收相对前30天的下滑幅度。
func monetaryFactor(fs *model.FeatureSet) float64 {
	n := fs.Len()
	if n < 60 {
		return 0.3
	}
	recent := feature.Mean(fs.Revenue[n-30:])
	prior := feature.Mean(fs.Revenue[n-60 : n-30])
	if prior == 0 {
		return 0.3
	}
	return clamp((prior-recent)/prior, 0, 1)
}

// engagementDeltaFactor 互动变化因子
// 最近7天互动相对前7天的下滑幅度。
func engagementDeltaFactor(fs *model.FeatureSet) float64 {
	n := fs.Len()
	if n < 14 {
		return 0.3
	}
	recent := feature.Mean(fs.Sessions[n-7:])
	prior := feature.Mean(fs.Sessions[n-14 : n-7])
	if prior == 0 {
		return 0.3
	}
	return clamp((prior-recent)/prior, 0, 1)
}

// sigmoid 逻辑函数
func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
