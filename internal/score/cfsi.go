package score

import (
	"math"

	"revenue-forecast-backend/internal/feature"
	"revenue-forecast-backend/internal/model"
)

// 六个子分的固定权重，各子分都映射到0-100且越大越好
const (
	weightVolatility    = 0.25
	weightARAging       = 0.20
	weightRefund        = 0.15
	weightShipping      = 0.15
	weightConcentration = 0.15
	weightOTIF          = 0.10
)

// 运输方式对应的账期估计（天），AR账龄代理
var paymentTermDays = map[string]float64{
	"parcel":  30,
	"ltl":     45,
	"flatbed": 60,
	"pickup":  15,
}

// 高风险运输方式（货损与延迟集中在零担和平板）
var riskyFreight = map[string]bool{
	"ltl":     true,
	"flatbed": true,
}

// CFSI 现金流稳定指数
// 六个独立子分按固定权重合成，结果收敛到[0,100]。
// 给定相同特征集结果完全确定，无随机成分。
func CFSI(fs *model.FeatureSet) model.ScoreResult {
	score := weightVolatility*volatilityScore(fs.Revenue) +
		weightARAging*arAgingScore(fs.FreightMix) +
		weightRefund*refundScore(fs.Refunds, fs.Revenue) +
		weightShipping*shippingRiskScore(fs.FreightMix) +
		weightConcentration*concentrationScore(fs.PersonaMix) +
		weightOTIF*otifScore(fs.SLAMet, fs.OnTime)

	score = clamp(score, 0, 100)
	return model.ScoreResult{Value: score, Tier: cfsiTier(score)}
}

// cfsiTier CFSI分档
func cfsiTier(score float64) string {
	switch {
	case score >= 80:
		return model.TierExcellent
	case score >= 65:
		return model.TierGood
	case score >= 50:
		return model.TierFair
	default:
		return model.TierAtRisk
	}
}

// volatilityScore 营收波动子分（变异系数越小越好）
func volatilityScore(revenue []float64) float64 {
	mean := feature.Mean(revenue)
	if mean == 0 {
		return 50 // 无数据给中性分
	}
	cv := feature.StdDev(revenue) / mean
	return clamp((1-cv)*100, 0, 100)
}

// arAgingScore 应收账龄子分
// 没有真实应收台账，用运输方式结构估计加权账期作为代理。
func arAgingScore(freightMix map[string]float64) float64 {
	if len(freightMix) == 0 {
		return 50
	}
	var term float64
	for method, share := range freightMix {
		days, ok := paymentTermDays[method]
		if !ok {
			days = 30
		}
		term += share * days
	}
	// 15天满分，每多一天扣2分
	return clamp(100-(term-15)*2, 0, 100)
}

// refundScore 退款率子分
func refundScore(refunds, revenue []float64) float64 {
	totalRevenue := feature.Mean(revenue) * float64(len(revenue))
	if totalRevenue == 0 {
		return 50
	}
	totalRefunds := feature.Mean(refunds) * float64(len(refunds))
	rate := totalRefunds / totalRevenue
	// 2%退款率对应80分
	return clamp(100-rate*1000, 0, 100)
}

// shippingRiskScore 运输方式风险子分
func shippingRiskScore(freightMix map[string]float64) float64 {
	if len(freightMix) == 0 {
		return 50
	}
	var riskyShare float64
	for method, share := range freightMix {
		if riskyFreight[method] {
			riskyShare += share
		}
	}
	return clamp(100-riskyShare*100, 0, 100)
}

// concentrationScore 客户集中度子分（逆Herfindahl指数）
func concentrationScore(personaMix map[string]float64) float64 {
	if len(personaMix) == 0 {
		return 50
	}
	var herfindahl float64
	for _, share := range personaMix {
		herfindahl += share * share
	}
	return clamp((1-herfindahl)*100/(1-1.0/float64(maxInt(len(personaMix), 2))), 0, 100)
}

// otifScore 准时足量子分
func otifScore(slaMet, onTime []float64) float64 {
	sla := feature.Mean(slaMet)
	ot := feature.Mean(onTime)
	if sla == 0 && ot == 0 {
		return 50
	}
	return clamp((0.6*sla+0.4*ot)*100, 0, 100)
}

// clamp 区间收敛
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
