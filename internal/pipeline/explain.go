package pipeline

import (
	"fmt"

	"revenue-forecast-backend/internal/model"
)

// buildExplanations 合成平实语言的解释
// 每条解释对应一个结论：预测走势对比近期实际、各项得分的分档、
// 季节性检测结果与复购窗口。措辞保持克制，治理审计会复查这些文本。
func buildExplanations(fs *model.FeatureSet, out *model.ForecastOutput) []string {
	explanations := make([]string, 0, 5)

	recent := recentActualMean(fs.Revenue, 14)
	forecastMean := 0.0
	if len(out.RevenueForecast) > 0 {
		days := 14
		if days > len(out.RevenueForecast) {
			days = len(out.RevenueForecast)
		}
		var sum float64
		for i := 0; i < days; i++ {
			sum += out.RevenueForecast[i].Point
		}
		forecastMean = sum / float64(days)
	}

	if recent > 0 && forecastMean > 0 {
		delta := (forecastMean - recent) / recent * 100
		switch {
		case delta >= 3:
			explanations = append(explanations, fmt.Sprintf("Projected daily revenue over the next two weeks averages %.0f, about %.0f%% above the recent two-week actual average.", forecastMean, delta))
		case delta <= -3:
			explanations = append(explanations, fmt.Sprintf("Projected daily revenue over the next two weeks averages %.0f, about %.0f%% below the recent two-week actual average.", forecastMean, -delta))
		default:
			explanations = append(explanations, fmt.Sprintf("Projected daily revenue over the next two weeks averages %.0f, roughly in line with recent actuals.", forecastMean))
		}
	} else {
		explanations = append(explanations, "Revenue history is sparse, so the projection leans on conservative defaults.")
	}

	explanations = append(explanations, fmt.Sprintf("Cash-flow stability is rated %s at %.1f out of 100, reflecting revenue volatility, receivables aging and delivery performance.", out.CashFlowStabilityIndex.Tier, out.CashFlowStabilityIndex.Value))

	explanations = append(explanations, fmt.Sprintf("Churn risk is %s at %.2f; consistent engagement supports the long-term relationship.", out.ChurnRisk.Tier, out.ChurnRisk.Value))

	explanations = append(explanations, fmt.Sprintf("The next order window is estimated between %s and %s at %.2f confidence.", out.AnticipatedNeed.WindowStart, out.AnticipatedNeed.WindowEnd, out.AnticipatedNeed.Confidence))

	if out.SeasonalityDetected {
		explanations = append(explanations, "A weekly seasonal pattern was detected in revenue and is reflected in the forecast weighting.")
	} else {
		explanations = append(explanations, "No weekly seasonality was detected, so trend-following models carry more weight in the forecast.")
	}

	return explanations
}
