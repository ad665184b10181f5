package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"revenue-forecast-backend/internal/alert"
	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/feature"
	"revenue-forecast-backend/internal/forecast"
	"revenue-forecast-backend/internal/governance"
	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/score"
)

const dateLayout = "2006-01-02"

// 预测窗口上限（天）
const maxHorizonDays = 60

// Generate 生成预测报告
// 外部调用方唯一的入口：特征提取 → 组合预测（失败降级为指数平滑）→
// 现金流稳定指数 → 流失风险 → 复购窗口 → 解释合成 → 告警评估 → 治理审计。
// 未知画像与完全无数据是仅有的两类致命错误，其余阶段故障一律降级为默认值。
// 不持有任何跨调用状态，可安全并发。
func Generate(raw model.RawRecords, persona string, horizons []int, cfg config.Pipeline, now time.Time) (*model.ForecastOutput, error) {
	params, err := score.GetPersonaParams(persona)
	if err != nil {
		return nil, err
	}

	fs := feature.Build(raw, cfg.LookbackDays, cfg.SmoothingFactor, now)
	series := fs.RevenueSmoothed
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: 特征序列为空", model.ErrInsufficientData)
	}

	horizons = normalizeHorizons(horizons)
	maxHorizon := horizons[len(horizons)-1]

	// 模型选择启发：有季节性偏向季节权重，否则偏向趋势权重
	trendDetected := feature.DetectTrend(series)
	seasonalityDetected := feature.DetectSeasonality(series, cfg.SeasonalPeriod)
	alpha, beta, gamma := biasCoefficients(cfg, trendDetected, seasonalityDetected, len(series))

	revenueForecast, modelUsed, err := runForecast(series, alpha, beta, gamma, maxHorizon, cfg, now)
	if err != nil {
		return nil, err
	}

	cfsi := score.CFSI(fs)
	churn := score.ChurnRisk(fs, params)
	need := score.AnticipatedNeed(fs, params, cfg, now)

	out := &model.ForecastOutput{
		GeneratedAt:            now,
		Persona:                persona,
		Horizons:               horizons,
		RevenueForecast:        revenueForecast,
		HorizonSummaries:       summarize(revenueForecast, horizons),
		CashFlowStabilityIndex: cfsi,
		ChurnRisk:              churn,
		AnticipatedNeed:        need,
		SeasonalityDetected:    seasonalityDetected,
		TrendDetected:          trendDetected,
		ModelUsed:              modelUsed,
	}
	out.Explanations = buildExplanations(fs, out)

	recentMean := recentActualMean(fs.Revenue, 14)
	out.Alerts = alert.Evaluate(out, recentMean, now)

	// 治理审计失败时不中断：输出照常返回，告警收窄到仅critical
	out.CreatorCheck = governance.Check(out.Explanations, out.Alerts)
	if !out.CreatorCheck.Passed {
		out.Alerts = criticalOnly(out.Alerts)
	}

	return out, nil
}

// runForecast 运行组合预测，失败时降级为单独的指数平滑模型
func runForecast(series []float64, alpha, beta, gamma float64, horizonDays int, cfg config.Pipeline, now time.Time) (model.ForecastSeries, string, error) {
	startDate := now.AddDate(0, 0, 1)

	ensemble := forecast.NewEnsemble(
		[]forecast.Model{
			forecast.NewSeasonalModel(alpha, beta, gamma, cfg.SeasonalPeriod),
			forecast.NewEWMAModel(cfg.SmoothingFactor),
			forecast.NewARModel(2),
		},
		[]float64{cfg.WeightSeasonal, cfg.WeightEWMA, cfg.WeightAR},
	)

	if err := ensemble.Fit(series); err == nil {
		out, ferr := ensemble.Forecast(startDate, horizonDays, cfg.ConfidenceLevel)
		if ferr == nil {
			// 只剩指数平滑一个子模型时按降级对待
			succeeded := ensemble.SucceededModels()
			if len(succeeded) == 1 && succeeded[0] == "ewma" {
				return out, "ewma_fallback", nil
			}
			return out, "ensemble", nil
		}
	} else if !errors.Is(err, model.ErrInsufficientData) {
		return nil, "", err
	}

	// 组合失败，降级为最稳健的单模型
	ewma := forecast.NewEWMAModel(cfg.SmoothingFactor)
	if err := ewma.Fit(series); err != nil {
		return nil, "", fmt.Errorf("%w: 降级模型同样无法拟合", model.ErrInsufficientData)
	}
	out, err := ewma.Forecast(startDate, horizonDays, cfg.ConfidenceLevel)
	if err != nil {
		return nil, "", err
	}
	return out, "ewma_fallback", nil
}

// biasCoefficients 根据检测结果偏置平滑系数
func biasCoefficients(cfg config.Pipeline, trend, seasonal bool, n int) (alpha, beta, gamma float64) {
	alpha, beta, gamma = cfg.Alpha, cfg.Beta, cfg.Gamma
	if seasonal && n > 14 {
		gamma = minFloat(gamma*1.5, 0.5)
		return alpha, beta, gamma
	}
	if trend {
		beta = minFloat(beta*2, 0.4)
	}
	return alpha, beta, gamma
}

// normalizeHorizons 规整预测窗口：去重、收敛到1..60、升序，空则给默认
func normalizeHorizons(horizons []int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, h := range horizons {
		if h <= 0 {
			continue
		}
		if h > maxHorizonDays {
			h = maxHorizonDays
		}
		if !seen[h] {
			seen[h] = true
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		out = []int{14, 30}
	}
	sort.Ints(out)
	return out
}

// summarize 生成每个请求窗口的汇总
func summarize(series model.ForecastSeries, horizons []int) []model.HorizonSummary {
	summaries := make([]model.HorizonSummary, 0, len(horizons))
	for _, h := range horizons {
		if h > len(series) {
			h = len(series)
		}
		if h == 0 {
			continue
		}
		var total float64
		for i := 0; i < h; i++ {
			total += series[i].Point
		}
		summaries = append(summaries, model.HorizonSummary{
			HorizonDays: h,
			EndPoint:    series[h-1].Point,
			MeanPoint:   total / float64(h),
			Total:       total,
		})
	}
	return summaries
}

// recentActualMean 近期实际营收均值
func recentActualMean(revenue []float64, days int) float64 {
	n := len(revenue)
	if n == 0 {
		return 0
	}
	if days > n {
		days = n
	}
	var sum float64
	for i := n - days; i < n; i++ {
		sum += revenue[i]
	}
	return sum / float64(days)
}

// criticalOnly 只保留critical级别的告警
func criticalOnly(candidates []model.AlertCandidate) []model.AlertCandidate {
	var out []model.AlertCandidate
	for _, c := range candidates {
		if c.Severity == model.SeverityCritical {
			out = append(out, c)
		}
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
