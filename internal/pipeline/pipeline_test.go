package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/model"
)

var pipelineNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// syntheticRecords 构造一段带周模式与周期性大单的健康历史
func syntheticRecords(days int) model.RawRecords {
	var raw model.RawRecords
	for i := days - 1; i >= 0; i-- {
		day := pipelineNow.AddDate(0, 0, -i)
		date := day.Format(dateLayout)

		revenue := 1000.0 + float64(day.Weekday())*35
		if i%9 == 0 {
			revenue *= 2.2
		}
		raw.Revenue = append(raw.Revenue, model.RevenueRecord{Date: date, Revenue: revenue, Refunds: revenue * 0.01, GrossMargin: 0.42})
		raw.Leads = append(raw.Leads, model.LeadRecord{Date: date, NewLeads: 6, ConvertedLeads: 2})
		raw.Customers = append(raw.Customers, model.CustomerRecord{Date: date, ActiveCustomers: 40, PersonaMix: map[string]float64{"contractor": 0.6, "retail": 0.4}})
		raw.Ops = append(raw.Ops, model.OpsRecord{Date: date, SLAMet: 0.97, OnTime: 0.94, FreightMix: map[string]float64{"parcel": 0.8, "ltl": 0.2}})
		raw.Engagement = append(raw.Engagement, model.EngagementRecord{Date: date, Sessions: 15, EmailOpens: 8, QuoteRequests: 3})
	}
	return raw
}

func TestGenerateFullPipeline(t *testing.T) {
	cfg := config.DefaultPipeline()
	out, err := Generate(syntheticRecords(91), "contractor", nil, cfg, pipelineNow)
	require.NoError(t, err)

	assert.Equal(t, "contractor", out.Persona)
	assert.Equal(t, "ensemble", out.ModelUsed)
	assert.Equal(t, []int{14, 30}, out.Horizons)
	assert.Len(t, out.RevenueForecast, 30)

	// 预测从明天开始且日期连续
	for i, p := range out.RevenueForecast {
		expected := pipelineNow.AddDate(0, 0, i+1).Format(dateLayout)
		assert.Equal(t, expected, p.Date)
		assert.LessOrEqual(t, p.CILow, p.Point)
		assert.LessOrEqual(t, p.Point, p.CIHigh)
	}

	require.Len(t, out.HorizonSummaries, 2)
	for _, s := range out.HorizonSummaries {
		assert.InDelta(t, s.MeanPoint*float64(s.HorizonDays), s.Total, 1e-6)
		assert.InDelta(t, out.RevenueForecast[s.HorizonDays-1].Point, s.EndPoint, 1e-9)
	}
	assert.Equal(t, 14, out.HorizonSummaries[0].HorizonDays)
	assert.Equal(t, 30, out.HorizonSummaries[1].HorizonDays)

	assert.GreaterOrEqual(t, out.CashFlowStabilityIndex.Value, 0.0)
	assert.LessOrEqual(t, out.CashFlowStabilityIndex.Value, 100.0)
	assert.GreaterOrEqual(t, out.ChurnRisk.Value, 0.0)
	assert.LessOrEqual(t, out.ChurnRisk.Value, 1.0)
	assert.NotEmpty(t, out.AnticipatedNeed.WindowStart)

	assert.Len(t, out.Explanations, 5)
	assert.True(t, out.CreatorCheck.Passed, "健康输入的审计应当通过: %v", out.CreatorCheck.Notes)
}

func TestGenerateShortSeriesFallsBackToEWMA(t *testing.T) {
	cfg := config.DefaultPipeline()
	cfg.LookbackDays = 5 // 特征层补齐到6天，只够指数平滑

	out, err := Generate(syntheticRecords(91), "retail", []int{14}, cfg, pipelineNow)
	require.NoError(t, err)

	assert.Equal(t, "ewma_fallback", out.ModelUsed)
	assert.Len(t, out.RevenueForecast, 14)
}

func TestGenerateUnknownPersona(t *testing.T) {
	_, err := Generate(syntheticRecords(30), "wholesale", nil, config.DefaultPipeline(), pipelineNow)
	assert.ErrorIs(t, err, model.ErrUnknownPersona)
}

func TestGenerateHorizonClamp(t *testing.T) {
	out, err := Generate(syntheticRecords(91), "logistics", []int{0, 70, 14, 14}, config.DefaultPipeline(), pipelineNow)
	require.NoError(t, err)

	assert.Equal(t, []int{14, 60}, out.Horizons)
	assert.Len(t, out.RevenueForecast, 60)
	require.Len(t, out.HorizonSummaries, 2)
}

func TestGenerateScoresAreDeterministic(t *testing.T) {
	raw := syntheticRecords(91)
	cfg := config.DefaultPipeline()

	first, err := Generate(raw, "healthcare", nil, cfg, pipelineNow)
	require.NoError(t, err)
	second, err := Generate(raw, "healthcare", nil, cfg, pipelineNow)
	require.NoError(t, err)

	// 自助法随机性只影响季节模型置信区间，点预测与评分可复现
	assert.Equal(t, first.CashFlowStabilityIndex.Value, second.CashFlowStabilityIndex.Value)
	assert.Equal(t, first.ChurnRisk.Value, second.ChurnRisk.Value)
	assert.Equal(t, first.AnticipatedNeed, second.AnticipatedNeed)
	for i := range first.RevenueForecast {
		assert.Equal(t, first.RevenueForecast[i].Point, second.RevenueForecast[i].Point)
	}
}

func TestNormalizeHorizons(t *testing.T) {
	assert.Equal(t, []int{14, 60}, normalizeHorizons([]int{0, 70, 14, 14}))
	assert.Equal(t, []int{14, 30}, normalizeHorizons(nil))
	assert.Equal(t, []int{14, 30}, normalizeHorizons([]int{-5, 0}))
	assert.Equal(t, []int{7, 30}, normalizeHorizons([]int{30, 7}))
}

func TestCriticalOnly(t *testing.T) {
	candidates := []model.AlertCandidate{
		{RuleID: "cfsi_low", Severity: model.SeverityHigh},
		{RuleID: "cfsi_critical", Severity: model.SeverityCritical},
		{RuleID: "churn_high", Severity: model.SeverityHigh},
	}
	narrowed := criticalOnly(candidates)

	require.Len(t, narrowed, 1)
	assert.Equal(t, "cfsi_critical", narrowed[0].RuleID)
}

func TestSummarizeClampsToSeriesLength(t *testing.T) {
	series := model.ForecastSeries{
		{Date: "2026-03-16", Point: 10}, {Date: "2026-03-17", Point: 20}, {Date: "2026-03-18", Point: 30},
	}
	summaries := summarize(series, []int{2, 10})

	require.Len(t, summaries, 2)
	assert.Equal(t, 2, summaries[0].HorizonDays)
	assert.Equal(t, 3, summaries[1].HorizonDays)
	assert.InDelta(t, 20.0, summaries[1].MeanPoint, 1e-9)
}

func TestRecentActualMean(t *testing.T) {
	assert.Equal(t, 0.0, recentActualMean(nil, 14))
	assert.InDelta(t, 2.5, recentActualMean([]float64{1, 2, 3, 4}, 14), 1e-9)
	assert.InDelta(t, 3.5, recentActualMean([]float64{1, 2, 3, 4}, 2), 1e-9)
}
