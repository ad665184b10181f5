package model

import "time"

// ForecastPoint 单日预测点
// 约束: CILow <= Point <= CIHigh，三者均不为负（营收不可能为负）。
type ForecastPoint struct {
	Date   string  `json:"date"`
	Point  float64 `json:"point"`
	CILow  float64 `json:"ci_low"`
	CIHigh float64 `json:"ci_high"`
}

// ForecastSeries 预测序列（日期升序、无间断，每个预测日一条）
type ForecastSeries []ForecastPoint

// HorizonSummary 单个预测窗口的汇总
type HorizonSummary struct {
	HorizonDays int     `json:"horizon_days"`
	EndPoint    float64 `json:"end_point"`  // 窗口末日点估计
	MeanPoint   float64 `json:"mean_point"` // 窗口内日均点估计
	Total       float64 `json:"total"`      // 窗口累计营收
}

// CreatorCheck 治理审计结论
type CreatorCheck struct {
	Passed bool     `json:"passed"`
	Notes  []string `json:"notes"`
}

// ForecastOutput 预测流水线的最终输出
// 唯一返回给调用方的聚合对象，内部所有字段按值持有，各次运行互不共享。
type ForecastOutput struct {
	GeneratedAt            time.Time        `json:"generated_at"`
	Persona                string           `json:"persona"`
	Horizons               []int            `json:"horizons"`
	RevenueForecast        ForecastSeries   `json:"revenue_forecast"`
	HorizonSummaries       []HorizonSummary `json:"horizon_summaries"`
	CashFlowStabilityIndex ScoreResult      `json:"cash_flow_stability_index"`
	ChurnRisk              ScoreResult      `json:"churn_risk"`
	AnticipatedNeed        AnticipatedNeed  `json:"anticipated_need"`
	Explanations           []string         `json:"explanations"`
	Alerts                 []AlertCandidate `json:"alerts"`
	CreatorCheck           CreatorCheck     `json:"creator_check"`
	SeasonalityDetected    bool             `json:"seasonality_detected"`
	TrendDetected          bool             `json:"trend_detected"`
	ModelUsed              string           `json:"model_used"` // ensemble / ewma_fallback
}

// ForecastRequest 预测请求
type ForecastRequest struct {
	Personas []string `json:"personas" binding:"required"`
	Horizons []int    `json:"horizons"`
}

// ForecastResponse 预测响应
type ForecastResponse struct {
	Results []ForecastOutput `json:"results"`
}
