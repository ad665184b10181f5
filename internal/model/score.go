package model

// ScoreResult 有界标量得分及其定性分档
// CFSI 取值 [0,100]，流失风险取值 [0,1]，分档仅由阈值表决定。
type ScoreResult struct {
	Value float64 `json:"value"`
	Tier  string  `json:"tier"`
}

// AnticipatedNeed 下次下单窗口估计
// 约束: WindowStart <= WindowEnd，Confidence 取值 [0.1, 0.9]。
type AnticipatedNeed struct {
	WindowStart string   `json:"window_start"`
	WindowEnd   string   `json:"window_end"`
	Confidence  float64  `json:"confidence"`
	TopSignals  []string `json:"top_signals"`
}

// CFSI 分档
const (
	TierExcellent = "excellent"
	TierGood      = "good"
	TierFair      = "fair"
	TierAtRisk    = "at_risk"
)

// 流失风险分档
const (
	TierLow    = "low"
	TierMedium = "medium"
	TierHigh   = "high"
)
