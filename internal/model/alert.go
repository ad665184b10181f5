package model

import "time"

// 告警严重级别
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// 告警动作类型
const (
	ActionEmail   = "email"
	ActionHubspot = "hubspot"
	ActionWebhook = "webhook"
)

// AlertRule 告警规则
// 规则之间相互独立，评估顺序不影响结果。
type AlertRule struct {
	ID        string  `json:"id"`
	Condition string  `json:"condition"` // 人类可读的触发条件
	Threshold float64 `json:"threshold"`
	Severity  string  `json:"severity"`
	Action    string  `json:"action"`
	Enabled   bool    `json:"enabled"`
}

// AlertCandidate 告警候选
// 由规则评估产生，经治理审计后转交外部投递层或丢弃，不会二次评估。
type AlertCandidate struct {
	RuleID      string    `json:"rule_id"`
	Persona     string    `json:"persona"`
	Severity    string    `json:"severity"`
	Action      string    `json:"action"`
	Message     string    `json:"message"`
	TriggeredAt time.Time `json:"triggered_at"`
}

// DeliveryResult 投递结果
type DeliveryResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
