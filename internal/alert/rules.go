package alert

import (
	"fmt"
	"time"

	"revenue-forecast-backend/internal/model"
)

const dateLayout = "2006-01-02"

// 规则表（静态，全部启用）
// 规则之间互不依赖，评估为平铺式，顺序不影响结果。
var ruleTable = []model.AlertRule{
	{ID: "cfsi_low", Condition: "cash-flow stability index below 55", Threshold: 55, Severity: model.SeverityMedium, Action: model.ActionEmail, Enabled: true},
	{ID: "cfsi_critical", Condition: "cash-flow stability index below 35", Threshold: 35, Severity: model.SeverityCritical, Action: model.ActionEmail, Enabled: true},
	{ID: "churn_high", Condition: "churn risk above 0.6", Threshold: 0.6, Severity: model.SeverityHigh, Action: model.ActionHubspot, Enabled: true},
	{ID: "churn_critical", Condition: "churn risk above 0.8", Threshold: 0.8, Severity: model.SeverityCritical, Action: model.ActionHubspot, Enabled: true},
	{ID: "reorder_window", Condition: "reorder window opens within 10 days at confidence above 0.7", Threshold: 10, Severity: model.SeverityMedium, Action: model.ActionEmail, Enabled: true},
	{ID: "forecast_drop", Condition: "14-day forecast mean below 85% of trailing actuals", Threshold: 0.85, Severity: model.SeverityHigh, Action: model.ActionWebhook, Enabled: true},
}

// Rules 返回规则表副本
func Rules() []model.AlertRule {
	out := make([]model.AlertRule, len(ruleTable))
	copy(out, ruleTable)
	return out
}

// Evaluate 评估全部规则
// 纯函数：只读取预测输出与近期实际营收均值，触发的每条规则
// 恰好产生一个带模板消息的告警候选。
func Evaluate(out *model.ForecastOutput, recentActualMean float64, now time.Time) []model.AlertCandidate {
	var candidates []model.AlertCandidate
	for _, rule := range ruleTable {
		if !rule.Enabled {
			continue
		}
		triggered, message := evaluateRule(rule, out, recentActualMean, now)
		if !triggered {
			continue
		}
		candidates = append(candidates, model.AlertCandidate{
			RuleID:      rule.ID,
			Persona:     out.Persona,
			Severity:    rule.Severity,
			Action:      rule.Action,
			Message:     message,
			TriggeredAt: now,
		})
	}
	return candidates
}

// evaluateRule 评估单条规则
func evaluateRule(rule model.AlertRule, out *model.ForecastOutput, recentActualMean float64, now time.Time) (bool, string) {
	switch rule.ID {
	case "cfsi_low":
		cfsi := out.CashFlowStabilityIndex.Value
		if cfsi < rule.Threshold {
			return true, fmt.Sprintf("Cash-flow stability index for %s is %.1f, below the healthy threshold of %.0f. Reviewing payment terms supports long-term stability.", out.Persona, cfsi, rule.Threshold)
		}
	case "cfsi_critical":
		cfsi := out.CashFlowStabilityIndex.Value
		if cfsi < rule.Threshold {
			return true, fmt.Sprintf("Cash-flow stability index for %s has fallen to %.1f. A finance review is recommended to restore long-term stability.", out.Persona, cfsi)
		}
	case "churn_high":
		churn := out.ChurnRisk.Value
		if churn > rule.Threshold {
			return true, fmt.Sprintf("Churn risk for %s is %.2f. Consider a relationship check-in with the account team.", out.Persona, churn)
		}
	case "churn_critical":
		churn := out.ChurnRisk.Value
		if churn > rule.Threshold {
			return true, fmt.Sprintf("Churn risk for %s has reached %.2f. A retention outreach is recommended this week.", out.Persona, churn)
		}
	case "reorder_window":
		open, days := windowOpensWithin(out.AnticipatedNeed, now, int(rule.Threshold))
		if open && out.AnticipatedNeed.Confidence > 0.7 {
			return true, fmt.Sprintf("Anticipated reorder window for %s opens in %d days at confidence %.2f. Preparing inventory supports the long-term relationship.", out.Persona, days, out.AnticipatedNeed.Confidence)
		}
	case "forecast_drop":
		if recentActualMean <= 0 {
			return false, ""
		}
		forecastMean := forecastMeanDays(out.RevenueForecast, 14)
		if forecastMean < rule.Threshold*recentActualMean {
			return true, fmt.Sprintf("Projected 14-day revenue for %s averages %.0f, below %.0f%% of recent actuals (%.0f). Reviewing the pipeline is recommended.", out.Persona, forecastMean, rule.Threshold*100, recentActualMean)
		}
	}
	return false, ""
}

// windowOpensWithin 窗口是否在指定天数内开启
// 按日历日比较，当天的时刻不影响天数计算。
func windowOpensWithin(need model.AnticipatedNeed, now time.Time, days int) (bool, int) {
	start, err := time.Parse(dateLayout, need.WindowStart)
	if err != nil {
		return false, 0
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	until := int(start.Sub(today).Hours() / 24)
	if until < 0 {
		until = 0
	}
	return until <= days, until
}

// forecastMeanDays 预测序列前若干天的点估计均值
func forecastMeanDays(series model.ForecastSeries, days int) float64 {
	if len(series) == 0 {
		return 0
	}
	if days > len(series) {
		days = len(series)
	}
	var sum float64
	for i := 0; i < days; i++ {
		sum += series[i].Point
	}
	return sum / float64(days)
}
