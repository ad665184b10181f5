package governance

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"revenue-forecast-backend/internal/model"
)

// AuditResult 单项审计结果
type AuditResult struct {
	Name   string   `json:"name"`
	Passed bool     `json:"passed"`
	Notes  []string `json:"notes"`
}

// audit 审计函数
// 每项审计独立运行，只读取解释文本与告警候选，互不依赖。
type audit func(texts []string) AuditResult

// PII 泄露检测正则
var (
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	phonePattern = regexp.MustCompile(`\(?\d{3}\)?[-. ]\d{3}[-. ]\d{4}`)
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
)

// 操纵性语言词表与阈值
var (
	urgencyWords  = []string{"act now", "hurry", "immediately", "last chance", "don't wait"}
	fearWords     = []string{"you will lose everything", "disaster", "catastrophic", "be afraid", "panic"}
	scarcityWords = []string{"limited time", "only a few left", "running out", "while supplies last", "exclusive offer"}
)

const (
	urgencyThreshold  = 2
	fearThreshold     = 1
	scarcityThreshold = 2
	maxAlertsPerRun   = 3
)

// 敏感话题关键词（健康/政治/未成年人）
var sensitiveWords = []string{
	"medical condition", "diagnosis", "prescription",
	"political", "election", "religion",
	"children", "minors",
}

// 不专业措辞
var unprofessionalWords = []string{"stupid", "idiot", "damn", "screwed", "garbage"}

// 长期价值语言（至少出现一处）
var longTermWords = []string{"long-term", "long term", "sustainable", "relationship", "retention"}

// Check 治理审计（Creator Check）
// 七项独立文本/伦理审计作用于解释文本与告警消息，
// 总体结论是七项的逻辑与，全部备注拼接返回。
// 审计失败从不中断流水线——编排器收到失败结论后把告警
// 收窄到仅 critical 级别，输出照常返回。
func Check(explanations []string, alerts []model.AlertCandidate) model.CreatorCheck {
	texts := make([]string, 0, len(explanations)+len(alerts))
	texts = append(texts, explanations...)
	for _, a := range alerts {
		texts = append(texts, a.Message)
	}

	audits := []audit{
		auditPII,
		makeTransparencyAudit(explanations),
		auditManipulation,
		makeContactFrequencyAudit(len(alerts)),
		auditSensitiveTopics,
		auditTone,
		auditLongTermLanguage,
	}

	verdict := model.CreatorCheck{Passed: true}
	for _, run := range audits {
		result := run(texts)
		if !result.Passed {
			verdict.Passed = false
		}
		verdict.Notes = append(verdict.Notes, result.Notes...)
	}
	return verdict
}

// auditPII 个人信息泄露审计
func auditPII(texts []string) AuditResult {
	result := AuditResult{Name: "pii", Passed: true}
	for _, text := range texts {
		if ssnPattern.MatchString(text) {
			result.Passed = false
			result.Notes = append(result.Notes, "pii: SSN-like pattern found in output text")
		}
		if phonePattern.MatchString(text) {
			result.Passed = false
			result.Notes = append(result.Notes, "pii: phone-like pattern found in output text")
		}
		if emailPattern.MatchString(text) {
			result.Passed = false
			result.Notes = append(result.Notes, "pii: email address found in output text")
		}
	}
	return result
}

// makeTransparencyAudit 解释透明度审计
// 解释必须存在，且每条长度在20到400字符之间。
func makeTransparencyAudit(explanations []string) audit {
	return func([]string) AuditResult {
		result := AuditResult{Name: "transparency", Passed: true}
		if len(explanations) == 0 {
			result.Passed = false
			result.Notes = append(result.Notes, "transparency: no explanations were produced")
			return result
		}
		for i, e := range explanations {
			n := len([]rune(e))
			if n < 20 || n > 400 {
				result.Passed = false
				result.Notes = append(result.Notes, fmt.Sprintf("transparency: explanation %d length %d outside 20..400", i+1, n))
			}
		}
		return result
	}
}

// auditManipulation 操纵性语言审计
// 紧迫/恐惧/稀缺词出现次数各自超过阈值即失败。
func auditManipulation(texts []string) AuditResult {
	result := AuditResult{Name: "manipulation", Passed: true}
	joined := strings.ToLower(strings.Join(texts, " "))

	if n := countOccurrences(joined, urgencyWords); n >= urgencyThreshold {
		result.Passed = false
		result.Notes = append(result.Notes, fmt.Sprintf("manipulation: urgency language count %d exceeds threshold", n))
	}
	if n := countOccurrences(joined, fearWords); n >= fearThreshold {
		result.Passed = false
		result.Notes = append(result.Notes, fmt.Sprintf("manipulation: fear language count %d exceeds threshold", n))
	}
	if n := countOccurrences(joined, scarcityWords); n >= scarcityThreshold {
		result.Passed = false
		result.Notes = append(result.Notes, fmt.Sprintf("manipulation: scarcity language count %d exceeds threshold", n))
	}
	return result
}

// makeContactFrequencyAudit 触达频率审计
// 单次运行触发的告警过多说明规则阈值漂移或客户正被轰炸。
func makeContactFrequencyAudit(alertCount int) audit {
	return func([]string) AuditResult {
		result := AuditResult{Name: "contact_frequency", Passed: true}
		if alertCount > maxAlertsPerRun {
			result.Passed = false
			result.Notes = append(result.Notes, fmt.Sprintf("contact_frequency: %d alerts in one run exceeds %d", alertCount, maxAlertsPerRun))
		}
		return result
	}
}

// auditSensitiveTopics 敏感话题审计
func auditSensitiveTopics(texts []string) AuditResult {
	result := AuditResult{Name: "sensitive_topics", Passed: true}
	joined := strings.ToLower(strings.Join(texts, " "))
	for _, w := range sensitiveWords {
		if strings.Contains(joined, w) {
			result.Passed = false
			result.Notes = append(result.Notes, "sensitive_topics: output references restricted topic: "+w)
		}
	}
	return result
}

// auditTone 语气专业性审计
func auditTone(texts []string) AuditResult {
	result := AuditResult{Name: "tone", Passed: true}
	for _, text := range texts {
		if strings.Contains(text, "!!") {
			result.Passed = false
			result.Notes = append(result.Notes, "tone: repeated exclamation marks")
		}
		for _, word := range strings.Fields(text) {
			if isShouting(word) {
				result.Passed = false
				result.Notes = append(result.Notes, "tone: all-caps shouting: "+word)
			}
		}
		lower := strings.ToLower(text)
		for _, w := range unprofessionalWords {
			if strings.Contains(lower, w) {
				result.Passed = false
				result.Notes = append(result.Notes, "tone: unprofessional wording: "+w)
			}
		}
	}
	return result
}

// auditLongTermLanguage 长期价值语言审计
// 输出必须至少在一处体现长期视角，而不是只推动当下成交。
func auditLongTermLanguage(texts []string) AuditResult {
	result := AuditResult{Name: "long_term", Passed: true}
	joined := strings.ToLower(strings.Join(texts, " "))
	for _, w := range longTermWords {
		if strings.Contains(joined, w) {
			return result
		}
	}
	result.Passed = false
	result.Notes = append(result.Notes, "long_term: no long-term or relationship language present")
	return result
}

// countOccurrences 统计词表命中总次数
func countOccurrences(text string, words []string) int {
	count := 0
	for _, w := range words {
		count += strings.Count(text, w)
	}
	return count
}

// isShouting 全大写单词（4字母以上，排除含数字的标识符）
func isShouting(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsDigit(r) {
			return false
		}
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 4
}
