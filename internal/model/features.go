package model

import "time"

// RevenueRecord 每日营收记录
type RevenueRecord struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	Refunds     float64 `json:"refunds"`
	GrossMargin float64 `json:"gross_margin"` // 毛利率 0-1
}

// LeadRecord 每日线索记录
type LeadRecord struct {
	Date           string  `json:"date"`
	NewLeads       float64 `json:"new_leads"`
	ConvertedLeads float64 `json:"converted_leads"`
}

// CustomerRecord 每日客户结构记录
type CustomerRecord struct {
	Date            string             `json:"date"`
	ActiveCustomers float64            `json:"active_customers"`
	PersonaMix      map[string]float64 `json:"persona_mix"`  // 客户画像占比
	CategoryMix     map[string]float64 `json:"category_mix"` // 品类占比
}

// OpsRecord 每日运营记录
type OpsRecord struct {
	Date       string             `json:"date"`
	SLAMet     float64            `json:"sla_met"` // SLA达成率 0-1
	OnTime     float64            `json:"on_time"` // 准时率 0-1
	FreightMix map[string]float64 `json:"freight_mix"`
}

// EngagementRecord 每日互动记录
type EngagementRecord struct {
	Date          string  `json:"date"`
	Sessions      float64 `json:"sessions"`
	EmailOpens    float64 `json:"email_opens"`
	QuoteRequests float64 `json:"quote_requests"`
}

// RawRecords 五个业务域的原始每日记录
type RawRecords struct {
	Revenue    []RevenueRecord    `json:"revenue"`
	Leads      []LeadRecord       `json:"leads"`
	Customers  []CustomerRecord   `json:"customers"`
	Ops        []OpsRecord        `json:"ops"`
	Engagement []EngagementRecord `json:"engagement"`
}

// FeatureSet 特征集合
// 所有时间序列等长且按日期升序对齐，缺失日期已用默认值填充。
// 构建完成后不再修改。
type FeatureSet struct {
	Dates []string `json:"dates"`

	Revenue         []float64 `json:"revenue"`
	RevenueSmoothed []float64 `json:"revenue_smoothed"`
	Refunds         []float64 `json:"refunds"`
	GrossMargin     []float64 `json:"gross_margin"`
	NewLeads        []float64 `json:"new_leads"`
	ConvertedLeads  []float64 `json:"converted_leads"`
	ActiveCustomers []float64 `json:"active_customers"`
	SLAMet          []float64 `json:"sla_met"`
	OnTime          []float64 `json:"on_time"`
	Sessions        []float64 `json:"sessions"`
	EmailOpens      []float64 `json:"email_opens"`
	QuoteRequests   []float64 `json:"quote_requests"`

	PersonaMix  map[string]float64 `json:"persona_mix"`
	CategoryMix map[string]float64 `json:"category_mix"`
	FreightMix  map[string]float64 `json:"freight_mix"`

	GeneratedAt time.Time `json:"generated_at"`
}

// Len 序列长度
func (f *FeatureSet) Len() int {
	return len(f.Dates)
}
