package feature

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-forecast-backend/internal/model"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestBuildEmptyRecordsUsesDefaults(t *testing.T) {
	fs := Build(model.RawRecords{}, 90, 0.3, testNow)

	require.Equal(t, 91, fs.Len())
	assert.Equal(t, "2025-12-15", fs.Dates[0])
	assert.Equal(t, "2026-03-15", fs.Dates[90])

	for i := 0; i < fs.Len(); i++ {
		assert.Equal(t, DefaultSLAMet, fs.SLAMet[i])
		assert.Equal(t, DefaultOnTime, fs.OnTime[i])
		assert.Equal(t, DefaultGrossMargin, fs.GrossMargin[i])
		assert.Equal(t, 0.0, fs.Revenue[i])
		// 真冷启动：平滑序列回填固定默认营收
		assert.Equal(t, DefaultRevenue, fs.RevenueSmoothed[i])
	}
}

func TestBuildKeepsObservedValues(t *testing.T) {
	raw := model.RawRecords{
		Revenue: []model.RevenueRecord{
			{Date: "2026-03-14", Revenue: 8000, Refunds: 120, GrossMargin: 0.35},
			{Date: "2026-03-15", Revenue: 9000, Refunds: 80, GrossMargin: 0.37},
		},
	}
	fs := Build(raw, 90, 0.3, testNow)

	require.Equal(t, 91, fs.Len())
	assert.Equal(t, 8000.0, fs.Revenue[89])
	assert.Equal(t, 9000.0, fs.Revenue[90])
	assert.Equal(t, 0.35, fs.GrossMargin[89])
	// 无记录的日子还是域默认毛利
	assert.Equal(t, DefaultGrossMargin, fs.GrossMargin[0])
}

func TestBuildCarriesCountsForward(t *testing.T) {
	raw := model.RawRecords{
		Leads: []model.LeadRecord{
			{Date: "2025-12-15", NewLeads: 6, ConvertedLeads: 2},
		},
	}
	fs := Build(raw, 90, 0.3, testNow)

	// 计数类缺失沿用前值，不落回零
	for i := 0; i < fs.Len(); i++ {
		assert.Equal(t, 6.0, fs.NewLeads[i])
		assert.Equal(t, 2.0, fs.ConvertedLeads[i])
	}
}

func TestBuildColdStartFillsNonZeroMean(t *testing.T) {
	// 平滑序列非全零时不触发冷启动回填
	raw := model.RawRecords{
		Revenue: []model.RevenueRecord{{Date: "2026-03-15", Revenue: 4000}},
	}
	fs := Build(raw, 90, 0.3, testNow)
	assert.NotEqual(t, DefaultRevenue, fs.RevenueSmoothed[0])
}

func TestBuildNormalizesMixes(t *testing.T) {
	raw := model.RawRecords{
		Customers: []model.CustomerRecord{
			{Date: "2026-03-14", ActiveCustomers: 10, PersonaMix: map[string]float64{"contractor": 3, "retail": 1}},
			{Date: "2026-03-15", ActiveCustomers: 12, PersonaMix: map[string]float64{"contractor": 1, "retail": 1}},
		},
		Ops: []model.OpsRecord{
			{Date: "2026-03-15", SLAMet: 0.95, OnTime: 0.92, FreightMix: map[string]float64{"ltl": 2, "parcel": 2}},
		},
	}
	fs := Build(raw, 90, 0.3, testNow)

	var personaTotal float64
	for _, v := range fs.PersonaMix {
		personaTotal += v
	}
	assert.InDelta(t, 1.0, personaTotal, 1e-9)

	assert.InDelta(t, 0.5, fs.FreightMix["ltl"], 1e-9)
	assert.InDelta(t, 0.5, fs.FreightMix["parcel"], 1e-9)
}

func TestBuildDefaultLookback(t *testing.T) {
	fs := Build(model.RawRecords{}, 0, 0.3, testNow)
	assert.Equal(t, 91, fs.Len())
}
