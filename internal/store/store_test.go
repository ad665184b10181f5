package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-forecast-backend/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "bizdata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// fixtureRecords 构造一段以 now 结尾的连续每日记录
func fixtureRecords(persona string, days int, now time.Time) model.RawRecords {
	var raw model.RawRecords
	for i := days - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		revenue := 1000.0 + float64(i)*10
		raw.Revenue = append(raw.Revenue, model.RevenueRecord{Date: date, Revenue: revenue, Refunds: revenue * 0.02, GrossMargin: 0.4})
		raw.Leads = append(raw.Leads, model.LeadRecord{Date: date, NewLeads: 5, ConvertedLeads: 2})
		raw.Customers = append(raw.Customers, model.CustomerRecord{
			Date:            date,
			ActiveCustomers: 40,
			PersonaMix:      map[string]float64{persona: 1.0},
			CategoryMix:     map[string]float64{"supplies": 0.6, "equipment": 0.4},
		})
		raw.Ops = append(raw.Ops, model.OpsRecord{
			Date: date, SLAMet: 0.96, OnTime: 0.93,
			FreightMix: map[string]float64{"parcel": 0.7, "ltl": 0.3},
		})
		raw.Engagement = append(raw.Engagement, model.EngagementRecord{
			Date: date, Sessions: float64(10 + i%3), EmailOpens: 6, QuoteRequests: 2,
		})
	}
	return raw
}

func TestSaveAndLoadRecords(t *testing.T) {
	st := openTestStore(t)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	raw := fixtureRecords("contractor", 10, now)

	require.NoError(t, st.SaveRecords("contractor", raw))

	loaded, err := st.LoadRecords("contractor", "2026-03-06", "2026-03-15")
	require.NoError(t, err)

	assert.Len(t, loaded.Revenue, 10)
	assert.Len(t, loaded.Leads, 10)
	assert.Len(t, loaded.Customers, 10)
	assert.Len(t, loaded.Ops, 10)
	assert.Len(t, loaded.Engagement, 10)

	// 日期升序且与写入内容一致
	for i := 1; i < len(loaded.Revenue); i++ {
		assert.Less(t, loaded.Revenue[i-1].Date, loaded.Revenue[i].Date)
	}
	assert.Equal(t, raw.Revenue[0].Revenue, loaded.Revenue[0].Revenue)
	assert.Equal(t, raw.Ops[3].FreightMix, loaded.Ops[3].FreightMix)
	assert.Equal(t, raw.Customers[5].PersonaMix, loaded.Customers[5].PersonaMix)
}

func TestLoadRecordsHonorsRange(t *testing.T) {
	st := openTestStore(t)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveRecords("contractor", fixtureRecords("contractor", 10, now)))

	loaded, err := st.LoadRecords("contractor", "2026-03-10", "2026-03-12")
	require.NoError(t, err)

	require.Len(t, loaded.Revenue, 3)
	assert.Equal(t, "2026-03-10", loaded.Revenue[0].Date)
	assert.Equal(t, "2026-03-12", loaded.Revenue[2].Date)
}

func TestSaveRecordsIsUpsert(t *testing.T) {
	st := openTestStore(t)
	date := "2026-03-10"

	first := model.RawRecords{Revenue: []model.RevenueRecord{{Date: date, Revenue: 100, GrossMargin: 0.3}}}
	second := model.RawRecords{Revenue: []model.RevenueRecord{{Date: date, Revenue: 250, GrossMargin: 0.4}}}
	require.NoError(t, st.SaveRecords("retail", first))
	require.NoError(t, st.SaveRecords("retail", second))

	loaded, err := st.LoadRecords("retail", date, date)
	require.NoError(t, err)
	require.Len(t, loaded.Revenue, 1)
	assert.Equal(t, 250.0, loaded.Revenue[0].Revenue)
}

func TestLoadRecordsIsolatesPersonas(t *testing.T) {
	st := openTestStore(t)
	date := "2026-03-10"
	require.NoError(t, st.SaveRecords("retail", model.RawRecords{
		Revenue: []model.RevenueRecord{{Date: date, Revenue: 100}},
	}))

	loaded, err := st.LoadRecords("education", date, date)
	require.NoError(t, err)
	assert.Empty(t, loaded.Revenue)
}

func TestCountDays(t *testing.T) {
	st := openTestStore(t)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveRecords("logistics", fixtureRecords("logistics", 7, now)))

	n, err := st.CountDays("logistics")
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = st.CountDays("retail")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSaveRecordsManyDays(t *testing.T) {
	st := openTestStore(t)
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	require.NoError(t, st.SaveRecords("education", fixtureRecords("education", 91, now)))

	since := now.AddDate(0, 0, -90).Format("2006-01-02")
	loaded, err := st.LoadRecords("education", since, now.Format("2006-01-02"))
	require.NoError(t, err)
	assert.Len(t, loaded.Revenue, 91)

	for i, r := range loaded.Revenue {
		assert.Equal(t, now.AddDate(0, 0, i-90).Format("2006-01-02"), r.Date)
	}
}
