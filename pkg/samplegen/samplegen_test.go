package samplegen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var genNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestGenerateRecordsShape(t *testing.T) {
	raw := GenerateRecords("contractor", 30, genNow)

	require.Len(t, raw.Revenue, 30)
	require.Len(t, raw.Leads, 30)
	require.Len(t, raw.Customers, 30)
	require.Len(t, raw.Ops, 30)
	require.Len(t, raw.Engagement, 30)

	assert.Equal(t, "2026-02-14", raw.Revenue[0].Date)
	assert.Equal(t, "2026-03-15", raw.Revenue[29].Date)
	for _, r := range raw.Revenue {
		assert.Greater(t, r.Revenue, 0.0)
		assert.GreaterOrEqual(t, r.GrossMargin, 0.0)
		assert.LessOrEqual(t, r.GrossMargin, 1.0)
	}
	for _, o := range raw.Ops {
		assert.GreaterOrEqual(t, o.SLAMet, 0.0)
		assert.LessOrEqual(t, o.SLAMet, 1.0)
	}
}

func TestGenerateRecordsIsDeterministic(t *testing.T) {
	first := GenerateRecords("healthcare", 60, genNow)
	second := GenerateRecords("healthcare", 60, genNow)
	assert.Equal(t, first, second)
}

func TestGenerateRecordsDiffersByPersona(t *testing.T) {
	contractor := GenerateRecords("contractor", 14, genNow)
	education := GenerateRecords("education", 14, genNow)
	assert.NotEqual(t, contractor.Revenue, education.Revenue)
	assert.Equal(t, map[string]float64{"contractor": 1.0}, contractor.Customers[0].PersonaMix)
}

func TestGenerateRecordsUnknownPersonaFallsBack(t *testing.T) {
	raw := GenerateRecords("wholesale", 7, genNow)
	require.Len(t, raw.Revenue, 7)
	assert.Equal(t, profiles["retail"].FreightMix, raw.Ops[0].FreightMix)
}

func TestWeekdayShape(t *testing.T) {
	assert.Equal(t, -1.0, weekdayShape(0))
	assert.Equal(t, -0.7, weekdayShape(6))
	assert.Equal(t, 0.8, weekdayShape(2))
	assert.Equal(t, 0.4, weekdayShape(1))
}

func TestParseHHMM(t *testing.T) {
	h, m, err := parseHHMM("06:30")
	require.NoError(t, err)
	assert.Equal(t, 6, h)
	assert.Equal(t, 30, m)

	for _, bad := range []string{"", "6", "25:00", "06:61", "ab:cd"} {
		_, _, err := parseHHMM(bad)
		assert.Error(t, err, "应拒绝 %q", bad)
	}
}

func TestPersonaSeedStable(t *testing.T) {
	assert.Equal(t, personaSeed("retail"), personaSeed("retail"))
	assert.NotEqual(t, personaSeed("retail"), personaSeed("logistics"))
	assert.GreaterOrEqual(t, personaSeed("retail"), int64(0))
}
