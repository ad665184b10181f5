package bizdata

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/store"
	"revenue-forecast-backend/pkg/samplegen"
)

var bizNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestGetRecordsFallsBackToSynthetic(t *testing.T) {
	p := NewProvider(nil, nil)

	raw, err := p.GetRecords("contractor", 30, bizNow)
	require.NoError(t, err)

	// 31天覆盖整个回看窗口
	assert.Len(t, raw.Revenue, 31)
	assert.Equal(t, samplegen.GenerateRecords("contractor", 31, bizNow), raw)
}

func TestGetRecordsReadsFromStore(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "bizdata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	written := samplegen.GenerateRecords("retail", 31, bizNow)
	require.NoError(t, st.SaveRecords("retail", written))

	p := NewProvider(st, nil)
	raw, err := p.GetRecords("retail", 30, bizNow)
	require.NoError(t, err)

	assert.Len(t, raw.Revenue, 31)
	assert.Equal(t, written.Revenue[0].Revenue, raw.Revenue[0].Revenue)
}

func TestGetRecordsUsesCache(t *testing.T) {
	cache := NewInMemoryCacheProvider()
	seeded := model.RawRecords{
		Revenue: []model.RevenueRecord{{Date: "2026-03-15", Revenue: 123}},
	}
	require.NoError(t, cache.Set("bizdata:education:30", seeded, time.Minute))

	p := NewProvider(nil, cache)
	raw, err := p.GetRecords("education", 30, bizNow)
	require.NoError(t, err)

	require.Len(t, raw.Revenue, 1)
	assert.Equal(t, 123.0, raw.Revenue[0].Revenue)
}

func TestInMemoryCacheExpiry(t *testing.T) {
	cache := NewInMemoryCacheProvider()
	require.NoError(t, cache.Set("k", "v", 10*time.Millisecond))

	var got string
	require.NoError(t, cache.Get("k", &got))
	assert.Equal(t, "v", got)

	time.Sleep(20 * time.Millisecond)
	assert.Error(t, cache.Get("k", &got))
}

func TestInMemoryCacheMiss(t *testing.T) {
	cache := NewInMemoryCacheProvider()
	var got string
	assert.Error(t, cache.Get("missing", &got))
}
