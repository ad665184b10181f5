package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.InDelta(t, 3.0, Mean([]float64{1, 2, 3, 4, 5}), 1e-9)
	assert.Equal(t, 0.0, StdDev([]float64{42}))
	assert.InDelta(t, math.Sqrt(2), StdDev([]float64{1, 2, 3, 4, 5}), 1e-9)
}

func TestEWMAConstantSeries(t *testing.T) {
	data := []float64{100, 100, 100, 100}
	out := EWMA(data, 0.3)

	assert.Len(t, out, len(data))
	for _, v := range out {
		assert.InDelta(t, 100, v, 1e-9)
	}
}

func TestEWMAFirstValueAnchors(t *testing.T) {
	out := EWMA([]float64{50, 100}, 0.5)
	assert.InDelta(t, 50, out[0], 1e-9)
	assert.InDelta(t, 75, out[1], 1e-9)
}

func TestDetectSeasonalityFlatSeries(t *testing.T) {
	data := make([]float64, 28)
	for i := range data {
		data[i] = 1000
	}
	assert.False(t, DetectSeasonality(data, 7))
}

func TestDetectSeasonalityWeeklyPattern(t *testing.T) {
	data := make([]float64, 28)
	for i := range data {
		data[i] = 1000 + 200*math.Sin(2*math.Pi*float64(i)/7)
	}
	assert.True(t, DetectSeasonality(data, 7))
}

func TestDetectSeasonalityNeedsTwoPeriods(t *testing.T) {
	data := make([]float64, 13)
	for i := range data {
		data[i] = 1000 + 200*math.Sin(2*math.Pi*float64(i)/7)
	}
	assert.False(t, DetectSeasonality(data, 7))
}

func TestDetectTrend(t *testing.T) {
	flat := []float64{100, 100, 100, 100, 100, 100}
	assert.False(t, DetectTrend(flat))

	rising := []float64{100, 100, 100, 130, 130, 130}
	assert.True(t, DetectTrend(rising))
}

func TestAutocorrelationBounds(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1, 2, 3, 4, 5, 4, 3, 2}
	ac := Autocorrelation(data, 8)
	assert.LessOrEqual(t, ac, 1.0)
	assert.GreaterOrEqual(t, ac, -1.0)

	assert.Equal(t, 0.0, Autocorrelation(data, 0))
	assert.Equal(t, 0.0, Autocorrelation([]float64{1, 2}, 7))
}
