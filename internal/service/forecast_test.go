package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-forecast-backend/internal/bizdata"
	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/model"
)

func newTestService() *ForecastService {
	return NewForecastService(
		bizdata.NewProvider(nil, nil),
		bizdata.NewInMemoryCacheProvider(),
		config.DefaultPipeline(),
		nil,
	)
}

func TestForecastSingleUnknownPersonaKeepsSentinel(t *testing.T) {
	svc := newTestService()
	_, err := svc.ForecastSingle("wholesale", nil)
	assert.ErrorIs(t, err, model.ErrUnknownPersona)
}

func TestForecastPersonasPropagatesSentinel(t *testing.T) {
	svc := newTestService()

	// 全部失败时返回的包装错误必须保留哨兵，上层才能映射状态码
	_, err := svc.ForecastPersonas([]string{"wholesale"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownPersona)
}

func TestForecastPersonasPartialFailureReturnsResults(t *testing.T) {
	svc := newTestService()

	results, err := svc.ForecastPersonas([]string{"contractor", "wholesale"}, []int{14})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "contractor", results[0].Persona)
}
