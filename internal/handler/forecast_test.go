package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revenue-forecast-backend/internal/bizdata"
	"revenue-forecast-backend/internal/config"
	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/service"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	// 无存储时服务自动回退到合成样本数据
	svc := service.NewForecastService(
		bizdata.NewProvider(nil, nil),
		bizdata.NewInMemoryCacheProvider(),
		config.DefaultPipeline(),
		nil,
	)
	h := NewForecastHandler(svc)

	r := gin.New()
	r.POST("/api/forecast", h.Forecast)
	r.GET("/api/personas", h.Personas)
	r.GET("/api/alerts/preview", h.AlertsPreview)
	r.GET("/api/health", h.Health)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestForecastEndpoint(t *testing.T) {
	r := newTestRouter()
	w := doRequest(t, r, http.MethodPost, "/api/forecast", `{"personas":["contractor","retail"],"horizons":[14]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp model.ForecastResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 2)
	for _, out := range resp.Results {
		assert.Contains(t, []string{"contractor", "retail"}, out.Persona)
		assert.Len(t, out.RevenueForecast, 14)
	}
}

func TestForecastEndpointRejectsEmptyPersonas(t *testing.T) {
	r := newTestRouter()
	w := doRequest(t, r, http.MethodPost, "/api/forecast", `{"personas":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecastEndpointUnknownPersona(t *testing.T) {
	r := newTestRouter()
	w := doRequest(t, r, http.MethodPost, "/api/forecast", `{"personas":["wholesale"]}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestForecastEndpointMalformedBody(t *testing.T) {
	r := newTestRouter()
	w := doRequest(t, r, http.MethodPost, "/api/forecast", `{"personas":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPersonasEndpoint(t *testing.T) {
	r := newTestRouter()
	w := doRequest(t, r, http.MethodGet, "/api/personas", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Personas []string `json:"personas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Personas, "contractor")
	assert.Len(t, resp.Personas, 5)
}

func TestAlertsPreviewEndpoint(t *testing.T) {
	r := newTestRouter()

	w := doRequest(t, r, http.MethodGet, "/api/alerts/preview", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(t, r, http.MethodGet, "/api/alerts/preview?persona=logistics", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Persona      string                 `json:"persona"`
		Alerts       []model.AlertCandidate `json:"alerts"`
		CreatorCheck model.CreatorCheck     `json:"creator_check"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "logistics", resp.Persona)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter()
	w := doRequest(t, r, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}
