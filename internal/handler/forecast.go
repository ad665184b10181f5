package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/score"
	"revenue-forecast-backend/internal/service"
)

// ForecastHandler 预测相关接口
type ForecastHandler struct {
	svc *service.ForecastService
}

func NewForecastHandler(svc *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{svc: svc}
}

// Forecast 批量生成画像预测
func (h *ForecastHandler) Forecast(c *gin.Context) {
	var req model.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请求参数错误: " + err.Error(),
		})
		return
	}

	if len(req.Personas) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "请选择至少一个客户画像",
		})
		return
	}

	results, err := h.svc.ForecastPersonas(req.Personas, req.Horizons)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrUnknownPersona) {
			status = http.StatusNotFound
		} else if errors.Is(err, model.ErrInsufficientData) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.ForecastResponse{
		Results: results,
	})
}

// Personas 支持的客户画像列表
func (h *ForecastHandler) Personas(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"personas": score.Personas(),
	})
}

// AlertsPreview 预览单个画像当前会触发的告警（不投递）
func (h *ForecastHandler) AlertsPreview(c *gin.Context) {
	persona := c.Query("persona")
	if persona == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少persona参数"})
		return
	}

	out, err := h.svc.ForecastSingle(persona, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrUnknownPersona) {
			status = http.StatusNotFound
		} else if errors.Is(err, model.ErrInsufficientData) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"persona":       out.Persona,
		"alerts":        out.Alerts,
		"creator_check": out.CreatorCheck,
	})
}

// Health 健康检查
func (h *ForecastHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
