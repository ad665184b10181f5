package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revenue-forecast-backend/internal/model"
	"revenue-forecast-backend/internal/service"
)

// CreateForecastTask 创建异步预测任务
func (h *ForecastHandler) CreateForecastTask(c *gin.Context) {
	var req model.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求参数错误: " + err.Error()})
		return
	}

	requestID := c.GetHeader("X-Request-ID")
	status, created, err := h.svc.CreateForecastTask(req.Personas, req.Horizons, requestID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusAccepted
	}
	c.JSON(code, status)
}

// GetForecastTask 查询任务状态
func (h *ForecastHandler) GetForecastTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少task_id"})
		return
	}

	status, ok := service.GetForecastTaskStatus(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或已过期"})
		return
	}

	c.JSON(http.StatusOK, status)
}

// CancelForecastTask 取消任务
func (h *ForecastHandler) CancelForecastTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少task_id"})
		return
	}

	status, ok := service.CancelForecastTask(taskID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "任务不存在或已过期"})
		return
	}

	c.JSON(http.StatusOK, status)
}
