package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"revenue-forecast-backend/internal/model"
)

var hubspotServiceURL string

func init() {
	hubspotServiceURL = os.Getenv("HUBSPOT_SERVICE_URL")
	if hubspotServiceURL == "" {
		hubspotServiceURL = "http://localhost:5100"
	}
}

// HTTPClient HTTP客户端
var HTTPClient = &http.Client{
	Timeout: 60 * time.Second,
}

// hubspotTask HubSpot任务载荷
type hubspotTask struct {
	Persona   string `json:"persona"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	Priority  string `json:"priority"`
	DueAt     string `json:"due_at"`
	SourceApp string `json:"source_app"`
}

// CreateHubspotTask 在HubSpot侧为客户经理创建跟进任务
func CreateHubspotTask(persona, severity, message string, triggeredAt time.Time) error {
	task := hubspotTask{
		Persona:   persona,
		Subject:   fmt.Sprintf("Account follow-up: %s (%s)", persona, severity),
		Body:      message,
		Priority:  severity,
		DueAt:     triggeredAt.AddDate(0, 0, 2).Format("2006-01-02"),
		SourceApp: "revenue-forecast",
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}

	reqURL := fmt.Sprintf("%s/api/tasks", hubspotServiceURL)
	resp, err := HTTPClient.Post(reqURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("请求HubSpot桥接服务失败: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("HubSpot桥接服务返回 %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("解析响应失败: %v", err)
	}
	return nil
}

// HubspotSink 通过HubSpot任务投递告警
type HubspotSink struct{}

func NewHubspotSink() *HubspotSink {
	return &HubspotSink{}
}

func (s *HubspotSink) Deliver(candidate model.AlertCandidate) model.DeliveryResult {
	if err := CreateHubspotTask(candidate.Persona, candidate.Severity, candidate.Message, candidate.TriggeredAt); err != nil {
		return model.DeliveryResult{Success: false, Error: err.Error()}
	}
	return model.DeliveryResult{Success: true}
}
