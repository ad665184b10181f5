package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"revenue-forecast-backend/internal/model"
)

var alertWebhookURL string

func init() {
	alertWebhookURL = os.Getenv("ALERT_WEBHOOK_URL")
}

// PostAlertWebhook 将告警候选以JSON形式推送到运营Webhook
func PostAlertWebhook(candidate model.AlertCandidate) error {
	if alertWebhookURL == "" {
		return fmt.Errorf("未配置 ALERT_WEBHOOK_URL")
	}

	payload, err := json.Marshal(candidate)
	if err != nil {
		return err
	}

	resp, err := HTTPClient.Post(alertWebhookURL, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("请求Webhook失败: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %v", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("Webhook返回 %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// WebhookSink 通过Webhook投递告警
type WebhookSink struct{}

func NewWebhookSink() *WebhookSink {
	return &WebhookSink{}
}

func (s *WebhookSink) Deliver(candidate model.AlertCandidate) model.DeliveryResult {
	if err := PostAlertWebhook(candidate); err != nil {
		return model.DeliveryResult{Success: false, Error: err.Error()}
	}
	return model.DeliveryResult{Success: true}
}
