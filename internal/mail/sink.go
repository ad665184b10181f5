package mail

import "revenue-forecast-backend/internal/model"

// EmailSink 通过SMTP邮件投递告警
type EmailSink struct{}

func NewEmailSink() *EmailSink {
	return &EmailSink{}
}

func (s *EmailSink) Deliver(candidate model.AlertCandidate) model.DeliveryResult {
	if err := SendAlertNotification(candidate.Persona, candidate.Severity, candidate.Message); err != nil {
		return model.DeliveryResult{Success: false, Error: err.Error()}
	}
	return model.DeliveryResult{Success: true}
}
