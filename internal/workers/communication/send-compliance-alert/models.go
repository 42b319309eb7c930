// internal/workers/communication/send-compliance-alert/models.go
package sendcompliancealert

import "evidly-workers/internal/models"

type Input struct {
	LocationID     string                   `json:"locationId"`
	FacilityName   string                   `json:"facilityName,omitempty"`
	RecipientEmail string                   `json:"recipientEmail,omitempty"`
	RecipientPhone string                   `json:"recipientPhone,omitempty"`
	Alerts         []models.MissingDocAlert `json:"alerts"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "failed", "disabled", "skipped"
	SentAt         string   `json:"sentAt"` // ISO 8601
	AlertCount     int      `json:"alertCount"`
	Channels       []string `json:"channels"`
}

// Statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
	StatusSkipped  = "skipped"
)

// Channels
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

const TemplateMissingDocuments = "missing_documents"
