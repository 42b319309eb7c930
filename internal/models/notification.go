// internal/models/notification.go
package models

type Notification struct {
	ID         string            `json:"id"`
	LocationID string            `json:"locationId"`
	Channel    string            `json:"channel"` // "email", "sms"
	Status     string            `json:"status"`  // "sent", "failed", "disabled", "skipped"
	Alerts     []MissingDocAlert `json:"alerts"`
	SentAt     string            `json:"sentAt"`
}

type NotificationTemplate struct {
	Type    string `json:"type"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SMSBody string `json:"smsBody,omitempty"`
}
