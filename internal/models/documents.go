// internal/models/documents.go
package models

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

func (s Severity) IsValid() bool {
	return s == SeverityCritical || s == SeverityWarning
}

// RequiredDocument is one entry of a jurisdiction's required document list.
type RequiredDocument struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	RequiredBy    string `json:"requiredBy"`
	LookaheadDays *int   `json:"lookaheadDays,omitempty"` // overrides the jurisdiction lookahead
}

// DocumentRecord is a compliance document on file for a location.
type DocumentRecord struct {
	LocationID string     `json:"locationId"`
	Type       string     `json:"type"`
	Name       string     `json:"name"`
	ExpiryDate *time.Time `json:"expiryDate"` // nil means it does not expire
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

type MissingDocAlert struct {
	DocumentType    string     `json:"documentType"`
	DocumentName    string     `json:"documentName"`
	Message         string     `json:"message"`
	RequiredBy      string     `json:"requiredBy"`
	Severity        Severity   `json:"severity"`
	ExpiryDate      *time.Time `json:"expiryDate"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry"`
}
