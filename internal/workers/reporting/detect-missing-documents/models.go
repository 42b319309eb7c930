// internal/workers/reporting/detect-missing-documents/models.go
package detectmissingdocuments

import (
	"time"

	"evidly-workers/internal/models"
)

type Input struct {
	LocationID      string `json:"locationId"`
	JurisdictionKey string `json:"countyTemplate"`
	DemoMode        *bool  `json:"demoMode,omitempty"`
}

type Output struct {
	Alerts        []models.MissingDocAlert `json:"alerts"`
	CriticalCount int                      `json:"criticalCount"`
	WarningCount  int                      `json:"warningCount"`
	CheckedAt     time.Time                `json:"checkedAt"`
}
