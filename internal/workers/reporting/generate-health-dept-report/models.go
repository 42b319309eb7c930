// internal/workers/reporting/generate-health-dept-report/models.go
package generatehealthdeptreport

import "evidly-workers/internal/models"

type Input struct {
	models.ReportConfig
	DemoMode    *bool  `json:"demoMode,omitempty"`
	GeneratedBy string `json:"generatedBy,omitempty"`
}

type Output struct {
	Report    *models.HealthDeptReport `json:"report"`
	HistoryID string                   `json:"historyId"`
}
