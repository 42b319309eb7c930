// internal/workers/reporting/list-report-history/models.go
package listreporthistory

import "evidly-workers/internal/models"

type Input struct {
	LocationID string `json:"locationId"`
	HistoryID  string `json:"historyId,omitempty"` // fetch one entry, ignoring query and limit
	Query      string `json:"query,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

type Output struct {
	Entries []models.ReportHistoryEntry `json:"entries"`
	Count   int                         `json:"count"`
	Source  string                      `json:"source"` // "store" or "search"
}

const (
	SourceStore  = "store"
	SourceSearch = "search"
)
