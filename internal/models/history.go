// internal/models/history.go
package models

import "time"

const ReportTypeHealthDept = "health-dept"

// ReportHistoryEntry records one generated report. Entries are never updated after creation.
type ReportHistoryEntry struct {
	ID              string    `json:"id"`
	ReportType      string    `json:"reportType"`
	LocationID      string    `json:"locationId"`
	JurisdictionKey string    `json:"jurisdictionKey"`
	GeneratedAt     time.Time `json:"generatedAt"`
	GeneratedBy     string    `json:"generatedBy"`
	Sections        []Section `json:"sections"`
}

// Clone returns a copy that shares no slices with the receiver.
func (e ReportHistoryEntry) Clone() ReportHistoryEntry {
	out := e
	out.Sections = append([]Section(nil), e.Sections...)
	if out.Sections == nil {
		out.Sections = []Section{}
	}
	return out
}
