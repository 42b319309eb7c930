// Package history is the append-only log of generated reports. Entries are
// written once and never updated; readers always receive copies.
package history

import (
	"context"
	"time"

	"evidly-workers/internal/models"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Appender is the write path: one call per generated report.
type Appender interface {
	Append(ctx context.Context, entry models.ReportHistoryEntry) error
}

// Reader lists a location's entries newest first.
type Reader interface {
	List(ctx context.Context, locationID string, limit int) ([]models.ReportHistoryEntry, error)
	Get(ctx context.Context, id string) (*models.ReportHistoryEntry, error)
}

type Store interface {
	Appender
	Reader
}

// Searcher finds entries by free text, such as a jurisdiction or section name.
type Searcher interface {
	Search(ctx context.Context, locationID, query string, limit int) ([]models.ReportHistoryEntry, error)
}

// NewEntry describes a generated report as a history entry with a fresh id.
func NewEntry(report *models.HealthDeptReport, generatedBy string) models.ReportHistoryEntry {
	entry := models.ReportHistoryEntry{
		ID:              uuid.NewString(),
		ReportType:      models.ReportTypeHealthDept,
		LocationID:      report.Config.LocationID,
		JurisdictionKey: report.Jurisdiction.Key,
		GeneratedAt:     report.GeneratedAt.UTC().Truncate(time.Microsecond),
		GeneratedBy:     generatedBy,
		Sections:        report.Sections,
	}
	return entry.Clone()
}

// ClampLimit applies the default and the upper bound to a requested page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
