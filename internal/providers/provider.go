// Package providers supplies the per-location records a report is built from.
// The demo variant serves static fixtures; the live variant reads Postgres.
package providers

import (
	"context"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"
	"evidly-workers/internal/reporting"
)

// DataProvider looks up report inputs by location. An unknown location is not
// an error: single-record lookups return nil and list lookups return empty.
type DataProvider interface {
	Facility(ctx context.Context, locationID string) (*models.FacilityInfo, error)
	Scores(ctx context.Context, locationID string) (*models.ComplianceScoreSet, error)
	Documents(ctx context.Context, locationID string) ([]models.DocumentRecord, error)
	FoodSafety(ctx context.Context, locationID string, w reporting.Window) ([]models.FoodSafetyItem, error)
	Certifications(ctx context.Context, locationID string) ([]models.EmployeeCertification, error)
	FireEquipment(ctx context.Context, locationID string) ([]models.FireEquipment, error)
	VendorDocuments(ctx context.Context, locationID string) ([]models.VendorDocument, error)
	CorrectiveActions(ctx context.Context, locationID string, w reporting.Window) ([]models.CorrectiveAction, error)
	Trend(ctx context.Context, locationID string, end time.Time, periods int) ([]models.TrendPoint, error)
	SelfAudit(ctx context.Context, locationID string) ([]models.SelfAuditItem, error)
}

// Selector picks the provider variant for a request.
type Selector struct {
	Demo DataProvider
	Live DataProvider
}

func (s Selector) For(demoMode bool) (DataProvider, error) {
	if demoMode {
		if s.Demo == nil {
			return nil, errors.NewInvalidConfigurationError("demo data provider is not configured")
		}
		return s.Demo, nil
	}
	if s.Live == nil {
		return nil, errors.NewInvalidConfigurationError("live data provider is not configured; enable reporting.demo_mode or configure postgres")
	}
	return s.Live, nil
}

// LoadSnapshot fetches only the records the given sections need.
func LoadSnapshot(ctx context.Context, p DataProvider, locationID string, w reporting.Window, trendPeriods int, sections []models.Section) (*reporting.Snapshot, error) {
	snap := &reporting.Snapshot{}

	for _, s := range sections {
		var (
			lookup string
			err    error
		)
		switch s {
		case models.SectionFacilityInfo:
			lookup = "facility"
			snap.Facility, err = p.Facility(ctx, locationID)
		case models.SectionComplianceScore:
			lookup = "scores"
			snap.Scores, err = p.Scores(ctx, locationID)
		case models.SectionFoodSafety:
			lookup = "foodSafety"
			snap.FoodSafety, err = p.FoodSafety(ctx, locationID, w)
		case models.SectionEmployeeCerts:
			lookup = "certifications"
			snap.Certifications, err = p.Certifications(ctx, locationID)
		case models.SectionFireSafety:
			lookup = "fireEquipment"
			snap.FireEquipment, err = p.FireEquipment(ctx, locationID)
		case models.SectionVendorDocs:
			lookup = "vendorDocuments"
			snap.VendorDocuments, err = p.VendorDocuments(ctx, locationID)
		case models.SectionCorrectiveActions:
			lookup = "correctiveActions"
			snap.CorrectiveActions, err = p.CorrectiveActions(ctx, locationID, w)
		case models.SectionTrendData:
			lookup = "trend"
			snap.Trend, err = p.Trend(ctx, locationID, w.End, trendPeriods)
		case models.SectionSelfAudit:
			lookup = "selfAudit"
			snap.SelfAudit, err = p.SelfAudit(ctx, locationID)
		case models.SectionMissingDocs:
			lookup = "documents"
			snap.Documents, err = p.Documents(ctx, locationID)
		}
		if err != nil {
			return nil, errors.NewDataProviderFailedError(lookup, err).
				WithMetadata("locationId", locationID)
		}
	}

	return snap, nil
}
