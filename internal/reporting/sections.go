package reporting

import (
	"sort"
	"time"

	"evidly-workers/internal/models"
)

// Snapshot is the in-memory record set for one location. Any field may be
// empty; an unknown location is simply an empty snapshot.
type Snapshot struct {
	Facility          *models.FacilityInfo
	Scores            *models.ComplianceScoreSet
	Documents         []models.DocumentRecord
	FoodSafety        []models.FoodSafetyItem
	Certifications    []models.EmployeeCertification
	FireEquipment     []models.FireEquipment
	VendorDocuments   []models.VendorDocument
	CorrectiveActions []models.CorrectiveAction
	Trend             []models.TrendPoint
	SelfAudit         []models.SelfAuditItem
}

// The builders below are independent: each reads only its own slice of the
// snapshot and returns a fresh, non-nil result.

// BuildFoodSafety keeps results completed inside the window (undated results
// are kept) and totals their deductions. Negative deductions count as zero.
func BuildFoodSafety(items []models.FoodSafetyItem, w Window) *models.FoodSafetySection {
	section := &models.FoodSafetySection{Items: []models.FoodSafetyItem{}}
	for _, item := range items {
		if item.CompletedAt != nil && !w.Contains(*item.CompletedAt) {
			continue
		}
		if item.PointDeduction < 0 {
			item.PointDeduction = 0
		}
		item.CompletedAt = copyTime(item.CompletedAt)
		section.Items = append(section.Items, item)
		section.TotalDeduction += item.PointDeduction
	}
	return section
}

func BuildEmployeeCerts(certs []models.EmployeeCertification, now time.Time, expiringSoonDays int) []models.EmployeeCertRow {
	rows := make([]models.EmployeeCertRow, 0, len(certs))
	for _, c := range certs {
		days := daysUntilPtr(now, c.ExpiryDate)
		rows = append(rows, models.EmployeeCertRow{
			Name:            c.EmployeeName,
			Role:            c.Role,
			CertType:        c.CertType,
			CertNumber:      c.CertNumber,
			ExpiryDate:      copyTime(c.ExpiryDate),
			Status:          CertStatusFor(days, expiringSoonDays),
			DaysUntilExpiry: days,
		})
	}
	return rows
}

// CertStatusFor derives a certification status from days until expiry; nil means no expiry.
func CertStatusFor(daysUntilExpiry *int, expiringSoonDays int) models.CertStatus {
	switch {
	case daysUntilExpiry == nil:
		return models.CertCurrent
	case *daysUntilExpiry < 0:
		return models.CertExpired
	case *daysUntilExpiry <= expiringSoonDays:
		return models.CertExpiringSoon
	}
	return models.CertCurrent
}

func BuildFireSafety(equipment []models.FireEquipment, now time.Time, dueSoonDays int) []models.FireSafetyRow {
	rows := make([]models.FireSafetyRow, 0, len(equipment))
	for _, e := range equipment {
		days := daysUntilPtr(now, e.NextDue)
		rows = append(rows, models.FireSafetyRow{
			Equipment:      e.Equipment,
			Location:       e.Location,
			LastInspection: copyTime(e.LastInspection),
			NextDue:        copyTime(e.NextDue),
			DaysUntilDue:   days,
			Inspector:      e.Inspector,
			Status:         FireStatusFor(days, dueSoonDays),
		})
	}
	return rows
}

// FireStatusFor treats equipment without a scheduled inspection as current.
func FireStatusFor(daysUntilDue *int, dueSoonDays int) models.FireStatus {
	switch {
	case daysUntilDue == nil:
		return models.FireCurrent
	case *daysUntilDue < 0:
		return models.FireOverdue
	case *daysUntilDue <= dueSoonDays:
		return models.FireDueSoon
	}
	return models.FireCurrent
}

func BuildVendorDocs(docs []models.VendorDocument, now time.Time, expiringDays int) []models.VendorDocRow {
	rows := make([]models.VendorDocRow, 0, len(docs))
	for _, d := range docs {
		row := models.VendorDocRow{Vendor: d.Vendor, DocType: d.DocType}
		if !d.OnFile {
			row.Status = models.VendorDocMissing
			rows = append(rows, row)
			continue
		}
		row.ExpiryDate = copyTime(d.ExpiryDate)
		row.DaysUntilExpiry = daysUntilPtr(now, d.ExpiryDate)
		row.Status = VendorDocStatusFor(row.DaysUntilExpiry, expiringDays)
		rows = append(rows, row)
	}
	return rows
}

// VendorDocStatusFor derives the status of a document that is on file.
func VendorDocStatusFor(daysUntilExpiry *int, expiringDays int) models.VendorDocStatus {
	switch {
	case daysUntilExpiry == nil:
		return models.VendorDocCurrent
	case *daysUntilExpiry < 0:
		return models.VendorDocExpired
	case *daysUntilExpiry <= expiringDays:
		return models.VendorDocExpiring
	}
	return models.VendorDocCurrent
}

// BuildCorrectiveActions keeps actions identified inside the window plus any
// still unresolved. Priority and status are passed through unchanged.
func BuildCorrectiveActions(actions []models.CorrectiveAction, w Window) []models.CorrectiveAction {
	out := make([]models.CorrectiveAction, 0, len(actions))
	for _, a := range actions {
		if a.Status == models.ActionResolved && !w.Contains(a.DateIdentified) {
			continue
		}
		a.DueDate = copyTime(a.DueDate)
		out = append(out, a)
	}
	return out
}

// BuildTrend returns the last periods points starting at or before the window
// end, oldest first.
func BuildTrend(points []models.TrendPoint, w Window, periods int) []models.TrendPoint {
	out := make([]models.TrendPoint, 0, len(points))
	for _, p := range points {
		if p.PeriodStart.After(w.End) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })

	if periods > 0 && len(out) > periods {
		out = out[len(out)-periods:]
	}
	return out
}

func daysUntilPtr(now time.Time, t *time.Time) *int {
	if t == nil {
		return nil
	}
	d := DaysUntil(now, *t)
	return &d
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
