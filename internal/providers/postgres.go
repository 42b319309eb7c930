package providers

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sort"
	"time"

	"evidly-workers/internal/models"
	"evidly-workers/internal/reporting"
)

const (
	queryFacility = `
		SELECT location_id, name, address, permit_number, owner_operator, phone,
		       county, last_inspection, next_inspection, seat_capacity
		FROM facilities
		WHERE location_id = $1`

	queryScores = `
		SELECT location_id, overall, food_safety, fire_safety, vendor_compliance,
		       trend_30, trend_60, trend_90, county_grade
		FROM compliance_scores
		WHERE location_id = $1`

	queryDocuments = `
		SELECT location_id, doc_type, name, expiry_date, uploaded_at
		FROM location_documents
		WHERE location_id = $1
		ORDER BY doc_type, uploaded_at`

	queryFoodSafety = `
		SELECT category, item, status, details, point_deduction, completed_at
		FROM food_safety_results
		WHERE location_id = $1
		  AND (completed_at IS NULL OR completed_at BETWEEN $2 AND $3)
		ORDER BY category, item`

	queryCertifications = `
		SELECT employee_name, role, cert_type, cert_number, expiry_date
		FROM employee_certifications
		WHERE location_id = $1
		ORDER BY employee_name`

	queryFireEquipment = `
		SELECT equipment, location, last_inspection, next_due, inspector
		FROM fire_equipment
		WHERE location_id = $1
		ORDER BY equipment, location`

	queryVendorDocuments = `
		SELECT vendor, doc_type, on_file, expiry_date
		FROM vendor_documents
		WHERE location_id = $1
		ORDER BY vendor, doc_type`

	queryCorrectiveActions = `
		SELECT id, priority, status, issue, action, assignee, date_identified, due_date
		FROM corrective_actions
		WHERE location_id = $1
		  AND (status <> 'resolved' OR date_identified BETWEEN $2 AND $3)
		ORDER BY date_identified DESC`

	queryTrend = `
		SELECT period, period_start, overall_score, temp_compliance, checklist_completion
		FROM compliance_trend
		WHERE location_id = $1 AND period_start <= $2
		ORDER BY period_start DESC
		LIMIT $3`

	querySelfAudit = `
		SELECT section, item, requirement, status, points
		FROM self_audit_items
		WHERE location_id = $1
		ORDER BY position`
)

// PostgresProvider reads live location records.
type PostgresProvider struct {
	db *sql.DB
}

func NewPostgresProvider(db *sql.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Facility(ctx context.Context, locationID string) (*models.FacilityInfo, error) {
	var (
		f                    models.FacilityInfo
		address, permit      sql.NullString
		owner, phone, county sql.NullString
		lastInsp, nextInsp   sql.NullTime
		seats                sql.NullInt64
	)
	err := p.db.QueryRowContext(ctx, queryFacility, locationID).Scan(
		&f.LocationID, &f.Name, &address, &permit, &owner, &phone,
		&county, &lastInsp, &nextInsp, &seats,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query facility: %w", err)
	}

	f.Address = address.String
	f.PermitNumber = permit.String
	f.OwnerOperator = owner.String
	f.Phone = phone.String
	f.County = county.String
	f.LastInspection = timePtr(lastInsp)
	f.NextInspection = timePtr(nextInsp)
	f.SeatCapacity = int(seats.Int64)
	return &f, nil
}

func (p *PostgresProvider) Scores(ctx context.Context, locationID string) (*models.ComplianceScoreSet, error) {
	var (
		s             models.ComplianceScoreSet
		t30, t60, t90 sql.NullFloat64
		countyGrade   sql.NullString
	)
	err := p.db.QueryRowContext(ctx, queryScores, locationID).Scan(
		&s.LocationID, &s.Overall, &s.FoodSafety, &s.FireSafety, &s.VendorCompliance,
		&t30, &t60, &t90, &countyGrade,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}

	s.Trend30 = t30.Float64
	s.Trend60 = t60.Float64
	s.Trend90 = t90.Float64
	s.CountyGrade = countyGrade.String
	return &s, nil
}

func (p *PostgresProvider) Documents(ctx context.Context, locationID string) ([]models.DocumentRecord, error) {
	rows, err := p.db.QueryContext(ctx, queryDocuments, locationID)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	out := []models.DocumentRecord{}
	for rows.Next() {
		var (
			d                  models.DocumentRecord
			expiry, uploadedAt sql.NullTime
		)
		if err := rows.Scan(&d.LocationID, &d.Type, &d.Name, &expiry, &uploadedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.ExpiryDate = timePtr(expiry)
		d.UploadedAt = timePtr(uploadedAt)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *PostgresProvider) FoodSafety(ctx context.Context, locationID string, w reporting.Window) ([]models.FoodSafetyItem, error) {
	rows, err := p.db.QueryContext(ctx, queryFoodSafety, locationID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query food safety: %w", err)
	}
	defer rows.Close()

	out := []models.FoodSafetyItem{}
	for rows.Next() {
		var (
			item        models.FoodSafetyItem
			status      string
			details     sql.NullString
			deduction   sql.NullInt64
			completedAt sql.NullTime
		)
		if err := rows.Scan(&item.Category, &item.Item, &status, &details, &deduction, &completedAt); err != nil {
			return nil, fmt.Errorf("scan food safety result: %w", err)
		}
		item.Status = models.FoodSafetyStatus(status)
		item.Details = details.String
		item.PointDeduction = int(deduction.Int64)
		item.CompletedAt = timePtr(completedAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

func (p *PostgresProvider) Certifications(ctx context.Context, locationID string) ([]models.EmployeeCertification, error) {
	rows, err := p.db.QueryContext(ctx, queryCertifications, locationID)
	if err != nil {
		return nil, fmt.Errorf("query certifications: %w", err)
	}
	defer rows.Close()

	out := []models.EmployeeCertification{}
	for rows.Next() {
		var (
			c            models.EmployeeCertification
			role, number sql.NullString
			expiry       sql.NullTime
		)
		if err := rows.Scan(&c.EmployeeName, &role, &c.CertType, &number, &expiry); err != nil {
			return nil, fmt.Errorf("scan certification: %w", err)
		}
		c.Role = role.String
		c.CertNumber = number.String
		c.ExpiryDate = timePtr(expiry)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *PostgresProvider) FireEquipment(ctx context.Context, locationID string) ([]models.FireEquipment, error) {
	rows, err := p.db.QueryContext(ctx, queryFireEquipment, locationID)
	if err != nil {
		return nil, fmt.Errorf("query fire equipment: %w", err)
	}
	defer rows.Close()

	out := []models.FireEquipment{}
	for rows.Next() {
		var (
			e                 models.FireEquipment
			location, insp    sql.NullString
			lastInsp, nextDue sql.NullTime
		)
		if err := rows.Scan(&e.Equipment, &location, &lastInsp, &nextDue, &insp); err != nil {
			return nil, fmt.Errorf("scan fire equipment: %w", err)
		}
		e.Location = location.String
		e.Inspector = insp.String
		e.LastInspection = timePtr(lastInsp)
		e.NextDue = timePtr(nextDue)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *PostgresProvider) VendorDocuments(ctx context.Context, locationID string) ([]models.VendorDocument, error) {
	rows, err := p.db.QueryContext(ctx, queryVendorDocuments, locationID)
	if err != nil {
		return nil, fmt.Errorf("query vendor documents: %w", err)
	}
	defer rows.Close()

	out := []models.VendorDocument{}
	for rows.Next() {
		var (
			d      models.VendorDocument
			expiry sql.NullTime
		)
		if err := rows.Scan(&d.Vendor, &d.DocType, &d.OnFile, &expiry); err != nil {
			return nil, fmt.Errorf("scan vendor document: %w", err)
		}
		d.ExpiryDate = timePtr(expiry)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (p *PostgresProvider) CorrectiveActions(ctx context.Context, locationID string, w reporting.Window) ([]models.CorrectiveAction, error) {
	rows, err := p.db.QueryContext(ctx, queryCorrectiveActions, locationID, w.Start, w.End)
	if err != nil {
		return nil, fmt.Errorf("query corrective actions: %w", err)
	}
	defer rows.Close()

	out := []models.CorrectiveAction{}
	for rows.Next() {
		var (
			a                models.CorrectiveAction
			priority, status string
			action, assignee sql.NullString
			dueDate          sql.NullTime
		)
		if err := rows.Scan(&a.ID, &priority, &status, &a.Issue, &action, &assignee, &a.DateIdentified, &dueDate); err != nil {
			return nil, fmt.Errorf("scan corrective action: %w", err)
		}
		a.Priority = models.ActionPriority(priority)
		a.Status = models.ActionStatus(status)
		a.Action = action.String
		a.Assignee = assignee.String
		a.DueDate = timePtr(dueDate)
		out = append(out, a)
	}
	return out, rows.Err()
}

// Trend reads the newest periods points at or before end and returns them oldest first.
func (p *PostgresProvider) Trend(ctx context.Context, locationID string, end time.Time, periods int) ([]models.TrendPoint, error) {
	out := []models.TrendPoint{}
	if periods <= 0 {
		return out, nil
	}

	rows, err := p.db.QueryContext(ctx, queryTrend, locationID, end, periods)
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			pt              models.TrendPoint
			temp, checklist sql.NullFloat64
		)
		if err := rows.Scan(&pt.Period, &pt.PeriodStart, &pt.OverallScore, &temp, &checklist); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		pt.TempCompliance = temp.Float64
		pt.ChecklistCompletion = checklist.Float64
		out = append(out, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out, nil
}

func (p *PostgresProvider) SelfAudit(ctx context.Context, locationID string) ([]models.SelfAuditItem, error) {
	rows, err := p.db.QueryContext(ctx, querySelfAudit, locationID)
	if err != nil {
		return nil, fmt.Errorf("query self audit: %w", err)
	}
	defer rows.Close()

	out := []models.SelfAuditItem{}
	for rows.Next() {
		var (
			item        models.SelfAuditItem
			status      string
			requirement sql.NullString
		)
		if err := rows.Scan(&item.Section, &item.Item, &requirement, &status, &item.Points); err != nil {
			return nil, fmt.Errorf("scan self audit item: %w", err)
		}
		item.Requirement = requirement.String
		item.Status = models.AuditStatus(status)
		out = append(out, item)
	}
	return out, rows.Err()
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
