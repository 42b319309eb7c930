package reporting

import (
	"encoding/json"
	"testing"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestAssembler(t *testing.T, now time.Time) *Assembler {
	t.Helper()
	a, err := NewAssembler(DefaultRegistry(), DefaultThresholds(), FixedClock(now))
	require.NoError(t, err)
	return a
}

func allSections() map[models.Section]bool {
	out := map[models.Section]bool{}
	for _, s := range models.AllSections {
		out[s] = true
	}
	return out
}

func createConfig(locationID string, paid bool) models.ReportConfig {
	return models.ReportConfig{
		LocationID:      locationID,
		JurisdictionKey: JurisdictionGeneric,
		DateRange:       models.DateRange30,
		Sections:        allSections(),
		IsPaidTier:      paid,
	}
}

func createSnapshot() *Snapshot {
	var trend []models.TrendPoint
	for i := 14; i >= 0; i-- {
		start := date(2025, 2, 1).AddDate(0, i, 0)
		trend = append(trend, models.TrendPoint{Period: start.Format("2006-01"), PeriodStart: start, OverallScore: float64(70 + i)})
	}

	return &Snapshot{
		Facility: &models.FacilityInfo{
			LocationID:     "downtown",
			Name:           "Downtown Kitchen",
			Address:        "123 Main St, Fresno, CA 93721",
			PermitNumber:   "FA-2026-001234",
			County:         "Fresno",
			LastInspection: datePtr(2025, 11, 18),
			SeatCapacity:   120,
		},
		Scores: &models.ComplianceScoreSet{
			LocationID: "downtown",
			Overall:    87.5,
			FoodSafety: 91,
			FireSafety: 84,
			Trend30:    2.5,
		},
		Documents: []models.DocumentRecord{
			docRecord("health-permit", datePtr(2027, 1, 1)),
			docRecord("business-license", nil),
			docRecord("food-manager-cert", datePtr(2026, 3, 25)),
			docRecord("hood-cleaning", datePtr(2026, 3, 1)),
			docRecord("fire-suppression", datePtr(2026, 12, 1)),
		},
		FoodSafety: []models.FoodSafetyItem{
			{Category: "Temperature", Item: "Walk-in cooler", Status: models.FoodSafetyCompliant, CompletedAt: datePtr(2026, 3, 10)},
			{Category: "Temperature", Item: "Hot holding", Status: models.FoodSafetyNeedsAttention, PointDeduction: 2, CompletedAt: datePtr(2026, 3, 1)},
			{Category: "Sanitation", Item: "Sanitizer strength", Status: models.FoodSafetyNonCompliant, PointDeduction: 4, CompletedAt: datePtr(2026, 1, 2)},
			{Category: "Sanitation", Item: "Handwash sink", Status: models.FoodSafetyNeedsAttention, PointDeduction: 1},
		},
		Certifications: []models.EmployeeCertification{
			{EmployeeName: "Maria Lopez", CertType: "ServSafe Manager", ExpiryDate: datePtr(2026, 5, 1)},
		},
		FireEquipment: []models.FireEquipment{
			{Equipment: "Hood suppression", NextDue: datePtr(2026, 3, 20)},
		},
		VendorDocuments: []models.VendorDocument{
			{Vendor: "Pacific Pest", DocType: "Service Agreement"},
		},
		CorrectiveActions: []models.CorrectiveAction{
			{ID: "CA-1", Priority: models.PriorityHigh, Status: models.ActionOpen, DateIdentified: date(2026, 3, 2)},
		},
		Trend: trend,
		SelfAudit: []models.SelfAuditItem{
			{Section: "Food Temperature", Item: "Cooling logs", Status: models.AuditFail, Points: 4},
			{Section: "Food Temperature", Item: "Cold holding", Status: models.AuditPass, Points: 4},
		},
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestAssembler_Assemble_AllSectionsPaid(t *testing.T) {
	a := createTestAssembler(t, testNow)

	report, err := a.Assemble(createConfig("downtown", true), createSnapshot())
	require.NoError(t, err)

	assert.True(t, testNow.Equal(report.GeneratedAt))
	assert.Equal(t, models.AllSections, report.Sections)
	assert.Empty(t, report.GatedSections)
	assert.Equal(t, JurisdictionGeneric, report.Jurisdiction.Key)
	assert.True(t, time.Date(2026, 2, 13, 12, 0, 0, 0, time.UTC).Equal(report.Window.Start))

	require.NotNil(t, report.FacilityInfo)
	assert.Equal(t, "Downtown Kitchen", report.FacilityInfo.Name)

	require.NotNil(t, report.ComplianceScore)
	assert.Equal(t, 87.5, report.ComplianceScore.Overall)
	require.NotNil(t, report.Grade)
	assert.Equal(t, "B", report.Grade.Label)

	require.NotNil(t, report.FoodSafety)
	assert.Len(t, report.FoodSafety.Items, 3)
	assert.Equal(t, 3, report.FoodSafety.TotalDeduction)

	require.Len(t, report.EmployeeCerts, 1)
	assert.Equal(t, models.CertExpiringSoon, report.EmployeeCerts[0].Status)
	require.Len(t, report.FireSafety, 1)
	assert.Equal(t, models.FireDueSoon, report.FireSafety[0].Status)
	require.Len(t, report.VendorDocs, 1)
	assert.Equal(t, models.VendorDocMissing, report.VendorDocs[0].Status)
	assert.Len(t, report.CorrectiveActions, 1)
	assert.Len(t, report.TrendData, DefaultTrendPeriods)

	require.NotNil(t, report.SelfAudit)
	assert.Equal(t, 96.0, report.SelfAudit.Summary.ProjectedScore)

	require.Len(t, report.MissingDocs, 4)
	assert.Equal(t, models.SeverityCritical, report.MissingDocs[0].Severity)
	assert.Equal(t, "pest-control", report.MissingDocs[0].DocumentType)
	assert.Equal(t, models.SeverityWarning, report.MissingDocs[3].Severity)
}

func TestAssembler_Assemble_TierGating(t *testing.T) {
	tests := []struct {
		name         string
		sections     map[models.Section]bool
		paid         bool
		wantIncluded []models.Section
		wantGated    []models.Section
	}{
		{
			name:         "free tier keeps only the always-available sections",
			sections:     allSections(),
			paid:         false,
			wantIncluded: []models.Section{models.SectionFacilityInfo, models.SectionComplianceScore},
			wantGated:    models.AllSections[2:],
		},
		{
			name:         "free tier asking only for food safety",
			sections:     map[models.Section]bool{models.SectionFoodSafety: true},
			paid:         false,
			wantIncluded: []models.Section{},
			wantGated:    []models.Section{models.SectionFoodSafety},
		},
		{
			name: "false toggles are neither built nor gated",
			sections: map[models.Section]bool{
				models.SectionComplianceScore: true,
				models.SectionTrendData:       false,
				models.SectionMissingDocs:     true,
			},
			paid:         false,
			wantIncluded: []models.Section{models.SectionComplianceScore},
			wantGated:    []models.Section{models.SectionMissingDocs},
		},
		{
			name: "paid tier builds exactly what was asked, in report order",
			sections: map[models.Section]bool{
				models.SectionMissingDocs:   true,
				models.SectionFacilityInfo:  true,
				models.SectionEmployeeCerts: true,
			},
			paid:         true,
			wantIncluded: []models.Section{models.SectionFacilityInfo, models.SectionEmployeeCerts, models.SectionMissingDocs},
			wantGated:    []models.Section{},
		},
		{
			name:         "unknown section names are ignored",
			sections:     map[models.Section]bool{"inventory": true},
			paid:         true,
			wantIncluded: []models.Section{},
			wantGated:    []models.Section{},
		},
	}

	a := createTestAssembler(t, testNow)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createConfig("downtown", tt.paid)
			cfg.Sections = tt.sections

			report, err := a.Assemble(cfg, createSnapshot())
			require.NoError(t, err)

			assert.Equal(t, tt.wantIncluded, report.Sections)
			assert.Equal(t, tt.wantGated, report.GatedSections)

			if !tt.paid {
				assert.Nil(t, report.FoodSafety)
				assert.Nil(t, report.EmployeeCerts)
				assert.Nil(t, report.FireSafety)
				assert.Nil(t, report.VendorDocs)
				assert.Nil(t, report.CorrectiveActions)
				assert.Nil(t, report.TrendData)
				assert.Nil(t, report.SelfAudit)
				assert.Nil(t, report.MissingDocs)
			}
			assert.Equal(t, report.HasSection(models.SectionFacilityInfo), report.FacilityInfo != nil)
			assert.Equal(t, report.HasSection(models.SectionComplianceScore), report.ComplianceScore != nil)
		})
	}
}

func TestAssembler_Assemble_Deterministic(t *testing.T) {
	a := createTestAssembler(t, testNow)
	cfg := createConfig("downtown", true)

	first, err := a.Assemble(cfg, createSnapshot())
	require.NoError(t, err)
	second, err := a.Assemble(cfg, createSnapshot())
	require.NoError(t, err)

	b1, err := json.Marshal(first)
	require.NoError(t, err)
	b2, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b2))

	later := createTestAssembler(t, testNow.Add(time.Minute))
	third, err := later.Assemble(cfg, createSnapshot())
	require.NoError(t, err)
	assert.False(t, first.GeneratedAt.Equal(third.GeneratedAt))

	third.GeneratedAt = first.GeneratedAt
	third.Window = first.Window
	b3, err := json.Marshal(third)
	require.NoError(t, err)
	assert.Equal(t, string(b1), string(b3))
}

func TestAssembler_Assemble_EmptyLocation(t *testing.T) {
	a := createTestAssembler(t, testNow)

	report, err := a.Assemble(createConfig("ghost-kitchen", true), nil)
	require.NoError(t, err)

	require.NotNil(t, report.FacilityInfo)
	assert.Equal(t, "ghost-kitchen", report.FacilityInfo.LocationID)
	assert.Empty(t, report.FacilityInfo.Name)

	require.NotNil(t, report.ComplianceScore)
	assert.Nil(t, report.Grade)

	require.NotNil(t, report.FoodSafety)
	assert.NotNil(t, report.FoodSafety.Items)
	assert.Empty(t, report.FoodSafety.Items)
	assert.Zero(t, report.FoodSafety.TotalDeduction)

	assert.NotNil(t, report.EmployeeCerts)
	assert.Empty(t, report.EmployeeCerts)
	assert.NotNil(t, report.FireSafety)
	assert.Empty(t, report.FireSafety)
	assert.NotNil(t, report.VendorDocs)
	assert.NotNil(t, report.CorrectiveActions)
	assert.NotNil(t, report.TrendData)
	require.NotNil(t, report.SelfAudit)
	assert.Empty(t, report.SelfAudit.Groups)
	assert.Equal(t, 100.0, report.SelfAudit.Summary.ProjectedScore)

	// nothing on file means every required document is missing
	tmpl := lookupTemplate(t, JurisdictionGeneric)
	require.Len(t, report.MissingDocs, len(tmpl.RequiredDocuments))
	for _, alert := range report.MissingDocs {
		assert.Equal(t, models.SeverityCritical, alert.Severity)
	}

	b, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"employeeCerts":[]`)
}

func TestAssembler_Assemble_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *models.ReportConfig)
	}{
		{name: "missing location", mutate: func(cfg *models.ReportConfig) { cfg.LocationID = "  " }},
		{name: "unknown jurisdiction", mutate: func(cfg *models.ReportConfig) { cfg.JurisdictionKey = "atlantis" }},
		{name: "empty jurisdiction", mutate: func(cfg *models.ReportConfig) { cfg.JurisdictionKey = "" }},
		{name: "bad date range", mutate: func(cfg *models.ReportConfig) { cfg.DateRange = "7" }},
		{name: "custom range without dates", mutate: func(cfg *models.ReportConfig) { cfg.DateRange = models.DateRangeCustom }},
	}

	a := createTestAssembler(t, testNow)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createConfig("downtown", true)
			tt.mutate(&cfg)

			report, err := a.Assemble(cfg, createSnapshot())
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration), "got %v", err)
		})
	}
}

func TestAssembler_Assemble_CustomRange(t *testing.T) {
	a := createTestAssembler(t, testNow)
	cfg := createConfig("downtown", true)
	cfg.DateRange = models.DateRangeCustom
	cfg.CustomStart = "2026-01-01"
	cfg.CustomEnd = "2026-01-31"

	report, err := a.Assemble(cfg, createSnapshot())
	require.NoError(t, err)

	require.Len(t, report.FoodSafety.Items, 2)
	assert.Equal(t, "Sanitizer strength", report.FoodSafety.Items[0].Item)
	assert.Equal(t, 5, report.FoodSafety.TotalDeduction)
	assert.Equal(t, "2026-01", report.TrendData[len(report.TrendData)-1].Period)
}

func TestAssembler_Assemble_ConfigEchoIsCopied(t *testing.T) {
	a := createTestAssembler(t, testNow)
	cfg := createConfig("downtown", true)

	report, err := a.Assemble(cfg, createSnapshot())
	require.NoError(t, err)

	cfg.Sections[models.SectionFoodSafety] = false
	assert.True(t, report.Config.Sections[models.SectionFoodSafety])
	assert.Equal(t, "downtown", report.Config.LocationID)
}

func TestAssembler_CustomThresholds(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds.CertExpiringSoonDays = 30
	thresholds.TrendPeriods = 3

	a, err := NewAssembler(nil, thresholds, FixedClock(testNow))
	require.NoError(t, err)

	report, err := a.Assemble(createConfig("downtown", true), createSnapshot())
	require.NoError(t, err)

	assert.Equal(t, models.CertCurrent, report.EmployeeCerts[0].Status)
	assert.Len(t, report.TrendData, 3)
}

func TestNewAssembler_InvalidThresholds(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds.FireDueSoonDays = -1
	thresholds.TrendPeriods = 0

	a, err := NewAssembler(DefaultRegistry(), thresholds, nil)
	require.Error(t, err)
	assert.Nil(t, a)
	assert.Contains(t, err.Error(), "fireDueSoonDays")
	assert.Contains(t, err.Error(), "trendPeriods")
}

func TestAssembler_Plan(t *testing.T) {
	a := createTestAssembler(t, testNow)

	plan, err := a.Plan(createConfig("downtown", false))
	require.NoError(t, err)
	assert.Equal(t, JurisdictionGeneric, plan.Template.Key)
	assert.Len(t, plan.Included, 2)
	assert.Len(t, plan.Gated, len(models.AllSections)-2)
	assert.Equal(t, testNow, plan.Window.End)
	assert.Equal(t, testNow.AddDate(0, 0, -30), plan.Window.Start)
}

func TestAssembler_AssemblePlan_SingleClockRead(t *testing.T) {
	reads := 0
	clock := ClockFunc(func() time.Time {
		reads++
		// Each read lands a day later so a second read would be visible.
		return testNow.AddDate(0, 0, reads-1)
	})
	a, err := NewAssembler(DefaultRegistry(), DefaultThresholds(), clock)
	require.NoError(t, err)

	cfg := createConfig("downtown", true)
	plan, err := a.Plan(cfg)
	require.NoError(t, err)
	assert.Equal(t, testNow, plan.Now)

	report, err := a.AssemblePlan(cfg, plan, createSnapshot())
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	assert.True(t, plan.Now.Equal(report.GeneratedAt))
	assert.True(t, plan.Window.Start.Equal(report.Window.Start))
	assert.True(t, plan.Window.End.Equal(report.Window.End))
	assert.True(t, report.Window.End.Equal(report.GeneratedAt))
}

func TestAssembler_AssemblePlan_RequiresPlan(t *testing.T) {
	a := createTestAssembler(t, testNow)

	tests := []struct {
		name string
		plan *Plan
	}{
		{"nil plan", nil},
		{"plan without template", &Plan{Now: testNow}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := a.AssemblePlan(createConfig("downtown", true), tt.plan, createSnapshot())
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
		})
	}
}

func TestAssembler_DetectMissing(t *testing.T) {
	a := createTestAssembler(t, testNow)

	alerts, err := a.DetectMissing(JurisdictionGeneric, createSnapshot().Documents)
	require.NoError(t, err)
	assert.Len(t, alerts, 4)

	_, err = a.DetectMissing("atlantis", nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkAssembler_Assemble(b *testing.B) {
	a, err := NewAssembler(DefaultRegistry(), DefaultThresholds(), FixedClock(testNow))
	if err != nil {
		b.Fatal(err)
	}
	cfg := createConfig("downtown", true)
	snap := createSnapshot()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = a.Assemble(cfg, snap)
	}
}
