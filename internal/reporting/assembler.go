package reporting

import (
	"strings"
	"time"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"
)

// Plan is the validated outcome of a report request before any data is loaded.
type Plan struct {
	Template *JurisdictionTemplate
	Now      time.Time // the single clock reading the report is stamped with
	Window   Window    // resolved against Now
	Included []models.Section
	Gated    []models.Section
}

// Assembler builds health department reports from snapshots. It holds no
// mutable state; the clock is read once per Plan or Assemble call.
type Assembler struct {
	registry   *Registry
	thresholds Thresholds
	clock      Clock
}

func NewAssembler(registry *Registry, thresholds Thresholds, clock Clock) (*Assembler, error) {
	if registry == nil {
		registry = DefaultRegistry()
	}
	if clock == nil {
		clock = SystemClock
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	return &Assembler{registry: registry, thresholds: thresholds, clock: clock}, nil
}

func (a *Assembler) Registry() *Registry { return a.registry }

func (a *Assembler) Thresholds() Thresholds { return a.thresholds }

func (a *Assembler) Now() time.Time { return a.clock.Now().UTC() }

// Plan validates cfg and decides which sections will be built.
func (a *Assembler) Plan(cfg models.ReportConfig) (*Plan, error) {
	return a.plan(cfg, a.clock.Now().UTC())
}

func (a *Assembler) plan(cfg models.ReportConfig, now time.Time) (*Plan, error) {
	if strings.TrimSpace(cfg.LocationID) == "" {
		return nil, errors.NewInvalidConfigurationError("locationId is required")
	}
	tmpl, err := a.registry.Lookup(cfg.JurisdictionKey)
	if err != nil {
		return nil, err
	}
	window, err := ResolveWindow(cfg, now)
	if err != nil {
		return nil, err
	}

	included, gated := EffectiveSections(cfg)
	return &Plan{Template: tmpl, Now: now, Window: window, Included: included, Gated: gated}, nil
}

// Assemble validates cfg, stamps the report with the clock's current instant,
// and runs the builders for each effective section. A nil snapshot is treated
// as a location with no records.
func (a *Assembler) Assemble(cfg models.ReportConfig, snap *Snapshot) (*models.HealthDeptReport, error) {
	plan, err := a.plan(cfg, a.clock.Now().UTC())
	if err != nil {
		return nil, err
	}
	return a.build(cfg, plan, snap), nil
}

// AssemblePlan builds the report for a plan made earlier by Plan. The report
// is stamped with plan.Now and covers plan.Window; the clock is not read.
func (a *Assembler) AssemblePlan(cfg models.ReportConfig, plan *Plan, snap *Snapshot) (*models.HealthDeptReport, error) {
	if plan == nil || plan.Template == nil {
		return nil, errors.NewInvalidConfigurationError("report plan is required")
	}
	return a.build(cfg, plan, snap), nil
}

func (a *Assembler) build(cfg models.ReportConfig, plan *Plan, snap *Snapshot) *models.HealthDeptReport {
	now := plan.Now
	window := plan.Window
	if snap == nil {
		snap = &Snapshot{}
	}

	tmpl := plan.Template
	report := &models.HealthDeptReport{
		GeneratedAt:   now,
		Config:        cloneConfig(cfg),
		Jurisdiction:  tmpl.Summary(),
		Window:        window.toModel(),
		Sections:      plan.Included,
		GatedSections: plan.Gated,
	}

	for _, s := range plan.Included {
		switch s {
		case models.SectionFacilityInfo:
			report.FacilityInfo = facilityFor(cfg.LocationID, snap.Facility)
		case models.SectionComplianceScore:
			report.ComplianceScore, report.Grade = scoresFor(cfg.LocationID, snap.Scores, tmpl.Grader)
		case models.SectionFoodSafety:
			report.FoodSafety = BuildFoodSafety(snap.FoodSafety, window)
		case models.SectionEmployeeCerts:
			report.EmployeeCerts = BuildEmployeeCerts(snap.Certifications, now, a.thresholds.CertExpiringSoonDays)
		case models.SectionFireSafety:
			report.FireSafety = BuildFireSafety(snap.FireEquipment, now, a.thresholds.FireDueSoonDays)
		case models.SectionVendorDocs:
			report.VendorDocs = BuildVendorDocs(snap.VendorDocuments, now, a.thresholds.VendorExpiringDays)
		case models.SectionCorrectiveActions:
			report.CorrectiveActions = BuildCorrectiveActions(snap.CorrectiveActions, window)
		case models.SectionTrendData:
			report.TrendData = BuildTrend(snap.Trend, window, a.thresholds.TrendPeriods)
		case models.SectionSelfAudit:
			report.SelfAudit = BuildSelfAudit(snap.SelfAudit, tmpl.Grader)
		case models.SectionMissingDocs:
			report.MissingDocs = DetectMissingDocuments(tmpl, snap.Documents, now, a.thresholds.DocumentLookaheadDays)
		}
	}

	return report
}

// DetectMissing runs the missing-document detector on its own.
func (a *Assembler) DetectMissing(jurisdictionKey string, docs []models.DocumentRecord) ([]models.MissingDocAlert, error) {
	tmpl, err := a.registry.Lookup(jurisdictionKey)
	if err != nil {
		return nil, err
	}
	return DetectMissingDocuments(tmpl, docs, a.clock.Now().UTC(), a.thresholds.DocumentLookaheadDays), nil
}

// facilityFor returns an empty record carrying only the location id when the
// location is unknown.
func facilityFor(locationID string, f *models.FacilityInfo) *models.FacilityInfo {
	if f == nil {
		return &models.FacilityInfo{LocationID: locationID}
	}
	out := *f
	out.LastInspection = copyTime(f.LastInspection)
	out.NextInspection = copyTime(f.NextInspection)
	return &out
}

// scoresFor grades the overall score; without a score record there is no grade.
func scoresFor(locationID string, s *models.ComplianceScoreSet, grader Grader) (*models.ComplianceScoreSet, *models.Grade) {
	if s == nil {
		return &models.ComplianceScoreSet{LocationID: locationID}, nil
	}
	out := *s
	grade := grader.Grade(out.Overall)
	return &out, &grade
}

func cloneConfig(cfg models.ReportConfig) models.ReportConfig {
	out := cfg
	out.Sections = make(map[models.Section]bool, len(cfg.Sections))
	for k, v := range cfg.Sections {
		out.Sections[k] = v
	}
	return out
}
