// internal/models/report.go
package models

import "time"

// DateRange selects the report window. Fixed ranges count back from generation time.
type DateRange string

const (
	DateRange30     DateRange = "30"
	DateRange60     DateRange = "60"
	DateRange90     DateRange = "90"
	DateRangeCustom DateRange = "custom"
)

func (d DateRange) IsValid() bool {
	switch d {
	case DateRange30, DateRange60, DateRange90, DateRangeCustom:
		return true
	}
	return false
}

// Days returns the lookback length of a fixed range, or 0 for custom.
func (d DateRange) Days() int {
	switch d {
	case DateRange30:
		return 30
	case DateRange60:
		return 60
	case DateRange90:
		return 90
	}
	return 0
}

// Section names a content block of the health department report.
type Section string

const (
	SectionFacilityInfo      Section = "facilityInfo"
	SectionComplianceScore   Section = "complianceScore"
	SectionFoodSafety        Section = "foodSafety"
	SectionEmployeeCerts     Section = "employeeCerts"
	SectionFireSafety        Section = "fireSafety"
	SectionVendorDocs        Section = "vendorDocs"
	SectionCorrectiveActions Section = "correctiveActions"
	SectionTrendData         Section = "trendData"
	SectionSelfAudit         Section = "selfAudit"
	SectionMissingDocs       Section = "missingDocs"
)

// AllSections lists every section in report order.
var AllSections = []Section{
	SectionFacilityInfo,
	SectionComplianceScore,
	SectionFoodSafety,
	SectionEmployeeCerts,
	SectionFireSafety,
	SectionVendorDocs,
	SectionCorrectiveActions,
	SectionTrendData,
	SectionSelfAudit,
	SectionMissingDocs,
}

func (s Section) IsValid() bool {
	for _, known := range AllSections {
		if s == known {
			return true
		}
	}
	return false
}

// ReportConfig is the request shape for a health department report.
type ReportConfig struct {
	LocationID      string           `json:"locationId"`
	JurisdictionKey string           `json:"countyTemplate"`
	DateRange       DateRange        `json:"dateRange"`
	CustomStart     string           `json:"customStart,omitempty"` // YYYY-MM-DD, custom range only
	CustomEnd       string           `json:"customEnd,omitempty"`
	Sections        map[Section]bool `json:"sections"`
	IsPaidTier      bool             `json:"isPaidTier"`
}

// ReportWindow is the resolved inclusive time range a report covers.
type ReportWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// JurisdictionSummary is the descriptive part of a jurisdiction template echoed into the report.
type JurisdictionSummary struct {
	Key                 string   `json:"key"`
	Name                string   `json:"name"`
	GradingSystem       string   `json:"gradingSystem"`
	Description         string   `json:"description"`
	SpecialRequirements []string `json:"specialRequirements"`
}

// HealthDeptReport is the assembled output document.
//
// Section fields are nil when the section was not requested or was gated by tier.
// A requested section with no records is an empty, non-nil value.
type HealthDeptReport struct {
	GeneratedAt   time.Time           `json:"generatedAt"`
	Config        ReportConfig        `json:"config"`
	Jurisdiction  JurisdictionSummary `json:"jurisdiction"`
	Window        ReportWindow        `json:"window"`
	Sections      []Section           `json:"sections"`
	GatedSections []Section           `json:"gatedSections"`

	FacilityInfo      *FacilityInfo       `json:"facilityInfo"`
	ComplianceScore   *ComplianceScoreSet `json:"complianceScore"`
	Grade             *Grade              `json:"grade"`
	FoodSafety        *FoodSafetySection  `json:"foodSafety"`
	EmployeeCerts     []EmployeeCertRow   `json:"employeeCerts"`
	FireSafety        []FireSafetyRow     `json:"fireSafety"`
	VendorDocs        []VendorDocRow      `json:"vendorDocs"`
	CorrectiveActions []CorrectiveAction  `json:"correctiveActions"`
	TrendData         []TrendPoint        `json:"trendData"`
	SelfAudit         *SelfAuditSection   `json:"selfAudit"`
	MissingDocs       []MissingDocAlert   `json:"missingDocs"`
}

// HasSection reports whether the section was populated.
func (r *HealthDeptReport) HasSection(s Section) bool {
	for _, included := range r.Sections {
		if included == s {
			return true
		}
	}
	return false
}

type FoodSafetySection struct {
	Items          []FoodSafetyItem `json:"items"`
	TotalDeduction int              `json:"totalDeduction"`
}

type SelfAuditSection struct {
	Groups  []SelfAuditGroup `json:"groups"`
	Summary SelfAuditSummary `json:"summary"`
}

// SelfAuditGroup holds the checklist items of one inspection section.
type SelfAuditGroup struct {
	Section        string          `json:"section"`
	Items          []SelfAuditItem `json:"items"`
	Passed         int             `json:"passed"`
	Failed         int             `json:"failed"`
	NeedsReview    int             `json:"needsReview"`
	TotalPoints    int             `json:"totalPoints"`
	PointsDeducted int             `json:"pointsDeducted"`
}

type SelfAuditSummary struct {
	TotalItems     int     `json:"totalItems"`
	Passed         int     `json:"passed"`
	Failed         int     `json:"failed"`
	NeedsReview    int     `json:"needsReview"`
	TotalPoints    int     `json:"totalPoints"`
	PointsDeducted int     `json:"pointsDeducted"`
	ProjectedScore float64 `json:"projectedScore"`
	ProjectedGrade Grade   `json:"projectedGrade"`
}
