package reporting

import "evidly-workers/internal/models"

const (
	colorGreen  = "#16a34a"
	colorLime   = "#65a30d"
	colorYellow = "#ca8a04"
	colorOrange = "#ea580c"
	colorRed    = "#dc2626"
)

// Template keys shipped with the service.
const (
	JurisdictionGeneric    = "generic"
	JurisdictionLosAngeles = "los-angeles"
	JurisdictionSacramento = "sacramento"
	JurisdictionRiverside  = "riverside"
	JurisdictionSanDiego   = "san-diego"
)

func intPtr(v int) *int { return &v }

var calCodeDocuments = []models.RequiredDocument{
	{Type: "health-permit", Name: "Health Permit", RequiredBy: "Cal. Health & Safety Code §114381"},
	{Type: "food-manager-cert", Name: "Food Protection Manager Certificate", RequiredBy: "Cal. Health & Safety Code §113947.1"},
	{Type: "food-handler-cards", Name: "Food Handler Cards", RequiredBy: "Cal. Health & Safety Code §113948"},
	{Type: "pest-control", Name: "Pest Control Service Report", RequiredBy: "Cal. Health & Safety Code §114259.4"},
	{Type: "hood-cleaning", Name: "Hood & Duct Cleaning Certificate", RequiredBy: "NFPA 96 §11.4"},
	{Type: "fire-suppression", Name: "Fire Suppression System Inspection", RequiredBy: "NFPA 17A §7.3"},
}

func builtinTemplates() []*JurisdictionTemplate {
	return []*JurisdictionTemplate{
		{
			Key:           JurisdictionGeneric,
			Name:          "Generic (Letter Grade)",
			GradingSystem: "Letter Grade A-F",
			Description:   "Standard 100-point inspection with letter grades at 10-point intervals.",
			SpecialRequirements: []string{
				"Most recent inspection report available on request",
			},
			RequiredDocuments: []models.RequiredDocument{
				{Type: "health-permit", Name: "Health Permit", RequiredBy: "Local health code"},
				{Type: "business-license", Name: "Business License", RequiredBy: "Local business code"},
				{Type: "food-manager-cert", Name: "Food Protection Manager Certificate", RequiredBy: "FDA Food Code §2-102.12"},
				{Type: "pest-control", Name: "Pest Control Service Report", RequiredBy: "FDA Food Code §6-501.111"},
				{Type: "hood-cleaning", Name: "Hood & Duct Cleaning Certificate", RequiredBy: "NFPA 96 §11.4"},
				{Type: "fire-suppression", Name: "Fire Suppression System Inspection", RequiredBy: "NFPA 17A §7.3"},
				{Type: "liability-insurance", Name: "Certificate of Liability Insurance", RequiredBy: "Lease / landlord requirement"},
			},
			Grader: MustBandGrader(
				Band{MinScore: 90, Label: "A", Color: colorGreen},
				Band{MinScore: 80, Label: "B", Color: colorLime},
				Band{MinScore: 70, Label: "C", Color: colorYellow},
				Band{MinScore: 60, Label: "D", Color: colorOrange},
				Band{MinScore: 0, Label: "F", Color: colorRed},
			),
		},
		{
			Key:           JurisdictionLosAngeles,
			Name:          "Los Angeles County",
			GradingSystem: "Letter Grade A/B/C with Score Card",
			Description:   "Department of Public Health letter grade; scores below 70 receive a numeric score card instead of a grade.",
			SpecialRequirements: []string{
				"Letter grade card posted within 5 feet of the front door",
				"Food handler cards for all food employees within 30 days of hire",
				"Re-score inspection may be requested once per grading period",
			},
			RequiredDocuments: append(append([]models.RequiredDocument{}, calCodeDocuments...),
				models.RequiredDocument{Type: "grease-trap", Name: "Grease Interceptor Service Log", RequiredBy: "L.A. County Code §20.36"},
			),
			Grader: MustBandGrader(
				Band{MinScore: 90, Label: "A", Color: colorGreen},
				Band{MinScore: 80, Label: "B", Color: colorYellow},
				Band{MinScore: 70, Label: "C", Color: colorOrange},
				Band{MinScore: 0, Label: "Score Card", Color: colorRed},
			),
		},
		{
			Key:           JurisdictionSacramento,
			Name:          "Sacramento County",
			GradingSystem: "Green / Yellow / Red Placard",
			Description:   "Environmental Management Department color placard: Pass, Conditional Pass, or Closed.",
			SpecialRequirements: []string{
				"Placard posted at the public entrance",
				"Conditional pass requires a re-inspection within 3 business days",
			},
			RequiredDocuments: calCodeDocuments,
			LookaheadDays:     intPtr(45),
			Grader: MustBandGrader(
				Band{MinScore: 80, Label: "Pass", Color: colorGreen},
				Band{MinScore: 70, Label: "Conditional Pass", Color: colorYellow},
				Band{MinScore: 0, Label: "Closed", Color: colorRed},
			),
		},
		{
			Key:           JurisdictionRiverside,
			Name:          "Riverside County",
			GradingSystem: "Letter Grade A/B/C",
			Description:   "Letter grade with a failing result below 70 that triggers a re-inspection.",
			SpecialRequirements: []string{
				"Grade card posted in the front window",
			},
			RequiredDocuments: calCodeDocuments,
			Grader: MustBandGrader(
				Band{MinScore: 90, Label: "A", Color: colorGreen},
				Band{MinScore: 80, Label: "B", Color: colorYellow},
				Band{MinScore: 70, Label: "C", Color: colorOrange},
				Band{MinScore: 0, Label: "Failed", Color: colorRed},
			),
		},
		{
			Key:           JurisdictionSanDiego,
			Name:          "San Diego County",
			GradingSystem: "Point Deduction Classes",
			Description:   "Points deducted from 100 are reported as a performance class.",
			SpecialRequirements: []string{
				"Major violations must be corrected before the inspector leaves",
			},
			RequiredDocuments: append(append([]models.RequiredDocument{}, calCodeDocuments...),
				models.RequiredDocument{
					Type:          "water-backflow",
					Name:          "Backflow Prevention Test Report",
					RequiredBy:    "Cal. Code Regs. tit. 17 §7605",
					LookaheadDays: intPtr(60),
				},
			),
			Grader: MustBandGrader(
				Band{MinScore: 95, Label: "Excellent", Color: colorGreen},
				Band{MinScore: 85, Label: "Good", Color: colorLime},
				Band{MinScore: 70, Label: "Needs Improvement", Color: colorYellow},
				Band{MinScore: 0, Label: "Unsatisfactory", Color: colorRed},
			),
		},
	}
}

// DefaultRegistry returns a registry holding the built-in templates.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(builtinTemplates()...)
	if err != nil {
		panic(err)
	}
	return r
}
