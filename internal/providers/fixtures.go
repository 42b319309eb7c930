package providers

import (
	"context"
	"time"

	"evidly-workers/internal/models"
	"evidly-workers/internal/reporting"
)

// Demo location IDs served by FixtureProvider.
const (
	LocationDowntown   = "downtown"
	LocationAirport    = "airport"
	LocationUniversity = "university"
)

// FixtureProvider serves the demo dataset. Every date is placed relative to
// the clock, so a demo report always looks current.
type FixtureProvider struct {
	clock reporting.Clock
}

func NewFixtureProvider(clock reporting.Clock) *FixtureProvider {
	if clock == nil {
		clock = reporting.SystemClock
	}
	return &FixtureProvider{clock: clock}
}

// Locations lists the demo location IDs.
func (p *FixtureProvider) Locations() []string {
	return []string{LocationDowntown, LocationAirport, LocationUniversity}
}

type fixture struct {
	facility   models.FacilityInfo
	scores     models.ComplianceScoreSet
	documents  []models.DocumentRecord
	foodSafety []models.FoodSafetyItem
	certs      []models.EmployeeCertification
	fire       []models.FireEquipment
	vendors    []models.VendorDocument
	actions    []models.CorrectiveAction
	trend      []float64 // monthly overall scores, oldest first
	selfAudit  []models.SelfAuditItem
}

func (p *FixtureProvider) lookup(locationID string) *fixture {
	now := p.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch locationID {
	case LocationDowntown:
		return downtownFixture(today)
	case LocationAirport:
		return airportFixture(today)
	case LocationUniversity:
		return universityFixture(today)
	}
	return nil
}

func (p *FixtureProvider) Facility(_ context.Context, locationID string) (*models.FacilityInfo, error) {
	f := p.lookup(locationID)
	if f == nil {
		return nil, nil
	}
	facility := f.facility
	return &facility, nil
}

func (p *FixtureProvider) Scores(_ context.Context, locationID string) (*models.ComplianceScoreSet, error) {
	f := p.lookup(locationID)
	if f == nil {
		return nil, nil
	}
	scores := f.scores
	return &scores, nil
}

func (p *FixtureProvider) Documents(_ context.Context, locationID string) ([]models.DocumentRecord, error) {
	f := p.lookup(locationID)
	if f == nil {
		return []models.DocumentRecord{}, nil
	}
	return f.documents, nil
}

func (p *FixtureProvider) FoodSafety(_ context.Context, locationID string, w reporting.Window) ([]models.FoodSafetyItem, error) {
	f := p.lookup(locationID)
	out := []models.FoodSafetyItem{}
	if f == nil {
		return out, nil
	}
	for _, item := range f.foodSafety {
		if item.CompletedAt == nil || w.Contains(*item.CompletedAt) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (p *FixtureProvider) Certifications(_ context.Context, locationID string) ([]models.EmployeeCertification, error) {
	f := p.lookup(locationID)
	if f == nil {
		return []models.EmployeeCertification{}, nil
	}
	return f.certs, nil
}

func (p *FixtureProvider) FireEquipment(_ context.Context, locationID string) ([]models.FireEquipment, error) {
	f := p.lookup(locationID)
	if f == nil {
		return []models.FireEquipment{}, nil
	}
	return f.fire, nil
}

func (p *FixtureProvider) VendorDocuments(_ context.Context, locationID string) ([]models.VendorDocument, error) {
	f := p.lookup(locationID)
	if f == nil {
		return []models.VendorDocument{}, nil
	}
	return f.vendors, nil
}

func (p *FixtureProvider) CorrectiveActions(_ context.Context, locationID string, w reporting.Window) ([]models.CorrectiveAction, error) {
	f := p.lookup(locationID)
	out := []models.CorrectiveAction{}
	if f == nil {
		return out, nil
	}
	for _, a := range f.actions {
		if a.Status != models.ActionResolved || w.Contains(a.DateIdentified) {
			out = append(out, a)
		}
	}
	return out, nil
}

// Trend returns up to periods monthly points ending with the month of end.
func (p *FixtureProvider) Trend(_ context.Context, locationID string, end time.Time, periods int) ([]models.TrendPoint, error) {
	f := p.lookup(locationID)
	out := []models.TrendPoint{}
	if f == nil || periods <= 0 {
		return out, nil
	}

	end = end.UTC()
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	n := len(f.trend)
	if periods < n {
		n = periods
	}
	scores := f.trend[len(f.trend)-n:]
	for i, score := range scores {
		start := last.AddDate(0, i-n+1, 0)
		out = append(out, models.TrendPoint{
			Period:              start.Format("2006-01"),
			PeriodStart:         start,
			OverallScore:        score,
			TempCompliance:      clampPercent(score + 3),
			ChecklistCompletion: clampPercent(score - 2),
		})
	}
	return out, nil
}

func (p *FixtureProvider) SelfAudit(_ context.Context, locationID string) ([]models.SelfAuditItem, error) {
	f := p.lookup(locationID)
	if f == nil {
		return []models.SelfAuditItem{}, nil
	}
	return f.selfAudit, nil
}

func clampPercent(v float64) float64 {
	if v > 100 {
		return 100
	}
	if v < 0 {
		return 0
	}
	return v
}

// days returns a pointer to today shifted by n days.
func days(today time.Time, n int) *time.Time {
	t := today.AddDate(0, 0, n)
	return &t
}

func documentsFor(locationID string, today time.Time, expiries map[string]int) []models.DocumentRecord {
	names := map[string]string{
		"health-permit":       "Health Permit",
		"business-license":    "Business License",
		"food-manager-cert":   "Food Protection Manager Certificate",
		"food-handler-cards":  "Food Handler Cards",
		"pest-control":        "Pest Control Service Report",
		"hood-cleaning":       "Hood & Duct Cleaning Certificate",
		"fire-suppression":    "Fire Suppression System Inspection",
		"liability-insurance": "Certificate of Liability Insurance",
		"grease-trap":         "Grease Interceptor Service Log",
		"water-backflow":      "Backflow Prevention Test Report",
	}

	out := make([]models.DocumentRecord, 0, len(expiries))
	for _, docType := range []string{
		"health-permit", "business-license", "food-manager-cert", "food-handler-cards", "pest-control",
		"hood-cleaning", "fire-suppression", "liability-insurance", "grease-trap", "water-backflow",
	} {
		n, ok := expiries[docType]
		if !ok {
			continue
		}
		out = append(out, models.DocumentRecord{
			LocationID: locationID,
			Type:       docType,
			Name:       names[docType],
			ExpiryDate: days(today, n),
			UploadedAt: days(today, -90),
		})
	}
	return out
}

func auditItem(section, item, requirement string, status models.AuditStatus, points int) models.SelfAuditItem {
	return models.SelfAuditItem{Section: section, Item: item, Requirement: requirement, Status: status, Points: points}
}

func downtownFixture(today time.Time) *fixture {
	return &fixture{
		facility: models.FacilityInfo{
			LocationID:     LocationDowntown,
			Name:           "Downtown Kitchen",
			Address:        "1245 Fulton Street, Fresno, CA 93721",
			PermitNumber:   "FA-2024-001847",
			OwnerOperator:  "Pacific Coast Dining LLC",
			Phone:          "(559) 555-0142",
			County:         "Fresno",
			LastInspection: days(today, -74),
			NextInspection: days(today, 106),
			SeatCapacity:   120,
		},
		scores: models.ComplianceScoreSet{
			LocationID:       LocationDowntown,
			Overall:          92,
			FoodSafety:       94,
			FireSafety:       89,
			VendorCompliance: 91,
			Trend30:          2.1,
			Trend60:          3.4,
			Trend90:          5,
			CountyGrade:      "A",
		},
		documents: documentsFor(LocationDowntown, today, map[string]int{
			"health-permit":       240,
			"business-license":    300,
			"food-manager-cert":   410,
			"food-handler-cards":  45,
			"pest-control":        20,
			"hood-cleaning":       75,
			"fire-suppression":    30,
			"liability-insurance": 180,
		}),
		foodSafety: []models.FoodSafetyItem{
			{Category: "Temperature Control", Item: "Walk-in cooler temperature log", Status: models.FoodSafetyCompliant, Details: "All readings between 35°F and 38°F", CompletedAt: days(today, -1)},
			{Category: "Temperature Control", Item: "Hot holding temperatures", Status: models.FoodSafetyCompliant, Details: "All items held at 135°F or above", CompletedAt: days(today, -1)},
			{Category: "Temperature Control", Item: "Cooling procedures", Status: models.FoodSafetyNeedsAttention, Details: "One batch of rice cooled outside the 2-hour window", PointDeduction: 2, CompletedAt: days(today, -6)},
			{Category: "Sanitation", Item: "Sanitizer concentration", Status: models.FoodSafetyCompliant, Details: "Quaternary sanitizer at 200 ppm", CompletedAt: days(today, -2)},
			{Category: "Personal Hygiene", Item: "Handwashing station supplies", Status: models.FoodSafetyNeedsAttention, Details: "Paper towels empty at prep sink during lunch rush", PointDeduction: 1, CompletedAt: days(today, -19)},
			{Category: "Food Storage", Item: "Date labeling", Status: models.FoodSafetyCompliant, Details: "All prepared items labeled and dated", CompletedAt: days(today, -3)},
		},
		certs: []models.EmployeeCertification{
			{EmployeeName: "Marcus Johnson", Role: "Kitchen Manager", CertType: "ServSafe Manager", CertNumber: "SM-88213", ExpiryDate: days(today, 410)},
			{EmployeeName: "Sarah Chen", Role: "Line Cook", CertType: "California Food Handler", CertNumber: "FH-55102", ExpiryDate: days(today, 45)},
			{EmployeeName: "David Park", Role: "Prep Cook", CertType: "California Food Handler", CertNumber: "FH-55987", ExpiryDate: days(today, -12)},
			{EmployeeName: "Maria Garcia", Role: "Shift Lead", CertType: "ServSafe Manager", CertNumber: "SM-90177", ExpiryDate: days(today, 700)},
		},
		fire: []models.FireEquipment{
			{Equipment: "Hood suppression system", Location: "Main cook line", LastInspection: days(today, -150), NextDue: days(today, 30), Inspector: "Valley Fire Protection"},
			{Equipment: "K-class extinguisher", Location: "Fryer station", LastInspection: days(today, -300), NextDue: days(today, 65), Inspector: "Valley Fire Protection"},
			{Equipment: "ABC extinguishers", Location: "Dining room and exits", LastInspection: days(today, -300), NextDue: days(today, 65), Inspector: "Valley Fire Protection"},
			{Equipment: "Emergency lighting", Location: "Throughout facility", LastInspection: days(today, -380), NextDue: days(today, -15), Inspector: "In-house"},
		},
		vendors: []models.VendorDocument{
			{Vendor: "Valley Fire Protection", DocType: "Certificate of Insurance", OnFile: true, ExpiryDate: days(today, 200)},
			{Vendor: "Central Valley Pest Control", DocType: "Service Agreement", OnFile: true, ExpiryDate: days(today, 20)},
			{Vendor: "Fresh Harvest Produce", DocType: "Food Safety Certification", OnFile: true, ExpiryDate: days(today, -5)},
			{Vendor: "CleanAir Hood Services", DocType: "Certificate of Insurance", OnFile: false},
		},
		actions: []models.CorrectiveAction{
			{ID: "CA-101", Priority: models.PriorityHigh, Status: models.ActionOpen, Issue: "Cooling log gaps for cooked rice", Action: "Retrain closing staff on two-stage cooling", Assignee: "Marcus Johnson", DateIdentified: *days(today, -6), DueDate: days(today, 8)},
			{ID: "CA-098", Priority: models.PriorityMedium, Status: models.ActionInProgress, Issue: "Emergency light failed monthly test", Action: "Replace battery pack and retest", Assignee: "Maria Garcia", DateIdentified: *days(today, -20), DueDate: days(today, 2)},
			{ID: "CA-087", Priority: models.PriorityLow, Status: models.ActionResolved, Issue: "Handwash sink paper towels empty", Action: "Added towel check to opening checklist", Assignee: "Sarah Chen", DateIdentified: *days(today, -19), DueDate: days(today, -17)},
			{ID: "CA-072", Priority: models.PriorityCritical, Status: models.ActionResolved, Issue: "Walk-in cooler above 41°F", Action: "Compressor serviced and product discarded", Assignee: "Marcus Johnson", DateIdentified: *days(today, -120), DueDate: days(today, -119)},
		},
		trend: []float64{84, 85, 85, 86, 87, 88, 88, 89, 90, 90, 91, 92},
		selfAudit: []models.SelfAuditItem{
			auditItem("Food Temperature", "Cold holding", "Cold foods held at 41°F or below", models.AuditPass, 4),
			auditItem("Food Temperature", "Cooling", "Cooked foods cooled from 135°F to 70°F within 2 hours", models.AuditFail, 4),
			auditItem("Employee Health & Hygiene", "Handwashing", "Handwashing sinks stocked and accessible", models.AuditPass, 2),
			auditItem("Employee Health & Hygiene", "Illness policy", "Employees report symptoms to the person in charge", models.AuditPass, 2),
			auditItem("Sanitation", "Sanitizer", "Sanitizer at the correct concentration", models.AuditPass, 2),
			auditItem("Sanitation", "Food contact surfaces", "Cleaned and sanitized between uses", models.AuditNeedsReview, 2),
			auditItem("Facility & Equipment", "Thermometers", "Probe thermometers available and calibrated", models.AuditPass, 1),
			auditItem("Facility & Equipment", "Pest evidence", "No evidence of rodents or insects", models.AuditPass, 4),
		},
	}
}

func airportFixture(today time.Time) *fixture {
	return &fixture{
		facility: models.FacilityInfo{
			LocationID:     LocationAirport,
			Name:           "Airport Cafe",
			Address:        "5175 E Clinton Way, Terminal B, Fresno, CA 93727",
			PermitNumber:   "FA-2023-004412",
			OwnerOperator:  "Pacific Coast Dining LLC",
			Phone:          "(559) 555-0178",
			County:         "Fresno",
			LastInspection: days(today, -160),
			NextInspection: days(today, 20),
			SeatCapacity:   45,
		},
		scores: models.ComplianceScoreSet{
			LocationID:       LocationAirport,
			Overall:          78,
			FoodSafety:       81,
			FireSafety:       72,
			VendorCompliance: 80,
			Trend30:          -1.5,
			Trend60:          -2.2,
			Trend90:          -0.8,
			CountyGrade:      "B",
		},
		documents: documentsFor(LocationAirport, today, map[string]int{
			"health-permit":       95,
			"business-license":    12,
			"food-manager-cert":   -8,
			"food-handler-cards":  120,
			"fire-suppression":    150,
			"liability-insurance": 60,
		}),
		foodSafety: []models.FoodSafetyItem{
			{Category: "Temperature Control", Item: "Reach-in cooler temperature log", Status: models.FoodSafetyNonCompliant, Details: "Three readings at 44°F during afternoon shift", PointDeduction: 4, CompletedAt: days(today, -2)},
			{Category: "Temperature Control", Item: "Hot holding temperatures", Status: models.FoodSafetyCompliant, Details: "Soup well held at 150°F", CompletedAt: days(today, -2)},
			{Category: "Sanitation", Item: "Three-compartment sink setup", Status: models.FoodSafetyNeedsAttention, Details: "Sanitizer test strips not available", PointDeduction: 1, CompletedAt: days(today, -9)},
			{Category: "Food Storage", Item: "Raw over ready-to-eat storage", Status: models.FoodSafetyNeedsAttention, Details: "Raw eggs stored above pastries", PointDeduction: 2, CompletedAt: days(today, -40)},
		},
		certs: []models.EmployeeCertification{
			{EmployeeName: "Alicia Romero", Role: "Cafe Manager", CertType: "ServSafe Manager", CertNumber: "SM-70420", ExpiryDate: days(today, -8)},
			{EmployeeName: "Kevin Tran", Role: "Barista", CertType: "California Food Handler", CertNumber: "FH-61230", ExpiryDate: days(today, 20)},
			{EmployeeName: "Jordan Ellis", Role: "Cashier", CertType: "California Food Handler", CertNumber: "FH-61388", ExpiryDate: days(today, 330)},
		},
		fire: []models.FireEquipment{
			{Equipment: "Hood suppression system", Location: "Grill station", LastInspection: days(today, -200), NextDue: days(today, -20), Inspector: "Airport Fire Marshal"},
			{Equipment: "ABC extinguishers", Location: "Counter and back of house", LastInspection: days(today, -90), NextDue: days(today, 275), Inspector: "Airport Fire Marshal"},
		},
		vendors: []models.VendorDocument{
			{Vendor: "SkyServe Linen", DocType: "Certificate of Insurance", OnFile: true, ExpiryDate: days(today, 15)},
			{Vendor: "Terminal Pest Solutions", DocType: "Service Agreement", OnFile: false},
		},
		actions: []models.CorrectiveAction{
			{ID: "CA-215", Priority: models.PriorityCritical, Status: models.ActionOpen, Issue: "Reach-in cooler holding above 41°F", Action: "Schedule refrigeration service and move product to walk-in", Assignee: "Alicia Romero", DateIdentified: *days(today, -2), DueDate: days(today, 1)},
			{ID: "CA-209", Priority: models.PriorityHigh, Status: models.ActionOpen, Issue: "Hood suppression inspection overdue", Action: "Book inspection with fire marshal", Assignee: "Alicia Romero", DateIdentified: *days(today, -20), DueDate: days(today, -5)},
			{ID: "CA-190", Priority: models.PriorityMedium, Status: models.ActionResolved, Issue: "Raw eggs stored above pastries", Action: "Reorganized reach-in shelving", Assignee: "Kevin Tran", DateIdentified: *days(today, -40), DueDate: days(today, -39)},
		},
		trend: []float64{82, 81, 80, 81, 79, 80, 79, 78, 79, 80, 79, 78},
		selfAudit: []models.SelfAuditItem{
			auditItem("Food Temperature", "Cold holding", "Cold foods held at 41°F or below", models.AuditFail, 4),
			auditItem("Food Temperature", "Hot holding", "Hot foods held at 135°F or above", models.AuditPass, 4),
			auditItem("Employee Health & Hygiene", "Handwashing", "Handwashing sinks stocked and accessible", models.AuditPass, 2),
			auditItem("Sanitation", "Sanitizer", "Sanitizer at the correct concentration", models.AuditNeedsReview, 2),
			auditItem("Facility & Equipment", "Pest evidence", "No evidence of rodents or insects", models.AuditNeedsReview, 4),
		},
	}
}

func universityFixture(today time.Time) *fixture {
	trend := make([]float64, 0, 12)
	for i := 0; i < 12; i++ {
		trend = append(trend, 83+float64(i%3))
	}

	return &fixture{
		facility: models.FacilityInfo{
			LocationID:     LocationUniversity,
			Name:           "University Dining Hall",
			Address:        "5241 N Maple Ave, Fresno, CA 93740",
			PermitNumber:   "FA-2022-000931",
			OwnerOperator:  "Pacific Coast Dining LLC",
			Phone:          "(559) 555-0193",
			County:         "Fresno",
			LastInspection: days(today, -30),
			NextInspection: days(today, 150),
			SeatCapacity:   480,
		},
		scores: models.ComplianceScoreSet{
			LocationID:       LocationUniversity,
			Overall:          85,
			FoodSafety:       88,
			FireSafety:       84,
			VendorCompliance: 82,
			Trend30:          0.4,
			Trend60:          1.1,
			Trend90:          1.9,
			CountyGrade:      "B",
		},
		documents: documentsFor(LocationUniversity, today, map[string]int{
			"health-permit":       320,
			"business-license":    320,
			"food-manager-cert":   200,
			"food-handler-cards":  90,
			"pest-control":        40,
			"hood-cleaning":       -3,
			"fire-suppression":    100,
			"liability-insurance": 250,
		}),
		foodSafety: []models.FoodSafetyItem{
			{Category: "Temperature Control", Item: "Salad bar temperatures", Status: models.FoodSafetyCompliant, Details: "Ice bath maintained at 38°F", CompletedAt: days(today, -1)},
			{Category: "Allergen Control", Item: "Allergen signage", Status: models.FoodSafetyNeedsAttention, Details: "Peanut warning missing on dessert station", PointDeduction: 1, CompletedAt: days(today, -4)},
			{Category: "Sanitation", Item: "Dish machine final rinse", Status: models.FoodSafetyCompliant, Details: "Final rinse at 182°F", CompletedAt: days(today, -4)},
		},
		certs: []models.EmployeeCertification{
			{EmployeeName: "Priya Natarajan", Role: "Executive Chef", CertType: "ServSafe Manager", CertNumber: "SM-55019", ExpiryDate: days(today, 540)},
			{EmployeeName: "Tom Becker", Role: "Sous Chef", CertType: "ServSafe Manager", CertNumber: "SM-55233", ExpiryDate: days(today, 75)},
			{EmployeeName: "Lena Ortiz", Role: "Student Worker", CertType: "California Food Handler", CertNumber: "FH-70551", ExpiryDate: days(today, 15)},
			{EmployeeName: "Sam Whitaker", Role: "Student Worker", CertType: "California Food Handler", CertNumber: "FH-70612", ExpiryDate: days(today, -30)},
			{EmployeeName: "Grace Kim", Role: "Dining Supervisor", CertType: "Allergen Awareness", CertNumber: "AA-1180"},
		},
		fire: []models.FireEquipment{
			{Equipment: "Hood suppression system", Location: "Main kitchen", LastInspection: days(today, -100), NextDue: days(today, 80), Inspector: "Campus Fire Safety"},
			{Equipment: "Hood suppression system", Location: "Pizza station", LastInspection: days(today, -170), NextDue: days(today, 10), Inspector: "Campus Fire Safety"},
			{Equipment: "Fire alarm pull stations", Location: "Dining hall", LastInspection: days(today, -60), NextDue: days(today, 305), Inspector: "Campus Fire Safety"},
		},
		vendors: []models.VendorDocument{
			{Vendor: "Sysco Central California", DocType: "Food Safety Certification", OnFile: true, ExpiryDate: days(today, 160)},
			{Vendor: "Sysco Central California", DocType: "Certificate of Insurance", OnFile: true, ExpiryDate: days(today, 25)},
			{Vendor: "Campus Waste Services", DocType: "Grease Hauler Permit", OnFile: true},
		},
		actions: []models.CorrectiveAction{
			{ID: "CA-330", Priority: models.PriorityMedium, Status: models.ActionOpen, Issue: "Allergen signage missing at dessert station", Action: "Print and post allergen cards for all stations", Assignee: "Grace Kim", DateIdentified: *days(today, -4), DueDate: days(today, 3)},
			{ID: "CA-322", Priority: models.PriorityHigh, Status: models.ActionInProgress, Issue: "Hood cleaning certificate expired", Action: "Hood cleaning booked for next weekend", Assignee: "Tom Becker", DateIdentified: *days(today, -3), DueDate: days(today, 7)},
		},
		trend: trend,
		selfAudit: []models.SelfAuditItem{
			auditItem("Food Temperature", "Cold holding", "Cold foods held at 41°F or below", models.AuditPass, 4),
			auditItem("Allergen Control", "Signage", "Major allergens disclosed at every station", models.AuditFail, 2),
			auditItem("Sanitation", "Dish machine", "Final rinse reaches 180°F", models.AuditPass, 2),
			auditItem("Facility & Equipment", "Hood cleaning", "Hood cleaned within the last 6 months", models.AuditFail, 2),
		},
	}
}
