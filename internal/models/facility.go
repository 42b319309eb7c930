// internal/models/facility.go
package models

import "time"

type FacilityInfo struct {
	LocationID     string     `json:"locationId"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	PermitNumber   string     `json:"permitNumber"`
	OwnerOperator  string     `json:"ownerOperator"`
	Phone          string     `json:"phone"`
	County         string     `json:"county"`
	LastInspection *time.Time `json:"lastInspection"`
	NextInspection *time.Time `json:"nextInspection"`
	SeatCapacity   int        `json:"seatCapacity"`
}

// ComplianceScoreSet holds externally derived pillar scores for a location.
type ComplianceScoreSet struct {
	LocationID       string  `json:"locationId"`
	Overall          float64 `json:"overall"`
	FoodSafety       float64 `json:"foodSafety"`
	FireSafety       float64 `json:"fireSafety"`
	VendorCompliance float64 `json:"vendorCompliance"`
	Trend30          float64 `json:"trend30"` // point delta over the last 30 days
	Trend60          float64 `json:"trend60"`
	Trend90          float64 `json:"trend90"`
	CountyGrade      string  `json:"countyGrade"`
}

// Grade is the jurisdiction-specific rendering of a numeric score.
// Tier orders grades within one jurisdiction; higher is better.
type Grade struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Tier  int    `json:"tier"`
}
