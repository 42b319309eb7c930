// pkg/registry/schema.go
package registry

// JurisdictionRegistry is the on-disk format for jurisdiction grading templates.
type JurisdictionRegistry struct {
	Version       string         `json:"version"`
	LastUpdated   string         `json:"lastUpdated"`
	Jurisdictions []Jurisdiction `json:"jurisdictions"`
}

type Jurisdiction struct {
	Key                 string             `json:"key"`
	Name                string             `json:"name"`
	GradingSystem       string             `json:"gradingSystem"`
	Description         string             `json:"description"`
	SpecialRequirements []string           `json:"specialRequirements"`
	RequiredDocuments   []RequiredDocument `json:"requiredDocuments"`
	LookaheadDays       *int               `json:"lookaheadDays,omitempty"`
	Bands               []GradeBand        `json:"bands"`
}

type RequiredDocument struct {
	Type          string `json:"type"`
	Name          string `json:"name"`
	RequiredBy    string `json:"requiredBy"`
	LookaheadDays *int   `json:"lookaheadDays,omitempty"`
}

// GradeBand assigns Label and Color to scores at or above MinScore.
type GradeBand struct {
	MinScore float64 `json:"minScore"`
	Label    string  `json:"label"`
	Color    string  `json:"color"`
}
