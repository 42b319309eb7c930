// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func LoadRegistry(path string) (*JurisdictionRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*JurisdictionRegistry, error) {
	var reg JurisdictionRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse jurisdiction registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks structural rules only; grade scale shape is checked when the
// definitions are compiled into graders.
func (r *JurisdictionRegistry) Validate() error {
	var problems []string
	seen := map[string]bool{}

	for i, j := range r.Jurisdictions {
		if j.Key == "" {
			problems = append(problems, fmt.Sprintf("jurisdictions[%d]: key is required", i))
			continue
		}
		if seen[j.Key] {
			problems = append(problems, fmt.Sprintf("jurisdictions[%d]: duplicate key %q", i, j.Key))
		}
		seen[j.Key] = true

		if j.Name == "" {
			problems = append(problems, fmt.Sprintf("%s: name is required", j.Key))
		}
		if len(j.Bands) == 0 {
			problems = append(problems, fmt.Sprintf("%s: at least one grade band is required", j.Key))
		}
		if j.LookaheadDays != nil && *j.LookaheadDays < 0 {
			problems = append(problems, fmt.Sprintf("%s: lookaheadDays must not be negative", j.Key))
		}

		docTypes := map[string]bool{}
		for k, d := range j.RequiredDocuments {
			if d.Type == "" {
				problems = append(problems, fmt.Sprintf("%s: requiredDocuments[%d]: type is required", j.Key, k))
				continue
			}
			if docTypes[d.Type] {
				problems = append(problems, fmt.Sprintf("%s: requiredDocuments[%d]: duplicate type %q", j.Key, k, d.Type))
			}
			if d.LookaheadDays != nil && *d.LookaheadDays < 0 {
				problems = append(problems, fmt.Sprintf("%s: requiredDocuments[%d]: lookaheadDays must not be negative", j.Key, k))
			}
			docTypes[d.Type] = true
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid jurisdiction registry: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Find returns the definition with the given key.
func (r *JurisdictionRegistry) Find(key string) (*Jurisdiction, bool) {
	for i := range r.Jurisdictions {
		if r.Jurisdictions[i].Key == key {
			return &r.Jurisdictions[i], true
		}
	}
	return nil, false
}
