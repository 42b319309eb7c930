package reporting

import (
	"fmt"
	"sort"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"
	"evidly-workers/pkg/registry"
)

// JurisdictionTemplate is a county or regional grading and requirements profile.
type JurisdictionTemplate struct {
	Key                 string
	Name                string
	GradingSystem       string
	Description         string
	SpecialRequirements []string
	RequiredDocuments   []models.RequiredDocument
	// LookaheadDays overrides Thresholds.DocumentLookaheadDays for this jurisdiction.
	LookaheadDays *int
	Grader        Grader
}

func (t *JurisdictionTemplate) Summary() models.JurisdictionSummary {
	reqs := append([]string{}, t.SpecialRequirements...)
	return models.JurisdictionSummary{
		Key:                 t.Key,
		Name:                t.Name,
		GradingSystem:       t.GradingSystem,
		Description:         t.Description,
		SpecialRequirements: reqs,
	}
}

// DocumentLookahead resolves the lookahead for one required document.
func (t *JurisdictionTemplate) DocumentLookahead(doc models.RequiredDocument, fallback int) int {
	if doc.LookaheadDays != nil {
		return *doc.LookaheadDays
	}
	if t.LookaheadDays != nil {
		return *t.LookaheadDays
	}
	return fallback
}

// Registry is a read-only set of jurisdiction templates keyed by template key.
type Registry struct {
	templates map[string]*JurisdictionTemplate
}

// NewRegistry rejects templates without a key or grader, duplicate keys, and
// graders that are not monotonic over [0,100].
func NewRegistry(templates ...*JurisdictionTemplate) (*Registry, error) {
	r := &Registry{templates: make(map[string]*JurisdictionTemplate, len(templates))}
	for _, t := range templates {
		if err := validateTemplate(t); err != nil {
			return nil, err
		}
		if _, dup := r.templates[t.Key]; dup {
			return nil, fmt.Errorf("duplicate jurisdiction key %q", t.Key)
		}
		r.templates[t.Key] = t
	}
	return r, nil
}

func validateTemplate(t *JurisdictionTemplate) error {
	if t == nil || t.Key == "" {
		return fmt.Errorf("jurisdiction template requires a key")
	}
	if t.Grader == nil {
		return fmt.Errorf("jurisdiction %q has no grader", t.Key)
	}
	if err := CheckMonotonic(t.Grader, 0.5); err != nil {
		return fmt.Errorf("jurisdiction %q: %w", t.Key, err)
	}
	return nil
}

// Lookup fails with INVALID_CONFIGURATION for unknown keys; there is no fallback template.
func (r *Registry) Lookup(key string) (*JurisdictionTemplate, error) {
	t, ok := r.templates[key]
	if !ok {
		return nil, errors.NewInvalidConfigurationError(
			fmt.Sprintf("unknown jurisdiction template %q", key)).
			WithMetadata("countyTemplate", key)
	}
	return t, nil
}

// Keys returns the configured template keys in sorted order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.templates))
	for k := range r.templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge returns a new registry where definitions replace or extend the receiver's templates.
func (r *Registry) Merge(defs *registry.JurisdictionRegistry) (*Registry, error) {
	merged := make(map[string]*JurisdictionTemplate, len(r.templates))
	for k, t := range r.templates {
		merged[k] = t
	}
	if defs != nil {
		for _, def := range defs.Jurisdictions {
			t, err := TemplateFromDefinition(def)
			if err != nil {
				return nil, err
			}
			merged[t.Key] = t
		}
	}

	templates := make([]*JurisdictionTemplate, 0, len(merged))
	for _, t := range merged {
		templates = append(templates, t)
	}
	return NewRegistry(templates...)
}

// TemplateFromDefinition compiles a registry file entry into a template.
func TemplateFromDefinition(def registry.Jurisdiction) (*JurisdictionTemplate, error) {
	bands := make([]Band, 0, len(def.Bands))
	for _, b := range def.Bands {
		bands = append(bands, Band{MinScore: b.MinScore, Label: b.Label, Color: b.Color})
	}
	grader, err := NewBandGrader(bands)
	if err != nil {
		return nil, fmt.Errorf("jurisdiction %q: %w", def.Key, err)
	}

	docs := make([]models.RequiredDocument, 0, len(def.RequiredDocuments))
	for _, d := range def.RequiredDocuments {
		docs = append(docs, models.RequiredDocument{
			Type:          d.Type,
			Name:          d.Name,
			RequiredBy:    d.RequiredBy,
			LookaheadDays: d.LookaheadDays,
		})
	}

	return &JurisdictionTemplate{
		Key:                 def.Key,
		Name:                def.Name,
		GradingSystem:       def.GradingSystem,
		Description:         def.Description,
		SpecialRequirements: append([]string{}, def.SpecialRequirements...),
		RequiredDocuments:   docs,
		LookaheadDays:       def.LookaheadDays,
		Grader:              grader,
	}, nil
}

// LoadRegistry returns the built-in templates merged with the definitions file
// at path. An empty path yields the built-ins alone.
func LoadRegistry(path string) (*Registry, error) {
	base := DefaultRegistry()
	if path == "" {
		return base, nil
	}
	defs, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load jurisdiction registry %s: %w", path, err)
	}
	return base.Merge(defs)
}
