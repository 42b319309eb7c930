package reporting

import "evidly-workers/internal/models"

// IsAlwaysAvailable reports whether a section is included on the free tier.
func IsAlwaysAvailable(s models.Section) bool {
	return s == models.SectionFacilityInfo || s == models.SectionComplianceScore
}

// AllowedSections lists the sections a tier may populate, in report order.
func AllowedSections(isPaidTier bool) []models.Section {
	out := []models.Section{}
	for _, s := range models.AllSections {
		if isPaidTier || IsAlwaysAvailable(s) {
			out = append(out, s)
		}
	}
	return out
}

// EffectiveSections splits the requested sections into those to build and
// those dropped by tier gating. Both lists follow report order; unknown
// section names are ignored.
func EffectiveSections(cfg models.ReportConfig) (included, gated []models.Section) {
	included = []models.Section{}
	gated = []models.Section{}
	for _, s := range models.AllSections {
		if !cfg.Sections[s] {
			continue
		}
		if cfg.IsPaidTier || IsAlwaysAvailable(s) {
			included = append(included, s)
		} else {
			gated = append(gated, s)
		}
	}
	return included, gated
}
