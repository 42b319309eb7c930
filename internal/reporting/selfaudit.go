package reporting

import "evidly-workers/internal/models"

// BuildSelfAudit groups checklist items by inspection section, in order of first
// appearance, and derives counts and point totals. Only failed items deduct.
// The projected score is 100 minus the deducted points, graded on the
// jurisdiction's scale.
func BuildSelfAudit(items []models.SelfAuditItem, grader Grader) *models.SelfAuditSection {
	section := &models.SelfAuditSection{Groups: []models.SelfAuditGroup{}}
	index := map[string]int{}

	for _, item := range items {
		if item.Points < 0 {
			item.Points = 0
		}

		i, ok := index[item.Section]
		if !ok {
			i = len(section.Groups)
			index[item.Section] = i
			section.Groups = append(section.Groups, models.SelfAuditGroup{
				Section: item.Section,
				Items:   []models.SelfAuditItem{},
			})
		}
		group := &section.Groups[i]
		group.Items = append(group.Items, item)
		group.TotalPoints += item.Points

		switch item.Status {
		case models.AuditPass:
			group.Passed++
		case models.AuditFail:
			group.Failed++
			group.PointsDeducted += item.Points
		case models.AuditNeedsReview:
			group.NeedsReview++
		}
	}

	s := &section.Summary
	for _, g := range section.Groups {
		s.TotalItems += len(g.Items)
		s.Passed += g.Passed
		s.Failed += g.Failed
		s.NeedsReview += g.NeedsReview
		s.TotalPoints += g.TotalPoints
		s.PointsDeducted += g.PointsDeducted
	}
	s.ProjectedScore = ClampScore(100 - float64(s.PointsDeducted))
	if grader != nil {
		s.ProjectedGrade = grader.Grade(s.ProjectedScore)
	}

	return section
}
