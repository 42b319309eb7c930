package reporting

import (
	"fmt"
	"time"

	"evidly-workers/internal/models"
)

// DetectMissingDocuments compares a jurisdiction's required documents with the
// documents on file. Absent documents are critical; documents expired or
// expiring within the lookahead are warnings. Critical alerts come first and
// each tier keeps the jurisdiction's declaration order.
func DetectMissingDocuments(t *JurisdictionTemplate, onFile []models.DocumentRecord, now time.Time, defaultLookahead int) []models.MissingDocAlert {
	best := latestByType(onFile)

	critical := []models.MissingDocAlert{}
	warnings := []models.MissingDocAlert{}

	for _, req := range t.RequiredDocuments {
		rec, ok := best[req.Type]
		if !ok {
			critical = append(critical, models.MissingDocAlert{
				DocumentType: req.Type,
				DocumentName: req.Name,
				Message:      fmt.Sprintf("%s is not on file", req.Name),
				RequiredBy:   req.RequiredBy,
				Severity:     models.SeverityCritical,
			})
			continue
		}

		if rec.ExpiryDate == nil {
			continue
		}
		// An expired document warns regardless of the lookahead.
		days := DaysUntil(now, *rec.ExpiryDate)
		if days >= 0 && days > t.DocumentLookahead(req, defaultLookahead) {
			continue
		}

		warnings = append(warnings, models.MissingDocAlert{
			DocumentType:    req.Type,
			DocumentName:    req.Name,
			Message:         expiryMessage(req.Name, days),
			RequiredBy:      req.RequiredBy,
			Severity:        models.SeverityWarning,
			ExpiryDate:      copyTime(rec.ExpiryDate),
			DaysUntilExpiry: &days,
		})
	}

	return append(critical, warnings...)
}

// latestByType keeps, per document type, the record that stays valid longest.
// A record without an expiry date never expires and wins over dated ones.
func latestByType(docs []models.DocumentRecord) map[string]models.DocumentRecord {
	best := make(map[string]models.DocumentRecord, len(docs))
	for _, d := range docs {
		cur, ok := best[d.Type]
		if !ok || outlasts(d, cur) {
			best[d.Type] = d
		}
	}
	return best
}

func outlasts(a, b models.DocumentRecord) bool {
	switch {
	case b.ExpiryDate == nil:
		return false
	case a.ExpiryDate == nil:
		return true
	}
	return a.ExpiryDate.After(*b.ExpiryDate)
}

func expiryMessage(name string, days int) string {
	switch {
	case days < -1:
		return fmt.Sprintf("%s expired %d days ago", name, -days)
	case days == -1:
		return fmt.Sprintf("%s expired yesterday", name)
	case days == 0:
		return fmt.Sprintf("%s expires today", name)
	case days == 1:
		return fmt.Sprintf("%s expires tomorrow", name)
	}
	return fmt.Sprintf("%s expires in %d days", name, days)
}

// CountBySeverity tallies alerts per severity.
func CountBySeverity(alerts []models.MissingDocAlert) (critical, warning int) {
	for _, a := range alerts {
		switch a.Severity {
		case models.SeverityCritical:
			critical++
		case models.SeverityWarning:
			warning++
		}
	}
	return critical, warning
}
