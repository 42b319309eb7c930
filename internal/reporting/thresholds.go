package reporting

import (
	"fmt"
	"strings"
)

const (
	DefaultCertExpiringSoonDays  = 90
	DefaultVendorExpiringDays    = 30
	DefaultFireDueSoonDays       = 30
	DefaultDocumentLookaheadDays = 30
	DefaultTrendPeriods          = 12
)

// Thresholds are the per-category expiry windows, in days, used to derive row statuses.
type Thresholds struct {
	CertExpiringSoonDays  int
	VendorExpiringDays    int
	FireDueSoonDays       int
	DocumentLookaheadDays int
	TrendPeriods          int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		CertExpiringSoonDays:  DefaultCertExpiringSoonDays,
		VendorExpiringDays:    DefaultVendorExpiringDays,
		FireDueSoonDays:       DefaultFireDueSoonDays,
		DocumentLookaheadDays: DefaultDocumentLookaheadDays,
		TrendPeriods:          DefaultTrendPeriods,
	}
}

// Validate reports every out-of-range field at once.
func (t Thresholds) Validate() error {
	var problems []string
	check := func(name string, v int) {
		if v < 0 {
			problems = append(problems, fmt.Sprintf("%s must not be negative (got %d)", name, v))
		}
	}
	check("certExpiringSoonDays", t.CertExpiringSoonDays)
	check("vendorExpiringDays", t.VendorExpiringDays)
	check("fireDueSoonDays", t.FireDueSoonDays)
	check("documentLookaheadDays", t.DocumentLookaheadDays)
	if t.TrendPeriods < 1 {
		problems = append(problems, fmt.Sprintf("trendPeriods must be at least 1 (got %d)", t.TrendPeriods))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid thresholds: %s", strings.Join(problems, "; "))
	}
	return nil
}
