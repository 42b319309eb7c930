// internal/workers/infrastructure/validate-subscription/models.go
package validatesubscription

import "evidly-workers/internal/models"

type Input struct {
	OrganizationID string `json:"organizationId"`
}

// Output carries the tier flag consumed by report generation.
type Output struct {
	IsValid     bool                    `json:"isValid"`
	TierLevel   models.SubscriptionTier `json:"tierLevel"`
	IsPaidTier  bool                    `json:"isPaidTier"`
	Expired     bool                    `json:"expired"`
	Permissions []models.Section        `json:"permissions"`
}
