// internal/models/subscription.go
package models

type SubscriptionTier string

const (
	TierFree         SubscriptionTier = "free"
	TierStarter      SubscriptionTier = "starter"
	TierProfessional SubscriptionTier = "professional"
	TierEnterprise   SubscriptionTier = "enterprise"
)

func (t SubscriptionTier) IsValid() bool {
	switch t {
	case TierFree, TierStarter, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// IsPaid reports whether the tier unlocks gated report sections.
func (t SubscriptionTier) IsPaid() bool {
	return t.IsValid() && t != TierFree
}

type OrganizationSubscription struct {
	OrganizationID string           `json:"organizationId"`
	Tier           SubscriptionTier `json:"tier"`
	ExpiresAt      string           `json:"expiresAt"` // RFC3339, empty when open-ended
	IsValid        bool             `json:"isValid"`
}
