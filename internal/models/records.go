// internal/models/records.go
package models

import "time"

type FoodSafetyStatus string

const (
	FoodSafetyCompliant      FoodSafetyStatus = "compliant"
	FoodSafetyNeedsAttention FoodSafetyStatus = "needs-attention"
	FoodSafetyNonCompliant   FoodSafetyStatus = "non-compliant"
)

type FoodSafetyItem struct {
	Category       string           `json:"category"`
	Item           string           `json:"item"`
	Status         FoodSafetyStatus `json:"status"`
	Details        string           `json:"details"`
	PointDeduction int              `json:"pointDeduction"`
	CompletedAt    *time.Time       `json:"completedAt,omitempty"`
}

type CertStatus string

const (
	CertCurrent      CertStatus = "current"
	CertExpiringSoon CertStatus = "expiring-soon"
	CertExpired      CertStatus = "expired"
)

// EmployeeCertification is a provider record; status is derived at report time.
type EmployeeCertification struct {
	EmployeeName string     `json:"employeeName"`
	Role         string     `json:"role"`
	CertType     string     `json:"certType"`
	CertNumber   string     `json:"certNumber"`
	ExpiryDate   *time.Time `json:"expiryDate"`
}

type EmployeeCertRow struct {
	Name            string     `json:"name"`
	Role            string     `json:"role"`
	CertType        string     `json:"certType"`
	CertNumber      string     `json:"certNumber"`
	ExpiryDate      *time.Time `json:"expiryDate"`
	Status          CertStatus `json:"status"`
	DaysUntilExpiry *int       `json:"daysUntilExpiry"` // nil when the cert does not expire
}

type FireStatus string

const (
	FireCurrent FireStatus = "current"
	FireDueSoon FireStatus = "due-soon"
	FireOverdue FireStatus = "overdue"
)

type FireEquipment struct {
	Equipment      string     `json:"equipment"`
	Location       string     `json:"location"`
	LastInspection *time.Time `json:"lastInspection"`
	NextDue        *time.Time `json:"nextDue"`
	Inspector      string     `json:"inspector"`
}

type FireSafetyRow struct {
	Equipment      string     `json:"equipment"`
	Location       string     `json:"location"`
	LastInspection *time.Time `json:"lastInspection"`
	NextDue        *time.Time `json:"nextDue"`
	DaysUntilDue   *int       `json:"daysUntilDue"`
	Inspector      string     `json:"inspector"`
	Status         FireStatus `json:"status"`
}

type VendorDocStatus string

const (
	VendorDocCurrent  VendorDocStatus = "current"
	VendorDocExpiring VendorDocStatus = "expiring"
	VendorDocExpired  VendorDocStatus = "expired"
	VendorDocMissing  VendorDocStatus = "missing"
)

// VendorDocument is a required vendor document slot; OnFile is false when nothing was uploaded.
type VendorDocument struct {
	Vendor     string     `json:"vendor"`
	DocType    string     `json:"docType"`
	OnFile     bool       `json:"onFile"`
	ExpiryDate *time.Time `json:"expiryDate"`
}

type VendorDocRow struct {
	Vendor          string          `json:"vendor"`
	DocType         string          `json:"docType"`
	ExpiryDate      *time.Time      `json:"expiryDate"`
	DaysUntilExpiry *int            `json:"daysUntilExpiry"`
	Status          VendorDocStatus `json:"status"`
}

type ActionPriority string

const (
	PriorityCritical ActionPriority = "critical"
	PriorityHigh     ActionPriority = "high"
	PriorityMedium   ActionPriority = "medium"
	PriorityLow      ActionPriority = "low"
)

type ActionStatus string

const (
	ActionOpen       ActionStatus = "open"
	ActionInProgress ActionStatus = "in-progress"
	ActionResolved   ActionStatus = "resolved"
)

type CorrectiveAction struct {
	ID             string         `json:"id"`
	Priority       ActionPriority `json:"priority"`
	Status         ActionStatus   `json:"status"`
	Issue          string         `json:"issue"`
	Action         string         `json:"action"`
	Assignee       string         `json:"assignee"`
	DateIdentified time.Time      `json:"dateIdentified"`
	DueDate        *time.Time     `json:"dueDate"`
}

type TrendPoint struct {
	Period              string    `json:"period"`
	PeriodStart         time.Time `json:"periodStart"`
	OverallScore        float64   `json:"overallScore"`
	TempCompliance      float64   `json:"tempCompliance"`
	ChecklistCompletion float64   `json:"checklistCompletion"`
}

type AuditStatus string

const (
	AuditPass        AuditStatus = "pass"
	AuditFail        AuditStatus = "fail"
	AuditNeedsReview AuditStatus = "needs-review"
)

type SelfAuditItem struct {
	Section     string      `json:"section"`
	Item        string      `json:"item"`
	Requirement string      `json:"requirement"`
	Status      AuditStatus `json:"status"`
	Points      int         `json:"points"`
}
