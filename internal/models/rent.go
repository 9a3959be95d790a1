package models

import "time"

type LeaseStatus string

const (
	LeaseStatusActive     LeaseStatus = "active"
	LeaseStatusTerminated LeaseStatus = "terminated"
	LeaseStatusExpired    LeaseStatus = "expired"
)

type LeasePeriodType string

const (
	LeasePeriodMonthly LeasePeriodType = "monthly"
	LeasePeriodYearly  LeasePeriodType = "yearly"
	LeasePeriodCustom  LeasePeriodType = "custom"
)

// RentRecord is the lease binding a tenant to a space. MonthlyRent is the
// billing amount and should mirror the space's rent.
type RentRecord struct {
	Versioned

	ID                  string          `json:"id"`
	OrganizationID      string          `json:"organizationId"`
	PropertyID          string          `json:"propertyId"`
	SpaceID             string          `json:"spaceId"`
	SpaceName           string          `json:"spaceName,omitempty"`
	TenantName          string          `json:"tenantName"`
	TenantEmail         string          `json:"tenantEmail,omitempty"`
	TenantPhone         string          `json:"tenantPhone,omitempty"`
	TenantIDNumber      string          `json:"tenantIdNumber,omitempty"`
	MonthlyRent         Number          `json:"monthlyRent"`
	BaseRent            Number          `json:"baseRent"`
	SecurityDeposit     Number          `json:"securityDeposit"`
	LeaseStart          Date            `json:"leaseStart"`
	LeaseEnd            *Date           `json:"leaseEnd"`
	LeasePeriodType     LeasePeriodType `json:"leasePeriodType,omitempty"`
	LeaseDurationMonths Number          `json:"leaseDurationMonths"`
	Status              LeaseStatus     `json:"status"`
	PaymentDueDate      Number          `json:"paymentDueDate"`
	RentEscalation      Number          `json:"rentEscalation"`
	Notes               string          `json:"notes,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

func (r *RentRecord) GetID() string { return r.ID }

func (r *RentRecord) IsActive() bool { return r.Status == LeaseStatusActive }
