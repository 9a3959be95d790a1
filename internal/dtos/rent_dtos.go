package dtos

import "github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"

// CreateRentRequest assigns a tenant to a vacant space.
type CreateRentRequest struct {
	PropertyID          string                 `json:"propertyId" validate:"required"`
	SpaceID             string                 `json:"spaceId" validate:"required"`
	TenantName          string                 `json:"tenantName" validate:"required,min=1"`
	TenantEmail         string                 `json:"tenantEmail,omitempty" validate:"omitempty,email"`
	TenantPhone         string                 `json:"tenantPhone,omitempty" validate:"omitempty,min=7,max=20"`
	TenantIDNumber      string                 `json:"tenantIdNumber,omitempty"`
	MonthlyRent         *models.Number         `json:"monthlyRent,omitempty" validate:"omitempty,gte=0"`
	SecurityDeposit     models.Number          `json:"securityDeposit" validate:"gte=0"`
	LeaseStart          *models.Date           `json:"leaseStart" validate:"required"`
	LeaseEnd            *models.Date           `json:"leaseEnd,omitempty"`
	LeasePeriodType     models.LeasePeriodType `json:"leasePeriodType" validate:"omitempty,oneof=monthly yearly custom"`
	LeaseDurationMonths models.Number          `json:"leaseDurationMonths" validate:"gte=0,lte=600"`
	PaymentDueDate      models.Number          `json:"paymentDueDate" validate:"omitempty,gte=1,lte=31"`
	RentEscalation      models.Number          `json:"rentEscalation" validate:"gte=0,lte=100"`
	Notes               string                 `json:"notes,omitempty"`
}

// UpdateRentRequest is a partial edit; nil fields are left unchanged.
type UpdateRentRequest struct {
	TenantName          *string                 `json:"tenantName,omitempty" validate:"omitempty,min=1"`
	TenantEmail         *string                 `json:"tenantEmail,omitempty" validate:"omitempty,email"`
	TenantPhone         *string                 `json:"tenantPhone,omitempty" validate:"omitempty,min=7,max=20"`
	MonthlyRent         *models.Number          `json:"monthlyRent,omitempty" validate:"omitempty,gte=0"`
	BaseRent            *models.Number          `json:"baseRent,omitempty" validate:"omitempty,gte=0"`
	SecurityDeposit     *models.Number          `json:"securityDeposit,omitempty" validate:"omitempty,gte=0"`
	LeaseStart          *models.Date            `json:"leaseStart,omitempty"`
	LeaseEnd            *models.Date            `json:"leaseEnd,omitempty"`
	LeasePeriodType     *models.LeasePeriodType `json:"leasePeriodType,omitempty" validate:"omitempty,oneof=monthly yearly custom"`
	LeaseDurationMonths *models.Number          `json:"leaseDurationMonths,omitempty" validate:"omitempty,gte=0,lte=600"`
	PaymentDueDate      *models.Number          `json:"paymentDueDate,omitempty" validate:"omitempty,gte=1,lte=31"`
	RentEscalation      *models.Number          `json:"rentEscalation,omitempty" validate:"omitempty,gte=0,lte=100"`
	Notes               *string                 `json:"notes,omitempty"`
}

type RenewRentRequest struct {
	NewLeaseEnd *models.Date `json:"newLeaseEnd" validate:"required"`
}
