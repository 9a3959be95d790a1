package models

import "time"

type OrganizationStatus string

const (
	OrganizationStatusActive    OrganizationStatus = "active"
	OrganizationStatusSuspended OrganizationStatus = "suspended"
)

type OrganizationSettings struct {
	Currency string `json:"currency"`
	Timezone string `json:"timezone"`
	Locale   string `json:"locale"`
}

// Organization is the tenant-isolation boundary. Every other document
// carries a denormalized organizationId pointing here.
type Organization struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Status    OrganizationStatus   `json:"status"`
	Settings  OrganizationSettings `json:"settings"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func (o *Organization) GetID() string { return o.ID }
