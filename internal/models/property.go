package models

import (
	"slices"
	"time"
)

type PropertyType string

const (
	PropertyTypeBuilding PropertyType = "building"
	PropertyTypeLand     PropertyType = "land"
)

type SpaceStatus string

const (
	SpaceStatusVacant      SpaceStatus = "vacant"
	SpaceStatusOccupied    SpaceStatus = "occupied"
	SpaceStatusMaintenance SpaceStatus = "maintenance"
	SpaceStatusReserved    SpaceStatus = "reserved"
)

func (s SpaceStatus) Valid() bool {
	switch s {
	case SpaceStatusVacant, SpaceStatusOccupied, SpaceStatusMaintenance, SpaceStatusReserved:
		return true
	}
	return false
}

type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city,omitempty"`
	Region    string  `json:"region,omitempty"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
	TimeZone  string  `json:"timeZone,omitempty"`
}

// BuildingSpace is a rentable unit on a floor (room, shop, office).
type BuildingSpace struct {
	SpaceID     string      `json:"spaceId"`
	SpaceName   string      `json:"spaceName"`
	SpaceType   string      `json:"spaceType,omitempty"`
	MonthlyRent Number      `json:"monthlyRent"`
	Size        string      `json:"size,omitempty"`
	Status      SpaceStatus `json:"status"`
	Description string      `json:"description,omitempty"`
}

type Floor struct {
	FloorNumber int             `json:"floorNumber"`
	Spaces      []BuildingSpace `json:"spaces"`
}

type BuildingDetails struct {
	Floors []Floor `json:"floors"`
}

// Squatter is an area of a land property assigned to an occupant.
type Squatter struct {
	SquatterID     string      `json:"squatterId"`
	SquatterName   string      `json:"squatterName,omitempty"`
	AssignedArea   string      `json:"assignedArea"`
	MonthlyPayment Number      `json:"monthlyPayment"`
	AreaSize       Number      `json:"areaSize,omitempty"`
	Status         SpaceStatus `json:"status"`
	Description    string      `json:"description,omitempty"`
}

type LandDetails struct {
	Squatters []Squatter `json:"squatters"`
}

type Property struct {
	Versioned

	ID               string           `json:"id"`
	OrganizationID   string           `json:"organizationId"`
	Name             string           `json:"name"`
	Type             PropertyType     `json:"type"`
	Status           string           `json:"status,omitempty"`
	Location         Location         `json:"location"`
	BuildingDetails  *BuildingDetails `json:"buildingDetails,omitempty"`
	LandDetails      *LandDetails     `json:"landDetails,omitempty"`
	AssignedManagers []string         `json:"assignedManagers"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (p *Property) GetID() string { return p.ID }

func (p *Property) HasManager(userID string) bool {
	return slices.Contains(p.AssignedManagers, userID)
}
