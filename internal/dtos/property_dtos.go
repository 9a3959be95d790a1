package dtos

import "github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"

// UpdatePropertyRequest replaces the provided sections of a property.
type UpdatePropertyRequest struct {
	Name            *string                 `json:"name,omitempty" validate:"omitempty,min=1"`
	Status          *string                 `json:"status,omitempty"`
	Location        *models.Location        `json:"location,omitempty"`
	BuildingDetails *models.BuildingDetails `json:"buildingDetails,omitempty"`
	LandDetails     *models.LandDetails     `json:"landDetails,omitempty"`
}

// UpdateSpaceRequest patches one space or squatter entry in place.
type UpdateSpaceRequest struct {
	Name        *string             `json:"name,omitempty" validate:"omitempty,min=1"`
	MonthlyRent *models.Number      `json:"monthlyRent,omitempty" validate:"omitempty,gte=0"`
	Status      *models.SpaceStatus `json:"status,omitempty" validate:"omitempty,oneof=vacant occupied maintenance reserved"`
	Description *string             `json:"description,omitempty"`
}
