package models

import (
	"slices"
	"time"
)

type User struct {
	Versioned

	ID             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName,omitempty"`
	OrganizationID string    `json:"organizationId"`
	RoleID         string    `json:"roleId"`
	Permissions    []string  `json:"permissions"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (u *User) GetID() string { return u.ID }

func (u *User) HasPermission(scope string) bool {
	return slices.Contains(u.Permissions, scope)
}

// Role groups flattened permission scopes. An empty OrganizationID marks a
// global role usable by every organization.
type Role struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"displayName"`
	OrganizationID string    `json:"organizationId,omitempty"`
	Permissions    []string  `json:"permissions"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (r *Role) IsGlobal() bool { return r.OrganizationID == "" }
