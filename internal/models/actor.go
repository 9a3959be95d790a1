package models

import "slices"

// Actor is the authenticated caller of a request or maintenance command.
type Actor struct {
	UserID         string
	OrganizationID string
	Permissions    []string
}

func ActorFromUser(u *User) Actor {
	return Actor{UserID: u.ID, OrganizationID: u.OrganizationID, Permissions: u.Permissions}
}

func (a Actor) Can(scope string) bool {
	return slices.Contains(a.Permissions, scope)
}

// CanAny reports whether the actor holds at least one of scopes.
func (a Actor) CanAny(scopes ...string) bool {
	for _, s := range scopes {
		if a.Can(s) {
			return true
		}
	}
	return false
}
