package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

func newAssign(e *env) *ManagerAssignmentService {
	s := NewManagerAssignmentService(e.store, e.users, e.props)
	s.now = clock
	return s
}

func seedManager(t *testing.T, e *env) *models.User {
	t.Helper()
	u := &models.User{
		ID:             "mgr-1",
		Email:          "manager@acme.test",
		OrganizationID: "org-1",
		RoleID:         constants.RolePropertyMgr,
		Permissions:    []string{constants.PermPropertiesReadAssigned},
	}
	require.NoError(t, e.users.Create(context.Background(), u))
	return u
}

func TestAssignManagerAppendsOnceAndIsIdempotent(t *testing.T) {
	e := newEnv(t)
	seedManager(t, e)
	e.building(t, "p1", "org-1")
	p2 := &models.Property{ID: "p2", OrganizationID: "org-1", Type: models.PropertyTypeBuilding, AssignedManagers: []string{"other", "mgr-1"}}
	require.NoError(t, e.props.Create(context.Background(), p2))
	e.building(t, "p3", "org-2")
	ctx := context.Background()

	report, err := newAssign(e).Assign(ctx, "manager@acme.test", AssignScope{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(WillUpdate))
	assert.Equal(t, 1, report.Count(AlreadyInSync))
	assert.Equal(t, 1, e.store.writes)

	p1 := e.mustProperty(t, "p1")
	assert.Equal(t, []string{"mgr-1"}, p1.AssignedManagers)
	assert.True(t, fixedNow.Equal(p1.UpdatedAt))
	assert.Equal(t, []string{"other", "mgr-1"}, e.mustProperty(t, "p2").AssignedManagers)
	assert.Empty(t, e.mustProperty(t, "p3").AssignedManagers)

	report, err = newAssign(e).Assign(ctx, "manager@acme.test", AssignScope{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Count(WillUpdate))
	assert.Equal(t, 2, report.Count(AlreadyInSync))
	assert.Equal(t, 1, e.store.writes, "no write for already-assigned properties")
}

func TestAssignManagerSelectedAndDryRun(t *testing.T) {
	e := newEnv(t)
	seedManager(t, e)
	e.building(t, "p1", "org-1")
	e.building(t, "p2", "org-1")
	e.building(t, "p3", "org-2")

	report, err := newAssign(e).Assign(context.Background(), "manager@acme.test",
		AssignScope{PropertyIDs: []string{"p2", "p3"}, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(WillUpdate))
	assert.Equal(t, 1, report.Count(Skipped))
	assert.Equal(t, 0, e.store.commits)
	assert.Empty(t, e.mustProperty(t, "p2").AssignedManagers)
}

func TestAssignManagerUnknownEmailIsFatal(t *testing.T) {
	e := newEnv(t)
	_, err := newAssign(e).Assign(context.Background(), "ghost@acme.test", AssignScope{})
	assert.True(t, errors.Is(err, utils.ErrNotFound))
}

func TestFilterPropertiesForUser(t *testing.T) {
	props := []*models.Property{
		{ID: "a", OrganizationID: "org-1", AssignedManagers: []string{"u1"}},
		{ID: "b", OrganizationID: "org-1"},
		{ID: "c", OrganizationID: "org-2", AssignedManagers: []string{"u1"}},
	}
	ids := func(ps []*models.Property) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.ID)
		}
		return out
	}

	actor := models.Actor{UserID: "u1", OrganizationID: "org-1"}

	actor.Permissions = []string{constants.PermPropertiesReadAll}
	assert.Equal(t, []string{"a", "b"}, ids(FilterPropertiesForUser(actor, props)))

	actor.Permissions = []string{constants.PermPropertiesReadOrganization}
	assert.Equal(t, []string{"a", "b"}, ids(FilterPropertiesForUser(actor, props)))

	actor.Permissions = []string{constants.PermPropertiesReadAssigned}
	assert.Equal(t, []string{"a"}, ids(FilterPropertiesForUser(actor, props)))

	actor.Permissions = []string{"rent:read:organization"}
	assert.Empty(t, FilterPropertiesForUser(actor, props))
}

func TestDiagnoseExplainsEmptyDashboard(t *testing.T) {
	e := newEnv(t)
	seedManager(t, e)
	e.building(t, "p1", "org-1")
	ctx := context.Background()

	d, err := newAssign(e).Diagnose(ctx, "manager@acme.test")
	require.NoError(t, err)
	assert.Equal(t, constants.PermPropertiesReadAssigned, d.MatchedScope)
	assert.Equal(t, 1, d.OrganizationTotal)
	assert.Empty(t, d.Visible)

	_, err = newAssign(e).Assign(ctx, "manager@acme.test", AssignScope{})
	require.NoError(t, err)

	d, err = newAssign(e).Diagnose(ctx, "manager@acme.test")
	require.NoError(t, err)
	require.Len(t, d.Visible, 1)
	assert.Equal(t, "p1", d.Visible[0].ID)
	assert.Len(t, d.AssignedProperties, 1)
}
