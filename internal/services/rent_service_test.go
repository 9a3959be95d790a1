package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/cache"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/dtos"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

func newRentService(e *env, c cache.Cache) *RentService {
	s := NewRentService(e.store, e.rents, e.props, e.orgs, c)
	s.now = clock
	return s
}

func TestCreateRentOccupiesSpace(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S1", 500000), space("S2", 300000))
	svc := newRentService(e, nil)
	start := models.MustParseDate("2025-01-01")

	rec, err := svc.Create(context.Background(), adminActor(), dtos.CreateRentRequest{
		PropertyID:          "P",
		SpaceID:             "S2",
		TenantName:          " Jane Doe ",
		TenantEmail:         "Jane@Example.com",
		LeaseStart:          &start,
		LeasePeriodType:     models.LeasePeriodYearly,
		LeaseDurationMonths: 14,
	})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec.TenantName)
	assert.Equal(t, "jane@example.com", rec.TenantEmail)
	assert.Equal(t, 300000.0, rec.MonthlyRent.Float64())
	assert.Equal(t, 300000.0, rec.BaseRent.Float64())
	assert.Equal(t, "org-1", rec.OrganizationID)
	require.NotNil(t, rec.LeaseEnd)
	assert.Equal(t, "2026-03-01", rec.LeaseEnd.String())
	assert.Equal(t, 1, rec.PaymentDueDate.Int())

	p := e.mustProperty(t, "P")
	assert.Equal(t, models.SpaceStatusVacant, p.BuildingDetails.Floors[0].Spaces[0].Status)
	assert.Equal(t, models.SpaceStatusOccupied, p.BuildingDetails.Floors[0].Spaces[1].Status)

	_, err = svc.Create(context.Background(), adminActor(), dtos.CreateRentRequest{
		PropertyID: "P", SpaceID: "S2", TenantName: "Someone", LeaseStart: &start,
	})
	assert.True(t, errors.Is(err, utils.ErrValidation), "space is no longer vacant")
}

func TestCreateRentPermissionAndScope(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-2", space("S1", 100))
	svc := newRentService(e, nil)
	start := models.MustParseDate("2025-01-01")
	req := dtos.CreateRentRequest{PropertyID: "P", SpaceID: "S1", TenantName: "T", LeaseStart: &start}

	viewer := models.Actor{UserID: "v", OrganizationID: "org-1", Permissions: constants.DefaultRolePermissions[constants.RoleViewer]}
	_, err := svc.Create(context.Background(), viewer, req)
	assert.True(t, errors.Is(err, utils.ErrPermissionDenied))

	_, err = svc.Create(context.Background(), adminActor(), req)
	assert.True(t, errors.Is(err, utils.ErrNotFound), "property of another organization")
}

func TestUpdateRentRecomputesLeaseEnd(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100))
	e.rent(t, "R", "org-1", "P", "S", 100)
	c := cache.NewMemoryCache()
	svc := newRentService(e, c)

	months := models.Number(6)
	rentAmount := models.Number(120)
	out, err := svc.Update(context.Background(), adminActor(), "R", dtos.UpdateRentRequest{
		LeaseDurationMonths: &months,
		MonthlyRent:         &rentAmount,
	})
	require.NoError(t, err)
	require.NotNil(t, out.LeaseEnd)
	assert.Equal(t, "2025-07-01", out.LeaseEnd.String())

	stored := e.mustRent(t, "R")
	assert.Equal(t, 120.0, stored.MonthlyRent.Float64())
	assert.EqualValues(t, 2, stored.GetRowVersion())

	_, ok, _ := c.Get(context.Background(), cache.Key("rent", "R"))
	assert.False(t, ok, "cache entry invalidated after a successful write")
}

func TestUpdateRentRestoresCacheOnFailure(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100))
	e.rent(t, "R", "org-1", "P", "S", 100)
	c := cache.NewMemoryCache()
	svc := newRentService(e, c)
	ctx := context.Background()

	view, err := svc.Get(ctx, adminActor(), "R")
	require.NoError(t, err)
	assert.Equal(t, 100.0, view.MonthlyRent.Float64())
	before, ok, _ := c.Get(ctx, cache.Key("rent", "R"))
	require.True(t, ok)

	svc.rentRepo = &staleRentRepo{RentRepository: e.rents}

	amount := models.Number(999)
	_, err = svc.Update(ctx, adminActor(), "R", dtos.UpdateRentRequest{MonthlyRent: &amount})
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrRowVersionConflict))

	after, ok, _ := c.Get(ctx, cache.Key("rent", "R"))
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestRenewAndTerminate(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100))
	r := e.rent(t, "R", "org-1", "P", "S", 100)
	end := models.MustParseDate("2025-05-01")
	r.LeaseEnd = &end
	r.Status = models.LeaseStatusExpired
	require.NoError(t, e.rents.Create(context.Background(), r))
	svc := newRentService(e, nil)
	ctx := context.Background()

	_, err := svc.Renew(ctx, adminActor(), "R", models.MustParseDate("2024-01-01"))
	assert.True(t, errors.Is(err, utils.ErrValidation))

	renewed, err := svc.Renew(ctx, adminActor(), "R", models.MustParseDate("2026-05-01"))
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusActive, renewed.Status)
	assert.Equal(t, "2026-05-01", renewed.LeaseEnd.String())
	assert.Equal(t, models.SpaceStatusOccupied, e.mustProperty(t, "P").BuildingDetails.Floors[0].Spaces[0].Status)

	view, err := svc.Get(ctx, adminActor(), "R")
	require.NoError(t, err)
	assert.Equal(t, "active", view.DisplayState)
	assert.Equal(t, 334, *view.Classification.DaysUntilExpiry)

	term, err := svc.Terminate(ctx, adminActor(), "R")
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusTerminated, term.Status)
	assert.Equal(t, models.SpaceStatusVacant, e.mustProperty(t, "P").BuildingDetails.Floors[0].Spaces[0].Status)

	_, err = svc.Terminate(ctx, adminActor(), "R")
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestRenewTerminatedLease(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100))
	r := e.rent(t, "R", "org-1", "P", "S", 100)
	r.Status = models.LeaseStatusTerminated
	require.NoError(t, e.rents.Create(context.Background(), r))
	svc := newRentService(e, nil)
	ctx := context.Background()

	renewed, err := svc.Renew(ctx, adminActor(), "R", models.MustParseDate("2026-05-01"))
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusActive, renewed.Status)
	assert.Equal(t, "2026-05-01", renewed.LeaseEnd.String())
	assert.Equal(t, models.SpaceStatusOccupied, e.mustProperty(t, "P").BuildingDetails.Floors[0].Spaces[0].Status)
}

func TestRenewRefusedWhenSpaceRelet(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100))
	old := e.rent(t, "R-old", "org-1", "P", "S", 100)
	old.Status = models.LeaseStatusTerminated
	require.NoError(t, e.rents.Create(context.Background(), old))
	e.rent(t, "R-new", "org-1", "P", "S", 120)

	_, err := newRentService(e, nil).Renew(context.Background(), adminActor(), "R-old", models.MustParseDate("2026-05-01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrValidation))
	assert.Contains(t, err.Error(), "R-new")

	got, err := e.rents.GetByID(context.Background(), "R-old")
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusTerminated, got.Status)
}

func TestListForActorClassifiesInPropertyTimeZone(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100))
	r := e.rent(t, "R", "org-1", "P", "S", 100)
	end := models.NewDate(2025, time.June, 20)
	r.LeaseEnd = &end
	require.NoError(t, e.rents.Create(context.Background(), r))

	views, err := newRentService(e, nil).ListForActor(context.Background(), adminActor())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "expiring-soon", views[0].DisplayState)
	assert.Equal(t, 19, *views[0].Classification.DaysUntilExpiry)
}
