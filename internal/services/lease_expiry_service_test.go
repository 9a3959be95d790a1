package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
)

func TestExpireLeasesUsesPropertyLocalDay(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	// org-1 is on Africa/Kampala (UTC+3); "U" pins its own zone to UTC.
	e.building(t, "K", "org-1", space("S", 100))
	require.NoError(t, e.props.Create(ctx, &models.Property{
		ID: "U", OrganizationID: "org-1", Type: models.PropertyTypeBuilding,
		Location:        models.Location{TimeZone: "UTC"},
		BuildingDetails: &models.BuildingDetails{Floors: []models.Floor{{Spaces: []models.BuildingSpace{space("S", 100)}}}},
	}))
	end := models.MustParseDate("2025-05-31")
	for _, r := range []*models.RentRecord{
		{ID: "rk", OrganizationID: "org-1", PropertyID: "K", SpaceID: "S", Status: models.LeaseStatusActive, LeaseEnd: &end},
		{ID: "ru", OrganizationID: "org-1", PropertyID: "U", SpaceID: "S", Status: models.LeaseStatusActive, LeaseEnd: &end},
		{ID: "rz", OrganizationID: "org-1", PropertyID: "U", SpaceID: "S", Status: models.LeaseStatusActive},
	} {
		require.NoError(t, e.rents.Create(ctx, r))
	}

	svc := NewLeaseExpiryService(e.store, e.rents, e.props, e.orgs)
	// 22:30 UTC on May 31 is already June 1 in Kampala.
	svc.now = func() time.Time { return time.Date(2025, time.May, 31, 22, 30, 0, 0, time.UTC) }

	dry, err := svc.ExpireLeases(ctx, "org-1", true)
	require.NoError(t, err)
	assert.Equal(t, 1, dry.Count(WillUpdate))
	assert.Equal(t, 0, e.store.commits)

	report, err := svc.ExpireLeases(ctx, "org-1", false)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Checked)
	assert.Equal(t, 1, report.Committed)
	assert.Equal(t, 1, report.Batches)

	assert.Equal(t, models.LeaseStatusExpired, e.mustRent(t, "rk").Status)
	assert.Equal(t, models.LeaseStatusActive, e.mustRent(t, "ru").Status)
	assert.Equal(t, models.LeaseStatusActive, e.mustRent(t, "rz").Status)

	again, err := svc.ExpireLeases(ctx, "org-1", false)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Checked)
	assert.Equal(t, 0, again.Count(WillUpdate))
}

func TestPropertyZoneFallsBackToCoordinates(t *testing.T) {
	p := &models.Property{Location: models.Location{Latitude: 0.3476, Longitude: 32.5825}}
	assert.Equal(t, "Africa/Kampala", propertyZoneName(p, nil))
	assert.Equal(t, "Europe/Berlin", propertyZoneName(&models.Property{}, &models.Organization{
		Settings: models.OrganizationSettings{Timezone: "Europe/Berlin"},
	}))
	assert.Equal(t, "UTC", propertyZoneName(nil, nil))
}
