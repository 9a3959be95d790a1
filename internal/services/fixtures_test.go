package services

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/require"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// countingStore records commits and can fail chosen ones (1-based).
type countingStore struct {
	*docstore.MemoryStore
	commits    int
	writes     int
	failCommit map[int]bool
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: docstore.NewMemoryStore(), failCommit: map[int]bool{}}
}

func (s *countingStore) Commit(ctx context.Context, writes []docstore.Write) error {
	s.commits++
	if s.failCommit[s.commits] {
		return errors.New("unavailable")
	}
	s.writes += len(writes)
	return s.MemoryStore.Commit(ctx, writes)
}

type env struct {
	store    *countingStore
	orgs     repositories.OrganizationRepository
	users    repositories.UserRepository
	roles    repositories.RoleRepository
	props    repositories.PropertyRepository
	rents    repositories.RentRepository
	invoices repositories.InvoiceRepository
	payments repositories.PaymentRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := newCountingStore()
	e := &env{
		store:    s,
		orgs:     repositories.NewOrganizationRepository(s),
		users:    repositories.NewUserRepository(s),
		roles:    repositories.NewRoleRepository(s),
		props:    repositories.NewPropertyRepository(s),
		rents:    repositories.NewRentRepository(s),
		invoices: repositories.NewInvoiceRepository(s),
		payments: repositories.NewPaymentRepository(s),
	}
	require.NoError(t, e.orgs.Create(context.Background(), &models.Organization{
		ID: "org-1", Name: "Acme Estates", Status: models.OrganizationStatusActive,
		Settings: models.OrganizationSettings{Currency: "UGX", Timezone: "Africa/Kampala"},
	}))
	require.NoError(t, e.orgs.Create(context.Background(), &models.Organization{ID: "org-2", Name: "Other"}))
	return e
}

func (e *env) building(t *testing.T, id, orgID string, spaces ...models.BuildingSpace) *models.Property {
	t.Helper()
	p := &models.Property{
		ID:              id,
		OrganizationID:  orgID,
		Name:            "Building " + id,
		Type:            models.PropertyTypeBuilding,
		BuildingDetails: &models.BuildingDetails{Floors: []models.Floor{{FloorNumber: 0, Spaces: spaces}}},
	}
	require.NoError(t, e.props.Create(context.Background(), p))
	return p
}

func (e *env) land(t *testing.T, id, orgID string, squatters ...models.Squatter) *models.Property {
	t.Helper()
	p := &models.Property{
		ID:             id,
		OrganizationID: orgID,
		Name:           "Land " + id,
		Type:           models.PropertyTypeLand,
		LandDetails:    &models.LandDetails{Squatters: squatters},
	}
	require.NoError(t, e.props.Create(context.Background(), p))
	return p
}

func (e *env) rent(t *testing.T, id, orgID, propertyID, spaceID string, monthly float64) *models.RentRecord {
	t.Helper()
	r := &models.RentRecord{
		ID:             id,
		OrganizationID: orgID,
		PropertyID:     propertyID,
		SpaceID:        spaceID,
		TenantName:     "Tenant " + id,
		MonthlyRent:    models.Number(monthly),
		BaseRent:       models.Number(monthly),
		LeaseStart:     models.NewDate(2025, time.January, 1),
		Status:         models.LeaseStatusActive,
	}
	require.NoError(t, e.rents.Create(context.Background(), r))
	return r
}

func (e *env) mustRent(t *testing.T, id string) *models.RentRecord {
	t.Helper()
	r, err := e.rents.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, r)
	return r
}

func (e *env) mustProperty(t *testing.T, id string) *models.Property {
	t.Helper()
	p, err := e.props.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

func space(id string, rent float64) models.BuildingSpace {
	return models.BuildingSpace{SpaceID: id, SpaceName: "Unit " + id, MonthlyRent: models.Number(rent), Status: models.SpaceStatusVacant}
}

func adminActor() models.Actor {
	return models.Actor{UserID: "admin-1", OrganizationID: "org-1", Permissions: constants.DefaultRolePermissions[constants.RoleOrgAdmin]}
}

// staleRentRepo always fails the version check.
type staleRentRepo struct {
	repositories.RentRepository
}

func (s *staleRentRepo) UpdateIfVersion(ctx context.Context, r *models.RentRecord, expected int64) (bool, error) {
	return s.RentRepository.UpdateIfVersion(ctx, r, expected-1)
}
