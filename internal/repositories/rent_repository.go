package repositories

import (
	"context"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
)

type RentRepository interface {
	Create(ctx context.Context, r *models.RentRecord) error

	GetByID(ctx context.Context, id string) (*models.RentRecord, error)
	// ListActive returns active records, optionally limited to one organization.
	ListActive(ctx context.Context, orgID string) ([]*models.RentRecord, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.RentRecord, error)
	ListByPropertyIDs(ctx context.Context, propertyIDs []string) ([]*models.RentRecord, error)
	ListBySpace(ctx context.Context, propertyID, spaceID string) ([]*models.RentRecord, error)

	Patch(ctx context.Context, id string, p docstore.Patch) error
	UpdateIfVersion(ctx context.Context, r *models.RentRecord, expected int64) (bool, error)
	UpdateWithRetry(ctx context.Context, id string, mutate func(*models.RentRecord) error) error
	Delete(ctx context.Context, id string) error
}

type rentRepo struct {
	*BaseDocRepo[models.RentRecord]
}

func NewRentRepository(store docstore.Store) RentRepository {
	return &rentRepo{BaseDocRepo: NewBaseDocRepo[models.RentRecord](store, docstore.Rent)}
}

func (r *rentRepo) Create(ctx context.Context, rec *models.RentRecord) error {
	return r.set(ctx, rec.ID, rec)
}

func (r *rentRepo) GetByID(ctx context.Context, id string) (*models.RentRecord, error) {
	return r.get(ctx, id)
}

func (r *rentRepo) ListActive(ctx context.Context, orgID string) ([]*models.RentRecord, error) {
	filters := []docstore.Filter{docstore.Where("status", docstore.OpEqual, models.LeaseStatusActive)}
	if orgID != "" {
		filters = append(filters, docstore.Where("organizationId", docstore.OpEqual, orgID))
	}
	return r.list(ctx, filters...)
}

func (r *rentRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.RentRecord, error) {
	return r.list(ctx, docstore.Where("organizationId", docstore.OpEqual, orgID))
}

// ListByPropertyIDs queries propertyId IN chunks of at most ten ids.
func (r *rentRepo) ListByPropertyIDs(ctx context.Context, propertyIDs []string) ([]*models.RentRecord, error) {
	return r.listIn(ctx, "propertyId", propertyIDs)
}

func (r *rentRepo) ListBySpace(ctx context.Context, propertyID, spaceID string) ([]*models.RentRecord, error) {
	return r.list(ctx,
		docstore.Where("propertyId", docstore.OpEqual, propertyID),
		docstore.Where("spaceId", docstore.OpEqual, spaceID),
	)
}

func (r *rentRepo) Patch(ctx context.Context, id string, p docstore.Patch) error {
	return r.patch(ctx, id, p)
}

func (r *rentRepo) UpdateIfVersion(ctx context.Context, rec *models.RentRecord, expected int64) (bool, error) {
	return r.updateIfVersion(ctx, rec.ID, rec, expected)
}

func (r *rentRepo) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.RentRecord) error) error {
	return WithRetry(ctx, defaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *rentRepo) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
