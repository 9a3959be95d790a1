package repositories

import (
	"context"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id string) (*models.Property, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.Property, error)
	ListByManager(ctx context.Context, userID string) ([]*models.Property, error)
	ListAllProperties(ctx context.Context) ([]*models.Property, error)

	Patch(ctx context.Context, id string, p docstore.Patch) error
	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (bool, error)
	UpdateWithRetry(ctx context.Context, id string, mutate func(*models.Property) error) error
	Delete(ctx context.Context, id string) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseDocRepo[models.Property]
}

func NewPropertyRepository(store docstore.Store) PropertyRepository {
	return &propertyRepo{BaseDocRepo: NewBaseDocRepo[models.Property](store, docstore.Properties)}
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	return r.set(ctx, p.ID, p)
}

func (r *propertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	return r.get(ctx, id)
}

func (r *propertyRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.Property, error) {
	return r.list(ctx, docstore.Where("organizationId", docstore.OpEqual, orgID))
}

func (r *propertyRepo) ListByManager(ctx context.Context, userID string) ([]*models.Property, error) {
	return r.list(ctx, docstore.Where("assignedManagers", docstore.OpArrayContains, userID))
}

func (r *propertyRepo) ListAllProperties(ctx context.Context) ([]*models.Property, error) {
	return r.list(ctx)
}

// Patch writes only the named dotted paths.
func (r *propertyRepo) Patch(ctx context.Context, id string, p docstore.Patch) error {
	return r.patch(ctx, id, p)
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (bool, error) {
	return r.updateIfVersion(ctx, p.ID, p, expected)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.Property) error) error {
	return WithRetry(ctx, defaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}

func (r *propertyRepo) Delete(ctx context.Context, id string) error {
	return r.remove(ctx, id)
}
