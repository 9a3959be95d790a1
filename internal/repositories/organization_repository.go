package repositories

import (
	"context"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
)

type OrganizationRepository interface {
	Create(ctx context.Context, o *models.Organization) error
	GetByID(ctx context.Context, id string) (*models.Organization, error)
	ListAll(ctx context.Context) ([]*models.Organization, error)
}

type organizationRepo struct {
	*BaseDocRepo[models.Organization]
}

func NewOrganizationRepository(store docstore.Store) OrganizationRepository {
	return &organizationRepo{BaseDocRepo: NewBaseDocRepo[models.Organization](store, docstore.Organizations)}
}

func (r *organizationRepo) Create(ctx context.Context, o *models.Organization) error {
	return r.set(ctx, o.ID, o)
}

func (r *organizationRepo) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	return r.get(ctx, id)
}

func (r *organizationRepo) ListAll(ctx context.Context) ([]*models.Organization, error) {
	return r.list(ctx)
}
