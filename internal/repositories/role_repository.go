package repositories

import (
	"context"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
)

type RoleRepository interface {
	Create(ctx context.Context, r *models.Role) error
	GetByID(ctx context.Context, id string) (*models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	ListAll(ctx context.Context) ([]*models.Role, error)
}

type roleRepo struct {
	*BaseDocRepo[models.Role]
}

func NewRoleRepository(store docstore.Store) RoleRepository {
	return &roleRepo{BaseDocRepo: NewBaseDocRepo[models.Role](store, docstore.Roles)}
}

func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	return r.set(ctx, role.ID, role)
}

func (r *roleRepo) GetByID(ctx context.Context, id string) (*models.Role, error) {
	return r.get(ctx, id)
}

// GetByName returns the first role with that name, or nil.
func (r *roleRepo) GetByName(ctx context.Context, name string) (*models.Role, error) {
	roles, err := r.list(ctx, docstore.Where("name", docstore.OpEqual, name))
	if err != nil || len(roles) == 0 {
		return nil, err
	}
	return roles[0], nil
}

func (r *roleRepo) ListAll(ctx context.Context) ([]*models.Role, error) {
	return r.list(ctx)
}
