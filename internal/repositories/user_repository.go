package repositories

import (
	"context"
	"strings"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error)

	Patch(ctx context.Context, id string, p docstore.Patch) error
	UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (bool, error)
	UpdateWithRetry(ctx context.Context, id string, mutate func(*models.User) error) error
}

type userRepo struct {
	*BaseDocRepo[models.User]
}

func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepo{BaseDocRepo: NewBaseDocRepo[models.User](store, docstore.Users)}
}

func (r *userRepo) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.set(ctx, u.ID, u)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.get(ctx, id)
}

// GetByEmail matches the lower-cased address and returns nil when absent.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	users, err := r.list(ctx, docstore.Where("email", docstore.OpEqual, strings.ToLower(strings.TrimSpace(email))))
	if err != nil || len(users) == 0 {
		return nil, err
	}
	return users[0], nil
}

func (r *userRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.User, error) {
	return r.list(ctx, docstore.Where("organizationId", docstore.OpEqual, orgID))
}

func (r *userRepo) Patch(ctx context.Context, id string, p docstore.Patch) error {
	return r.patch(ctx, id, p)
}

func (r *userRepo) UpdateIfVersion(ctx context.Context, u *models.User, expected int64) (bool, error) {
	return r.updateIfVersion(ctx, u.ID, u, expected)
}

func (r *userRepo) UpdateWithRetry(ctx context.Context, id string, mutate func(*models.User) error) error {
	return WithRetry(ctx, defaultMaxRetries, id, r.GetByID, r.UpdateIfVersion, mutate)
}
