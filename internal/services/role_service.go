package services

import (
	"context"
	"slices"
	"time"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

type RoleService struct {
	userRepo repositories.UserRepository
	roleRepo repositories.RoleRepository
	now      func() time.Time
}

func NewRoleService(userRepo repositories.UserRepository, roleRepo repositories.RoleRepository) *RoleService {
	return &RoleService{userRepo: userRepo, roleRepo: roleRepo, now: time.Now}
}

// AssignRole sets the user's role and copies the role's permissions onto the
// user. roleRef may be a role id or a role name. Organization roles can only
// be given to users of that organization.
func (s *RoleService) AssignRole(ctx context.Context, email, roleRef string, dryRun bool) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, utils.StoreError("get user by email", email, err)
	}
	if user == nil {
		return nil, utils.NotFoundError("user", email)
	}

	role, err := s.roleRepo.GetByID(ctx, roleRef)
	if err == nil && role == nil {
		role, err = s.roleRepo.GetByName(ctx, roleRef)
	}
	if err != nil {
		return nil, utils.StoreError("get role", roleRef, err)
	}
	if role == nil {
		return nil, utils.NotFoundError("role", roleRef)
	}
	if !role.IsGlobal() && role.OrganizationID != user.OrganizationID {
		return nil, utils.ValidationError("role %s belongs to another organization", role.Name)
	}

	perms := slices.Clone(role.Permissions)
	slices.Sort(perms)
	perms = slices.Compact(perms)

	if dryRun {
		preview := *user
		preview.RoleID = role.ID
		preview.Permissions = perms
		return &preview, nil
	}

	var updated *models.User
	err = s.userRepo.UpdateWithRetry(ctx, user.ID, func(u *models.User) error {
		u.RoleID = role.ID
		u.Permissions = perms
		u.UpdatedAt = s.now().UTC()
		updated = u
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "assign role", user.ID)
	}
	utils.Logger.Infof("Assigned role %s to user %s (%d permissions)", role.Name, user.Email, len(perms))
	return updated, nil
}
