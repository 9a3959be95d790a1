package services

import (
	"context"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// AssignScope selects which of the manager's organization properties to
// assign. Empty PropertyIDs means all of them.
type AssignScope struct {
	PropertyIDs []string
	DryRun      bool
}

type ManagerAssignmentService struct {
	store    docstore.Store
	userRepo repositories.UserRepository
	propRepo repositories.PropertyRepository
	now      func() time.Time

	OnPlan PlanHook
}

func NewManagerAssignmentService(
	store docstore.Store,
	userRepo repositories.UserRepository,
	propRepo repositories.PropertyRepository,
) *ManagerAssignmentService {
	return &ManagerAssignmentService{store: store, userRepo: userRepo, propRepo: propRepo, now: time.Now}
}

// Assign adds the manager to assignedManagers of each property in scope.
// Properties that already list the manager are left untouched.
func (s *ManagerAssignmentService) Assign(ctx context.Context, email string, scope AssignScope) (*Report, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}

	props, err := s.propRepo.ListByOrganization(ctx, user.OrganizationID)
	if err != nil {
		return nil, utils.StoreError("list properties", user.OrganizationID, err)
	}

	report := newReport(scope.DryRun)
	byID := make(map[string]*models.Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}

	targets := props
	if len(scope.PropertyIDs) > 0 {
		targets = nil
		for _, id := range utils.UniqueStrings(scope.PropertyIDs) {
			p, ok := byID[id]
			if !ok {
				report.add(id, Skipped, "not-in-organization", user.OrganizationID)
				continue
			}
			targets = append(targets, p)
		}
	}
	report.Checked = len(targets)

	now := s.now().UTC()
	for _, p := range targets {
		if p.HasManager(user.ID) {
			report.add(p.ID, AlreadyInSync, "already-assigned", "")
			continue
		}
		report.add(p.ID, WillUpdate, "", p.Name)
		managers := append(slices.Clone(p.AssignedManagers), user.ID)
		report.stage(p.ID, docstore.UpdateWrite(docstore.Properties, p.ID, docstore.Patch{
			"assignedManagers": managers,
			"updatedAt":        now,
		}))
	}
	report.apply(ctx, s.store, s.OnPlan, "manager assignment")

	utils.Logger.WithFields(logrus.Fields{
		"manager_id":       user.ID,
		"organization_id":  user.OrganizationID,
		"assigned":         report.Count(WillUpdate),
		"already_assigned": report.Count(AlreadyInSync),
		"skipped":          report.Count(Skipped),
		"dry_run":          scope.DryRun,
	}).Info("manager assignment finished")
	return report, nil
}

type PropertySummary struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	AssignedManagers []string `json:"assignedManagers"`
}

// PermissionDiagnosis explains what the property list of a user resolves to.
type PermissionDiagnosis struct {
	UserID             string            `json:"userId"`
	Email              string            `json:"email"`
	OrganizationID     string            `json:"organizationId"`
	RoleID             string            `json:"roleId"`
	Permissions        []string          `json:"permissions"`
	MatchedScope       string            `json:"matchedScope"`
	OrganizationTotal  int               `json:"organizationTotal"`
	AssignedProperties []PropertySummary `json:"assignedProperties"`
	Visible            []PropertySummary `json:"visible"`
}

// Diagnose recomputes the filtered property list for a user. It writes nothing.
func (s *ManagerAssignmentService) Diagnose(ctx context.Context, email string) (*PermissionDiagnosis, error) {
	user, err := s.lookupUser(ctx, email)
	if err != nil {
		return nil, err
	}
	props, err := s.propRepo.ListByOrganization(ctx, user.OrganizationID)
	if err != nil {
		return nil, utils.StoreError("list properties", user.OrganizationID, err)
	}

	actor := models.ActorFromUser(user)
	d := &PermissionDiagnosis{
		UserID:            user.ID,
		Email:             user.Email,
		OrganizationID:    user.OrganizationID,
		RoleID:            user.RoleID,
		Permissions:       user.Permissions,
		MatchedScope:      matchedReadScope(actor),
		OrganizationTotal: len(props),
	}
	for _, p := range props {
		if p.HasManager(user.ID) {
			d.AssignedProperties = append(d.AssignedProperties, summarize(p))
		}
	}
	for _, p := range FilterPropertiesForUser(actor, props) {
		d.Visible = append(d.Visible, summarize(p))
	}
	return d, nil
}

func (s *ManagerAssignmentService) lookupUser(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, utils.ValidationError("manager email is required")
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, utils.StoreError("get user by email", email, err)
	}
	if user == nil {
		return nil, utils.NotFoundError("user", email)
	}
	return user, nil
}

func summarize(p *models.Property) PropertySummary {
	return PropertySummary{ID: p.ID, Name: p.Name, AssignedManagers: p.AssignedManagers}
}

func matchedReadScope(actor models.Actor) string {
	for _, scope := range []string{
		constants.PermPropertiesReadAll,
		constants.PermPropertiesReadOrganization,
		constants.PermPropertiesReadAssigned,
	} {
		if actor.Can(scope) {
			return scope
		}
	}
	return ""
}

// FilterPropertiesForUser returns the properties an actor may list.
// read:all and read:organization see every property of the actor's
// organization, read:assigned sees the ones naming the actor as manager.
func FilterPropertiesForUser(actor models.Actor, props []*models.Property) []*models.Property {
	var out []*models.Property
	switch matchedReadScope(actor) {
	case constants.PermPropertiesReadAll, constants.PermPropertiesReadOrganization:
		for _, p := range props {
			if p.OrganizationID == actor.OrganizationID {
				out = append(out, p)
			}
		}
	case constants.PermPropertiesReadAssigned:
		for _, p := range props {
			if p.OrganizationID == actor.OrganizationID && p.HasManager(actor.UserID) {
				out = append(out, p)
			}
		}
	}
	return out
}
