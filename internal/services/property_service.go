package services

import (
	"context"
	"strings"
	"time"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/dtos"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

type PropertyService struct {
	propRepo repositories.PropertyRepository
	now      func() time.Time
}

func NewPropertyService(propRepo repositories.PropertyRepository) *PropertyService {
	return &PropertyService{propRepo: propRepo, now: time.Now}
}

// ListForActor returns the organization's properties filtered by the
// actor's read scope.
func (s *PropertyService) ListForActor(ctx context.Context, actor models.Actor) ([]*models.Property, error) {
	props, err := s.propRepo.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, utils.StoreError("list properties", actor.OrganizationID, err)
	}
	out := FilterPropertiesForUser(actor, props)
	if out == nil {
		out = []*models.Property{}
	}
	return out, nil
}

func (s *PropertyService) Get(ctx context.Context, actor models.Actor, id string) (*models.Property, error) {
	p, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(FilterPropertiesForUser(actor, []*models.Property{p})) == 0 {
		return nil, utils.PermissionError(constants.PermPropertiesReadOrganization)
	}
	return p, nil
}

// Update replaces the provided sections of a property. Duplicate space ids
// and unknown space statuses are rejected before anything is written.
func (s *PropertyService) Update(ctx context.Context, actor models.Actor, id string, req dtos.UpdatePropertyRequest) (*models.Property, error) {
	current, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := canEditProperty(actor, current); err != nil {
		return nil, err
	}

	apply := func(p *models.Property) error {
		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}
		if req.Status != nil {
			p.Status = *req.Status
		}
		if req.Location != nil {
			p.Location = *req.Location
		}
		if req.BuildingDetails != nil {
			if p.Type != models.PropertyTypeBuilding {
				return utils.ValidationError("buildingDetails not allowed on a %s property", p.Type)
			}
			p.BuildingDetails = req.BuildingDetails
		}
		if req.LandDetails != nil {
			if p.Type != models.PropertyTypeLand {
				return utils.ValidationError("landDetails not allowed on a %s property", p.Type)
			}
			p.LandDetails = req.LandDetails
		}
		if err := ValidatePropertySpaces(p); err != nil {
			return err
		}
		p.UpdatedAt = s.now().UTC()
		return nil
	}

	var updated *models.Property
	err = s.propRepo.UpdateWithRetry(ctx, id, func(p *models.Property) error {
		if err := apply(p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, asAppError(err, "update property", id)
	}
	return updated, nil
}

// UpdateSpace writes only the named fields of one space entry.
func (s *PropertyService) UpdateSpace(ctx context.Context, actor models.Actor, propertyID, spaceID string, req dtos.UpdateSpaceRequest) (*models.Property, error) {
	p, err := s.load(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}
	if err := canEditProperty(actor, p); err != nil {
		return nil, err
	}

	ref, ok := models.ResolveSpace(p, spaceID)
	if !ok {
		return nil, utils.NotFoundError("space", spaceID)
	}

	patch := docstore.Patch{}
	if req.Name != nil {
		patch[ref.FieldPath("name")] = strings.TrimSpace(*req.Name)
	}
	if req.MonthlyRent != nil {
		patch[ref.FieldPath("rent")] = req.MonthlyRent.Float64()
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, utils.ValidationError("invalid space status %q", *req.Status)
		}
		patch[ref.FieldPath("status")] = *req.Status
	}
	if req.Description != nil {
		patch[ref.FieldPath("description")] = *req.Description
	}
	if len(patch) == 0 {
		return p, nil
	}
	patch["updatedAt"] = s.now().UTC()

	if err := s.propRepo.Patch(ctx, propertyID, patch); err != nil {
		return nil, utils.StoreError("patch space", propertyID+"/"+spaceID, err)
	}
	return s.load(ctx, actor, propertyID)
}

func (s *PropertyService) load(ctx context.Context, actor models.Actor, id string) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.StoreError("get property", id, err)
	}
	if p == nil || p.OrganizationID != actor.OrganizationID {
		return nil, utils.NotFoundError("property", id)
	}
	return p, nil
}

func canEditProperty(actor models.Actor, p *models.Property) error {
	if actor.Can(constants.PermPropertiesUpdate) {
		return nil
	}
	if actor.Can(constants.PermPropertiesUpdateAssigned) && p.HasManager(actor.UserID) {
		return nil
	}
	return utils.PermissionError(constants.PermPropertiesUpdate)
}

// ValidatePropertySpaces rejects duplicate space ids and unknown statuses.
func ValidatePropertySpaces(p *models.Property) error {
	if dups := models.DuplicateSpaceIDs(p); len(dups) > 0 {
		return utils.ValidationError("duplicate space ids: %s", strings.Join(dups, ", "))
	}
	for _, sp := range models.Spaces(p) {
		if sp.ID() == "" {
			return utils.ValidationError("space without id in property %s", p.ID)
		}
		if sp.Status() != "" && !sp.Status().Valid() {
			return utils.ValidationError("space %s has invalid status %q", sp.ID(), sp.Status())
		}
	}
	return nil
}
