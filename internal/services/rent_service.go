package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/cache"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/dtos"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// RentView is a rent record with its derived lease state.
type RentView struct {
	models.RentRecord
	Classification LeaseClassification `json:"classification"`
	DisplayState   string              `json:"displayState"`
}

type RentService struct {
	store    docstore.Store
	rentRepo repositories.RentRepository
	propRepo repositories.PropertyRepository
	orgRepo  repositories.OrganizationRepository
	cache    cache.Cache
	pending  *cache.Speculative[models.RentRecord]
	now      func() time.Time
}

func NewRentService(
	store docstore.Store,
	rentRepo repositories.RentRepository,
	propRepo repositories.PropertyRepository,
	orgRepo repositories.OrganizationRepository,
	c cache.Cache,
) *RentService {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &RentService{
		store:    store,
		rentRepo: rentRepo,
		propRepo: propRepo,
		orgRepo:  orgRepo,
		cache:    c,
		pending:  cache.NewSpeculative[models.RentRecord](c, constants.RentCacheTTL),
		now:      time.Now,
	}
}

// Create assigns a tenant to a vacant space. The rent record and the space
// status change are committed in one batch.
func (s *RentService) Create(ctx context.Context, actor models.Actor, req dtos.CreateRentRequest) (*models.RentRecord, error) {
	if err := requireAny(actor, constants.PermRentCreate); err != nil {
		return nil, err
	}
	if req.LeaseStart == nil {
		return nil, utils.ValidationError("leaseStart is required")
	}
	if strings.TrimSpace(req.TenantName) == "" {
		return nil, utils.ValidationError("tenantName is required")
	}

	prop, err := s.loadProperty(ctx, actor, req.PropertyID)
	if err != nil {
		return nil, err
	}
	space, ok := models.ResolveSpace(prop, req.SpaceID)
	if !ok {
		return nil, utils.NotFoundError("space", req.SpaceID)
	}
	if st := space.Status(); st != "" && st != models.SpaceStatusVacant {
		return nil, utils.ValidationError("space %s is %s, not vacant", space.ID(), st)
	}
	existing, err := s.rentRepo.ListBySpace(ctx, prop.ID, space.ID())
	if err != nil {
		return nil, utils.StoreError("list rent by space", space.ID(), err)
	}
	for _, r := range existing {
		if r.IsActive() {
			return nil, utils.ValidationError("space %s already has active lease %s", space.ID(), r.ID)
		}
	}

	periodType := req.LeasePeriodType
	if periodType == "" {
		periodType = models.LeasePeriodMonthly
	}
	leaseEnd, err := ComputeLeaseEnd(*req.LeaseStart, periodType, req.LeaseDurationMonths.Int(), req.LeaseEnd)
	if err != nil {
		return nil, err
	}

	rent := models.Number(space.Rent())
	if req.MonthlyRent != nil {
		rent = *req.MonthlyRent
	}
	dueDay := req.PaymentDueDate
	if dueDay == 0 {
		dueDay = 1
	}

	now := s.now().UTC()
	rec := &models.RentRecord{
		ID:                  uuid.NewString(),
		OrganizationID:      prop.OrganizationID,
		PropertyID:          prop.ID,
		SpaceID:             space.ID(),
		SpaceName:           space.Name(),
		TenantName:          strings.TrimSpace(req.TenantName),
		TenantEmail:         strings.ToLower(strings.TrimSpace(req.TenantEmail)),
		TenantPhone:         strings.TrimSpace(req.TenantPhone),
		TenantIDNumber:      req.TenantIDNumber,
		MonthlyRent:         rent,
		BaseRent:            rent,
		SecurityDeposit:     req.SecurityDeposit,
		LeaseStart:          *req.LeaseStart,
		LeaseEnd:            leaseEnd,
		LeasePeriodType:     periodType,
		LeaseDurationMonths: req.LeaseDurationMonths,
		Status:              models.LeaseStatusActive,
		PaymentDueDate:      dueDay,
		RentEscalation:      req.RentEscalation,
		Notes:               req.Notes,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = docstore.NewBatch(s.store).
		Set(docstore.Rent, rec.ID, rec).
		Update(docstore.Properties, prop.ID, docstore.Patch{
			space.FieldPath("status"): models.SpaceStatusOccupied,
			"updatedAt":               now,
		}).
		Commit(ctx)
	if err != nil {
		return nil, utils.StoreError("create rent", rec.ID, err)
	}
	rec.SetRowVersion(1)

	utils.Logger.Infof("Created rent %s for space %s in property %s", rec.ID, rec.SpaceID, rec.PropertyID)
	return rec, nil
}

// Update applies a partial edit. The cached view shows the edit while the
// write is in flight and is restored if the write fails.
func (s *RentService) Update(ctx context.Context, actor models.Actor, id string, req dtos.UpdateRentRequest) (*models.RentRecord, error) {
	if err := requireAny(actor, constants.PermRentUpdate); err != nil {
		return nil, err
	}
	current, err := s.loadRent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	expected := current.GetRowVersion()

	updated, err := s.pending.Apply(ctx, cache.Key("rent", id), *current,
		func(r models.RentRecord) (models.RentRecord, error) {
			if err := applyRentEdits(&r, req); err != nil {
				return r, err
			}
			r.UpdatedAt = s.now().UTC()
			return r, nil
		},
		func(ctx context.Context, r models.RentRecord) (models.RentRecord, error) {
			ok, err := s.rentRepo.UpdateIfVersion(ctx, &r, expected)
			if err != nil {
				return r, utils.StoreError("update rent", id, err)
			}
			if !ok {
				return r, &utils.AppError{
					StatusCode: http.StatusConflict,
					Code:       utils.ErrCodeRowVersionConflict,
					Message:    "Rent record was modified by someone else; reload and retry",
					Err:        utils.ErrRowVersionConflict,
				}
			}
			r.SetRowVersion(expected + 1)
			return r, nil
		})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// applyRentEdits merges the non-nil fields of req and recomputes leaseEnd
// when any term field changed.
func applyRentEdits(r *models.RentRecord, req dtos.UpdateRentRequest) error {
	if req.TenantName != nil {
		name := strings.TrimSpace(*req.TenantName)
		if name == "" {
			return utils.ValidationError("tenantName cannot be empty")
		}
		r.TenantName = name
	}
	if req.TenantEmail != nil {
		r.TenantEmail = strings.ToLower(strings.TrimSpace(*req.TenantEmail))
	}
	if req.TenantPhone != nil {
		r.TenantPhone = strings.TrimSpace(*req.TenantPhone)
	}
	if req.MonthlyRent != nil {
		r.MonthlyRent = *req.MonthlyRent
	}
	if req.BaseRent != nil {
		r.BaseRent = *req.BaseRent
	}
	if req.SecurityDeposit != nil {
		r.SecurityDeposit = *req.SecurityDeposit
	}
	if req.PaymentDueDate != nil {
		r.PaymentDueDate = *req.PaymentDueDate
	}
	if req.RentEscalation != nil {
		r.RentEscalation = *req.RentEscalation
	}
	if req.Notes != nil {
		r.Notes = *req.Notes
	}

	termsChanged := req.LeaseStart != nil || req.LeasePeriodType != nil || req.LeaseDurationMonths != nil || req.LeaseEnd != nil
	if req.LeaseStart != nil {
		r.LeaseStart = *req.LeaseStart
	}
	if req.LeasePeriodType != nil {
		r.LeasePeriodType = *req.LeasePeriodType
	}
	if req.LeaseDurationMonths != nil {
		r.LeaseDurationMonths = *req.LeaseDurationMonths
	}
	if termsChanged {
		customEnd := r.LeaseEnd
		if req.LeaseEnd != nil {
			customEnd = req.LeaseEnd
		}
		end, err := ComputeLeaseEnd(r.LeaseStart, r.LeasePeriodType, r.LeaseDurationMonths.Int(), customEnd)
		if err != nil {
			return err
		}
		r.LeaseEnd = end
	}
	return nil
}

// Renew extends the lease to newLeaseEnd and reactivates it whatever its
// status. The new end must be after today at the property.
func (s *RentService) Renew(ctx context.Context, actor models.Actor, id string, newLeaseEnd models.Date) (*models.RentRecord, error) {
	if err := requireAny(actor, constants.PermRentUpdate); err != nil {
		return nil, err
	}
	rec, err := s.loadRent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	// Any prior status renews, but a space re-let after termination or
	// expiry stays with its current tenant.
	others, err := s.rentRepo.ListBySpace(ctx, rec.PropertyID, rec.SpaceID)
	if err != nil {
		return nil, utils.StoreError("list rent by space", rec.SpaceID, err)
	}
	for _, r := range others {
		if r.ID != rec.ID && r.IsActive() {
			return nil, utils.ValidationError("space %s already has active lease %s", rec.SpaceID, r.ID)
		}
	}

	prop, org := s.propertyAndOrg(ctx, rec)
	now := s.now()
	patch, err := RenewalPatch(rec, newLeaseEnd, localToday(now, prop, org))
	if err != nil {
		return nil, err
	}
	patch["updatedAt"] = now.UTC()

	batch := docstore.NewBatch(s.store).Update(docstore.Rent, id, patch)
	if space, ok := models.ResolveSpace(prop, rec.SpaceID); ok && space.Status() != models.SpaceStatusOccupied {
		batch.Update(docstore.Properties, prop.ID, docstore.Patch{
			space.FieldPath("status"): models.SpaceStatusOccupied,
			"updatedAt":               now.UTC(),
		})
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, utils.StoreError("renew rent", id, err)
	}
	s.invalidate(ctx, id)
	return s.loadRent(ctx, actor, id)
}

// Terminate ends the lease and frees the space.
func (s *RentService) Terminate(ctx context.Context, actor models.Actor, id string) (*models.RentRecord, error) {
	if err := requireAny(actor, constants.PermRentUpdate); err != nil {
		return nil, err
	}
	rec, err := s.loadRent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if rec.Status == models.LeaseStatusTerminated {
		return nil, utils.ValidationError("rent %s is already terminated", id)
	}

	now := s.now().UTC()
	batch := docstore.NewBatch(s.store).Update(docstore.Rent, id, docstore.Patch{
		"status":    models.LeaseStatusTerminated,
		"updatedAt": now,
	})
	prop, _ := s.propertyAndOrg(ctx, rec)
	if space, ok := models.ResolveSpace(prop, rec.SpaceID); ok {
		batch.Update(docstore.Properties, prop.ID, docstore.Patch{
			space.FieldPath("status"): models.SpaceStatusVacant,
			"updatedAt":               now,
		})
	} else {
		utils.Logger.Warnf("Terminating rent %s: space %s not found in property %s", id, rec.SpaceID, rec.PropertyID)
	}
	if err := batch.Commit(ctx); err != nil {
		return nil, utils.StoreError("terminate rent", id, err)
	}
	s.invalidate(ctx, id)
	return s.loadRent(ctx, actor, id)
}

// Get returns the record with its derived lease state, served from cache
// when possible.
func (s *RentService) Get(ctx context.Context, actor models.Actor, id string) (*RentView, error) {
	if err := requireAny(actor, constants.PermRentRead); err != nil {
		return nil, err
	}
	rec, err := cache.GetOrLoad(ctx, s.cache, cache.Key("rent", id), constants.RentCacheTTL,
		func(ctx context.Context) (*models.RentRecord, error) {
			return s.loadRent(ctx, actor, id)
		})
	if err != nil {
		return nil, err
	}
	if rec.OrganizationID != actor.OrganizationID {
		return nil, utils.NotFoundError("rent", id)
	}
	prop, org := s.propertyAndOrg(ctx, rec)
	view := s.view(rec, localToday(s.now(), prop, org))
	return &view, nil
}

func (s *RentService) ListForActor(ctx context.Context, actor models.Actor) ([]RentView, error) {
	if err := requireAny(actor, constants.PermRentRead); err != nil {
		return nil, err
	}
	records, err := s.rentRepo.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, utils.StoreError("list rent", actor.OrganizationID, err)
	}
	org, _ := s.orgRepo.GetByID(ctx, actor.OrganizationID)
	props := newPropertyCache(s.propRepo)
	now := s.now()

	out := make([]RentView, 0, len(records))
	for _, rec := range records {
		prop, _ := props.get(ctx, rec.PropertyID)
		out = append(out, s.view(rec, localToday(now, prop, org)))
	}
	return out, nil
}

func (s *RentService) view(rec *models.RentRecord, today models.Date) RentView {
	c := ClassifyLease(today, rec.LeaseEnd)
	return RentView{RentRecord: *rec, Classification: c, DisplayState: DisplayState(rec, c)}
}

func (s *RentService) loadRent(ctx context.Context, actor models.Actor, id string) (*models.RentRecord, error) {
	rec, err := s.rentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.StoreError("get rent", id, err)
	}
	if rec == nil || rec.OrganizationID != actor.OrganizationID {
		return nil, utils.NotFoundError("rent", id)
	}
	return rec, nil
}

func (s *RentService) loadProperty(ctx context.Context, actor models.Actor, id string) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.StoreError("get property", id, err)
	}
	if p == nil || p.OrganizationID != actor.OrganizationID {
		return nil, utils.NotFoundError("property", id)
	}
	return p, nil
}

// propertyAndOrg loads what localToday needs. Lookup failures fall back to UTC.
func (s *RentService) propertyAndOrg(ctx context.Context, rec *models.RentRecord) (*models.Property, *models.Organization) {
	prop, err := s.propRepo.GetByID(ctx, rec.PropertyID)
	if err != nil {
		utils.Logger.WithError(err).Warnf("property lookup failed for rent %s", rec.ID)
	}
	org, err := s.orgRepo.GetByID(ctx, rec.OrganizationID)
	if err != nil {
		utils.Logger.WithError(err).Warnf("organization lookup failed for rent %s", rec.ID)
	}
	return prop, org
}

func (s *RentService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Delete(ctx, cache.Key("rent", id)); err != nil {
		utils.Logger.WithError(err).Warnf("cache invalidation failed for rent %s", id)
	}
}
