package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// OrgScopeService keeps rent.organizationId equal to the organization that
// owns the rent record's property.
type OrgScopeService struct {
	store    docstore.Store
	orgRepo  repositories.OrganizationRepository
	propRepo repositories.PropertyRepository
	rentRepo repositories.RentRepository
	now      func() time.Time

	OnPlan PlanHook
}

func NewOrgScopeService(
	store docstore.Store,
	orgRepo repositories.OrganizationRepository,
	propRepo repositories.PropertyRepository,
	rentRepo repositories.RentRepository,
) *OrgScopeService {
	return &OrgScopeService{store: store, orgRepo: orgRepo, propRepo: propRepo, rentRepo: rentRepo, now: time.Now}
}

// Check reports mis-scoped records without writing.
func (s *OrgScopeService) Check(ctx context.Context, orgID string) (*Report, error) {
	return s.run(ctx, orgID, true)
}

// Fix rewrites organizationId on every mis-scoped record.
func (s *OrgScopeService) Fix(ctx context.Context, orgID string) (*Report, error) {
	return s.run(ctx, orgID, false)
}

func (s *OrgScopeService) run(ctx context.Context, orgID string, dryRun bool) (*Report, error) {
	checked, misScoped, err := s.detect(ctx, orgID)
	if err != nil {
		return nil, err
	}

	report := newReport(dryRun)
	report.Checked = len(checked)
	flagged := map[string]bool{}
	for _, rec := range misScoped {
		flagged[rec.ID] = true
	}

	now := s.now().UTC()
	for _, rec := range checked {
		if !flagged[rec.ID] {
			report.add(rec.ID, AlreadyInSync, "", "")
			continue
		}
		from := rec.OrganizationID
		if from == "" {
			from = "<missing>"
		}
		report.add(rec.ID, WillUpdate, "organization-mismatch", fmt.Sprintf("%s -> %s", from, orgID))
		report.stage(rec.ID, docstore.UpdateWrite(docstore.Rent, rec.ID, docstore.Patch{
			"organizationId": orgID,
			"updatedAt":      now,
		}))
	}
	report.apply(ctx, s.store, s.OnPlan, "org scope")

	utils.Logger.WithFields(logrus.Fields{
		"organization_id": orgID,
		"checked":         report.Checked,
		"needs_fix":       report.Count(WillUpdate),
		"fixed":           report.Committed,
		"dry_run":         dryRun,
	}).Info("org scope run finished")
	return report, nil
}

// detect is shared by Check and Fix. It returns every rent record attached
// to the organization's properties and the subset whose organizationId is
// missing or wrong.
func (s *OrgScopeService) detect(ctx context.Context, orgID string) (checked, misScoped []*models.RentRecord, err error) {
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, nil, utils.StoreError("get organization", orgID, err)
	}
	if org == nil {
		return nil, nil, utils.NotFoundError("organization", orgID)
	}

	props, err := s.propRepo.ListByOrganization(ctx, org.ID)
	if err != nil {
		return nil, nil, utils.StoreError("list properties", orgID, err)
	}
	ids := make([]string, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}

	records, err := s.rentRepo.ListByPropertyIDs(ctx, ids)
	if err != nil {
		return nil, nil, utils.StoreError("list rent by property", orgID, err)
	}
	for _, rec := range records {
		if rec.OrganizationID != org.ID {
			misScoped = append(misScoped, rec)
		}
	}
	return records, misScoped, nil
}
