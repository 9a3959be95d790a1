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

// LeaseExpiryService moves active leases past their end date to expired.
// "Today" is evaluated in each property's own time zone.
type LeaseExpiryService struct {
	store    docstore.Store
	rentRepo repositories.RentRepository
	propRepo repositories.PropertyRepository
	orgRepo  repositories.OrganizationRepository
	now      func() time.Time

	OnPlan PlanHook
}

func NewLeaseExpiryService(
	store docstore.Store,
	rentRepo repositories.RentRepository,
	propRepo repositories.PropertyRepository,
	orgRepo repositories.OrganizationRepository,
) *LeaseExpiryService {
	return &LeaseExpiryService{store: store, rentRepo: rentRepo, propRepo: propRepo, orgRepo: orgRepo, now: time.Now}
}

func (s *LeaseExpiryService) ExpireLeases(ctx context.Context, orgID string, dryRun bool) (*Report, error) {
	records, err := s.rentRepo.ListActive(ctx, orgID)
	if err != nil {
		return nil, utils.StoreError("list active rent", orgID, err)
	}

	report := newReport(dryRun)
	report.Checked = len(records)
	props := newPropertyCache(s.propRepo)
	orgs := map[string]*models.Organization{}
	now := s.now()

	for _, rec := range records {
		if rec.LeaseEnd == nil || rec.LeaseEnd.IsZero() {
			report.add(rec.ID, AlreadyInSync, "open-ended", "")
			continue
		}
		prop, err := props.get(ctx, rec.PropertyID)
		if err != nil {
			report.add(rec.ID, Failed, "property-fetch", err.Error())
			continue
		}
		org, ok := orgs[rec.OrganizationID]
		if !ok {
			org, _ = s.orgRepo.GetByID(ctx, rec.OrganizationID)
			orgs[rec.OrganizationID] = org
		}

		today := localToday(now, prop, org)
		c := ClassifyLease(today, rec.LeaseEnd)
		if !c.IsExpired {
			report.add(rec.ID, AlreadyInSync, "", "")
			continue
		}

		report.add(rec.ID, WillUpdate, "lease-ended", fmt.Sprintf("ended %s (%d days ago)", rec.LeaseEnd, -*c.DaysUntilExpiry))
		report.stage(rec.ID, docstore.UpdateWrite(docstore.Rent, rec.ID, docstore.Patch{
			"status":    models.LeaseStatusExpired,
			"updatedAt": now.UTC(),
		}))
	}
	report.apply(ctx, s.store, s.OnPlan, "lease expiry")

	utils.Logger.WithFields(logrus.Fields{
		"checked": report.Checked,
		"expired": report.Count(WillUpdate),
		"errors":  report.Count(Failed),
		"dry_run": dryRun,
	}).Info("lease expiry sweep finished")
	return report, nil
}
