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

type RentSyncOptions struct {
	// OrganizationID limits the run to one organization; empty means all.
	OrganizationID string
	DryRun         bool
}

// RentSyncService copies each space's rent onto the active rent records that
// reference it.
type RentSyncService struct {
	store    docstore.Store
	rentRepo repositories.RentRepository
	propRepo repositories.PropertyRepository
	now      func() time.Time

	// OnPlan, when set, runs after every record is classified and before the
	// first batch is committed.
	OnPlan PlanHook
}

func NewRentSyncService(
	store docstore.Store,
	rentRepo repositories.RentRepository,
	propRepo repositories.PropertyRepository,
) *RentSyncService {
	return &RentSyncService{store: store, rentRepo: rentRepo, propRepo: propRepo, now: time.Now}
}

// Sync reconciles monthlyRent and baseRent of active records with their
// space. Property read failures are recorded per record; a failed batch only
// fails the records it held.
func (s *RentSyncService) Sync(ctx context.Context, opts RentSyncOptions) (*Report, error) {
	records, err := s.rentRepo.ListActive(ctx, opts.OrganizationID)
	if err != nil {
		return nil, utils.StoreError("list active rent", opts.OrganizationID, err)
	}

	report := newReport(opts.DryRun)
	report.Checked = len(records)
	props := newPropertyCache(s.propRepo)
	warnedDupes := map[string]bool{}
	now := s.now().UTC()

	for _, rec := range records {
		log := utils.Logger.WithFields(logrus.Fields{"rent_id": rec.ID, "property_id": rec.PropertyID})

		prop, err := props.get(ctx, rec.PropertyID)
		if err != nil {
			log.WithError(err).Error("property fetch failed")
			report.add(rec.ID, Failed, "property-fetch", err.Error())
			continue
		}
		if prop == nil {
			report.add(rec.ID, Skipped, "no-property", "")
			continue
		}
		if dups := models.DuplicateSpaceIDs(prop); len(dups) > 0 && !warnedDupes[prop.ID] {
			warnedDupes[prop.ID] = true
			log.Warnf("property has duplicate space ids %v; first match is used", dups)
		}

		space, ok := models.ResolveSpace(prop, rec.SpaceID)
		if !ok {
			log.Warnf("space %q not found", rec.SpaceID)
			report.add(rec.ID, Skipped, "no-space", rec.SpaceID)
			continue
		}

		want := space.Rent()
		if !rentDiffers(want, rec.MonthlyRent.Float64()) {
			report.add(rec.ID, AlreadyInSync, "", "")
			continue
		}

		report.add(rec.ID, WillUpdate, "", fmt.Sprintf("%.2f -> %.2f", rec.MonthlyRent.Float64(), want))
		report.stage(rec.ID, docstore.UpdateWrite(docstore.Rent, rec.ID, docstore.Patch{
			"monthlyRent": want,
			"baseRent":    want,
			"updatedAt":   now,
		}))
	}

	report.apply(ctx, s.store, s.OnPlan, "rent sync")

	utils.Logger.WithFields(logrus.Fields{
		"checked": report.Checked,
		"updated": report.Count(WillUpdate),
		"in_sync": report.Count(AlreadyInSync),
		"skipped": report.Count(Skipped),
		"errors":  report.Count(Failed),
		"dry_run": opts.DryRun,
		"batches": report.Batches,
	}).Info("rent sync finished")
	return report, nil
}
