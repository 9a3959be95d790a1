package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

const (
	SeedOrganizationID = "11111111-1111-1111-1111-111111111111"
	SeedAdminID        = "22222222-2222-2222-2222-222222222222"
	SeedManagerID      = "22222222-2222-2222-2222-222222222223"
	SeedBuildingID     = "33333333-3333-3333-3333-333333333333"
	SeedLandID         = "33333333-3333-3333-3333-333333333334"

	SeedAdminEmail   = "admin@demo.propertyhub.app"
	SeedManagerEmail = "manager@demo.propertyhub.app"
)

/*
SeedAllTestData writes a demo organization with global roles, an admin and a
manager, one building, one plot of land and two leases. It does nothing when
the demo organization already exists.
*/
func SeedAllTestData(ctx context.Context, store docstore.Store) error {
	orgRepo := repositories.NewOrganizationRepository(store)
	if existing, err := orgRepo.GetByID(ctx, SeedOrganizationID); err != nil {
		return fmt.Errorf("check existing seed organization: %w", err)
	} else if existing != nil {
		utils.Logger.Info("seed data already present; skipping seeding")
		return nil
	}

	now := time.Now().UTC()
	batch := docstore.NewBatch(store)

	for name, perms := range constants.DefaultRolePermissions {
		batch.Set(docstore.Roles, "role-"+name, &models.Role{
			ID:          "role-" + name,
			Name:        name,
			DisplayName: name,
			Permissions: perms,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	batch.Set(docstore.Organizations, SeedOrganizationID, &models.Organization{
		ID:     SeedOrganizationID,
		Name:   "Demo Estates",
		Status: models.OrganizationStatusActive,
		Settings: models.OrganizationSettings{
			Currency: "UGX",
			Timezone: "Africa/Kampala",
			Locale:   "en-UG",
		},
		CreatedAt: now,
		UpdatedAt: now,
	})

	batch.Set(docstore.Users, SeedAdminID, &models.User{
		ID:             SeedAdminID,
		Email:          SeedAdminEmail,
		DisplayName:    "Demo Admin",
		OrganizationID: SeedOrganizationID,
		RoleID:         "role-" + constants.RoleOrgAdmin,
		Permissions:    constants.DefaultRolePermissions[constants.RoleOrgAdmin],
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	batch.Set(docstore.Users, SeedManagerID, &models.User{
		ID:             SeedManagerID,
		Email:          SeedManagerEmail,
		DisplayName:    "Demo Manager",
		OrganizationID: SeedOrganizationID,
		RoleID:         "role-" + constants.RolePropertyMgr,
		Permissions:    constants.DefaultRolePermissions[constants.RolePropertyMgr],
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	})

	batch.Set(docstore.Properties, SeedBuildingID, &models.Property{
		ID:             SeedBuildingID,
		OrganizationID: SeedOrganizationID,
		Name:           "Demo Plaza",
		Type:           models.PropertyTypeBuilding,
		Status:         "active",
		Location: models.Location{
			Address:   "Plot 12 Kampala Road",
			City:      "Kampala",
			Country:   "UG",
			Latitude:  0.3136,
			Longitude: 32.5811,
		},
		BuildingDetails: &models.BuildingDetails{Floors: []models.Floor{
			{FloorNumber: 0, Spaces: []models.BuildingSpace{
				{SpaceID: "G-01", SpaceName: "Shop G-01", MonthlyRent: 500000, Status: models.SpaceStatusOccupied},
				{SpaceID: "G-02", SpaceName: "Shop G-02", MonthlyRent: 450000, Status: models.SpaceStatusVacant},
			}},
			{FloorNumber: 1, Spaces: []models.BuildingSpace{
				{SpaceID: "1-01", SpaceName: "Office 1-01", MonthlyRent: 800000, Status: models.SpaceStatusVacant},
			}},
		}},
		AssignedManagers: []string{SeedManagerID},
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	batch.Set(docstore.Properties, SeedLandID, &models.Property{
		ID:             SeedLandID,
		OrganizationID: SeedOrganizationID,
		Name:           "Demo Farmland",
		Type:           models.PropertyTypeLand,
		Status:         "active",
		Location:       models.Location{Address: "Mukono", Country: "UG", TimeZone: "Africa/Kampala"},
		LandDetails: &models.LandDetails{Squatters: []models.Squatter{
			{SquatterID: "SQ-1", SquatterName: "North plot", AssignedArea: "North", MonthlyPayment: 60000, Status: models.SpaceStatusOccupied},
		}},
		AssignedManagers: []string{},
		CreatedAt:        now,
		UpdatedAt:        now,
	})

	// the first lease carries a stale amount so a rent sync has work to do
	start := models.DateOf(now, time.UTC).AddMonthsClamped(-11)
	end := start.AddMonthsClamped(12)
	batch.Set(docstore.Rent, "rent-demo-1", &models.RentRecord{
		ID:                  "rent-demo-1",
		OrganizationID:      SeedOrganizationID,
		PropertyID:          SeedBuildingID,
		SpaceID:             "G-01",
		SpaceName:           "Shop G-01",
		TenantName:          "Demo Tenant",
		TenantEmail:         "tenant@demo.propertyhub.app",
		MonthlyRent:         450000,
		BaseRent:            450000,
		LeaseStart:          start,
		LeaseEnd:            &end,
		LeasePeriodType:     models.LeasePeriodYearly,
		LeaseDurationMonths: 12,
		Status:              models.LeaseStatusActive,
		PaymentDueDate:      5,
		CreatedAt:           now,
		UpdatedAt:           now,
	})
	batch.Set(docstore.Rent, "rent-demo-2", &models.RentRecord{
		ID:              "rent-demo-2",
		OrganizationID:  SeedOrganizationID,
		PropertyID:      SeedLandID,
		SpaceID:         "SQ-1",
		SpaceName:       "North plot",
		TenantName:      "Demo Farmer",
		TenantPhone:     "+256700000000",
		MonthlyRent:     60000,
		BaseRent:        60000,
		LeaseStart:      start,
		LeasePeriodType: models.LeasePeriodMonthly,
		Status:          models.LeaseStatusActive,
		PaymentDueDate:  1,
		CreatedAt:       now,
		UpdatedAt:       now,
	})

	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("commit seed batch: %w", err)
	}
	utils.Logger.Infof("Seeded demo organization %s (%d documents)", SeedOrganizationID, batch.Len())
	return nil
}
