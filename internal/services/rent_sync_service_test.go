package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
)

func newSync(e *env) *RentSyncService {
	s := NewRentSyncService(e.store, e.rents, e.props)
	s.now = clock
	return s
}

func TestRentSyncReconcilesDriftAndIsIdempotent(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 500000))
	e.rent(t, "R", "org-1", "P", "S", 450000)
	ctx := context.Background()

	report, err := newSync(e).Sync(ctx, RentSyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(WillUpdate))
	assert.Equal(t, 1, e.store.writes)

	r := e.mustRent(t, "R")
	assert.Equal(t, 500000.0, r.MonthlyRent.Float64())
	assert.Equal(t, 500000.0, r.BaseRent.Float64())
	assert.True(t, fixedNow.Equal(r.UpdatedAt))

	report, err = newSync(e).Sync(ctx, RentSyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Count(WillUpdate))
	assert.Equal(t, 1, report.Count(AlreadyInSync))
	assert.Equal(t, 1, e.store.writes, "second run performs no writes")
}

func TestRentSyncEpsilonAndLandAndSkips(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P1", "org-1", space("S1", 100.005), space("S2", 250))
	e.land(t, "L1", "org-1", models.Squatter{SquatterID: "Q1", AssignedArea: "Plot 4", MonthlyPayment: 80000, Status: models.SpaceStatusOccupied})
	e.rent(t, "r-eps", "org-1", "P1", "S1", 100)
	e.rent(t, "r-land", "org-1", "L1", "Q1", 75000)
	e.rent(t, "r-orphan", "org-1", "P1", "gone", 10)
	e.rent(t, "r-noprop", "org-1", "missing", "S1", 10)
	ctx := context.Background()

	report, err := newSync(e).Sync(ctx, RentSyncOptions{OrganizationID: "org-1"})
	require.NoError(t, err)

	byID := map[string]Outcome{}
	for _, o := range report.Outcomes {
		byID[o.ID] = o
	}
	assert.Equal(t, AlreadyInSync, byID["r-eps"].Disposition)
	assert.Equal(t, WillUpdate, byID["r-land"].Disposition)
	assert.Equal(t, Skipped, byID["r-orphan"].Disposition)
	assert.Equal(t, "no-space", byID["r-orphan"].Reason)
	assert.Equal(t, Skipped, byID["r-noprop"].Disposition)

	assert.Equal(t, 80000.0, e.mustRent(t, "r-land").MonthlyRent.Float64())
}

func TestRentSyncOnlyActiveAndScopedToOrganization(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P1", "org-1", space("S1", 300))
	e.building(t, "P2", "org-2", space("S1", 300))
	terminated := e.rent(t, "r-term", "org-1", "P1", "S1", 200)
	terminated.Status = models.LeaseStatusTerminated
	require.NoError(t, e.rents.Create(context.Background(), terminated))
	e.rent(t, "r-other", "org-2", "P2", "S1", 200)

	report, err := newSync(e).Sync(context.Background(), RentSyncOptions{OrganizationID: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Checked)
	assert.Equal(t, 200.0, e.mustRent(t, "r-other").MonthlyRent.Float64())
}

func TestRentSyncDryRunWritesNothing(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 500000))
	e.rent(t, "R", "org-1", "P", "S", 450000)

	report, err := newSync(e).Sync(context.Background(), RentSyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Count(WillUpdate))
	assert.Equal(t, 0, e.store.commits)
	assert.Equal(t, 450000.0, e.mustRent(t, "R").MonthlyRent.Float64())
}

func TestRentSyncBatchesAtFiveHundred(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.building(t, "P", "org-1", space("S", 1000))
	for i := 0; i < 1001; i++ {
		e.rent(t, fmt.Sprintf("r%04d", i), "org-1", "P", "S", 900)
	}
	e.store.commits = 0

	report, err := newSync(e).Sync(ctx, RentSyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1001, report.Count(WillUpdate))
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, 3, e.store.commits)
}

func TestRentSyncFailedBatchOnlyFailsItsRecords(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.building(t, "P", "org-1", space("S", 1000))
	for i := 0; i < 600; i++ {
		e.rent(t, fmt.Sprintf("r%04d", i), "org-1", "P", "S", 900)
	}
	e.store.commits = 0
	e.store.failCommit[1] = true

	report, err := newSync(e).Sync(ctx, RentSyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 500, report.Count(Failed))
	assert.Equal(t, 100, report.Count(WillUpdate))
	assert.Equal(t, 100, report.Committed)

	assert.Equal(t, 900.0, e.mustRent(t, "r0000").MonthlyRent.Float64())
	assert.Equal(t, 1000.0, e.mustRent(t, "r0599").MonthlyRent.Float64())
}

type flakyPropertyRepo struct {
	repositories.PropertyRepository
	failID string
}

func (f *flakyPropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	if id == f.failID {
		return nil, errors.New("deadline exceeded")
	}
	return f.PropertyRepository.GetByID(ctx, id)
}

func TestRentSyncPropertyFetchErrorIsPerRecord(t *testing.T) {
	e := newEnv(t)
	e.building(t, "bad", "org-1", space("S", 10))
	e.building(t, "good", "org-1", space("S", 20))
	e.rent(t, "r1", "org-1", "bad", "S", 1)
	e.rent(t, "r2", "org-1", "bad", "S", 1)
	e.rent(t, "r3", "org-1", "good", "S", 1)

	s := NewRentSyncService(e.store, e.rents, &flakyPropertyRepo{PropertyRepository: e.props, failID: "bad"})
	s.now = clock
	report, err := s.Sync(context.Background(), RentSyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(Failed))
	assert.Equal(t, 1, report.Count(WillUpdate))
	assert.Equal(t, 20.0, e.mustRent(t, "r3").MonthlyRent.Float64())
}

func TestRentSyncDuplicateSpaceIDsUseFirstMatch(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100), space("S", 999))
	e.rent(t, "R", "org-1", "P", "S", 50)

	_, err := newSync(e).Sync(context.Background(), RentSyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 100.0, e.mustRent(t, "R").MonthlyRent.Float64())
}

func TestRentSyncPlanHookRunsBeforeCommit(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S1", 500), space("S2", 300))
	e.rent(t, "R1", "org-1", "P", "S1", 450)
	e.rent(t, "R2", "org-1", "P", "S2", 300)
	ctx := context.Background()

	var planned []Outcome
	commitsAtPlan := -1
	svc := newSync(e)
	svc.OnPlan = func(r *Report) {
		commitsAtPlan = e.store.commits
		planned = append(planned, r.Outcomes...)
	}

	report, err := svc.Sync(ctx, RentSyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, commitsAtPlan, "plan is handed over before any batch commits")
	assert.Len(t, planned, 2)
	assert.Equal(t, 1, e.store.commits)
	assert.Equal(t, 1, report.Committed)
}

func TestOrgScopeAndAssignmentPlanHooksRunBeforeCommit(t *testing.T) {
	e := newEnv(t)
	e.building(t, "P", "org-1", space("S", 100))
	e.rent(t, "R", "org-2", "P", "S", 100)
	seedManager(t, e)
	ctx := context.Background()

	orgSvc := newOrgScope(e)
	seen := -1
	orgSvc.OnPlan = func(r *Report) {
		seen = e.store.commits
		assert.Equal(t, 1, r.Count(WillUpdate))
	}
	_, err := orgSvc.Fix(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, 0, seen)
	assert.Equal(t, 1, e.store.commits)

	assignSvc := newAssign(e)
	seen = -1
	assignSvc.OnPlan = func(r *Report) {
		seen = e.store.commits
		assert.Equal(t, 1, r.Count(WillUpdate))
	}
	_, err = assignSvc.Assign(ctx, "manager@acme.test", AssignScope{})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
	assert.Equal(t, 2, e.store.commits)
}
