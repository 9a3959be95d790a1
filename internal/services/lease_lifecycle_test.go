package services

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

func TestComputeLeaseEnd(t *testing.T) {
	d := models.MustParseDate
	custom := d("2025-09-15")

	cases := []struct {
		name     string
		start    string
		period   models.LeasePeriodType
		months   int
		custom   *models.Date
		expected string
	}{
		{"yearly adds years then months", "2025-01-01", models.LeasePeriodYearly, 14, nil, "2026-03-01"},
		{"yearly whole years", "2024-02-29", models.LeasePeriodYearly, 12, nil, "2025-02-28"},
		{"monthly clamps to month end", "2025-01-31", models.LeasePeriodMonthly, 1, nil, "2025-02-28"},
		{"monthly leap year", "2024-01-31", models.LeasePeriodMonthly, 1, nil, "2024-02-29"},
		{"monthly across year", "2025-11-15", models.LeasePeriodMonthly, 3, nil, "2026-02-15"},
		{"empty period means monthly", "2025-03-10", "", 6, nil, "2025-09-10"},
		{"custom ignores duration", "2025-01-01", models.LeasePeriodCustom, 99, &custom, "2025-09-15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end, err := ComputeLeaseEnd(d(tc.start), tc.period, tc.months, tc.custom)
			require.NoError(t, err)
			require.NotNil(t, end)
			assert.Equal(t, tc.expected, end.String())
		})
	}
}

func TestComputeLeaseEndOpenEndedAndInvalid(t *testing.T) {
	start := models.MustParseDate("2025-01-01")

	end, err := ComputeLeaseEnd(start, models.LeasePeriodMonthly, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, end)

	end, err = ComputeLeaseEnd(start, models.LeasePeriodCustom, 12, nil)
	require.NoError(t, err)
	assert.Nil(t, end)

	before := models.MustParseDate("2024-12-31")
	_, err = ComputeLeaseEnd(start, models.LeasePeriodCustom, 0, &before)
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = ComputeLeaseEnd(start, "weekly", 1, nil)
	assert.True(t, errors.Is(err, utils.ErrValidation))
}

func TestClassifyLease(t *testing.T) {
	today := models.MustParseDate("2025-06-01")

	end := models.MustParseDate("2025-06-20")
	c := ClassifyLease(today, &end)
	assert.True(t, c.IsExpiringSoon)
	assert.False(t, c.IsExpired)
	require.NotNil(t, c.DaysUntilExpiry)
	assert.Equal(t, 19, *c.DaysUntilExpiry)

	open := ClassifyLease(today, nil)
	assert.False(t, open.IsExpired)
	assert.False(t, open.IsExpiringSoon)
	assert.Nil(t, open.DaysUntilExpiry)

	past := models.MustParseDate("2025-05-31")
	c = ClassifyLease(today, &past)
	assert.True(t, c.IsExpired)
	assert.Equal(t, -1, *c.DaysUntilExpiry)

	same := today
	c = ClassifyLease(today, &same)
	assert.False(t, c.IsExpired)
	assert.False(t, c.IsExpiringSoon)
	assert.Equal(t, 0, *c.DaysUntilExpiry)

	edge := models.MustParseDate("2025-07-01")
	c = ClassifyLease(today, &edge)
	assert.True(t, c.IsExpiringSoon)
	assert.Equal(t, 30, *c.DaysUntilExpiry)

	far := models.MustParseDate("2025-07-02")
	assert.False(t, ClassifyLease(today, &far).IsExpiringSoon)
}

func TestDisplayState(t *testing.T) {
	today := models.MustParseDate("2025-06-01")
	soon := models.MustParseDate("2025-06-10")
	rec := &models.RentRecord{Status: models.LeaseStatusActive, LeaseEnd: &soon}
	assert.Equal(t, "expiring-soon", DisplayState(rec, ClassifyLease(today, rec.LeaseEnd)))

	rec.Status = models.LeaseStatusTerminated
	assert.Equal(t, "terminated", DisplayState(rec, ClassifyLease(today, rec.LeaseEnd)))
}

func TestRenewalPatch(t *testing.T) {
	var rec models.RentRecord
	raw := `{"id":"r1","monthlyRent":"450000","baseRent":"450,000","securityDeposit":"900000",
		"rentEscalation":"5","paymentDueDate":"5","leaseDurationMonths":"12",
		"leaseStart":"2024-01-01","leaseEnd":"2024-12-31","status":"expired"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))

	today := models.DateOf(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), time.UTC)

	_, err := RenewalPatch(&rec, models.MustParseDate("2024-01-01"), today)
	assert.True(t, errors.Is(err, utils.ErrValidation))

	_, err = RenewalPatch(&rec, today, today)
	assert.True(t, errors.Is(err, utils.ErrValidation), "today is not strictly in the future")

	patch, err := RenewalPatch(&rec, models.MustParseDate("2026-06-01"), today)
	require.NoError(t, err)
	assert.Equal(t, models.LeaseStatusActive, patch["status"])
	assert.Equal(t, "2026-06-01", patch["leaseEnd"])
	assert.Equal(t, float64(450000), patch["monthlyRent"])
	assert.Equal(t, float64(450000), patch["baseRent"])
	assert.Equal(t, float64(900000), patch["securityDeposit"])
	assert.Equal(t, float64(5), patch["rentEscalation"])
	assert.Equal(t, float64(5), patch["paymentDueDate"])
	assert.Equal(t, float64(12), patch["leaseDurationMonths"])
}
