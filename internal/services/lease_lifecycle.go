package services

import (
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// ComputeLeaseEnd derives the lease end date. Monthly adds durationMonths;
// yearly adds whole years then the remaining months; custom returns
// customEnd and ignores the duration. Month overflow clamps to the last day
// of the target month. A non-positive duration yields an open-ended lease.
func ComputeLeaseEnd(
	start models.Date,
	periodType models.LeasePeriodType,
	durationMonths int,
	customEnd *models.Date,
) (*models.Date, error) {
	if start.IsZero() {
		return nil, utils.ValidationError("leaseStart is required")
	}

	switch periodType {
	case models.LeasePeriodCustom:
		if customEnd == nil || customEnd.IsZero() {
			return nil, nil
		}
		if !customEnd.After(start.Time) {
			return nil, utils.ValidationError("leaseEnd %s must be after leaseStart %s", customEnd, start)
		}
		end := *customEnd
		return &end, nil
	case models.LeasePeriodYearly:
		if durationMonths <= 0 {
			return nil, nil
		}
		end := start.AddYearsClamped(durationMonths / 12).AddMonthsClamped(durationMonths % 12)
		return &end, nil
	case models.LeasePeriodMonthly, "":
		if durationMonths <= 0 {
			return nil, nil
		}
		end := start.AddMonthsClamped(durationMonths)
		return &end, nil
	default:
		return nil, utils.ValidationError("unknown leasePeriodType %q", periodType)
	}
}

type LeaseClassification struct {
	IsExpired       bool `json:"isExpired"`
	IsExpiringSoon  bool `json:"isExpiringSoon"`
	DaysUntilExpiry *int `json:"daysUntilExpiry"`
}

// ClassifyLease reports expiry state relative to today. A nil leaseEnd is an
// open-ended lease and never expires.
func ClassifyLease(today models.Date, leaseEnd *models.Date) LeaseClassification {
	if leaseEnd == nil || leaseEnd.IsZero() {
		return LeaseClassification{}
	}
	days := today.DaysUntil(*leaseEnd)
	return LeaseClassification{
		IsExpired:       days < 0,
		IsExpiringSoon:  days > 0 && days <= constants.ExpiringSoonDays,
		DaysUntilExpiry: &days,
	}
}

// DisplayState is the status shown to users. "expiring-soon" is derived and
// never stored.
func DisplayState(rec *models.RentRecord, c LeaseClassification) string {
	if rec.Status != models.LeaseStatusActive {
		return string(rec.Status)
	}
	switch {
	case c.IsExpired:
		return string(models.LeaseStatusExpired)
	case c.IsExpiringSoon:
		return "expiring-soon"
	default:
		return string(models.LeaseStatusActive)
	}
}

// RenewalPatch builds the write that renews rec until newLeaseEnd. The lease
// is reactivated whatever its prior status, and numeric fields are written
// back as numbers.
func RenewalPatch(rec *models.RentRecord, newLeaseEnd, today models.Date) (docstore.Patch, error) {
	if newLeaseEnd.IsZero() {
		return nil, utils.ValidationError("newLeaseEnd is required")
	}
	if !newLeaseEnd.After(today.Time) {
		return nil, utils.ValidationError("newLeaseEnd %s must be after today (%s)", newLeaseEnd, today)
	}
	if !rec.LeaseStart.IsZero() && !newLeaseEnd.After(rec.LeaseStart.Time) {
		return nil, utils.ValidationError("newLeaseEnd %s must be after leaseStart %s", newLeaseEnd, rec.LeaseStart)
	}

	return docstore.Patch{
		"leaseEnd":            newLeaseEnd.String(),
		"status":              models.LeaseStatusActive,
		"monthlyRent":         rec.MonthlyRent.Float64(),
		"baseRent":            rec.BaseRent.Float64(),
		"securityDeposit":     rec.SecurityDeposit.Float64(),
		"rentEscalation":      rec.RentEscalation.Float64(),
		"paymentDueDate":      rec.PaymentDueDate.Float64(),
		"leaseDurationMonths": rec.LeaseDurationMonths.Float64(),
	}, nil
}
