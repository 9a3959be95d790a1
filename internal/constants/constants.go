package constants

import "time"

const (
	// ExpiringSoonDays is the window in which an active lease counts as expiring soon.
	ExpiringSoonDays = 30

	// RentEpsilon is the largest rent difference treated as equal.
	RentEpsilon = "0.01"

	RentCacheTTL = 10 * time.Minute

	InvoiceNumberPrefix = "INV"
)

// Cron specs for the scheduled maintenance jobs.
const (
	NightlyRentSyncSpec  = "0 2 * * *"
	LeaseExpirySweepSpec = "15 0 * * *"
	ExpiryNoticeSpec     = "0 9 * * *"
)
