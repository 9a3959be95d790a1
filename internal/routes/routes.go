package routes

const (
	// Health
	Health = "/health"

	// Rent
	Rent          = "/api/v1/rent"
	RentByID      = "/api/v1/rent/{id}"
	RentRenew     = "/api/v1/rent/{id}/renew"
	RentTerminate = "/api/v1/rent/{id}/terminate"

	// Properties
	Properties    = "/api/v1/properties"
	PropertyByID  = "/api/v1/properties/{id}"
	PropertySpace = "/api/v1/properties/{id}/spaces/{spaceId}"

	// Billing
	Invoices = "/api/v1/invoices"
	Payments = "/api/v1/payments"
)
