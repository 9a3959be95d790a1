package dtos

import "github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"

type CreateInvoiceRequest struct {
	RentID      string        `json:"rentId" validate:"required"`
	Amount      models.Number `json:"amount" validate:"gt=0"`
	DueDate     *models.Date  `json:"dueDate" validate:"required"`
	Description string        `json:"description,omitempty"`
}

type RecordPaymentRequest struct {
	RentID        string        `json:"rentId" validate:"required"`
	InvoiceID     string        `json:"invoiceId,omitempty"`
	Amount        models.Number `json:"amount" validate:"gt=0"`
	LateFee       models.Number `json:"lateFee" validate:"gte=0"`
	PaymentDate   *models.Date  `json:"paymentDate" validate:"required"`
	PaymentMethod string        `json:"paymentMethod" validate:"required,oneof=cash bank_transfer mobile_money card cheque"`
	Reference     string        `json:"reference,omitempty"`
}

// InvoiceResponse adds the derived balance to an invoice.
type InvoiceResponse struct {
	models.Invoice
	RemainingAmount float64 `json:"remainingAmount"`
}

func NewInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	return InvoiceResponse{Invoice: *inv, RemainingAmount: inv.RemainingAmount()}
}
