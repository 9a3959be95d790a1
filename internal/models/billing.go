package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusPending       InvoiceStatus = "pending"
	InvoiceStatusPartiallyPaid InvoiceStatus = "partially_paid"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusOverdue       InvoiceStatus = "overdue"
	InvoiceStatusCancelled     InvoiceStatus = "cancelled"
)

// Invoice never stores a remaining balance; RemainingAmount derives it.
type Invoice struct {
	Versioned

	ID             string        `json:"id"`
	OrganizationID string        `json:"organizationId"`
	InvoiceNumber  string        `json:"invoiceNumber"`
	RentID         string        `json:"rentId"`
	PropertyID     string        `json:"propertyId"`
	Amount         Number        `json:"amount"`
	PaidAmount     Number        `json:"paidAmount"`
	Status         InvoiceStatus `json:"status"`
	DueDate        Date          `json:"dueDate"`
	Description    string        `json:"description,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func (i *Invoice) GetID() string { return i.ID }

func (i *Invoice) RemainingAmount() float64 {
	return decimal.NewFromFloat(i.Amount.Float64()).
		Sub(decimal.NewFromFloat(i.PaidAmount.Float64())).
		Round(2).
		InexactFloat64()
}

// DeriveStatus recomputes the status from the paid amount and due date.
// Cancelled invoices stay cancelled.
func (i *Invoice) DeriveStatus(today Date) InvoiceStatus {
	if i.Status == InvoiceStatusCancelled {
		return InvoiceStatusCancelled
	}
	remaining := i.RemainingAmount()
	switch {
	case remaining <= 0:
		return InvoiceStatusPaid
	case !i.DueDate.IsZero() && i.DueDate.Before(today.Time):
		return InvoiceStatusOverdue
	case i.PaidAmount > 0:
		return InvoiceStatusPartiallyPaid
	default:
		return InvoiceStatusPending
	}
}

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	ID             string        `json:"id"`
	OrganizationID string        `json:"organizationId"`
	RentID         string        `json:"rentId"`
	InvoiceID      string        `json:"invoiceId"`
	PropertyID     string        `json:"propertyId"`
	Amount         Number        `json:"amount"`
	LateFee        Number        `json:"lateFee"`
	PaymentDate    Date          `json:"paymentDate"`
	PaymentMethod  string        `json:"paymentMethod"`
	Status         PaymentStatus `json:"status"`
	Reference      string        `json:"reference,omitempty"`
	CreatedAt      time.Time     `json:"createdAt"`
}

func (p *Payment) IsLinked() bool { return p.InvoiceID != "" }
