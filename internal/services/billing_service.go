package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/constants"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/dtos"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/repositories"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

// Attempts at committing a payment against an invoice that keeps changing.
const paymentCommitRetries = 3

type BillingService struct {
	store       docstore.Store
	rentRepo    repositories.RentRepository
	invoiceRepo repositories.InvoiceRepository
	paymentRepo repositories.PaymentRepository
	now         func() time.Time
}

func NewBillingService(
	store docstore.Store,
	rentRepo repositories.RentRepository,
	invoiceRepo repositories.InvoiceRepository,
	paymentRepo repositories.PaymentRepository,
) *BillingService {
	return &BillingService{store: store, rentRepo: rentRepo, invoiceRepo: invoiceRepo, paymentRepo: paymentRepo, now: time.Now}
}

// InvoiceNumber formats INV-YYYYMMDD-HHMMSS-XXXX where XXXX is taken from a
// random UUID.
func InvoiceNumber(t time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return fmt.Sprintf("%s-%s-%s", constants.InvoiceNumberPrefix, t.UTC().Format("20060102-150405"), suffix)
}

func (s *BillingService) CreateInvoice(ctx context.Context, actor models.Actor, req dtos.CreateInvoiceRequest) (*models.Invoice, error) {
	if err := requireAny(actor, constants.PermInvoicesCreate); err != nil {
		return nil, err
	}
	if req.DueDate == nil {
		return nil, utils.ValidationError("dueDate is required")
	}
	if req.Amount <= 0 {
		return nil, utils.ValidationError("amount must be positive")
	}
	rec, err := s.loadRent(ctx, actor, req.RentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	inv := &models.Invoice{
		ID:             uuid.NewString(),
		OrganizationID: rec.OrganizationID,
		InvoiceNumber:  InvoiceNumber(now),
		RentID:         rec.ID,
		PropertyID:     rec.PropertyID,
		Amount:         req.Amount,
		Status:         models.InvoiceStatusPending,
		DueDate:        *req.DueDate,
		Description:    req.Description,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	inv.Status = inv.DeriveStatus(models.DateOf(now, time.UTC))
	if err := s.invoiceRepo.Create(ctx, inv); err != nil {
		return nil, utils.StoreError("create invoice", inv.ID, err)
	}
	inv.SetRowVersion(1)
	return inv, nil
}

// RecordPayment stores a payment and, when it names an invoice, adds the
// amount to the invoice's paidAmount and re-derives its status.
func (s *BillingService) RecordPayment(ctx context.Context, actor models.Actor, req dtos.RecordPaymentRequest) (*models.Payment, error) {
	if err := requireAny(actor, constants.PermPaymentsCreate); err != nil {
		return nil, err
	}
	if req.PaymentDate == nil {
		return nil, utils.ValidationError("paymentDate is required")
	}
	if req.Amount <= 0 {
		return nil, utils.ValidationError("amount must be positive")
	}
	rec, err := s.loadRent(ctx, actor, req.RentID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &models.Payment{
		ID:             uuid.NewString(),
		OrganizationID: rec.OrganizationID,
		RentID:         rec.ID,
		InvoiceID:      req.InvoiceID,
		PropertyID:     rec.PropertyID,
		Amount:         req.Amount,
		LateFee:        req.LateFee,
		PaymentDate:    *req.PaymentDate,
		PaymentMethod:  req.PaymentMethod,
		Status:         models.PaymentStatusCompleted,
		Reference:      req.Reference,
		CreatedAt:      now,
	}
	if req.InvoiceID == "" {
		if err := s.paymentRepo.Create(ctx, p); err != nil {
			return nil, utils.StoreError("create payment", p.ID, err)
		}
		return p, nil
	}

	// The payment and the invoice balance land in one commit. The invoice
	// write is checked against the version read, so a concurrent payment
	// forces a re-read instead of losing an increment.
	for attempt := 0; attempt < paymentCommitRetries; attempt++ {
		inv, err := s.invoiceRepo.GetByID(ctx, req.InvoiceID)
		if err != nil {
			return nil, utils.StoreError("get invoice", req.InvoiceID, err)
		}
		if inv == nil {
			return nil, utils.NotFoundError("invoice", req.InvoiceID)
		}
		if inv.OrganizationID != actor.OrganizationID || inv.RentID != rec.ID {
			return nil, utils.ValidationError("invoice %s does not belong to rent %s", inv.ID, rec.ID)
		}
		if inv.Status == models.InvoiceStatusCancelled {
			return nil, utils.ValidationError("invoice %s is cancelled", inv.ID)
		}

		version := inv.GetRowVersion()
		paid := decimal.NewFromFloat(inv.PaidAmount.Float64()).Add(decimal.NewFromFloat(req.Amount.Float64())).Round(2)
		inv.PaidAmount = models.Number(paid.InexactFloat64())
		inv.Status = inv.DeriveStatus(models.DateOf(now, time.UTC))
		inv.UpdatedAt = now

		err = docstore.NewBatch(s.store).
			SetIfVersion(docstore.Invoices, inv.ID, inv, version).
			Set(docstore.Payments, p.ID, p).
			Commit(ctx)
		if errors.Is(err, docstore.ErrVersionConflict) {
			utils.Logger.WithField("invoiceId", inv.ID).Debug("Invoice changed during payment, retrying")
			continue
		}
		if err != nil {
			return nil, utils.StoreError("record payment", p.ID, err)
		}
		return p, nil
	}
	return nil, &utils.AppError{
		StatusCode: http.StatusConflict,
		Code:       utils.ErrCodeRowVersionConflict,
		Message:    "Invoice is being updated, try again",
		Err:        fmt.Errorf("%w: invoice %s", utils.ErrRowVersionConflict, req.InvoiceID),
	}
}

func (s *BillingService) ListInvoices(ctx context.Context, actor models.Actor) ([]*models.Invoice, error) {
	if err := requireAny(actor, constants.PermPaymentsRead); err != nil {
		return nil, err
	}
	invs, err := s.invoiceRepo.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, utils.StoreError("list invoices", actor.OrganizationID, err)
	}
	return invs, nil
}

func (s *BillingService) ListPayments(ctx context.Context, actor models.Actor) ([]*models.Payment, error) {
	if err := requireAny(actor, constants.PermPaymentsRead); err != nil {
		return nil, err
	}
	ps, err := s.paymentRepo.ListByOrganization(ctx, actor.OrganizationID)
	if err != nil {
		return nil, utils.StoreError("list payments", actor.OrganizationID, err)
	}
	return ps, nil
}

// CheckPayments reports payments with no invoice or pointing at a missing
// invoice. It writes nothing.
func (s *BillingService) CheckPayments(ctx context.Context, orgID string) (*Report, error) {
	payments, err := s.paymentRepo.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, utils.StoreError("list payments", orgID, err)
	}
	report := newReport(true)
	report.Checked = len(payments)
	for _, p := range payments {
		if !p.IsLinked() {
			report.add(p.ID, WillUpdate, "unlinked", fmt.Sprintf("rent %s amount %.2f", p.RentID, p.Amount.Float64()))
			continue
		}
		inv, err := s.invoiceRepo.GetByID(ctx, p.InvoiceID)
		switch {
		case err != nil:
			report.add(p.ID, Failed, "invoice-fetch", err.Error())
		case inv == nil:
			report.add(p.ID, WillUpdate, "missing-invoice", p.InvoiceID)
		default:
			report.add(p.ID, AlreadyInSync, "", inv.InvoiceNumber)
		}
	}
	utils.Logger.WithFields(logrus.Fields{
		"organization_id": orgID,
		"checked":         report.Checked,
		"defects":         report.Count(WillUpdate),
	}).Info("payment check finished")
	return report, nil
}

func (s *BillingService) loadRent(ctx context.Context, actor models.Actor, id string) (*models.RentRecord, error) {
	rec, err := s.rentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, utils.StoreError("get rent", id, err)
	}
	if rec == nil || rec.OrganizationID != actor.OrganizationID {
		return nil, utils.NotFoundError("rent", id)
	}
	return rec, nil
}
