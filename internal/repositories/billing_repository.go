package repositories

import (
	"context"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/docstore"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/models"
)

/* ───────────── invoices ───────────── */

type InvoiceRepository interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id string) (*models.Invoice, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.Invoice, error)
	ListByRent(ctx context.Context, rentID string) ([]*models.Invoice, error)
}

type invoiceRepo struct {
	*BaseDocRepo[models.Invoice]
}

func NewInvoiceRepository(store docstore.Store) InvoiceRepository {
	return &invoiceRepo{BaseDocRepo: NewBaseDocRepo[models.Invoice](store, docstore.Invoices)}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	return r.set(ctx, inv.ID, inv)
}

func (r *invoiceRepo) GetByID(ctx context.Context, id string) (*models.Invoice, error) {
	return r.get(ctx, id)
}

func (r *invoiceRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.Invoice, error) {
	return r.list(ctx, docstore.Where("organizationId", docstore.OpEqual, orgID))
}

func (r *invoiceRepo) ListByRent(ctx context.Context, rentID string) ([]*models.Invoice, error) {
	return r.list(ctx, docstore.Where("rentId", docstore.OpEqual, rentID))
}

/* ───────────── payments ───────────── */

type PaymentRepository interface {
	Create(ctx context.Context, p *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	ListByOrganization(ctx context.Context, orgID string) ([]*models.Payment, error)
	ListByRent(ctx context.Context, rentID string) ([]*models.Payment, error)
}

type paymentRepo struct {
	*BaseDocRepo[models.Payment]
}

func NewPaymentRepository(store docstore.Store) PaymentRepository {
	return &paymentRepo{BaseDocRepo: NewBaseDocRepo[models.Payment](store, docstore.Payments)}
}

func (r *paymentRepo) Create(ctx context.Context, p *models.Payment) error {
	return r.set(ctx, p.ID, p)
}

func (r *paymentRepo) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	return r.get(ctx, id)
}

func (r *paymentRepo) ListByOrganization(ctx context.Context, orgID string) ([]*models.Payment, error) {
	return r.list(ctx, docstore.Where("organizationId", docstore.OpEqual, orgID))
}

func (r *paymentRepo) ListByRent(ctx context.Context, rentID string) ([]*models.Payment, error) {
	return r.list(ctx, docstore.Where("rentId", docstore.OpEqual, rentID))
}
