package controllers

import (
	"net/http"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/dtos"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/services"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

type BillingController struct {
	billingService *services.BillingService
}

func NewBillingController(bs *services.BillingService) *BillingController {
	return &BillingController{billingService: bs}
}

// GET /api/v1/invoices
func (c *BillingController) ListInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	invs, err := c.billingService.ListInvoices(r.Context(), actor)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	resp := make([]dtos.InvoiceResponse, 0, len(invs))
	for _, inv := range invs {
		resp = append(resp, dtos.NewInvoiceResponse(inv))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// POST /api/v1/invoices
func (c *BillingController) CreateInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.CreateInvoiceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	inv, err := c.billingService.CreateInvoice(r.Context(), actor, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewInvoiceResponse(inv))
}

// GET /api/v1/payments
func (c *BillingController) ListPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	ps, err := c.billingService.ListPayments(r.Context(), actor)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, ps)
}

// POST /api/v1/payments
func (c *BillingController) RecordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.RecordPaymentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	p, err := c.billingService.RecordPayment(r.Context(), actor, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, p)
}
