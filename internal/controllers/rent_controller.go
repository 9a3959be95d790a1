package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/dtos"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/services"
	"github.com/Elisa149/PROPERTY-MANAGEMENT-SYSTEM-sub001/internal/utils"
)

type RentController struct {
	rentService *services.RentService
}

func NewRentController(rs *services.RentService) *RentController {
	return &RentController{rentService: rs}
}

// GET /api/v1/rent
func (c *RentController) ListHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	views, err := c.rentService.ListForActor(r.Context(), actor)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

// GET /api/v1/rent/{id}
func (c *RentController) GetHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	view, err := c.rentService.Get(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, view)
}

// POST /api/v1/rent
func (c *RentController) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.CreateRentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := c.rentService.Create(r.Context(), actor, req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, rec)
}

// PATCH /api/v1/rent/{id}
func (c *RentController) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.UpdateRentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := c.rentService.Update(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rec)
}

// POST /api/v1/rent/{id}/renew
func (c *RentController) RenewHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	var req dtos.RenewRentRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	rec, err := c.rentService.Renew(r.Context(), actor, mux.Vars(r)["id"], *req.NewLeaseEnd)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rec)
}

// POST /api/v1/rent/{id}/terminate
func (c *RentController) TerminateHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}
	rec, err := c.rentService.Terminate(r.Context(), actor, mux.Vars(r)["id"])
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, rec)
}
