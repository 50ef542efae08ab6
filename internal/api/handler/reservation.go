package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// ReservationHandler books tables.
type ReservationHandler struct {
	reservations service.ReservationService
	i18n         *i18n.Manager
}

func NewReservationHandler(reservations service.ReservationService, i18nMgr *i18n.Manager) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, i18n: i18nMgr}
}

func (h *ReservationHandler) Slots(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"data": h.reservations.Slots()})
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req struct {
		Name         string `json:"name"`
		Phone        string `json:"phone"`
		PartySize    int    `json:"party_size"`
		Date         string `json:"date"`
		Time         string `json:"time"`
		Instructions string `json:"instructions"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "reservations.create", "error.bad_request", h.i18n)
		return
	}
	input := service.ReservationInput{
		Name:         req.Name,
		Phone:        req.Phone,
		PartySize:    req.PartySize,
		Date:         req.Date,
		Time:         req.Time,
		Instructions: req.Instructions,
	}
	if claims := requestctx.UserFromContext(ctx); claims.Authenticated() {
		userID := claims.ID
		input.UserID = &userID
	}
	order, err := h.reservations.Create(ctx, input)
	if err != nil {
		respondServiceError(ctx, w, "reservations.create", "", err, h.i18n)
		return
	}
	respondSuccessStatus(ctx, w, http.StatusCreated, "success.reservation_created", h.i18n, order)
}
