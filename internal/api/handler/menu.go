package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// MenuHandler serves the public menu and the restaurant card.
type MenuHandler struct {
	catalog    service.CatalogService
	restaurant service.RestaurantService
	i18n       *i18n.Manager
}

func NewMenuHandler(catalog service.CatalogService, restaurant service.RestaurantService, i18nMgr *i18n.Manager) *MenuHandler {
	return &MenuHandler{catalog: catalog, restaurant: restaurant, i18n: i18nMgr}
}

// List returns available products, optionally filtered by ?category=.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	products, err := h.catalog.Menu(ctx, r.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(ctx, w, "menu.list", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": products})
}

func (h *MenuHandler) Categories(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	categories, err := h.catalog.Categories(ctx)
	if err != nil {
		respondServiceError(ctx, w, "menu.categories", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": categories})
}

func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "menu.get", "error.bad_request", h.i18n)
		return
	}
	product, err := h.catalog.Product(ctx, id)
	if err != nil {
		respondServiceError(ctx, w, "menu.get", "error.product_not_found", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": product})
}

// Restaurant returns name, zones, slots and party size limits.
func (h *MenuHandler) Restaurant(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"data": h.restaurant.Info()})
}
