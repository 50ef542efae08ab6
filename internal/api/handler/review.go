package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// ReviewHandler lists approved reviews and accepts new ones from customers.
type ReviewHandler struct {
	reviews service.ReviewService
	i18n    *i18n.Manager
}

func NewReviewHandler(reviews service.ReviewService, i18nMgr *i18n.Manager) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, i18n: i18nMgr}
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, pageSize := pagination(r)
	result, err := h.reviews.List(ctx, page, pageSize)
	if err != nil {
		respondServiceError(ctx, w, "reviews.list", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

// Create stores a pending review; it shows up once an admin approves it.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := requestctx.UserFromContext(ctx)
	if !claims.Authenticated() {
		RespondErrorI18n(ctx, w, http.StatusUnauthorized, "error.unauthorized", h.i18n)
		return
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "reviews.create", "error.bad_request", h.i18n)
		return
	}
	review, err := h.reviews.Create(ctx, service.ReviewInput{UserID: claims.ID, Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		respondServiceError(ctx, w, "reviews.create", "error.user_not_found", err, h.i18n)
		return
	}
	respondSuccessStatus(ctx, w, http.StatusCreated, "success.review_submitted", h.i18n, review)
}
