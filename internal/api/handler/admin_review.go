package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// AdminReviewHandler moderates customer reviews.
type AdminReviewHandler struct {
	reviews service.AdminReviewService
	i18n    *i18n.Manager
}

func NewAdminReviewHandler(reviews service.AdminReviewService, i18nMgr *i18n.Manager) *AdminReviewHandler {
	return &AdminReviewHandler{reviews: reviews, i18n: i18nMgr}
}

func (h *AdminReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	result, err := h.reviews.List(r.Context(), strings.TrimSpace(r.URL.Query().Get("status")), page, pageSize)
	if err != nil {
		respondServiceError(r.Context(), w, "admin.review.fetch", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *AdminReviewHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "admin.review.approve", h.reviews.Approve)
}

func (h *AdminReviewHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, "admin.review.reject", h.reviews.Reject)
}

func (h *AdminReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.review.delete", "error.bad_request", h.i18n)
		return
	}
	if err := h.reviews.Delete(ctx, id); err != nil {
		respondServiceError(ctx, w, "admin.review.delete", "error.review_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.deleted", h.i18n, nil)
}

func (h *AdminReviewHandler) moderate(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, id int64) (*service.ReviewView, error)) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, action, "error.bad_request", h.i18n)
		return
	}
	review, err := fn(ctx, id)
	if err != nil {
		respondServiceError(ctx, w, action, "error.review_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.saved", h.i18n, review)
}
