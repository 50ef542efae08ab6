package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/media"
	"github.com/brinaregal/brina/internal/repository"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// Helper to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("failed to encode response JSON", "error", err)
	}
}

// RespondErrorI18nAction writes {"error": <translated>, "action": action}.
func RespondErrorI18nAction(ctx context.Context, w http.ResponseWriter, status int, action string, key string, i18nMgr *i18n.Manager, args ...any) {
	if key == "" {
		key = action
	}
	resp := map[string]any{
		"error": translate(ctx, i18nMgr, key, args...),
	}
	if action != "" {
		resp["action"] = action
	}
	respondJSON(w, status, resp)
}

// RespondErrorI18n writes {"error": <translated>}.
func RespondErrorI18n(ctx context.Context, w http.ResponseWriter, status int, key string, i18nMgr *i18n.Manager, args ...any) {
	respondJSON(w, status, map[string]any{
		"error": translate(ctx, i18nMgr, key, args...),
	})
}

// RespondSuccessI18n writes {"message": <translated>, "data": data}.
func RespondSuccessI18n(ctx context.Context, w http.ResponseWriter, key string, i18nMgr *i18n.Manager, data any) {
	respondSuccessStatus(ctx, w, http.StatusOK, key, i18nMgr, data)
}

func respondSuccessStatus(ctx context.Context, w http.ResponseWriter, status int, key string, i18nMgr *i18n.Manager, data any) {
	resp := map[string]any{
		"message": translate(ctx, i18nMgr, key),
	}
	if data != nil {
		resp["data"] = data
	}
	respondJSON(w, status, resp)
}

func translate(ctx context.Context, i18nMgr *i18n.Manager, key string, args ...any) string {
	if i18nMgr == nil {
		// tests run without locales
		return key
	}
	return i18nMgr.Translate(requestctx.GetLanguage(ctx), key, args...)
}

// serviceErrors maps service sentinels onto a status and message key.
var serviceErrors = []struct {
	err    error
	status int
	key    string
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "error.invalid_credentials"},
	{service.ErrUnauthorized, http.StatusUnauthorized, "error.unauthorized"},
	{service.ErrAccountDisabled, http.StatusForbidden, "error.account_disabled"},
	{service.ErrForbidden, http.StatusForbidden, "error.forbidden"},
	{service.ErrRateLimited, http.StatusTooManyRequests, "error.rate_limited"},
	{service.ErrInvalidEmail, http.StatusBadRequest, "error.invalid_email"},
	{service.ErrInvalidPassword, http.StatusBadRequest, "error.invalid_password"},
	{service.ErrPasswordMismatch, http.StatusBadRequest, "error.password_mismatch"},
	{service.ErrEmailExists, http.StatusConflict, "error.email_exists"},
	{service.ErrAlreadyInitialized, http.StatusConflict, "error.already_initialized"},
	{service.ErrInvalidName, http.StatusBadRequest, "error.invalid_name"},
	{service.ErrInvalidPhone, http.StatusBadRequest, "error.invalid_phone"},
	{service.ErrEmptyCart, http.StatusBadRequest, "error.empty_cart"},
	{service.ErrProductUnavailable, http.StatusConflict, "error.product_unavailable"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, "error.invalid_quantity"},
	{service.ErrInvalidPlace, http.StatusBadRequest, "error.invalid_place"},
	{service.ErrPaymentProofRequired, http.StatusBadRequest, "error.payment_proof_required"},
	{service.ErrInvalidTransition, http.StatusConflict, "error.invalid_transition"},
	{service.ErrInvalidPartySize, http.StatusBadRequest, "error.invalid_party_size"},
	{service.ErrInvalidDate, http.StatusBadRequest, "error.invalid_date"},
	{service.ErrInvalidTimeSlot, http.StatusBadRequest, "error.invalid_time_slot"},
	{service.ErrInvalidRating, http.StatusBadRequest, "error.invalid_rating"},
	{service.ErrInvalidPrice, http.StatusBadRequest, "error.invalid_price"},
	{service.ErrProductExists, http.StatusConflict, "error.product_exists"},
	{service.ErrInvalidFile, http.StatusUnsupportedMediaType, "error.invalid_file"},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, "error.file_too_large"},
	{service.ErrUnknownSetting, http.StatusBadRequest, "error.unknown_setting"},
	{media.ErrCircuitOpen, http.StatusServiceUnavailable, "error.upload_unavailable"},
	{media.ErrRejected, http.StatusBadGateway, "error.upload_unavailable"},
}

// respondServiceError translates a service error. notFoundKey names the
// missing resource (error.order_not_found, ...) and defaults to error.not_found.
func respondServiceError(ctx context.Context, w http.ResponseWriter, action, notFoundKey string, err error, i18nMgr *i18n.Manager) {
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, repository.ErrNotFound) {
		if notFoundKey == "" {
			notFoundKey = "error.not_found"
		}
		RespondErrorI18nAction(ctx, w, http.StatusNotFound, action, notFoundKey, i18nMgr)
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondErrorI18nAction(ctx, w, http.StatusRequestEntityTooLarge, action, "error.file_too_large", i18nMgr)
		return
	}
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			RespondErrorI18nAction(ctx, w, m.status, action, m.key, i18nMgr)
			return
		}
	}
	slog.ErrorContext(ctx, "request failed", "action", action, "error", err)
	RespondErrorI18nAction(ctx, w, http.StatusInternalServerError, action, "error.internal", i18nMgr)
}
