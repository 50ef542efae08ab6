// 文件路径: internal/api/handler/admin_order.go
// 模块说明: 后台订单审核：列表、详情、确认与拒绝。
package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

type AdminOrderHandler struct {
	orders service.AdminOrderService
	i18n   *i18n.Manager
}

func NewAdminOrderHandler(orders service.AdminOrderService, i18nMgr *i18n.Manager) *AdminOrderHandler {
	return &AdminOrderHandler{orders: orders, i18n: i18nMgr}
}

// List filters by ?status=, ?kind= and ?keyword= (phone, name or reference).
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pagination(r)
	query := r.URL.Query()
	result, err := h.orders.List(r.Context(), service.AdminOrderFilter{
		Status:   strings.TrimSpace(query.Get("status")),
		Kind:     strings.TrimSpace(query.Get("kind")),
		Keyword:  strings.TrimSpace(query.Get("keyword")),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		respondServiceError(r.Context(), w, "admin.order.fetch", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":     result.Orders,
		"total":    result.Total,
		"page":     page,
		"pageSize": pageSize,
	})
}

// Get accepts either the numeric id or the BR- reference.
func (h *AdminOrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var (
		order *service.OrderView
		err   error
	)
	if id, ok := pathID(r, "id"); ok {
		order, err = h.orders.Get(ctx, id)
	} else {
		order, err = h.orders.GetByReference(ctx, routeParam(r, "id"))
	}
	if err != nil {
		respondServiceError(ctx, w, "admin.order.get", "error.order_not_found", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": order})
}

func (h *AdminOrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.order.confirm", "error.bad_request", h.i18n)
		return
	}
	order, err := h.orders.Confirm(ctx, id, adminActor(r))
	if err != nil {
		respondServiceError(ctx, w, "admin.order.confirm", "error.order_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.order_confirmed", h.i18n, order)
}

// Reject takes an optional {"reason": "..."} body.
func (h *AdminOrderHandler) Reject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.order.reject", "error.bad_request", h.i18n)
		return
	}
	var payload struct {
		Reason string `json:"reason"`
	}
	if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.order.reject", "error.bad_request", h.i18n)
		return
	}
	order, err := h.orders.Reject(ctx, id, payload.Reason, adminActor(r))
	if err != nil {
		respondServiceError(ctx, w, "admin.order.reject", "error.order_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.order_rejected", h.i18n, order)
}

// adminActor names the admin in audit records.
func adminActor(r *http.Request) string {
	claims := requestctx.AdminFromContext(r.Context())
	if claims.Email != "" {
		return claims.Email
	}
	return strconv.FormatInt(claims.ID, 10)
}
