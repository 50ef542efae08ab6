// 文件路径: internal/api/handler/checkout.go
// 模块说明: 下单与订单跟踪接口。
package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brinaregal/brina/internal/api/middleware"
	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// CheckoutHandler turns a cart into a pending order.
type CheckoutHandler struct {
	checkout service.CheckoutService
	i18n     *i18n.Manager
}

func NewCheckoutHandler(checkout service.CheckoutService, i18nMgr *i18n.Manager) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, i18n: i18nMgr}
}

type checkoutRequest struct {
	CartID          string                 `json:"cart_id"`
	Items           []service.CheckoutItem `json:"items"`
	CustomerName    string                 `json:"customer_name"`
	Phone           string                 `json:"phone"`
	Place           string                 `json:"place"`
	PaymentProofURL string                 `json:"payment_proof_url"`
	Instructions    string                 `json:"instructions"`
}

// Checkout places the order. The cart comes from the body, then X-Cart-ID;
// explicit items win over both. Any client-side price is ignored.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "checkout", "error.bad_request", h.i18n)
		return
	}
	cartID := strings.TrimSpace(req.CartID)
	if cartID == "" {
		cartID = requestctx.CartIDFromContext(ctx)
	}
	input := service.CheckoutInput{
		CartID:          cartID,
		Items:           req.Items,
		CustomerName:    req.CustomerName,
		Phone:           req.Phone,
		Place:           req.Place,
		PaymentProofURL: req.PaymentProofURL,
		Instructions:    req.Instructions,
		IP:              middleware.ClientIP(r),
	}
	if claims := requestctx.UserFromContext(ctx); claims.Authenticated() {
		userID := claims.ID
		input.UserID = &userID
		if input.CustomerName == "" {
			input.CustomerName = claims.Name
		}
	}
	order, err := h.checkout.Checkout(ctx, input)
	if err != nil {
		respondServiceError(ctx, w, "checkout", "error.product_not_found", err, h.i18n)
		return
	}
	respondSuccessStatus(ctx, w, http.StatusCreated, "success.order_created", h.i18n, order)
}

// Track returns an order by reference when ?phone= matches the one on the order.
func (h *CheckoutHandler) Track(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reference := chi.URLParam(r, "ref")
	phone := r.URL.Query().Get("phone")
	if strings.TrimSpace(reference) == "" || strings.TrimSpace(phone) == "" {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "orders.track", "error.bad_request", h.i18n)
		return
	}
	order, err := h.checkout.Track(ctx, reference, phone)
	if err != nil {
		respondServiceError(ctx, w, "orders.track", "error.order_not_found", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": order})
}
