// 文件路径: internal/api/handler/cart.go
// 模块说明: 服务端购物车接口，购物车 ID 通过 X-Cart-ID 头往返。
package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/api/middleware"
	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// CartHandler 暴露购物车的读取与增删改。
type CartHandler struct {
	carts service.CartService
	i18n  *i18n.Manager
}

func NewCartHandler(carts service.CartService, i18nMgr *i18n.Manager) *CartHandler {
	return &CartHandler{carts: carts, i18n: i18nMgr}
}

type cartItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.Get(r.Context(), requestctx.CartIDFromContext(r.Context()))
	h.respond(w, r, "cart.get", view, err)
}

// AddItem adds quantity (default 1) of a product.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil || req.ProductID <= 0 {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "cart.add", "error.bad_request", h.i18n)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	view, err := h.carts.Add(ctx, requestctx.CartIDFromContext(ctx), req.ProductID, req.Quantity)
	h.respond(w, r, "cart.add", view, err)
}

// UpdateItem sets the quantity; zero or less removes the line.
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := pathID(r, "productID")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "cart.update", "error.bad_request", h.i18n)
		return
	}
	var req cartItemRequest
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "cart.update", "error.bad_request", h.i18n)
		return
	}
	view, err := h.carts.UpdateQuantity(ctx, requestctx.CartIDFromContext(ctx), productID, req.Quantity)
	h.respond(w, r, "cart.update", view, err)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := pathID(r, "productID")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "cart.remove", "error.bad_request", h.i18n)
		return
	}
	view, err := h.carts.Remove(ctx, requestctx.CartIDFromContext(ctx), productID)
	h.respond(w, r, "cart.remove", view, err)
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	view, err := h.carts.Clear(r.Context(), requestctx.CartIDFromContext(r.Context()))
	h.respond(w, r, "cart.clear", view, err)
}

func (h *CartHandler) respond(w http.ResponseWriter, r *http.Request, action string, view *service.CartView, err error) {
	if err != nil {
		respondServiceError(r.Context(), w, action, "error.product_not_found", err, h.i18n)
		return
	}
	w.Header().Set(middleware.CartHeader, view.ID)
	respondJSON(w, http.StatusOK, map[string]any{"data": view})
}
