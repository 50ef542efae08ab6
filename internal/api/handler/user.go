// 文件路径: internal/api/handler/user.go
// 模块说明: 顾客个人中心：资料、改密与历史订单。
package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// UserHandler 处理 /account 下的接口，路由层已经挂了 UserGuard。
type UserHandler struct {
	account service.AccountService
	i18n    *i18n.Manager
}

func NewUserHandler(account service.AccountService, i18nMgr *i18n.Manager) *UserHandler {
	return &UserHandler{account: account, i18n: i18nMgr}
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := requestctx.UserFromContext(ctx)
	if !claims.Authenticated() {
		RespondErrorI18n(ctx, w, http.StatusUnauthorized, "error.unauthorized", h.i18n)
		return
	}
	profile, err := h.account.Profile(ctx, claims.ID)
	if err != nil {
		respondServiceError(ctx, w, "account.profile", "error.user_not_found", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": profile})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := requestctx.UserFromContext(ctx)
	if !claims.Authenticated() {
		RespondErrorI18n(ctx, w, http.StatusUnauthorized, "error.unauthorized", h.i18n)
		return
	}
	var req struct {
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Address string `json:"address"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "account.update", "error.bad_request", h.i18n)
		return
	}
	profile, err := h.account.UpdateProfile(ctx, claims.ID, service.ProfileInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
	})
	if err != nil {
		respondServiceError(ctx, w, "account.update", "error.user_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.profile_updated", h.i18n, profile)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := requestctx.UserFromContext(ctx)
	if !claims.Authenticated() {
		RespondErrorI18n(ctx, w, http.StatusUnauthorized, "error.unauthorized", h.i18n)
		return
	}
	var req struct {
		Current string `json:"current_password"`
		New     string `json:"new_password"`
		Confirm string `json:"password_confirm"`
	}
	if err := decodeJSON(r, &req); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "account.password", "error.bad_request", h.i18n)
		return
	}
	err := h.account.ChangePassword(ctx, claims.ID, service.PasswordChangeInput{
		Current: req.Current,
		New:     req.New,
		Confirm: req.Confirm,
	})
	if err != nil {
		respondServiceError(ctx, w, "account.password", "error.user_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.password_changed", h.i18n, nil)
}

// Orders lists the caller's own orders and reservations, newest first.
func (h *UserHandler) Orders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	claims := requestctx.UserFromContext(ctx)
	if !claims.Authenticated() {
		RespondErrorI18n(ctx, w, http.StatusUnauthorized, "error.unauthorized", h.i18n)
		return
	}
	page, pageSize := pagination(r)
	result, err := h.account.Orders(ctx, claims.ID, page, pageSize)
	if err != nil {
		respondServiceError(ctx, w, "account.orders", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": result})
}
