// 文件路径: internal/api/handler/admin_user.go
// 模块说明: 后台顾客管理：列表、详情、启用/禁用与 CSV 导出。
package handler

import (
	"net/http"
	"strings"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// AdminUserHandler exposes admin user endpoints.
type AdminUserHandler struct {
	users service.AdminUserService
	i18n  *i18n.Manager
}

// NewAdminUserHandler wires admin user service into HTTP surface.
func NewAdminUserHandler(users service.AdminUserService, i18nMgr *i18n.Manager) *AdminUserHandler {
	return &AdminUserHandler{users: users, i18n: i18nMgr}
}

func parseAdminUserFilter(r *http.Request) service.AdminUserFilter {
	page, pageSize := pagination(r)
	query := r.URL.Query()
	return service.AdminUserFilter{
		Keyword:  strings.TrimSpace(query.Get("keyword")),
		IsAdmin:  parseOptionalBool(query.Get("is_admin")),
		Page:     page,
		PageSize: pageSize,
	}
}

func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseAdminUserFilter(r)
	result, err := h.users.List(r.Context(), filter)
	if err != nil {
		respondServiceError(r.Context(), w, "admin.user.fetch", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data":     result.Users,
		"count":    len(result.Users),
		"total":    result.Total,
		"page":     filter.Page,
		"pageSize": filter.PageSize,
	})
}

func (h *AdminUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(r.Context(), w, http.StatusBadRequest, "admin.user.get", "error.bad_request", h.i18n)
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		respondServiceError(r.Context(), w, "admin.user.get", "error.user_not_found", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": user})
}

// SetStatus enables or disables an account. Disabled accounts cannot log in.
func (h *AdminUserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r, "id")
	if !ok {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.user.status", "error.bad_request", h.i18n)
		return
	}
	var payload struct {
		Active *bool `json:"active"`
	}
	if err := decodeJSON(r, &payload); err != nil || payload.Active == nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.user.status", "error.bad_request", h.i18n)
		return
	}
	admin := requestctx.AdminFromContext(ctx)
	user, err := h.users.SetActive(ctx, id, *payload.Active, admin.ID)
	if err != nil {
		respondServiceError(ctx, w, "admin.user.status", "error.user_not_found", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.saved", h.i18n, user)
}

func (h *AdminUserHandler) Export(w http.ResponseWriter, r *http.Request) {
	csvData, err := h.users.Export(r.Context(), parseAdminUserFilter(r))
	if err != nil {
		respondServiceError(r.Context(), w, "admin.user.export", "", err, h.i18n)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=clients_export.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(csvData)
}
