// 文件路径: internal/api/handler/install.go
// 模块说明: 安装向导接口，返回状态并创建首个管理员账号。
package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// InstallHandler 暴露初始化相关的 API。
type InstallHandler struct {
	install service.InstallService
	i18n    *i18n.Manager
}

// NewInstallHandler 构建 InstallHandler。
func NewInstallHandler(install service.InstallService, i18nMgr *i18n.Manager) *InstallHandler {
	return &InstallHandler{install: install, i18n: i18nMgr}
}

// Status 返回当前是否需要初始化。
func (h *InstallHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	needs, err := h.install.NeedsBootstrap(ctx)
	if err != nil {
		respondServiceError(ctx, w, "install.status", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"needs_bootstrap": needs})
}

// Create 用于创建首个管理员账号，已有管理员时返回 409。
func (h *InstallHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &payload); err != nil {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "install.create", "error.bad_request", h.i18n)
		return
	}
	user, err := h.install.CreateAdmin(ctx, service.InstallInput{
		Email:    payload.Email,
		Name:     payload.Name,
		Password: payload.Password,
	})
	if err != nil {
		respondServiceError(ctx, w, "install.create", "", err, h.i18n)
		return
	}
	respondSuccessStatus(ctx, w, http.StatusCreated, "success.saved", h.i18n, user)
}
