// 文件路径: internal/api/handler/admin_system.go
// 模块说明: 系统状态与后台设置接口。
package handler

import (
	"net/http"
	"strings"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// AdminSystemHandler 提供系统状态与设置接口。
type AdminSystemHandler struct {
	system   service.AdminSystemService
	settings service.AdminSettingsService
	i18n     *i18n.Manager
}

// NewAdminSystemHandler 绑定 system 与 settings service。
func NewAdminSystemHandler(system service.AdminSystemService, settings service.AdminSettingsService, i18nMgr *i18n.Manager) *AdminSystemHandler {
	return &AdminSystemHandler{system: system, settings: settings, i18n: i18nMgr}
}

// Status 返回版本、运行时长、主机资源与通知积压。
func (h *AdminSystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.system.SystemStatus(r.Context())
	if err != nil {
		respondServiceError(r.Context(), w, "admin.system.status", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": status})
}

// Settings 读取 ?category= 分类的设置（默认 security）。
func (h *AdminSystemHandler) Settings(w http.ResponseWriter, r *http.Request) {
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	if category == "" {
		category = service.SettingCategorySecurity
	}
	settings, err := h.settings.GetByCategory(r.Context(), category)
	if err != nil {
		respondServiceError(r.Context(), w, "admin.system.settings.fetch", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": settings})
}

type adminSettingsSaveRequest struct {
	Category string            `json:"category"`
	Settings map[string]string `json:"settings"`
}

// SaveSettings 保存指定分类的设置，只接受已知键。
func (h *AdminSystemHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var payload adminSettingsSaveRequest
	if err := decodeJSON(r, &payload); err != nil || len(payload.Settings) == 0 {
		RespondErrorI18nAction(ctx, w, http.StatusBadRequest, "admin.system.settings.save", "error.bad_request", h.i18n)
		return
	}
	category := strings.TrimSpace(payload.Category)
	if category == "" {
		category = service.SettingCategorySecurity
	}
	if err := h.settings.SaveSettings(ctx, category, payload.Settings, adminActor(r)); err != nil {
		respondServiceError(ctx, w, "admin.system.settings.save", "", err, h.i18n)
		return
	}
	RespondSuccessI18n(ctx, w, "success.saved", h.i18n, nil)
}
