// 文件路径: internal/api/handler/admin_stat.go
// 模块说明: 后台首页统计卡片。
package handler

import (
	"net/http"

	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// AdminStatHandler exposes analytics endpoints for the admin panel.
type AdminStatHandler struct {
	stats service.AdminStatService
	i18n  *i18n.Manager
}

// NewAdminStatHandler wires the admin stat service.
func NewAdminStatHandler(stats service.AdminStatService, i18nMgr *i18n.Manager) *AdminStatHandler {
	return &AdminStatHandler{stats: stats, i18n: i18nMgr}
}

func (h *AdminStatHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Dashboard(r.Context())
	if err != nil {
		respondServiceError(r.Context(), w, "admin.stat.dashboard", "", err, h.i18n)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"data": stats})
}
