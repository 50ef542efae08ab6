// 文件路径: internal/api/middleware/install_guard.go
// 模块说明: 尚未创建管理员时，只放行安装接口、健康检查与公开静态文件。
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/brinaregal/brina/internal/service"
)

// InstallGuard 在首个管理员创建之前拦截所有业务 API，返回 428。
func InstallGuard(logger *slog.Logger, install service.InstallService) func(http.Handler) http.Handler {
	if install == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if !strings.HasPrefix(path, "/api/") || allowDuringInstall(path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			needs, err := install.NeedsBootstrap(r.Context())
			if err != nil {
				if logger != nil {
					logger.Error("install guard check failed", "error", err)
				}
				http.Error(w, "install guard unavailable", http.StatusInternalServerError)
				return
			}
			if needs {
				writeInstallJSON(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func allowDuringInstall(path string) bool {
	return path == "/api/v1/install" || strings.HasPrefix(path, "/api/v1/install/")
}

func writeInstallJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusPreconditionRequired)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":           "install_required",
		"needs_bootstrap": true,
	})
}
