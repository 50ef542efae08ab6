// 文件路径: internal/bootstrap/server.go
// 模块说明: 构建 http.Server，超时设置偏保守。
package bootstrap

import (
	"net/http"
	"time"

	"github.com/brinaregal/brina/internal/config"
)

// NewHTTPServer constructs a baseline http.Server with conservative defaults.
// WriteTimeout stays unset so the admin order stream can hold its socket.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}
}
