// 文件路径: internal/api/middleware/security.go
// 模块说明: 安全中间件：按 IP 限流、请求体大小限制、CORS 以及客户端 IP 识别。
package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brinaregal/brina/internal/security"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// Limiter 由 security.RateLimiter 实现，计数保存在缓存中（内存或 Redis）。
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (security.RateResult, error)
}

// RateLimitConfig Rate Limit 配置
type RateLimitConfig struct {
	Limiter   Limiter
	Limit     int                        // 每个窗口的请求数
	Window    time.Duration              // 时间窗口
	KeyFunc   func(*http.Request) string // 获取限流 key 的函数
	SkipPaths []string                   // 跳过限流的路径
	Logger    *slog.Logger
	I18n      *i18n.Manager
}

// DefaultRateLimitConfig 默认配置
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:  120,
		Window: time.Minute,
		KeyFunc: func(r *http.Request) string {
			// 默认按 IP 限流
			return "http:" + ClientIP(r)
		},
		SkipPaths: []string{"/health", "/metrics"},
	}
}

// RateLimit Rate Limiting 中间件。缓存不可用时放行请求。
func RateLimit(config RateLimitConfig) func(http.Handler) http.Handler {
	if config.Limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if config.Limit == 0 {
		config.Limit = 120
	}
	if config.Window == 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(r *http.Request) string {
			return "http:" + ClientIP(r)
		}
	}

	skipPaths := make(map[string]bool)
	for _, p := range config.SkipPaths {
		skipPaths[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 跳过特定路径
			if skipPaths[r.URL.Path] || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			result, err := config.Limiter.Allow(r.Context(), config.KeyFunc(r), config.Limit, config.Window)
			if err != nil {
				if config.Logger != nil {
					config.Logger.Warn("rate limit check failed", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			// 设置 Rate Limit 响应头
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retry := int(time.Until(result.ResetAt).Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeError(w, r, http.StatusTooManyRequests, "error.rate_limited", config.I18n)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimitConfig 请求体大小限制配置。
// JSON 请求用 MaxBytes，multipart 上传（付款凭证、菜品图片）用 UploadMaxBytes。
type BodyLimitConfig struct {
	MaxBytes       int64
	UploadMaxBytes int64
}

// BodyLimit 请求体大小限制中间件
func BodyLimit(config BodyLimitConfig) func(http.Handler) http.Handler {
	if config.MaxBytes <= 0 {
		config.MaxBytes = 1 << 20
	}
	if config.UploadMaxBytes < config.MaxBytes {
		config.UploadMaxBytes = config.MaxBytes
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.Body != http.NoBody {
				limit := config.MaxBytes
				if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
					limit = config.UploadMaxBytes
				}
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	corsMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsHeaders = "Accept, Authorization, Content-Type, X-Requested-With, X-Cart-ID, X-I18N-Lang"
	corsExposed = "X-Request-ID, X-Cart-ID, Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset"
)

// CORS 允许店面前端跨域调用。origins 为空或包含 "*" 时放行所有来源；
// 购物车靠 X-Cart-ID 头传递，因此不需要携带凭证。
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAll = true
		}
		if o != "" {
			allowed[o] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			if allowAll {
				h.Set("Access-Control-Allow-Origin", "*")
			} else if _, ok := allowed[origin]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
			} else {
				// unknown origin: let the browser block it
				next.ServeHTTP(w, r)
				return
			}
			h.Set("Access-Control-Expose-Headers", corsExposed)

			// 预检请求
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", corsMethods)
				h.Set("Access-Control-Allow-Headers", corsHeaders)
				h.Set("Access-Control-Max-Age", "86400")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP 返回客户端 IP。只有来自本机或内网代理的连接才采信转发头。
func ClientIP(r *http.Request) string {
	remote := hostOnly(r.RemoteAddr)
	ip := net.ParseIP(remote)
	if ip == nil || !(ip.IsLoopback() || ip.IsPrivate()) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(xri) != nil {
		return xri
	}
	return remote
}

func hostOnly(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
