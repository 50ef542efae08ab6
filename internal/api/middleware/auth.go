// 文件路径: internal/api/middleware/auth.go
// 模块说明: Bearer 令牌校验，区分管理员、登录顾客与可选登录三种路由。
package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

// AdminGuard ensures requests originate from authenticated admins.
func AdminGuard(auth service.AuthService, translator *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyRequest(w, r, auth, translator)
			if !ok {
				return
			}
			if !claims.IsAdmin {
				writeError(w, r, http.StatusForbidden, "error.forbidden", translator)
				return
			}
			ctx := requestctx.WithUserClaims(r.Context(), claims)
			ctx = requestctx.WithAdminClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserGuard ensures requests are authenticated customers (admins included).
func UserGuard(auth service.AuthService, translator *i18n.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := verifyRequest(w, r, auth, translator)
			if !ok {
				return
			}
			ctx := requestctx.WithUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalUser attaches claims when a valid token is present and never rejects.
// Checkout and reservations accept guests.
func OptionalUser(auth service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" || auth == nil {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := requestctx.WithUserClaims(r.Context(), toRequestClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func verifyRequest(w http.ResponseWriter, r *http.Request, auth service.AuthService, translator *i18n.Manager) (requestctx.UserClaims, bool) {
	if auth == nil {
		writeError(w, r, http.StatusServiceUnavailable, "error.internal", translator)
		return requestctx.UserClaims{}, false
	}
	token := extractBearer(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, r, http.StatusUnauthorized, "error.unauthorized", translator)
		return requestctx.UserClaims{}, false
	}
	claims, err := auth.Verify(r.Context(), token)
	if err != nil {
		key := "error.unauthorized"
		if errors.Is(err, service.ErrAccountDisabled) {
			key = "error.account_disabled"
		}
		writeError(w, r, http.StatusUnauthorized, key, translator)
		return requestctx.UserClaims{}, false
	}
	return toRequestClaims(claims), true
}

func toRequestClaims(claims *service.Claims) requestctx.UserClaims {
	return requestctx.UserClaims{
		ID:      claims.UserID,
		Email:   claims.Email,
		Name:    claims.Name,
		IsAdmin: claims.IsAdmin,
	}
}

func extractBearer(header string) string {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return trimmed
}

// writeError 输出与 handler 一致的 {"error": "..."} 结构。
func writeError(w http.ResponseWriter, r *http.Request, status int, key string, translator *i18n.Manager) {
	message := key
	if translator != nil {
		message = translator.Translate(requestctx.GetLanguage(r.Context()), key)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
