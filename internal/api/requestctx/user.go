// 文件路径: internal/api/requestctx/user.go
// 模块说明: 在请求 context 中传递登录用户、管理员、购物车与语言信息。
package requestctx

import (
	"context"

	"github.com/brinaregal/brina/internal/support/i18n"
)

// UserClaims stores the authenticated customer or admin derived from the bearer token.
type UserClaims struct {
	ID      int64
	Email   string
	Name    string
	IsAdmin bool
}

// Authenticated reports whether claims carry a user.
func (c UserClaims) Authenticated() bool {
	return c.ID > 0
}

type contextKey string

const (
	userContextKey  contextKey = "brina-user"
	adminContextKey contextKey = "brina-admin"
	cartContextKey  contextKey = "brina-cart"
)

// I18nKey 用于在 context 中存储语言标识的 key 类型。
type I18nKey struct{}

// WithLanguage 将语言标识附加到 context 中供下游使用。
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, I18nKey{}, lang)
}

// GetLanguage 从 context 中获取语言标识，若未设置则返回站点默认语言。
func GetLanguage(ctx context.Context) string {
	if ctx == nil {
		return i18n.DefaultLang
	}
	if lang, ok := ctx.Value(I18nKey{}).(string); ok && lang != "" {
		return lang
	}
	return i18n.DefaultLang
}

// WithUserClaims attaches user data to the context for downstream handlers.
func WithUserClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, userContextKey, claims)
}

// UserFromContext fetches user claims, returning zero value if missing.
func UserFromContext(ctx context.Context) UserClaims {
	if ctx == nil {
		return UserClaims{}
	}
	claims, _ := ctx.Value(userContextKey).(UserClaims)
	return claims
}

// WithAdminClaims attaches admin data to context.
func WithAdminClaims(ctx context.Context, claims UserClaims) context.Context {
	return context.WithValue(ctx, adminContextKey, claims)
}

// AdminFromContext fetches admin claims or zero value.
func AdminFromContext(ctx context.Context) UserClaims {
	if ctx == nil {
		return UserClaims{}
	}
	claims, _ := ctx.Value(adminContextKey).(UserClaims)
	return claims
}

// WithCartID stores the cart identifier resolved from the X-Cart-ID header.
func WithCartID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, cartContextKey, id)
}

// CartIDFromContext returns the cart identifier or "".
func CartIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(cartContextKey).(string)
	return id
}
