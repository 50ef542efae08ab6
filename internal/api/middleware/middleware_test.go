package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/security"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (security.RateResult, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return security.RateResult{}, s.err
	}
	return security.RateResult{Allowed: s.allowed, Remaining: 0, ResetAt: time.Now().Add(window)}, nil
}

type stubInstall struct {
	needs bool
	err   error
}

func (s stubInstall) NeedsBootstrap(context.Context) (bool, error) { return s.needs, s.err }

func (s stubInstall) CreateAdmin(context.Context, service.InstallInput) (*service.UserView, error) {
	return nil, errors.New("not used")
}

type stubAuth struct {
	claims *service.Claims
	err    error
}

func (s stubAuth) Login(context.Context, service.LoginInput) (*service.LoginResult, error) {
	return nil, errors.New("not used")
}

func (s stubAuth) Verify(_ context.Context, token string) (*service.Claims, error) {
	if token == "" {
		return nil, service.ErrUnauthorized
	}
	return s.claims, s.err
}

func (s stubAuth) IssueForUser(context.Context, int64) (*service.LoginResult, error) {
	return nil, errors.New("not used")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["error"].(string)
	return msg
}

func TestRateLimitRejectsWithRetryAfter(t *testing.T) {
	limiter := &stubLimiter{allowed: false}
	cfg := DefaultRateLimitConfig()
	cfg.Limiter = limiter
	h := RateLimit(cfg)(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil)
	req.RemoteAddr = "41.138.90.12:5555"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "120", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "error.rate_limited", decodeError(t, rec))
	assert.Equal(t, []string{"http:41.138.90.12"}, limiter.keys)
}

func TestRateLimitSkipsAndFailsOpen(t *testing.T) {
	limiter := &stubLimiter{err: errors.New("cache down")}
	cfg := DefaultRateLimitConfig()
	cfg.Limiter = limiter
	h := RateLimit(cfg)(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, limiter.keys, 1)

	rec = httptest.NewRecorder()
	RateLimit(RateLimitConfig{})(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientIPTrustsOnlyPrivateProxies(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:80"
	req.Header.Set("X-Forwarded-For", "197.234.219.1, 10.0.0.5")
	assert.Equal(t, "197.234.219.1", ClientIP(req))

	req.RemoteAddr = "197.234.219.9:80"
	assert.Equal(t, "197.234.219.9", ClientIP(req))

	req.RemoteAddr = "172.20.1.1:80"
	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "197.234.219.2")
	assert.Equal(t, "197.234.219.2", ClientIP(req))
}

func TestCartIDPrefersHeaderOverCookie(t *testing.T) {
	var seen string
	h := CartID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestctx.CartIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.AddCookie(&http.Cookie{Name: cartCookie, Value: "from-cookie"})
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "from-cookie", seen)

	req.Header.Set(CartHeader, " from-header ")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "from-header", seen)
}

func TestI18nDetection(t *testing.T) {
	manager, err := i18n.NewManager()
	require.NoError(t, err)

	var lang string
	h := I18n(manager)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		lang = requestctx.GetLanguage(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, i18n.DefaultLang, lang)
	assert.Equal(t, i18n.DefaultLang, rec.Header().Get("Content-Language"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.8")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "en-US", lang)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?lang=en", nil))
	assert.Equal(t, "en-US", lang)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, langCookie, cookies[0].Name)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-I18N-Lang", "klingon")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, i18n.DefaultLang, lang)
}

func TestInstallGuard(t *testing.T) {
	h := InstallGuard(nil, stubInstall{needs: true})(okHandler)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)
	assert.Equal(t, "install_required", decodeError(t, rec))

	for _, path := range []string{"/api/v1/install", "/api/v1/install/status", "/health", "/uploads/a.jpg"} {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}

	rec = httptest.NewRecorder()
	InstallGuard(nil, stubInstall{})(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	InstallGuard(nil, stubInstall{err: errors.New("db")})(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGuards(t *testing.T) {
	customer := stubAuth{claims: &service.Claims{UserID: 7, Email: "afi@example.com"}}
	admin := stubAuth{claims: &service.Claims{UserID: 1, Email: "chef@example.com", IsAdmin: true}}

	var seen requestctx.UserClaims
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestctx.UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	withToken := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/account", nil)
		req.Header.Set("Authorization", "Bearer abc")
		return req
	}

	rec := httptest.NewRecorder()
	UserGuard(customer, nil)(capture).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	UserGuard(customer, nil)(capture).ServeHTTP(rec, withToken())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, int64(7), seen.ID)

	rec = httptest.NewRecorder()
	AdminGuard(customer, nil)(capture).ServeHTTP(rec, withToken())
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	AdminGuard(admin, nil)(capture).ServeHTTP(rec, withToken())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, seen.IsAdmin)

	disabled := stubAuth{err: service.ErrAccountDisabled}
	rec = httptest.NewRecorder()
	UserGuard(disabled, nil)(capture).ServeHTTP(rec, withToken())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "error.account_disabled", decodeError(t, rec))

	// guests pass through untouched, bad tokens are ignored
	seen = requestctx.UserClaims{ID: 99}
	rec = httptest.NewRecorder()
	OptionalUser(disabled)(capture).ServeHTTP(rec, withToken())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, seen.Authenticated())
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/api/v1/admin/orders/:id/confirm", normalizePath("/api/v1/admin/orders/42/confirm"))
	assert.Equal(t, "/api/v1/orders/:id", normalizePath("/api/v1/orders/BR-1A2B3C4D"))
	assert.Equal(t, "/uploads/:file", normalizePath("/uploads/products/x.jpg"))
	assert.Equal(t, "/api/v1/menu/categories", normalizePath("/api/v1/menu/categories"))
}

func TestBodyLimitCapsReads(t *testing.T) {
	h := BodyLimit(BodyLimitConfig{MaxBytes: 4})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		_, err := r.Body.Read(buf)
		for err == nil {
			_, err = r.Body.Read(buf)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789"))
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestBodyLimitAllowsLargerUploads(t *testing.T) {
	var readErr error
	h := BodyLimit(BodyLimitConfig{MaxBytes: 4, UploadMaxBytes: 32})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads/payment-proof", strings.NewReader("0123456789"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NoError(t, readErr)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader("0123456789"))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Error(t, readErr)
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	t.Run("any origin by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil)
		req.Header.Set("Origin", "https://brinaregal.bj")
		CORS(nil)(ok).ServeHTTP(rec, req)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Cart-ID")
	})

	t.Run("preflight", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items", nil)
		req.Header.Set("Origin", "https://brinaregal.bj")
		req.Header.Set("Access-Control-Request-Method", "POST")
		CORS([]string{"https://brinaregal.bj/"})(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://brinaregal.bj", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-Cart-ID")
	})

	t.Run("unknown origin", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/menu", nil)
		req.Header.Set("Origin", "https://evil.example")
		CORS([]string{"https://brinaregal.bj"})(ok).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}
