package middleware

import (
	"net/http"
	"strings"

	"github.com/brinaregal/brina/internal/api/requestctx"
)

// CartHeader carries the opaque server-side cart ID in both directions.
const CartHeader = "X-Cart-ID"

const cartCookie = "brina_cart"

// CartID copies the caller's cart ID (header first, then cookie) into the context.
// Validation happens in the cart service, which issues a fresh ID for unknown values.
func CartID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(CartHeader))
		if id == "" {
			if cookie, err := r.Cookie(cartCookie); err == nil {
				id = strings.TrimSpace(cookie.Value)
			}
		}
		if id != "" {
			r = r.WithContext(requestctx.WithCartID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}
