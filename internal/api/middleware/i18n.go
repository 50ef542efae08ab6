package middleware

import (
	"net/http"
	"time"

	"github.com/brinaregal/brina/internal/api/requestctx"
	"github.com/brinaregal/brina/internal/support/i18n"
	"golang.org/x/text/language"
)

const langCookie = "brina_lang"

// I18n middleware detects the preferred language and stores it in the context.
// Order: ?lang, X-I18N-Lang, cookie, Accept-Language, then the site default (fr-FR).
func I18n(manager *i18n.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			queryLang := r.URL.Query().Get("lang")
			lang := queryLang

			if lang == "" {
				lang = r.Header.Get("X-I18N-Lang")
			}

			if lang == "" {
				if cookie, err := r.Cookie(langCookie); err == nil {
					lang = cookie.Value
				}
			}

			if lang == "" {
				tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
				if err == nil && len(tags) > 0 {
					lang = tags[0].String()
				}
			}

			if manager != nil {
				// "fr", "en-GB" and garbage all collapse onto a loaded locale
				lang = manager.Match(lang)
			} else if lang == "" {
				lang = i18n.DefaultLang
			}

			ctx := requestctx.WithLanguage(r.Context(), lang)

			if queryLang != "" {
				http.SetCookie(w, &http.Cookie{
					Name:     langCookie,
					Value:    lang,
					Path:     "/",
					Expires:  time.Now().Add(365 * 24 * time.Hour),
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set("Content-Language", lang)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
