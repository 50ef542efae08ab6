package service

import (
	"html"
	"net/mail"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const maxNameLength = 120

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

func isValidEmail(email string) bool {
	if email == "" || len(email) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

func hasLetterAndNumber(password string) bool {
	var hasLetter bool
	var hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
		if hasLetter && hasNumber {
			return true
		}
	}
	return false
}

// normalizePhone strips spaces, dots and dashes. It accepts an optional
// leading '+' followed by 6 to 15 digits.
func normalizePhone(phone string) (string, bool) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '.' || r == '-' || r == '(' || r == ')':
		default:
			return "", false
		}
	}
	out := b.String()
	digits := len(strings.TrimPrefix(out, "+"))
	if digits < 6 || digits > 15 {
		return "", false
	}
	return out, true
}

func cleanName(name string) (string, bool) {
	name = strings.TrimSpace(stripTags(name))
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", false
	}
	return name, true
}

// sanitizeHTML keeps safe inline markup in free text such as product
// descriptions.
func sanitizeHTML(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	return defaultHTMLSanitizer().Sanitize(trimmed)
}

// stripTags removes every tag and returns plain text; used for
// customer-supplied fields.
func stripTags(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictSanitizer().Sanitize(trimmed)))
}

var defaultHTMLSanitizer = sync.OnceValue(func() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("target", "rel").OnElements("a")
	policy.RequireNoFollowOnLinks(true)
	policy.RequireNoReferrerOnLinks(true)
	policy.AllowURLSchemes("http", "https")
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.AddSpaceWhenStrippingTag(true)
	return policy
})

var strictSanitizer = sync.OnceValue(bluemonday.StrictPolicy)
