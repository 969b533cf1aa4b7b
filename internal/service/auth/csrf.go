package auth

import (
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"
)

// CSRF cookie and header names.
const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

// NewCSRFToken returns a random 32 character token.
func NewCSRFToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// CSRFTokensMatch reports whether the header echoes the cookie token.
func CSRFTokensMatch(cookie, header string) bool {
	if cookie == "" || header == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) == 1
}
