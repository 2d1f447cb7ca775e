package mdtransform

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// tokenDateLayout is the 8-digit date stamp every token starts with. The
// retention sweeper parses and compares this prefix directly, so the format
// is load-bearing: changing it orphans existing sessions.
const tokenDateLayout = "20060102"

// tokenPattern constrains tokens to a date stamp plus a random suffix of
// URL-safe characters. Tokens name filesystem directories, so anything
// resembling a path component is rejected.
var tokenPattern = regexp.MustCompile(`^[0-9]{8}-[0-9A-Za-z-]{1,64}$`)

// NewToken generates a session token: the creation date stamp followed by
// a random unique suffix, e.g. "20250101-6fa459ea-ee8a-3ca4-894e-db77e160355e".
func NewToken(now time.Time) string {
	return now.Format(tokenDateLayout) + "-" + uuid.NewString()
}

// ValidToken reports whether token is well-formed.
func ValidToken(token string) bool {
	return tokenPattern.MatchString(token)
}

// TokenDate parses the creation date embedded in a token.
func TokenDate(token string) (time.Time, error) {
	if !ValidToken(token) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidToken, token)
	}
	t, err := time.ParseInLocation(tokenDateLayout, token[:8], time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrInvalidToken, token, err)
	}
	return t, nil
}
