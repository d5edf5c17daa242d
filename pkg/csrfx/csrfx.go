// Package csrfx implements stateless anti-forgery tokens for the
// double-submit cookie pattern. A token is `nonce-timestamp-signature`
// where the signature is an HMAC over nonce+timestamp under a server
// secret; validity is re-derived on every check, nothing is stored.
package csrfx

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/uplist/uplist/pkg/passwordx"
)

// DefaultMaxAge is how long a generated token stays valid.
const DefaultMaxAge = time.Hour

const nonceSize = 16

// Guard generates and validates signed, time-bound CSRF tokens.
type Guard struct {
	secret []byte

	// now is injectable for tests.
	now func() time.Time
}

// NewGuard returns a Guard signing tokens with the given secret.
func NewGuard(secret []byte) *Guard {
	return &Guard{secret: secret, now: time.Now}
}

// Generate mints a new token. Nonce and signature are hex-encoded so the
// dashes in the token only ever act as delimiters.
func (g *Guard) Generate() (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("csrfx: nonce generation failed: %w", err)
	}

	nonceHex := hex.EncodeToString(nonce)
	ts := strconv.FormatInt(g.now().UnixMilli(), 10)
	return nonceHex + "-" + ts + "-" + g.sign(nonceHex, ts), nil
}

// Validate checks a token against DefaultMaxAge.
func (g *Guard) Validate(token string) bool {
	return g.ValidateWithAge(token, DefaultMaxAge)
}

// ValidateWithAge checks that the token parses into exactly three parts,
// that its timestamp is within maxAge of now, and that the signature
// re-derives. The signature comparison is constant time; a signature length
// mismatch short-circuits to invalid.
func (g *Guard) ValidateWithAge(token string, maxAge time.Duration) bool {
	parts := strings.Split(token, "-")
	if len(parts) != 3 {
		return false
	}
	nonce, ts, sig := parts[0], parts[1], parts[2]

	issued, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return false
	}

	age := g.now().UnixMilli() - issued
	if age < 0 || age >= maxAge.Milliseconds() {
		return false
	}

	return passwordx.SecureCompare(g.sign(nonce, ts), sig)
}

// ValidateProtection enforces the double-submit check for state-changing
// methods. Safe methods (GET, HEAD, OPTIONS) always pass; anything else
// requires the header token to equal the cookie token and to validate.
func (g *Guard) ValidateProtection(method, cookieToken, headerToken string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}

	if cookieToken == "" || headerToken == "" {
		return false
	}
	if !passwordx.SecureCompare(cookieToken, headerToken) {
		return false
	}
	return g.Validate(headerToken)
}

func (g *Guard) sign(nonce, ts string) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(nonce + ts))
	return hex.EncodeToString(mac.Sum(nil))
}
