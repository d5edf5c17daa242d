package passwordx

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashCost is the bcrypt work factor used for every stored credential.
// Changing it only affects newly hashed passwords; existing hashes carry
// their own cost and keep verifying.
const HashCost = 12

const (
	// MinLength and MaxLength bound acceptable password sizes. Anything
	// above MaxLength is rejected outright regardless of score.
	MinLength = 8
	MaxLength = 128
)

// specialChars is the fixed set that satisfies the special-character rule.
const specialChars = "!@#$%^&*()_+-=[]{}|;:,.<>?"

// ErrPolicy wraps the rule violations returned by Hash when the candidate
// password fails validation.
var ErrPolicy = errors.New("passwordx: password does not meet policy")

// dummyHash is a syntactically valid bcrypt hash (cost 12) that matches no
// real credential. Verify compares against it whenever the stored hash is
// missing or malformed so that "user not found" and "wrong password" take
// the same time to answer.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// denyList holds common substrings and sequential keyboard patterns that a
// password must not contain (compared case-insensitively).
var denyList = []string{
	"password",
	"letmein",
	"welcome",
	"iloveyou",
	"admin",
	"qwerty",
	"asdfgh",
	"zxcvbn",
	"123456",
	"abcdef",
	"111111",
}

// Rule messages double as the user-facing violation descriptions.
const (
	msgTooShort    = "must be at least 8 characters long"
	msgTooLong     = "must be at most 128 characters long"
	msgUppercase   = "must contain an uppercase letter"
	msgLowercase   = "must contain a lowercase letter"
	msgDigit       = "must contain a digit"
	msgSpecial     = "must contain a special character"
	msgRepeatedRun = "must not repeat the same character more than 3 times in a row"
	msgDenyList    = "must not contain a common word or keyboard sequence"
)

// Strength bands for the 0-100 score.
const (
	StrengthStrong = "strong"
	StrengthGood   = "good"
	StrengthFair   = "fair"
	StrengthWeak   = "weak"
)

// ValidationResult reports the outcome of Validate. Valid is true only when
// Errors is empty; Score is the sum of the weights of satisfied rules.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Strength string   `json:"strength"`
	Score    int      `json:"score"`
}

// Validate checks a candidate password against the policy. Each rule
// contributes independently to the score; the rule weights sum to 100.
func Validate(password string) ValidationResult {
	var (
		errs  []string
		score int
	)

	if len(password) >= MinLength {
		score += 20
	} else {
		errs = append(errs, msgTooShort)
	}

	// Over-long passwords are a hard failure, independent of the score.
	tooLong := len(password) > MaxLength
	if tooLong {
		errs = append(errs, msgTooLong)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
		if strings.ContainsRune(specialChars, r) {
			hasSpecial = true
		}
	}

	if hasUpper {
		score += 15
	} else {
		errs = append(errs, msgUppercase)
	}
	if hasLower {
		score += 15
	} else {
		errs = append(errs, msgLowercase)
	}
	if hasDigit {
		score += 15
	} else {
		errs = append(errs, msgDigit)
	}
	if hasSpecial {
		score += 15
	} else {
		errs = append(errs, msgSpecial)
	}

	if hasRepeatedRun(password, 3) {
		errs = append(errs, msgRepeatedRun)
	} else {
		score += 10
	}

	if containsDenied(password) {
		errs = append(errs, msgDenyList)
	} else {
		score += 10
	}

	return ValidationResult{
		Valid:    len(errs) == 0 && !tooLong,
		Errors:   errs,
		Strength: strengthBand(score),
		Score:    score,
	}
}

// Hash validates the password against the policy and then derives a salted
// bcrypt hash at HashCost. A policy failure returns an error wrapping
// ErrPolicy with the violation list.
func Hash(password string) (string, error) {
	result := Validate(password)
	if !result.Valid {
		return "", fmt.Errorf("%w: %s", ErrPolicy, strings.Join(result.Errors, "; "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), HashCost)
	if err != nil {
		return "", fmt.Errorf("passwordx: hash failed: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether password matches the stored bcrypt hash. When the
// stored hash is empty or malformed it still runs a full bcrypt comparison
// against dummyHash, keeping response timing uniform across "no such user"
// and "wrong password". Do not add early returns before the comparison.
func Verify(password, hash string) bool {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SecureCompare performs a constant-time comparison of two strings. A length
// mismatch returns false immediately; that residual timing signal is an
// accepted limitation.
func SecureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// hasRepeatedRun reports whether any character repeats more than max times
// consecutively.
func hasRepeatedRun(s string, max int) bool {
	run := 0
	var prev rune
	for i, r := range s {
		if i > 0 && r == prev {
			run++
			if run > max {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}

func containsDenied(s string) bool {
	lower := strings.ToLower(s)
	for _, word := range denyList {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func strengthBand(score int) string {
	switch {
	case score >= 90:
		return StrengthStrong
	case score >= 70:
		return StrengthGood
	case score >= 50:
		return StrengthFair
	default:
		return StrengthWeak
	}
}
