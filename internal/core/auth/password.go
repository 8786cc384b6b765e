package auth

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

type Hasher struct {
	Cost int
}

func (h Hasher) Hash(pw string) (string, error) {
	cost := h.Cost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h Hasher) Verify(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}

const MinPasswordLen = 8

// MaxPasswordBytes is the most bcrypt will hash.
const MaxPasswordBytes = 72

// ValidatePassword returns every policy rule pw breaks; nil means it passes.
func ValidatePassword(pw string) []string {
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	var out []string
	if utf8.RuneCountInString(pw) < MinPasswordLen {
		out = append(out, "The password must contain at least 8 characters")
	}
	if len(pw) > MaxPasswordBytes {
		out = append(out, "The password must not exceed 72 bytes")
	}
	if !upper {
		out = append(out, "The password must contain at least one uppercase letter")
	}
	if !lower {
		out = append(out, "The password must contain at least one lowercase letter")
	}
	if !digit {
		out = append(out, "The password must contain at least one digit")
	}
	return out
}
