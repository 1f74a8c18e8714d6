package tokenverify

import (
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer mints HS256 access tokens. The platform itself never issues tokens
// in production; this exists for the tokengen utility and for tests.
type Issuer struct {
	Secret string
}

// IssueToken creates a signed token asserting the subject, valid for ttl
func (i Issuer) IssueToken(subject Subject, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject.ID,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	if subject.Email != "" {
		claims["email"] = subject.Email
	}
	if subject.Name != "" {
		claims["name"] = subject.Name
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(i.Secret))
	if err != nil {
		slog.Error("Failed to sign token", "err", err)
		return "", err
	}
	return signed, nil
}
