package tokenverify

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-chi/jwtauth/v5"
)

// Subject is the identity a verified token asserts
type Subject struct {
	ID    string
	Email string
	Name  string
}

// ErrMissingSubject is returned when a token verifies but carries no subject
var ErrMissingSubject = errors.New("token carries no subject")

// Verifier checks an access token and returns the subject it asserts.
// Token issuance and key management live with the identity provider; the
// platform only verifies.
type Verifier interface {
	Verify(ctx context.Context, tokenStr string) (Subject, error)
}

// JwtVerifier verifies HS256 tokens with a shared secret
type JwtVerifier struct {
	ja *jwtauth.JWTAuth
}

// NewJwtVerifier creates a verifier for the given signing secret
func NewJwtVerifier(secret string) *JwtVerifier {
	return &JwtVerifier{
		ja: jwtauth.New("HS256", []byte(secret), nil),
	}
}

// Verify parses and validates the token, including expiry, and extracts the
// subject with its optional profile claims.
func (v *JwtVerifier) Verify(ctx context.Context, tokenStr string) (Subject, error) {
	token, err := jwtauth.VerifyToken(v.ja, tokenStr)
	if err != nil {
		return Subject{}, fmt.Errorf("failed to verify token: %w", err)
	}

	sub := token.Subject()
	if sub == "" {
		return Subject{}, ErrMissingSubject
	}

	subject := Subject{ID: sub}
	if email, ok := token.Get("email"); ok {
		subject.Email, _ = email.(string)
	}
	if name, ok := token.Get("name"); ok {
		subject.Name, _ = name.(string)
	}
	return subject, nil
}
