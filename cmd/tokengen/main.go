package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ogrenly/platform/pkg/config"
	"github.com/ogrenly/platform/pkg/tokenverify"
)

// tokengen mints an HS256 access token for local development and testing.
// The secret defaults to the JWT_SECRET the server itself reads.
func main() {
	secret := flag.String("secret", config.GetEnvOrDefault("JWT_SECRET", "very-secure-jwt-secret"), "Secret key for signing the token")
	subject := flag.String("subject", "test-user", "Subject of the token (the user id)")
	email := flag.String("email", "", "Email claim")
	name := flag.String("name", "", "Name claim")
	expiry := flag.Duration("expiry", 30*time.Minute, "Token expiry duration (e.g., 30m, 1h, 24h)")
	flag.Parse()

	issuer := tokenverify.Issuer{Secret: *secret}
	token, err := issuer.IssueToken(tokenverify.Subject{
		ID:    *subject,
		Email: *email,
		Name:  *name,
	}, *expiry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
