// Package main provides a CLI tool for generating test tokens for the
// Meridian API. These tokens use the dev signing key and will NOT work
// against a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"meridian/internal/jwtauth"
	"meridian/pkg/secrets"
)

const (
	// Dev signing key - matches config.go when JWT_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultIssuer   = "meridian"
	defaultAudience = "meridian-dashboard"
	defaultTokenTTL = 15 * time.Minute
)

type tokenOutput struct {
	Token     string            `json:"token"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

func main() {
	accessCmd := flag.NewFlagSet("access", flag.ExitOnError)
	accessUserID := accessCmd.String("user-id", "", "User ID. Generated if empty.")
	accessTTL := accessCmd.Duration("ttl", defaultTokenTTL, "Token time-to-live")
	accessKey := accessCmd.String("signing-key", devSigningKey, "HMAC signing key")
	accessJSON := accessCmd.Bool("json", false, "Output as JSON")

	serviceCmd := flag.NewFlagSet("service-token", flag.ExitOnError)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "access":
		_ = accessCmd.Parse(os.Args[2:])
		generateAccess(*accessUserID, *accessTTL, *accessKey, *accessJSON)
	case "service-token":
		_ = serviceCmd.Parse(os.Args[2:])
		generateServiceToken()
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tokengen <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  access         mint a dev access token (bearer)")
	fmt.Fprintln(os.Stderr, "  service-token  generate a service secret and its bcrypt hash")
}

func generateAccess(userID string, ttl time.Duration, signingKey string, asJSON bool) {
	if userID == "" {
		userID = uuid.NewString()
	}

	svc := jwtauth.NewService(signingKey, defaultIssuer, defaultAudience, ttl)
	token, err := svc.GenerateAccessToken(userID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if asJSON {
		out := tokenOutput{
			Token:     token,
			Type:      "Bearer",
			UserID:    userID,
			ExpiresIn: ttl.String(),
			Usage: map[string]string{
				"curl": fmt.Sprintf(`curl -H "Authorization: Bearer %s" http://localhost:8080/access/permissions`, token),
			},
		}
		_ = json.NewEncoder(os.Stdout).Encode(out)
		return
	}

	fmt.Println("user_id:", userID)
	fmt.Println("token:  ", token)
	fmt.Printf("expires: %s\n", ttl)
}

// generateServiceToken prints a fresh service secret alongside its bcrypt
// hash. The plaintext goes to the calling system's config, the hash to the
// server side; neither is stored here.
func generateServiceToken() {
	secret, err := secrets.Generate()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	hash, err := secrets.Hash(secret)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println("secret:", secret)
	fmt.Println("hash:  ", hash)
}
