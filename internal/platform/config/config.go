package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr             string
	DatabaseURL      string
	JWTSigningKey    string
	JWTIssuer        string
	JWTAudience      string
	TokenTTL         time.Duration
	AuditBufferSize  int
	ExportBucket     string
	ExportBucketPath string
	AWSRegion        string
}

var TokenTTL = 15 * time.Minute

// DefaultAuditBufferSize bounds the audit recorder queue. A full queue drops
// entries rather than blocking business operations.
const DefaultAuditBufferSize = 1024

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	addr := os.Getenv("MERIDIAN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	tokenTTLStr := os.Getenv("TOKEN_TTL")
	if tokenTTLStr != "" {
		if duration, err := time.ParseDuration(tokenTTLStr); err == nil {
			TokenTTL = duration
		}
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "meridian"
	}
	audience := os.Getenv("JWT_AUDIENCE")
	if audience == "" {
		audience = "meridian-dashboard"
	}

	bufferSize := DefaultAuditBufferSize
	if v := os.Getenv("AUDIT_BUFFER_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			bufferSize = n
		}
	}

	return Server{
		Addr:             addr,
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		JWTSigningKey:    jwtSigningKey,
		JWTIssuer:        issuer,
		JWTAudience:      audience,
		TokenTTL:         TokenTTL,
		AuditBufferSize:  bufferSize,
		ExportBucket:     os.Getenv("AUDIT_EXPORT_BUCKET"),
		ExportBucketPath: os.Getenv("AUDIT_EXPORT_PREFIX"),
		AWSRegion:        os.Getenv("AWS_REGION"),
	}
}
