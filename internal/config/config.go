package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string

	// GateTokenTTL governs both the gate token expiry and the edu_gate
	// cookie Max-Age; the cookie lifetime is derived from the token's own
	// expiry so the two cannot drift apart.
	GateTokenTTL time.Duration
	SessionTTL   time.Duration

	// AccessCodePepper keys the access-code digest. Rotating it orphans
	// every issued code, so treat it like a signing secret.
	AccessCodePepper string

	GoogleClientID string

	// VerifyAttemptLimit attempts per VerifyAttemptWindow per source address
	// on the code-verification endpoint.
	VerifyAttemptLimit  int
	VerifyAttemptWindow time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	AccessCodes  string
	RoleProfiles string
	Sessions     string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			AccessCodes:  getEnv("DYNAMO_TABLE_ACCESS_CODES", "educator_access_codes"),
			RoleProfiles: getEnv("DYNAMO_TABLE_ROLE_PROFILES", "role_profiles"),
			Sessions:     getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		GateTokenTTL: time.Duration(getEnvInt("GATE_TOKEN_TTL_MIN", 10)) * time.Minute,
		SessionTTL:   time.Duration(getEnvInt("SESSION_TTL_DAYS", 7)) * 24 * time.Hour,

		AccessCodePepper: getEnv("ACCESS_CODE_PEPPER", ""),

		GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),

		VerifyAttemptLimit:  getEnvInt("VERIFY_ATTEMPT_LIMIT", 5),
		VerifyAttemptWindow: time.Duration(getEnvInt("VERIFY_ATTEMPT_WINDOW_MIN", 5)) * time.Minute,

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
