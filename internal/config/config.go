package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvDevelopment is the APP_ENV value that permits DefaultJWTSecret.
const EnvDevelopment = "development"

// DefaultJWTSecret is the placeholder used when JWT_SECRET is unset.
const DefaultJWTSecret = "change-me"

// Asset storage backends.
const (
	AssetBackendLocal = "local"
	AssetBackendS3    = "s3"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	// Env is the deployment environment from APP_ENV.
	Env         string
	ServerPort  string
	MySQLDSN    string
	ResetDB     bool
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	SwaggerHost string
	LogLevel    string

	JWT JWTConfig

	// PasswordHashScheme selects the hasher for new credentials: "bcrypt" or "argon2id".
	PasswordHashScheme string
	// BootstrapAdminEmail is granted admin at registration. Empty disables it.
	BootstrapAdminEmail string

	Assets AssetConfig

	// SeedSource is a file path or http(s) URL read by cmd/seed.
	SeedSource string
}

// JWTConfig configures session token issuance and verification.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
	// Leeway tolerates clock skew on expiry. Zero means none.
	Leeway time.Duration
}

// AssetConfig configures where uploaded profile pictures are stored.
type AssetConfig struct {
	Backend     string
	Dir         string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         strings.ToLower(getEnv("APP_ENV", "production")),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		MySQLDSN:    getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/kali?charset=utf8mb4&parseTime=True&loc=Local"),
		ResetDB:     getBool("RESET_DB", false),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:     getEnvInt("REDIS_DB", 0),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		SwaggerHost: os.Getenv("SWAGGER_HOST"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", DefaultJWTSecret),
			Issuer:   getEnv("JWT_ISSUER", "kali-api"),
			Audience: getEnv("JWT_AUDIENCE", "kali-clients"),
			TTL:      getDuration("JWT_TTL", time.Hour),
			Leeway:   getDuration("JWT_LEEWAY", 0),
		},
		PasswordHashScheme:  strings.ToLower(getEnv("PASSWORD_HASH_SCHEME", "bcrypt")),
		BootstrapAdminEmail: strings.ToLower(strings.TrimSpace(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
		Assets: AssetConfig{
			Backend:     strings.ToLower(getEnv("ASSET_BACKEND", AssetBackendLocal)),
			Dir:         getEnv("ASSET_DIR", "wwwroot"),
			S3Bucket:    getEnv("S3_BUCKET", "kali-assets"),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:  os.Getenv("S3_ENDPOINT"),
			S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey: os.Getenv("S3_SECRET_KEY"),
		},
		SeedSource: os.Getenv("SEED_SOURCE"),
	}
}

// Validate reports settings the server cannot start with.
// DefaultJWTSecret is accepted only in development.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.JWT.Secret == DefaultJWTSecret && c.Env != EnvDevelopment {
		return fmt.Errorf("JWT_SECRET must be set when APP_ENV is %q", c.Env)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	if c.JWT.Leeway < 0 {
		return fmt.Errorf("JWT_LEEWAY must not be negative, got %s", c.JWT.Leeway)
	}
	switch c.PasswordHashScheme {
	case "bcrypt", "argon2id":
	default:
		return fmt.Errorf("unknown PASSWORD_HASH_SCHEME %q", c.PasswordHashScheme)
	}
	switch c.Assets.Backend {
	case AssetBackendLocal:
		if c.Assets.Dir == "" {
			return errors.New("ASSET_DIR must not be empty for the local asset backend")
		}
	case AssetBackendS3:
		if c.Assets.S3Bucket == "" {
			return errors.New("S3_BUCKET must not be empty for the s3 asset backend")
		}
	default:
		return fmt.Errorf("unknown ASSET_BACKEND %q", c.Assets.Backend)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
