package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Face     FaceConfig
	Provider ProviderConfig
	Seed     SeedConfig
	Throttle ThrottleConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=auth_system"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type FaceConfig struct {
	// CascadePath points at the binary pigo face cascade.
	CascadePath string `env:"FACE_CASCADE_PATH, default=cascade/facefinder"`
	// MatchThreshold is the acceptance confidence for gallery matching.
	MatchThreshold float64 `env:"FACE_MATCH_THRESHOLD, default=0.6"`
}

// ProviderConfig describes the trusted external identity provider.
type ProviderConfig struct {
	Issuer   string        `env:"IDP_ISSUER,   default=https://accounts.google.com"`
	Audience string        `env:"IDP_AUDIENCE"`
	JWKSURL  string        `env:"IDP_JWKS_URL, default=https://www.googleapis.com/oauth2/v3/certs"`
	Timeout  time.Duration `env:"IDP_TIMEOUT,  default=5s"`
}

// SeedConfig activates the first-start admin seed only when both values are
// set. There is no default credential.
type SeedConfig struct {
	AdminUsername string `env:"SEED_ADMIN_USERNAME"`
	AdminPassword string `env:"SEED_ADMIN_PASSWORD"`
}

type ThrottleConfig struct {
	MaxFailures int           `env:"LOGIN_MAX_FAILURES, default=7"`
	Window      time.Duration `env:"LOGIN_FAILURE_WINDOW, default=15m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
