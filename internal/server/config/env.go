package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from process environment variables,
// each named after its JSON key in upper snake case. Applied last, so
// environment variables take precedence over defaults, JSON file, and
// flags — the usual ordering for container deployments where the image
// carries flags/JSON but the orchestrator injects env overrides.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("HTTP_ADDR"); ok {
		config.HTTPAddr = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := envInt("MAX_POOL_SIZE"); ok {
		config.MaxPoolSize = v
	}
	if v, ok := envInt("MINIMUM_IDLE"); ok {
		config.MinimumIdle = v
	}
	if v, ok := envInt("CONNECTION_TIMEOUT_MS"); ok {
		config.ConnectionTimeout = time.Duration(v) * time.Millisecond
	}
	if v, ok := envInt("IDLE_TIMEOUT_MS"); ok {
		config.IdleTimeout = time.Duration(v) * time.Millisecond
	}
	if v, ok := envInt("MAX_LIFETIME_MS"); ok {
		config.MaxLifetime = time.Duration(v) * time.Millisecond
	}
	if v, ok := envInt("STATEMENT_CACHE_SIZE"); ok {
		config.StatementCacheSize = v
	}
	if v, ok := os.LookupEnv("JWT_PUBLIC_KEY_PATH"); ok {
		config.JWTPublicKeyPath = v
	}
	if v, ok := envBool("USE_NULL_AUTHORIZER"); ok {
		config.UseNullAuthorizer = v
	}
	if v, ok := os.LookupEnv("NULL_AUTHORIZER_USER_TOKEN"); ok {
		config.NullAuthorizerUserToken = v
	}
	if v, ok := envInt("LIST_PAGE_SIZE_CAP"); ok {
		config.ListPageSizeCap = v
	}
}

func envInt(name string) (int, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envBool(name string) (bool, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
