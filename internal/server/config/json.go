package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/vss-go/server/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. Duration-valued fields are expressed in
// milliseconds and converted to time.Duration when copied into Config.
type JsonConfig struct {
	HTTPAddr                string `json:"http_addr"`
	DatabaseDSN             string `json:"database_dsn"`
	MaxPoolSize             int    `json:"max_pool_size"`
	MinimumIdle             int    `json:"minimum_idle"`
	ConnectionTimeoutMs     int64  `json:"connection_timeout_ms"`
	IdleTimeoutMs           int64  `json:"idle_timeout_ms"`
	MaxLifetimeMs           int64  `json:"max_lifetime_ms"`
	StatementCacheSize      int    `json:"statement_cache_size"`
	JWTPublicKeyPath        string `json:"jwt_public_key_path"`
	UseNullAuthorizer       bool   `json:"use_null_authorizer"`
	NullAuthorizerUserToken string `json:"null_authorizer_user_token"`
	ListPageSizeCap         int    `json:"list_page_size_cap"`
}

// parseJson loads configuration values from a JSON file into the given
// Config. The file path comes from the -c / -config command-line flags;
// if neither is set, parseJson is a no-op. An unreadable file or invalid
// JSON panics; configuration problems should stop startup immediately.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.HTTPAddr = c.HTTPAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.MaxPoolSize = c.MaxPoolSize
	config.MinimumIdle = c.MinimumIdle
	config.ConnectionTimeout = time.Duration(c.ConnectionTimeoutMs) * time.Millisecond
	config.IdleTimeout = time.Duration(c.IdleTimeoutMs) * time.Millisecond
	config.MaxLifetime = time.Duration(c.MaxLifetimeMs) * time.Millisecond
	config.StatementCacheSize = c.StatementCacheSize
	config.JWTPublicKeyPath = c.JWTPublicKeyPath
	config.UseNullAuthorizer = c.UseNullAuthorizer
	config.NullAuthorizerUserToken = c.NullAuthorizerUserToken
	config.ListPageSizeCap = c.ListPageSizeCap
}
