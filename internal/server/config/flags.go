package config

import (
	"flag"
	"os"
	"time"

	"github.com/vss-go/server/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line
// flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-j string   path to a PEM-encoded RSA public key for JWT verification
//	-n          use the null authorizer instead of JWT
//	-u string   null authorizer user_token
//	-t int      connection_timeout, milliseconds
//	-l int      list_page_size_cap
//
// The function first filters os.Args to only the flags it recognizes
// using flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-j", "-n", "-u", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP bind address")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTPublicKeyPath, "j", config.JWTPublicKeyPath, "path to PEM-encoded RSA public key")
	fs.BoolVar(&config.UseNullAuthorizer, "n", config.UseNullAuthorizer, "use the null authorizer")
	fs.StringVar(&config.NullAuthorizerUserToken, "u", config.NullAuthorizerUserToken, "null authorizer user token")

	connectionTimeoutMs := fs.Int("t", int(config.ConnectionTimeout.Milliseconds()), "connection_timeout (in milliseconds)")
	fs.IntVar(&config.ListPageSizeCap, "l", config.ListPageSizeCap, "list_page_size_cap")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ConnectionTimeout = time.Duration(*connectionTimeoutMs) * time.Millisecond
}
