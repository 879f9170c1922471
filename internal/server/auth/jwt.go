package auth

import (
	"crypto/rsa"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vss-go/server/internal/common"
)

const bearerPrefix = "Bearer "

// JwtAuthorizer verifies an RS256-signed bearer token (RFC 7519) and uses
// its subject claim as the user_token. The signing key is asymmetric: the
// server only ever holds the public half.
type JwtAuthorizer struct {
	publicKey *rsa.PublicKey
	parser    *jwt.Parser
}

// NewJwtAuthorizer builds a JwtAuthorizer from a PEM-encoded RSA public key.
func NewJwtAuthorizer(pemPublicKey []byte) (*JwtAuthorizer, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(pemPublicKey)
	if err != nil {
		return nil, fmt.Errorf("parse RSA public key: %w", err)
	}
	return &JwtAuthorizer{
		publicKey: key,
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{"RS256"})),
	}, nil
}

func (a *JwtAuthorizer) Verify(headers http.Header) (string, error) {
	authHeader := headers.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", fmt.Errorf("%w: missing or invalid Authorization header", common.ErrAuth)
	}
	tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

	claims := jwt.MapClaims{}
	_, err := a.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.publicKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: invalid JWT: %v", common.ErrAuth, err)
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: invalid JWT: missing subject", common.ErrAuth)
	}

	if err := validateUserToken(subject); err != nil {
		return "", err
	}
	return subject, nil
}
