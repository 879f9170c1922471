package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/vss-go/server/internal/common"
)

func generateKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return priv, pemBytes
}

func signToken(t *testing.T, priv *rsa.PrivateKey, subject string, expiry time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	s, err := tok.SignedString(priv)
	require.NoError(t, err)
	return s
}

func headersWithBearer(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func TestJwtAuthorizer_VerifiesValidToken(t *testing.T) {
	priv, pemPub := generateKeyPair(t)
	a, err := NewJwtAuthorizer(pemPub)
	require.NoError(t, err)

	tok := signToken(t, priv, "user-123", time.Now().Add(time.Hour))

	userToken, err := a.Verify(headersWithBearer(tok))
	require.NoError(t, err)
	require.Equal(t, "user-123", userToken)
}

func TestJwtAuthorizer_MissingHeader(t *testing.T) {
	_, pemPub := generateKeyPair(t)
	a, err := NewJwtAuthorizer(pemPub)
	require.NoError(t, err)

	_, err = a.Verify(http.Header{})
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestJwtAuthorizer_NonBearerHeader(t *testing.T) {
	_, pemPub := generateKeyPair(t)
	a, err := NewJwtAuthorizer(pemPub)
	require.NoError(t, err)

	h := http.Header{}
	h.Set("Authorization", "Basic xyz")

	_, err = a.Verify(h)
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestJwtAuthorizer_ExpiredToken(t *testing.T) {
	priv, pemPub := generateKeyPair(t)
	a, err := NewJwtAuthorizer(pemPub)
	require.NoError(t, err)

	tok := signToken(t, priv, "user-123", time.Now().Add(-time.Hour))

	_, err = a.Verify(headersWithBearer(tok))
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestJwtAuthorizer_WrongKeyRejected(t *testing.T) {
	priv, _ := generateKeyPair(t)
	_, otherPub := generateKeyPair(t)

	a, err := NewJwtAuthorizer(otherPub)
	require.NoError(t, err)

	tok := signToken(t, priv, "user-123", time.Now().Add(time.Hour))

	_, err = a.Verify(headersWithBearer(tok))
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestJwtAuthorizer_EmptySubjectRejected(t *testing.T) {
	priv, pemPub := generateKeyPair(t)
	a, err := NewJwtAuthorizer(pemPub)
	require.NoError(t, err)

	tok := signToken(t, priv, "", time.Now().Add(time.Hour))

	_, err = a.Verify(headersWithBearer(tok))
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestJwtAuthorizer_TokenTooLongRejected(t *testing.T) {
	priv, pemPub := generateKeyPair(t)
	a, err := NewJwtAuthorizer(pemPub)
	require.NoError(t, err)

	longSubject := make([]byte, common.MaxUserTokenLength+1)
	for i := range longSubject {
		longSubject[i] = 'a'
	}
	tok := signToken(t, priv, string(longSubject), time.Now().Add(time.Hour))

	_, err = a.Verify(headersWithBearer(tok))
	require.ErrorIs(t, err, common.ErrAuth)
}

func TestNullAuthorizer_DefaultIdentity(t *testing.T) {
	a := NewNullAuthorizer("")
	userToken, err := a.Verify(http.Header{})
	require.NoError(t, err)
	require.Equal(t, "unauth-user", userToken)
}

func TestNullAuthorizer_CustomIdentity(t *testing.T) {
	a := NewNullAuthorizer("fixed-dev-user")
	userToken, err := a.Verify(http.Header{})
	require.NoError(t, err)
	require.Equal(t, "fixed-dev-user", userToken)
}
