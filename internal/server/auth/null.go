package auth

import "net/http"

// defaultNullUserToken is the fixed identity NullAuthorizer returns. Useful
// only for trusted deployments (e.g. local development, single-tenant
// setups behind a separately-authenticated gateway).
const defaultNullUserToken = "unauth-user"

// NullAuthorizer always succeeds with a fixed user_token, performing no
// verification at all.
type NullAuthorizer struct {
	userToken string
}

// NewNullAuthorizer builds a NullAuthorizer. An empty userToken defaults to
// "unauth-user".
func NewNullAuthorizer(userToken string) *NullAuthorizer {
	if userToken == "" {
		userToken = defaultNullUserToken
	}
	return &NullAuthorizer{userToken: userToken}
}

func (a *NullAuthorizer) Verify(headers http.Header) (string, error) {
	if err := validateUserToken(a.userToken); err != nil {
		return "", err
	}
	return a.userToken, nil
}
