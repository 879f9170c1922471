// Package auth defines the Authorizer collaborator: given request headers,
// return a non-empty user_token or fail with common.ErrAuth. The engine
// treats user_token as opaque and never parses it; Authorizer
// implementations are the only place identity is extracted.
package auth

import (
	"fmt"
	"net/http"

	"github.com/vss-go/server/internal/common"
)

// Authorizer verifies an inbound HTTP request and returns the
// authenticated principal's user_token.
type Authorizer interface {
	Verify(headers http.Header) (userToken string, err error)
}

// validateUserToken enforces the bound every Authorizer implementation
// must respect: non-empty, and no longer than MaxUserTokenLength. Kept in
// one place so the limit never drifts from the record store's column
// width.
func validateUserToken(userToken string) error {
	if userToken == "" {
		return fmt.Errorf("%w: empty user token", common.ErrAuth)
	}
	if len(userToken) > common.MaxUserTokenLength {
		return fmt.Errorf("%w: user token exceeds %d characters", common.ErrAuth, common.MaxUserTokenLength)
	}
	return nil
}
