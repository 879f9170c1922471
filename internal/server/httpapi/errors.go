package httpapi

import (
	"errors"
	"net/http"

	"github.com/vss-go/server/internal/common"
	"github.com/vss-go/server/internal/proto"
)

// wireErrorCode maps an engine error to the wire ErrorCode and HTTP
// status. Internal is the default for anything that doesn't match a
// recognized sentinel, so an unexpected state is never mistaken for a more
// specific, and less alarming, error kind.
func wireErrorCode(err error) (proto.ErrorCode, int) {
	switch {
	case errors.Is(err, common.ErrConflict):
		return proto.ErrorCodeConflict, http.StatusConflict
	case errors.Is(err, common.ErrInvalidRequest):
		return proto.ErrorCodeInvalidRequest, http.StatusBadRequest
	case errors.Is(err, common.ErrNoSuchKey):
		return proto.ErrorCodeNoSuchKey, http.StatusNotFound
	case errors.Is(err, common.ErrAuth):
		return proto.ErrorCodeAuth, http.StatusUnauthorized
	default:
		return proto.ErrorCodeInternal, http.StatusInternalServerError
	}
}

// writeError encodes err as a binary ErrorResponse and writes it with the
// matching HTTP status code.
func writeError(w http.ResponseWriter, err error) {
	code, status := wireErrorCode(err)
	resp := proto.ErrorResponse{ErrorCode: code, Message: err.Error()}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(status)
	_, _ = w.Write(resp.Marshal())
}
