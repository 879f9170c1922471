// Package httpapi exposes the four versioned storage operations over plain
// HTTP/1.1: each endpoint accepts a POST with an application/octet-stream
// body holding a binary-encoded request message and replies with a
// binary-encoded response or ErrorResponse. There is no JSON
// fallback and no REST-style resource addressing — this is an RPC surface
// shaped like HTTP.
package httpapi

import (
	"context"
	"net"
	"net/http"

	"github.com/vss-go/server/internal/logging"
	"github.com/vss-go/server/internal/server/auth"
	"github.com/vss-go/server/internal/server/engine"
)

// Server is the HTTP transport binding for the Engine.
type Server struct {
	address    string
	engine     *engine.Engine
	authorizer auth.Authorizer
	logger     logging.Logger
}

// NewServer builds a Server bound to the given Engine and Authorizer.
func NewServer(address string, e *engine.Engine, a auth.Authorizer, l logging.Logger) *Server {
	return &Server{
		address:    address,
		engine:     e,
		authorizer: a,
		logger:     l.With("module", "http_server"),
	}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /vss/getObject", s.withMiddleware(s.handleGetObject))
	mux.HandleFunc("POST /vss/putObjects", s.withMiddleware(s.handlePutObjects))
	mux.HandleFunc("POST /vss/deleteObject", s.withMiddleware(s.handleDeleteObject))
	mux.HandleFunc("POST /vss/listKeyVersions", s.withMiddleware(s.handleListKeyVersions))
	return mux
}

// Run starts the HTTP server and blocks until ctx is cancelled, then
// gracefully shuts down.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{Handler: s.routes()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		_ = srv.Shutdown(context.Background())
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
