package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/quickbyte/quickbyte-auth/internal/logging"
)

// Server runs the HTTP endpoint and shuts it down when the context is
// cancelled.
type Server struct {
	address string
	router  http.Handler
	logger  logging.Logger
}

func NewServer(address string, router http.Handler, logger logging.Logger) *Server {
	return &Server{
		address: address,
		router:  router,
		logger:  logger.With("module", "http_server"),
	}
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
