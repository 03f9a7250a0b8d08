package utils

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = defaultReadTimeout
	defaultShutdownTimeout = 20 * time.Second
)

// Server wraps http.Server with signal driven graceful shutdown.
type Server struct {
	*http.Server
	shutdownTimeout time.Duration
}

// NewServer creates a Server with timeouts and handler.
func NewServer(addr string, handler http.Handler, readTimeout, writeTimeout time.Duration) *Server {
	return &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadTimeout:       readTimeout,
			ReadHeaderTimeout: readTimeout,
			WriteTimeout:      writeTimeout,
		},
		shutdownTimeout: defaultShutdownTimeout,
	}
}

// Serve accepts connections on ln until ctx is done, then drains in-flight requests.
func (srv *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	Sugar.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		Sugar.Errorf("HTTP server shutdown error: %v", err)
		return err
	}
	Sugar.Info("HTTP server shutdown success")
	return nil
}

// GraceServer listens on addr and serves until SIGINT or SIGTERM.
func GraceServer(addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	Sugar.Infof("listening on %s", ln.Addr())
	return NewServer(addr, handler, defaultReadTimeout, defaultWriteTimeout).Serve(ctx, ln)
}
