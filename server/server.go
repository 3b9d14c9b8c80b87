// Package server runs the HTTP(S) listener of the blog.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

const (
	DefaultPort    = "8080"
	DefaultTLSMode = TLSModeAutoCert

	TLSModeAutoCert = "autocert"
	TLSModeFile     = "file"

	DefaultAutoCertHTTPPort = "80"

	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type Server struct {
	Port string
	Host string
	TLS  ServerTLS
}

type ServerTLS struct {
	Enabled  bool
	Mode     string
	AutoCert *ServerTLSAutoCert
	CertFile string
	KeyFile  string
}

type ServerTLSAutoCert struct {
	CacheDir string
	Domains  []string
	Email    string
	// HTTPPort serves http-01 challenges and redirects to https.
	HTTPPort string
}

type InvalidTLSModeError struct {
	Mode string
}

func (err InvalidTLSModeError) Error() string {
	return fmt.Sprintf("invalid tls mode '%s'", err.Mode)
}

// Run serves handler until ctx is done, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(s.Host, s.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	serve, companions, err := s.serveFunc(ctx, srv)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- serve()
	}()

	select {
	case err := <-errCh:
		shutdownCompanions(ctx, companions)

		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}

		return nil
	case <-ctx.Done():
	}

	slog.InfoContext(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	shutdownCompanions(shutdownCtx, companions)

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	return nil
}

// shutdownCompanions stops the servers running next to the main one.
func shutdownCompanions(ctx context.Context, companions []*http.Server) {
	if len(companions) == 0 {
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	for _, companion := range companions {
		err := companion.Shutdown(shutdownCtx)
		if err != nil {
			slog.ErrorContext(ctx, "failed to shutdown companion server", "address", companion.Addr, "error", err)
		}
	}
}

// serveFunc returns the blocking serve call of srv and the companion servers
// it started, which Run shuts down with srv.
func (s *Server) serveFunc(ctx context.Context, srv *http.Server) (func() error, []*http.Server, error) {
	if !s.TLS.Enabled {
		slog.InfoContext(ctx, "server started", "address", "http://"+srv.Addr)

		return srv.ListenAndServe, nil, nil
	}

	switch s.TLS.Mode {
	case TLSModeAutoCert:
		if s.TLS.AutoCert == nil || len(s.TLS.AutoCert.Domains) == 0 {
			return nil, nil, errors.New("autocert requires at least one domain")
		}

		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			Cache:      autocert.DirCache(s.TLS.AutoCert.CacheDir),
			HostPolicy: autocert.HostWhitelist(s.TLS.AutoCert.Domains...),
			Email:      s.TLS.AutoCert.Email,
		}

		srv.TLSConfig = manager.TLSConfig()

		httpPort := s.TLS.AutoCert.HTTPPort
		if httpPort == "" {
			httpPort = DefaultAutoCertHTTPPort
		}

		challengeSrv := &http.Server{
			Addr:              net.JoinHostPort(s.Host, httpPort),
			Handler:           manager.HTTPHandler(nil),
			ReadHeaderTimeout: readHeaderTimeout,
		}

		var lc net.ListenConfig

		ln, err := lc.Listen(ctx, "tcp", challengeSrv.Addr)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to listen for acme challenges: %w", err)
		}

		go func() {
			err := challengeSrv.Serve(ln)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.ErrorContext(ctx, "failed to run acme challenge server", "error", err)
			}
		}()

		slog.InfoContext(ctx, "server started", "address", domainsToHTTPSAddress(s.TLS.AutoCert.Domains))

		return func() error {
			return srv.ListenAndServeTLS("", "")
		}, []*http.Server{challengeSrv}, nil
	case TLSModeFile:
		slog.InfoContext(ctx, "server started", "address", "https://"+srv.Addr)

		return func() error {
			return srv.ListenAndServeTLS(s.TLS.CertFile, s.TLS.KeyFile)
		}, nil, nil
	default:
		return nil, nil, InvalidTLSModeError{Mode: s.TLS.Mode}
	}
}

func domainsToHTTPSAddress(domains []string) string {
	addresses := make([]string, 0, len(domains))

	for _, domain := range domains {
		addresses = append(addresses, "https://"+domain)
	}

	return strings.Join(addresses, ", ")
}
