package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainsToHTTPSAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		domains  []string
		expected string
	}{
		{
			name:     "single domain",
			domains:  []string{"example.com"},
			expected: "https://example.com",
		},
		{
			name:     "multiple domains",
			domains:  []string{"example.com", "www.example.com"},
			expected: "https://example.com, https://www.example.com",
		},
		{
			name:     "no domains",
			domains:  []string{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := domainsToHTTPSAddress(tt.domains)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestServer_Run(t *testing.T) {
	t.Parallel()

	t.Run("stops when context is done", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())

		srv := &Server{Host: "127.0.0.1", Port: "0"}

		go func() {
			time.Sleep(100 * time.Millisecond)
			cancel()
		}()

		err := srv.Run(ctx, http.NotFoundHandler())
		require.NoError(t, err)
	})

	t.Run("invalid tls mode", func(t *testing.T) {
		t.Parallel()

		srv := &Server{Port: "0", TLS: ServerTLS{Enabled: true, Mode: "magic"}}

		err := srv.Run(context.Background(), http.NotFoundHandler())

		invalidTLSModeErr := InvalidTLSModeError{}
		require.ErrorAs(t, err, &invalidTLSModeErr)
		assert.Equal(t, "magic", invalidTLSModeErr.Mode)
	})

	t.Run("autocert without domains", func(t *testing.T) {
		t.Parallel()

		srv := &Server{
			Port: "0",
			TLS:  ServerTLS{Enabled: true, Mode: TLSModeAutoCert, AutoCert: &ServerTLSAutoCert{}},
		}

		err := srv.Run(context.Background(), http.NotFoundHandler())
		require.Error(t, err)
	})

	t.Run("autocert challenge server stops with the server", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		httpPort := freePort(t)

		srv := &Server{
			Host: "127.0.0.1",
			Port: "0",
			TLS: ServerTLS{
				Enabled: true,
				Mode:    TLSModeAutoCert,
				AutoCert: &ServerTLSAutoCert{
					CacheDir: t.TempDir(),
					Domains:  []string{"example.com"},
					HTTPPort: httpPort,
				},
			},
		}

		errCh := make(chan error, 1)

		go func() {
			errCh <- srv.Run(ctx, http.NotFoundHandler())
		}()

		addr := net.JoinHostPort("127.0.0.1", httpPort)

		require.Eventually(t, func() bool {
			conn, err := net.Dial("tcp", addr)
			if err != nil {
				return false
			}

			_ = conn.Close()

			return true
		}, 5*time.Second, 10*time.Millisecond)

		cancel()

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("server did not stop")
		}

		assertPortReleased(t, addr)
	})

	t.Run("autocert challenge server stops when serving fails", func(t *testing.T) {
		t.Parallel()

		busy, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)

		defer busy.Close()

		_, busyPort, err := net.SplitHostPort(busy.Addr().String())
		require.NoError(t, err)

		httpPort := freePort(t)

		srv := &Server{
			Host: "127.0.0.1",
			Port: busyPort,
			TLS: ServerTLS{
				Enabled: true,
				Mode:    TLSModeAutoCert,
				AutoCert: &ServerTLSAutoCert{
					CacheDir: t.TempDir(),
					Domains:  []string{"example.com"},
					HTTPPort: httpPort,
				},
			},
		}

		err = srv.Run(context.Background(), http.NotFoundHandler())
		require.Error(t, err)

		assertPortReleased(t, net.JoinHostPort("127.0.0.1", httpPort))
	})
}

func freePort(t *testing.T) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	require.NoError(t, ln.Close())

	return port
}

func assertPortReleased(t *testing.T, addr string) {
	t.Helper()

	assert.Eventually(t, func() bool {
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return false
		}

		_ = ln.Close()

		return true
	}, 5*time.Second, 10*time.Millisecond, "port %s is still in use", addr)
}
