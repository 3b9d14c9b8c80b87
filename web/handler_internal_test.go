package web

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAbsoluteURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		tls      bool
		proto    string
		expected string
	}{
		{
			name:     "plain http",
			expected: "http://example.com/blog/2024/3/15/hello/",
		},
		{
			name:     "tls",
			tls:      true,
			expected: "https://example.com/blog/2024/3/15/hello/",
		},
		{
			name:     "forwarded proto",
			proto:    "https",
			expected: "https://example.com/blog/2024/3/15/hello/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "http://example.com/blog/share/1/", nil)

			if tt.tls {
				r.TLS = &tls.ConnectionState{}
			}

			if tt.proto != "" {
				r.Header.Set("X-Forwarded-Proto", tt.proto)
			}

			assert.Equal(t, tt.expected, absoluteURL(r, "/blog/2024/3/15/hello/"))
		})
	}
}

func TestParseDatePart(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value    string
		expected int
		valid    bool
	}{
		{value: "2024", expected: 2024, valid: true},
		{value: "03", expected: 3, valid: true},
		{value: "+2024"},
		{value: "-3"},
		{value: " 3"},
		{value: ""},
		{value: "1e3"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			n, err := parseDatePart(tt.value)
			if !tt.valid {
				assert.Error(t, err)

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}
