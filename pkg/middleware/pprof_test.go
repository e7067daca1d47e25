package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIPAllowlist(t *testing.T) {
	tests := []struct {
		name   string
		cidrs  []string
		remote string
		header string
		want   int
	}{
		{"loopback allowed", []string{"127.0.0.0/8"}, "127.0.0.1:1234", "", http.StatusOK},
		{"outside range denied", []string{"10.0.0.0/8"}, "192.168.1.1:1234", "", http.StatusForbidden},
		{"second range allowed", []string{"10.0.0.0/8", "192.168.0.0/16"}, "192.168.1.1:1234", "", http.StatusOK},
		{"invalid cidr skipped", []string{"not-a-cidr", "127.0.0.0/8"}, "127.0.0.1:1234", "", http.StatusOK},
		{"ipv6 loopback", []string{"::1/128"}, "[::1]:1234", "", http.StatusOK},
		{"no port", []string{"127.0.0.0/8"}, "127.0.0.1", "", http.StatusOK},
		{"forwarded header ignored", []string{"10.0.0.0/8"}, "8.8.8.8:1234", "10.0.0.5", http.StatusForbidden},
		{"garbage remote denied", []string{"0.0.0.0/0"}, "not-an-ip", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := IPAllowlist(tt.cidrs, newTestLogger(&buf))(okHandler())

			req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
			req.RemoteAddr = tt.remote
			if tt.header != "" {
				req.Header.Set("X-Forwarded-For", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestIPAllowlist_DeniedEnvelope(t *testing.T) {
	var buf bytes.Buffer
	handler := IPAllowlist([]string{"10.0.0.0/8"}, newTestLogger(&buf))(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "192.168.1.1:1234"
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "FORBIDDEN", body.Error.Code)
	assert.Contains(t, buf.String(), "access denied by IP allowlist")
}

func TestRegisterPprof(t *testing.T) {
	var buf bytes.Buffer

	t.Run("disabled without cidrs", func(t *testing.T) {
		r := chi.NewRouter()
		RegisterPprof(r, nil, newTestLogger(&buf))

		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil)
		req.RemoteAddr = "127.0.0.1:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("mounted for allowed peers", func(t *testing.T) {
		r := chi.NewRouter()
		RegisterPprof(r, []string{"127.0.0.0/8"}, newTestLogger(&buf))

		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil)
		req.RemoteAddr = "127.0.0.1:1234"
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
