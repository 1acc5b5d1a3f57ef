package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/eventmail/pkg/apiclient"
	"github.com/dmitrymomot/eventmail/pkg/requestid"
)

func newClient(t *testing.T, h http.HandlerFunc) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return apiclient.New(srv.URL+"/api/", apiclient.WithLogger(slog.New(slog.DiscardHandler)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRequestHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	var path string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		path = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	ctx := requestid.WithContext(context.Background(), "req-123")
	h, err := c.For(apiclient.Credentials{Token: "tok"}).Health(ctx)
	require.NoError(t, err)
	assert.True(t, h.Connected())

	assert.Equal(t, "/api/health", path)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.Equal(t, "req-123", got.Get(requestid.Header))
}

func TestForDoesNotMutateParent(t *testing.T) {
	t.Parallel()

	var auth []string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	_, err := c.For(apiclient.Credentials{Token: "a"}).Health(context.Background())
	require.NoError(t, err)
	_, err = c.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer a", ""}, auth)
}

func TestErrorNormalization(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		kind    apiclient.Kind
		message string
		unauth  bool
	}{
		{"error field", 400, `{"error":"Email already exists"}`, apiclient.KindResponse, "Email already exists", false},
		{"message field", 404, `{"message":"gone"}`, apiclient.KindResponse, "gone", false},
		{"no body", 502, ``, apiclient.KindResponse, "Bad Gateway", false},
		{"html body", 500, `<html>oops</html>`, apiclient.KindResponse, "Internal Server Error", false},
		{"unauthorized", 401, `{"error":"Invalid token"}`, apiclient.KindResponse, "Invalid token", true},
		{"success false on 200", 200, `{"success":false,"error":"올바른 Google Sheets URL이 아닙니다."}`, apiclient.KindResponse, "올바른 Google Sheets URL이 아닙니다.", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Health(context.Background())
			require.Error(t, err)

			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiclient.Message(err))
			assert.Equal(t, tt.unauth, apiclient.IsUnauthorized(err))
		})
	}
}

func TestNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := apiclient.New(url, apiclient.WithTimeout(time.Second), apiclient.WithLogger(slog.New(slog.DiscardHandler)))
	_, err := c.Health(context.Background())

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, apiclient.KindNetwork, apiErr.Kind)
	assert.Zero(t, apiErr.Status)
	assert.NotEmpty(t, apiErr.Message)
	assert.False(t, apiclient.IsUnauthorized(err))
}

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithDoer(t *testing.T) {
	t.Parallel()

	calls := 0
	c := apiclient.New("http://backend/api", apiclient.WithDoer(doerFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("")
	})), apiclient.WithLogger(slog.New(slog.DiscardHandler)))

	_, err := c.Health(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls, "requests are never retried")
	assert.NotEmpty(t, apiclient.Message(err))
}

func TestMessage(t *testing.T) {
	t.Parallel()
	assert.Empty(t, apiclient.Message(nil))
	assert.Equal(t, "plain", apiclient.Message(errors.New("plain")))
	assert.Equal(t, "An unexpected error occurred", apiclient.Message(errors.New("")))
}
