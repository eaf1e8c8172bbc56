package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialpost/lilogin/linkedin"
)

const testRedirect = "http://localhost:5173/auth/callback"

func testClient(t *testing.T, backendURL string) *Client {
	t.Helper()
	c, err := linkedin.NewConfig("test-client-id", testRedirect, backendURL)
	require.NoError(t, err)
	ex, err := NewClient(c)
	require.NoError(t, err)
	return ex
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	t.Run("nil-config", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := NewClient(nil)
		require.Error(err)
		assert.Truef(errors.Is(err, linkedin.ErrNilParameter), "wanted \"%s\" but got \"%s\"", linkedin.ErrNilParameter, err)
	})
	t.Run("invalid-config", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := NewClient(&linkedin.Config{})
		require.Error(err)
		assert.Truef(errors.Is(err, linkedin.ErrInvalidParameter), "wanted \"%s\" but got \"%s\"", linkedin.ErrInvalidParameter, err)
	})
	t.Run("bad-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := linkedin.NewConfig("id", testRedirect, "https://backend.test", linkedin.WithBackendCA("bad"))
		require.NoError(err)
		_, err = NewClient(c)
		require.Error(err)
		assert.Truef(errors.Is(err, linkedin.ErrInvalidCACert), "wanted \"%s\" but got \"%s\"", linkedin.ErrInvalidCACert, err)
	})
	t.Run("endpoint", func(t *testing.T) {
		assert := assert.New(t)
		ex := testClient(t, "http://backend.test/")
		assert.Equal("http://backend.test/auth/linkedin/token", ex.endpoint)
	})
}

func TestClient_Exchange(t *testing.T) {
	t.Parallel()
	const scenarioToken = "h.eyJzdWIiOiJ1MSIsIm5hbWUiOiJBIiwiZW1haWwiOiJhQGIuY29tIn0.sig"
	tests := []struct {
		name      string
		status    int
		body      string
		want      linkedin.IdToken
		wantErr   bool
		wantIsErr []error
	}{
		{
			name:   "valid",
			status: http.StatusOK,
			body:   `{"access_token":"at","expires_in":5183999,"id_token":"` + scenarioToken + `"}`,
			want:   scenarioToken,
		},
		{
			name:      "missing-id-token",
			status:    http.StatusOK,
			body:      `{"access_token":"at"}`,
			wantErr:   true,
			wantIsErr: []error{linkedin.ErrExchangeFailed, linkedin.ErrMissingIdToken},
		},
		{
			name:      "id-token-wrong-type",
			status:    http.StatusOK,
			body:      `{"id_token":42}`,
			wantErr:   true,
			wantIsErr: []error{linkedin.ErrExchangeFailed},
		},
		{
			name:      "not-json",
			status:    http.StatusOK,
			body:      `<html>`,
			wantErr:   true,
			wantIsErr: []error{linkedin.ErrExchangeFailed},
		},
		{
			name:      "bad-request",
			status:    http.StatusBadRequest,
			body:      `{"detail":"Missing code or redirect_uri"}`,
			wantErr:   true,
			wantIsErr: []error{linkedin.ErrExchangeFailed},
		},
		{
			name:      "server-error-with-token",
			status:    http.StatusBadGateway,
			body:      `{"id_token":"` + scenarioToken + `"}`,
			wantErr:   true,
			wantIsErr: []error{linkedin.ErrExchangeFailed},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			var gotReq Request
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(http.MethodPost, r.Method)
				assert.Equal("/auth/linkedin/token", r.URL.Path)
				assert.Equal("application/json", r.Header.Get("Content-Type"))
				assert.NoError(json.NewDecoder(r.Body).Decode(&gotReq))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := testClient(t, srv.URL).Exchange(context.Background(), "abc", testRedirect)
			assert.Equal(Request{Code: "abc", RedirectURI: testRedirect}, gotReq)
			if tt.wantErr {
				require.Error(err)
				for _, want := range tt.wantIsErr {
					assert.Truef(errors.Is(err, want), "wanted \"%s\" but got \"%s\"", want, err)
				}
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestClient_Exchange_params(t *testing.T) {
	t.Parallel()
	ex := testClient(t, "http://backend.test")
	for name, args := range map[string][2]string{
		"empty-code":     {"", testRedirect},
		"empty-redirect": {"abc", ""},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ex.Exchange(context.Background(), args[0], args[1])
			require.Error(t, err)
			assert.Truef(t, errors.Is(err, linkedin.ErrInvalidParameter), "wanted \"%s\" but got \"%s\"", linkedin.ErrInvalidParameter, err)
		})
	}
}

func TestClient_Exchange_network(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testClient(t, url).Exchange(context.Background(), "abc", testRedirect)
	require.Error(err)
	assert.Truef(errors.Is(err, linkedin.ErrExchangeFailed), "wanted \"%s\" but got \"%s\"", linkedin.ErrExchangeFailed, err)
}

func TestClient_Exchange_canceled(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := testClient(t, srv.URL).Exchange(ctx, "abc", testRedirect)
	require.Error(err)
	assert.Truef(errors.Is(err, linkedin.ErrExchangeFailed), "wanted \"%s\" but got \"%s\"", linkedin.ErrExchangeFailed, err)
}
