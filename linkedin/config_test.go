package linkedin

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()
	const (
		clientId   = "test-client-id"
		redirect   = "http://localhost:5173/auth/callback"
		backendURL = "http://localhost:8000"
	)
	tests := []struct {
		name       string
		clientId   string
		redirect   string
		backendURL string
		opts       []Option
		want       *Config
		wantErr    bool
		wantIsErr  error
		wantErrCnt int
	}{
		{
			name:       "valid",
			clientId:   clientId,
			redirect:   redirect,
			backendURL: backendURL,
			want: &Config{
				ClientId:      clientId,
				RedirectURL:   redirect,
				BackendURL:    backendURL,
				AuthURL:       "https://www.linkedin.com/oauth/v2/authorization",
				PostLoginPath: "/dashboard",
			},
		},
		{
			name:       "valid-with-opts",
			clientId:   clientId,
			redirect:   redirect,
			backendURL: backendURL,
			opts: []Option{
				WithAuthURL("https://idp.example.com/authorize"),
				WithPostLoginPath("/home"),
				WithBackendCA("pem"),
			},
			want: &Config{
				ClientId:      clientId,
				RedirectURL:   redirect,
				BackendURL:    backendURL,
				AuthURL:       "https://idp.example.com/authorize",
				PostLoginPath: "/home",
				BackendCA:     "pem",
			},
		},
		{
			name:       "missing-client-id",
			redirect:   redirect,
			backendURL: backendURL,
			wantErr:    true,
			wantIsErr:  ErrInvalidParameter,
			wantErrCnt: 1,
		},
		{
			name:       "bad-redirect-scheme",
			clientId:   clientId,
			redirect:   "ftp://localhost/auth/callback",
			backendURL: backendURL,
			wantErr:    true,
			wantIsErr:  ErrInvalidParameter,
			wantErrCnt: 1,
		},
		{
			name:       "relative-backend",
			clientId:   clientId,
			redirect:   redirect,
			backendURL: "/api",
			wantErr:    true,
			wantIsErr:  ErrInvalidParameter,
			wantErrCnt: 1,
		},
		{
			name:       "bad-post-login-path",
			clientId:   clientId,
			redirect:   redirect,
			backendURL: backendURL,
			opts:       []Option{WithPostLoginPath("dashboard")},
			wantErr:    true,
			wantIsErr:  ErrInvalidParameter,
			wantErrCnt: 1,
		},
		{
			name:       "everything-missing",
			opts:       []Option{WithAuthURL("")},
			wantErr:    true,
			wantIsErr:  ErrInvalidParameter,
			wantErrCnt: 4,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert, require := assert.New(t), require.New(t)
			got, err := NewConfig(tt.clientId, tt.redirect, tt.backendURL, tt.opts...)
			if tt.wantErr {
				require.Error(err)
				assert.Truef(errors.Is(err, tt.wantIsErr), "wanted \"%s\" but got \"%s\"", tt.wantIsErr, err)
				var merr *multierror.Error
				require.True(errors.As(err, &merr))
				assert.Len(merr.Errors, tt.wantErrCnt)
				return
			}
			require.NoError(err)
			assert.Equal(tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()
	t.Run("nil", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		var c *Config
		err := c.Validate()
		require.Error(err)
		assert.Truef(errors.Is(err, ErrNilParameter), "wanted \"%s\" but got \"%s\"", ErrNilParameter, err)
	})
}

func TestConfig_CallbackPath(t *testing.T) {
	t.Parallel()
	tests := []struct {
		redirect string
		want     string
	}{
		{"http://localhost:5173/auth/callback", "/auth/callback"},
		{"http://localhost:5173/auth/callback?x=1", "/auth/callback"},
		{"http://localhost:5173", "/"},
		{"://bad", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.redirect, func(t *testing.T) {
			c := &Config{RedirectURL: tt.redirect}
			assert.Equal(t, tt.want, c.CallbackPath())
		})
	}
}

func TestConfig_TokenExchangeURL(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	assert.Equal("http://localhost:8000/auth/linkedin/token", (&Config{BackendURL: "http://localhost:8000"}).TokenExchangeURL())
	assert.Equal("http://localhost:8000/auth/linkedin/token", (&Config{BackendURL: "http://localhost:8000/"}).TokenExchangeURL())
}

func TestConfig_HttpClient(t *testing.T) {
	t.Parallel()
	t.Run("no-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := (&Config{}).HttpClient()
		require.NoError(err)
		assert.NotNil(c)
	})
	t.Run("bad-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := (&Config{BackendCA: "bad"}).HttpClient()
		require.Error(err)
		assert.Truef(errors.Is(err, ErrInvalidCACert), "wanted \"%s\" but got \"%s\"", ErrInvalidCACert, err)
	})
}

func TestLoadConfig(t *testing.T) {
	// t.Setenv is incompatible with t.Parallel
	t.Run("env", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		t.Setenv("LINKEDIN_CLIENT_ID", "env-client")
		t.Setenv("LINKEDIN_REDIRECT_URI", "http://localhost:5173/auth/callback")
		t.Setenv("BACKEND_URL", "http://localhost:8000")
		t.Setenv("LINKEDIN_AUTH_URL", "")
		t.Setenv("POST_LOGIN_PATH", "")
		got, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(err)
		assert.Equal("env-client", got.ClientId)
		assert.Equal("https://www.linkedin.com/oauth/v2/authorization", got.AuthURL)
		assert.Equal("/dashboard", got.PostLoginPath)
		assert.Equal("/auth/callback", got.CallbackPath())
	})
	t.Run("dotenv-file", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		// register cleanup of the vars godotenv will set
		for _, k := range []string{"LINKEDIN_CLIENT_ID", "LINKEDIN_REDIRECT_URI", "BACKEND_URL", "POST_LOGIN_PATH"} {
			t.Setenv(k, "")
			require.NoError(os.Unsetenv(k))
		}
		f := filepath.Join(t.TempDir(), ".env")
		require.NoError(os.WriteFile(f, []byte(
			"LINKEDIN_CLIENT_ID=file-client\n"+
				"LINKEDIN_REDIRECT_URI=http://localhost:5173/auth/callback\n"+
				"BACKEND_URL=http://localhost:8000\n"+
				"POST_LOGIN_PATH=/home\n"), 0o600))
		got, err := LoadConfig(f)
		require.NoError(err)
		assert.Equal("file-client", got.ClientId)
		assert.Equal("/home", got.PostLoginPath)
	})
	t.Run("invalid", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		t.Setenv("LINKEDIN_CLIENT_ID", "")
		t.Setenv("LINKEDIN_REDIRECT_URI", "")
		t.Setenv("BACKEND_URL", "")
		_, err := LoadConfig()
		require.Error(err)
		assert.Truef(errors.Is(err, ErrInvalidParameter), "wanted \"%s\" but got \"%s\"", ErrInvalidParameter, err)
	})
}
