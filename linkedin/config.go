package linkedin

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	oauth2linkedin "golang.org/x/oauth2/linkedin"

	sdkHttp "github.com/socialpost/lilogin/sdk/http"
)

// DefaultPostLoginPath is where the client lands after a successful login.
const DefaultPostLoginPath = "/dashboard"

// Config represents the client configuration for the LinkedIn authorization
// code flow.  A Config is read once at startup and never mutated.
type Config struct {
	// ClientId is the LinkedIn application's client id
	ClientId string `env:"LINKEDIN_CLIENT_ID"`

	// RedirectURL is the callback location registered with LinkedIn.  Its
	// path is the client's callback path.
	RedirectURL string `env:"LINKEDIN_REDIRECT_URI"`

	// BackendURL is the base URL of the backend that performs the token
	// exchange on the client's behalf.
	BackendURL string `env:"BACKEND_URL"`

	// AuthURL is the provider's authorization endpoint.
	AuthURL string `env:"LINKEDIN_AUTH_URL"`

	// PostLoginPath replaces the visible location after a successful login.
	PostLoginPath string `env:"POST_LOGIN_PATH"`

	// BackendCA is an optional CA cert (PEM) to use when sending requests to
	// the backend.
	BackendCA string `env:"BACKEND_CA_PEM"`
}

// NewConfig composes a new client config.
// Supported options:
//	WithAuthURL
//	WithPostLoginPath
//	WithBackendCA
func NewConfig(clientId, redirectURL, backendURL string, opt ...Option) (*Config, error) {
	const op = "linkedin.NewConfig"
	opts := getConfigOpts(opt...)
	c := &Config{
		ClientId:      clientId,
		RedirectURL:   redirectURL,
		BackendURL:    backendURL,
		AuthURL:       opts.withAuthURL,
		PostLoginPath: opts.withPostLoginPath,
		BackendCA:     opts.withBackendCA,
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return c, nil
}

// LoadConfig reads the config from the environment.  Any envFiles that exist
// are loaded first (values already present in the environment win).  A
// leading ~ in a file name is expanded to the user's home directory.
func LoadConfig(envFiles ...string) (*Config, error) {
	const op = "linkedin.LoadConfig"
	for _, f := range envFiles {
		if strings.HasPrefix(f, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("%s: unable to expand %s: %w", op, f, err)
			}
			f = strings.Replace(f, "~", home, 1)
		}
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("%s: unable to load %s: %w", op, f, err)
		}
	}
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, fmt.Errorf("%s: parse env: %w", op, err)
	}
	defaults := configDefaults()
	if c.AuthURL == "" {
		c.AuthURL = defaults.withAuthURL
	}
	if c.PostLoginPath == "" {
		c.PostLoginPath = defaults.withPostLoginPath
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return &c, nil
}

// Validate the config.  Every problem found is reported, not just the first.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	var result *multierror.Error
	if c.ClientId == "" {
		result = multierror.Append(result, fmt.Errorf("%s: client id is empty: %w", op, ErrInvalidParameter))
	}
	if err := validateHttpURL(c.RedirectURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: redirect URL: %w", op, err))
	}
	if err := validateHttpURL(c.BackendURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: backend URL: %w", op, err))
	}
	if err := validateHttpURL(c.AuthURL); err != nil {
		result = multierror.Append(result, fmt.Errorf("%s: auth URL: %w", op, err))
	}
	if !strings.HasPrefix(c.PostLoginPath, "/") {
		result = multierror.Append(result, fmt.Errorf("%s: post login path %q is not an absolute path: %w", op, c.PostLoginPath, ErrInvalidParameter))
	}
	return result.ErrorOrNil()
}

// CallbackPath returns the path component of the redirect URL: the location
// the provider sends the user back to.
func (c *Config) CallbackPath() string {
	u, err := url.Parse(c.RedirectURL)
	if err != nil || u.Path == "" {
		return "/"
	}
	return u.Path
}

// TokenExchangeURL returns the backend's token exchange endpoint.
func (c *Config) TokenExchangeURL() string {
	return strings.TrimSuffix(c.BackendURL, "/") + "/auth/linkedin/token"
}

// HttpClient is a helper function that creates a new http client for the
// configured backend.
func (c *Config) HttpClient() (*http.Client, error) {
	const op = "Config.HttpClient"
	client, err := sdkHttp.NewClient(c.BackendCA)
	if err != nil {
		if errors.Is(err, sdkHttp.ErrInvalidCertificatePem) {
			return nil, fmt.Errorf("%s: could not parse CA PEM value: %w", op, ErrInvalidCACert)
		}
		return nil, fmt.Errorf("%s: could not get an http client: %w", op, err)
	}
	return client, nil
}

func validateHttpURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("URL is empty: %w", ErrInvalidParameter)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("URL %s is invalid: %w", raw, ErrInvalidParameter)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %s scheme is not http or https: %w", raw, ErrInvalidParameter)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %s has no host: %w", raw, ErrInvalidParameter)
	}
	return nil
}

// configOptions is the set of available options for Config functions
type configOptions struct {
	withAuthURL       string
	withPostLoginPath string
	withBackendCA     string
}

// configDefaults is a handy way to get the defaults at runtime and during
// unit tests.
func configDefaults() configOptions {
	return configOptions{
		withAuthURL:       oauth2linkedin.Endpoint.AuthURL,
		withPostLoginPath: DefaultPostLoginPath,
	}
}

// getConfigOpts gets the config defaults and applies the opt overrides passed
// in
func getConfigOpts(opt ...Option) configOptions {
	opts := configDefaults()
	ApplyOpts(&opts, opt...)
	return opts
}

// WithAuthURL provides an optional authorization endpoint, overriding
// LinkedIn's.
func WithAuthURL(u string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withAuthURL = u
		}
	}
}

// WithPostLoginPath provides an optional location to land on after login.
func WithPostLoginPath(p string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withPostLoginPath = p
		}
	}
}

// WithBackendCA provides an optional CA cert for requests to the backend.
func WithBackendCA(cert string) Option {
	return func(o interface{}) {
		if o, ok := o.(*configOptions); ok {
			o.withBackendCA = cert
		}
	}
}
