package proxy

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"

	"github.com/socialpost/lilogin/linkedin"
)

// Config is the backend proxy's configuration.
type Config struct {
	// ClientId is the LinkedIn application's client id
	ClientId string `env:"LINKEDIN_CLIENT_ID" validate:"required"`

	// ClientSecret is the LinkedIn application's client secret
	ClientSecret linkedin.ClientSecret `env:"LINKEDIN_CLIENT_SECRET" validate:"required"`

	// Addr is the listen address
	Addr string `env:"PROXY_ADDR" envDefault:":8000" validate:"required"`

	// TokenURL is LinkedIn's token endpoint
	TokenURL string `env:"LINKEDIN_TOKEN_URL" envDefault:"https://www.linkedin.com/oauth/v2/accessToken" validate:"required,url"`

	// APIURL is the base URL of LinkedIn's REST API
	APIURL string `env:"LINKEDIN_API_URL" envDefault:"https://api.linkedin.com" validate:"required,url"`

	// AllowedOrigins are the client origins allowed to call the proxy
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173" validate:"dive,url"`

	// ProviderCA is an optional CA cert (PEM) for requests to LinkedIn
	ProviderCA string `env:"LINKEDIN_CA_PEM"`
}

// LoadConfig reads the config from the environment, after loading any
// envFiles that exist.
func LoadConfig(envFiles ...string) (*Config, error) {
	const op = "proxy.LoadConfig"
	for _, f := range envFiles {
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
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}
	return &c, nil
}

// Validate the config, reporting every invalid field.
func (c *Config) Validate() error {
	const op = "Config.Validate"
	if c == nil {
		return fmt.Errorf("%s: config is nil: %w", op, linkedin.ErrNilParameter)
	}
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var result *multierror.Error
	for _, fe := range verrs {
		result = multierror.Append(result, fmt.Errorf("%s: %s failed %q: %w", op, fe.Namespace(), fe.Tag(), linkedin.ErrInvalidParameter))
	}
	return result.ErrorOrNil()
}
