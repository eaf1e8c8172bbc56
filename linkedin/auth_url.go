package linkedin

import (
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Scopes are the scopes requested on every authorization request.
var Scopes = []string{oidc.ScopeOpenID, "profile", "email"}

// AuthURL will generate the URL the client navigates to in order to kick off
// an authorization code flow with LinkedIn.  The nonce is sent as the "state"
// parameter and the user is always forced to re-authenticate.
func AuthURL(c *Config, nonce string) (string, error) {
	const op = "linkedin.AuthURL"
	if c == nil {
		return "", fmt.Errorf("%s: config is nil: %w", op, ErrNilParameter)
	}
	if nonce == "" {
		return "", fmt.Errorf("%s: nonce is empty: %w", op, ErrInvalidParameter)
	}
	oauth2Config := oauth2.Config{
		ClientID:    c.ClientId,
		RedirectURL: c.RedirectURL,
		Endpoint:    oauth2.Endpoint{AuthURL: c.AuthURL},
		Scopes:      Scopes,
	}
	return oauth2Config.AuthCodeURL(nonce, oauth2.SetAuthURLParam("prompt", "login")), nil
}
