package session

import (
	"context"
	"net/url"

	"github.com/socialpost/lilogin/linkedin"
)

// Browser is the host the client runs in.
type Browser interface {
	// Location is the current location, including its query.
	Location() *url.URL

	// Assign navigates the whole page to u.  Once it returns without error
	// the current page load is over as far as the Manager is concerned.
	Assign(ctx context.Context, u string) error

	// ReplaceLocation changes the visible location to path without adding a
	// history entry or reloading.
	ReplaceLocation(path string) error

	// Alert shows msg to the user.
	Alert(msg string)
}

// TokenExchanger exchanges an authorization code for an id_token.  The
// exchange package provides the backend implementation.
type TokenExchanger interface {
	Exchange(ctx context.Context, code, redirectURI string) (linkedin.IdToken, error)
}
