package linkedin

import (
	"errors"
)

var (
	ErrInvalidParameter  = errors.New("invalid parameter")
	ErrNilParameter      = errors.New("nil parameter")
	ErrInvalidCACert     = errors.New("invalid CA certificate")
	ErrIdGeneratorFailed = errors.New("id generation failed")
	ErrMissingIdToken    = errors.New("id_token is missing")
	ErrMalformedIdToken  = errors.New("id_token is malformed")
	ErrMissingClaim      = errors.New("claim is missing")
	ErrProviderError     = errors.New("provider returned an error")
	ErrStateMismatch     = errors.New("response state does not match pending login")
	ErrExchangeFailed    = errors.New("token exchange failed")
	ErrNotFound          = errors.New("not found")
)
