package linkedin

import (
	"fmt"

	"github.com/socialpost/lilogin/sdk/id"
)

// NewNonce generates a random value suitable for the "state" parameter of an
// authorization request.  It is the PendingLogin nonce that binds a request
// to its callback.
func NewNonce() (string, error) {
	const op = "linkedin.NewNonce"
	n, err := id.New("")
	if err != nil {
		return "", fmt.Errorf("%s: unable to generate nonce: %w: %s", op, ErrIdGeneratorFailed, err)
	}
	return n, nil
}
