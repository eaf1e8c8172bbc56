package linkedin

import (
	"encoding/json"
	"fmt"
)

// Identity is the signed in user.  It's created once per successful login
// and replaced wholesale by the next one.
type Identity struct {
	// Id is the provider's opaque subject identifier
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`

	// AccessToken is the raw id_token the identity was decoded from
	AccessToken string `json:"accessToken"`
}

// NewIdentity decodes t and builds an Identity from its sub, name and email
// claims.  A token without a subject is rejected.
func NewIdentity(t IdToken) (*Identity, error) {
	const op = "linkedin.NewIdentity"
	if t == "" {
		return nil, fmt.Errorf("%s: id_token is empty: %w", op, ErrMissingIdToken)
	}
	claims, err := DecodeClaims(string(t))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if claims.Subject() == "" {
		return nil, fmt.Errorf("%s: sub: %w", op, ErrMissingClaim)
	}
	return &Identity{
		Id:          claims.Subject(),
		Name:        claims.Name(),
		Email:       claims.Email(),
		AccessToken: string(t),
	}, nil
}

// Marshal serializes the identity for persistence.
func (i *Identity) Marshal() (string, error) {
	const op = "Identity.Marshal"
	if i == nil {
		return "", fmt.Errorf("%s: identity is nil: %w", op, ErrNilParameter)
	}
	b, err := json.Marshal(i)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(b), nil
}

// UnmarshalIdentity parses a persisted identity.
func UnmarshalIdentity(s string) (*Identity, error) {
	const op = "linkedin.UnmarshalIdentity"
	if s == "" {
		return nil, fmt.Errorf("%s: serialized identity is empty: %w", op, ErrInvalidParameter)
	}
	var i Identity
	if err := json.Unmarshal([]byte(s), &i); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrInvalidParameter, err)
	}
	if i.Id == "" {
		return nil, fmt.Errorf("%s: identity has no id: %w", op, ErrInvalidParameter)
	}
	return &i, nil
}
