package linkedin

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// IdToken is an oidc id_token
type IdToken string

// RedactedIdToken is the redacted string or json for an oidc id_token
const RedactedIdToken = "[REDACTED: id_token]"

// String will redact the token
func (t IdToken) String() string {
	return RedactedIdToken
}

// MarshalJSON will redact the token
func (t IdToken) MarshalJSON() ([]byte, error) {
	return json.Marshal(RedactedIdToken)
}

// Claims decodes the IdToken's payload into claims.  The token's signature
// is not verified.
func (t IdToken) Claims(claims interface{}) error {
	const op = "IdToken.Claims"
	if len(t) == 0 {
		return fmt.Errorf("%s: id_token is empty: %w", op, ErrInvalidParameter)
	}
	if claims == nil {
		return fmt.Errorf("%s: claims interface is nil: %w", op, ErrNilParameter)
	}
	payload, err := decodePayload(string(t))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(payload, claims); err != nil {
		return fmt.Errorf("%s: unable to unmarshal claims: %w: %s", op, ErrMalformedIdToken, err)
	}
	return nil
}

// Claims is the decoded claim set of an id_token.
type Claims map[string]interface{}

// Subject returns the "sub" claim, or "" when it's missing or not a string.
func (c Claims) Subject() string { return c.str("sub") }

// Name returns the "name" claim, or "" when it's missing or not a string.
func (c Claims) Name() string { return c.str("name") }

// Email returns the "email" claim, or "" when it's missing or not a string.
func (c Claims) Email() string { return c.str("email") }

func (c Claims) str(name string) string {
	s, _ := c[name].(string)
	return s
}

// DecodeClaims decodes the claim set of a raw id_token: three dot separated
// segments where the middle one is the base64url encoded JSON claim object.
// The header and signature segments are not inspected and the signature is
// NOT verified, so the returned claims are only as trustworthy as the channel
// the token arrived on.
func DecodeClaims(raw string) (Claims, error) {
	const op = "linkedin.DecodeClaims"
	payload, err := decodePayload(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var c Claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("%s: payload is not a JSON object: %w: %s", op, ErrMalformedIdToken, err)
	}
	if c == nil {
		return nil, fmt.Errorf("%s: payload is null: %w", op, ErrMalformedIdToken)
	}
	return c, nil
}

var stdToURLAlphabet = strings.NewReplacer("+", "-", "/", "_")

func decodePayload(raw string) ([]byte, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected 3 segments and got %d: %w", len(parts), ErrMalformedIdToken)
	}
	// tolerate padding and the standard alphabet, which some encoders still
	// emit
	seg := stdToURLAlphabet.Replace(strings.TrimRight(parts[1], "="))
	payload, err := base64.RawURLEncoding.DecodeString(seg)
	if err != nil {
		return nil, fmt.Errorf("payload is not base64url: %w: %s", ErrMalformedIdToken, err)
	}
	return payload, nil
}
