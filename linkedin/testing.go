package linkedin

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

// TestSignIdToken will bundle the provided claims into an ES256 signed JWT,
// the shape of the id_token LinkedIn issues.  The signing key is thrown away.
func TestSignIdToken(t *testing.T, claims map[string]interface{}) IdToken {
	t.Helper()
	require := require.New(t)
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(err)

	sig, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.ES256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	require.NoError(err)

	raw, err := jwt.Signed(sig).Claims(claims).CompactSerialize()
	require.NoError(err)
	return IdToken(raw)
}

// TestUnsignedIdToken builds a token with an opaque header and signature
// around the provided claims.
func TestUnsignedIdToken(t *testing.T, claims map[string]interface{}) IdToken {
	t.Helper()
	b, err := json.Marshal(claims)
	require.NoError(t, err)
	return IdToken("h." + base64.RawURLEncoding.EncodeToString(b) + ".sig")
}
