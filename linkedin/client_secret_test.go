package linkedin

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSecret_redacted(t *testing.T) {
	t.Parallel()
	assert, require := assert.New(t), require.New(t)
	s := ClientSecret("super secret")
	assert.Equal(RedactedClientSecret, s.String())
	assert.Equal(RedactedClientSecret, fmt.Sprintf("%v", s))

	b, err := json.Marshal(struct {
		Secret ClientSecret `json:"secret"`
	}{s})
	require.NoError(err)
	assert.Equal(`{"secret":"[REDACTED: client secret]"}`, string(b))
}
