package http

import (
	"context"
	"crypto/tls"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestNewClient(t *testing.T) {
	t.Parallel()
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	caPEM := string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}))

	t.Run("system-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewClient("")
		require.NoError(err)
		tr, ok := c.Transport.(*http.Transport)
		require.True(ok)
		assert.Nil(tr.TLSClientConfig)
	})
	t.Run("with-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		c, err := NewClient(caPEM)
		require.NoError(err)
		resp, err := c.Get(srv.URL)
		require.NoError(err)
		defer resp.Body.Close()
		assert.Equal(http.StatusNoContent, resp.StatusCode)
		tr := c.Transport.(*http.Transport)
		assert.Equal(uint16(tls.VersionTLS12), tr.TLSClientConfig.MinVersion)
	})
	t.Run("bad-ca", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		_, err := NewClient("not a pem")
		require.Error(err)
		assert.Truef(errors.Is(err, ErrInvalidCertificatePem), "wanted \"%s\" but got \"%s\"", ErrInvalidCertificatePem, err)
	})
}

func TestClientContext(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	c := &http.Client{}
	ctx := ClientContext(context.Background(), c)
	got, ok := ctx.Value(oauth2.HTTPClient).(*http.Client)
	assert.True(ok)
	assert.Same(c, got)
}
