package main

import (
	"context"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialpost/lilogin/proxy"
)

func Test_serve(t *testing.T) {
	assert, require := assert.New(t), require.New(t)
	c := &proxy.Config{
		ClientId:       "test-client-id",
		ClientSecret:   "test-client-secret",
		Addr:           "127.0.0.1:0",
		TokenURL:       "http://127.0.0.1:1/oauth/v2/accessToken",
		APIURL:         "http://127.0.0.1:1",
		AllowedOrigins: []string{"http://localhost:5173"},
	}
	l, err := net.Listen("tcp", c.Addr)
	require.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	doneCh := make(chan error, 1)
	go func() { doneCh <- serve(ctx, c, hclog.NewNullLogger(), l) }()

	base := "http://" + l.Addr().String()
	resp, err := http.Post(base+"/auth/linkedin/token", "application/json", strings.NewReader(`{}`))
	require.NoError(err)
	_ = resp.Body.Close()
	assert.Equal(http.StatusBadRequest, resp.StatusCode)

	cancel()
	select {
	case err := <-doneCh:
		assert.NoError(err)
	case <-time.After(shutdownTimeout):
		t.Fatal("serve did not return after cancel")
	}
}

func Test_serveInvalidConfig(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	err = serve(context.Background(), &proxy.Config{}, hclog.NewNullLogger(), l)
	assert.Error(t, err)
}
