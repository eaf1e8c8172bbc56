// Package exchange is the client side of the backend token exchange: the
// backend holds the LinkedIn client secret and trades an authorization code
// for tokens on the client's behalf.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/socialpost/lilogin/linkedin"
	"github.com/socialpost/lilogin/session"
)

// maxResponseSize bounds how much of the backend's response is read.
const maxResponseSize = 1 << 20

// Client calls the backend's token exchange endpoint.
type Client struct {
	endpoint string
	client   *http.Client
}

var _ session.TokenExchanger = (*Client)(nil)

// Request is the body posted to the backend.
type Request struct {
	Code        string `json:"code"`
	RedirectURI string `json:"redirect_uri"`
}

// Response is the part of the backend's reply the client consumes.
type Response struct {
	IdToken string `json:"id_token"`
}

// NewClient creates a Client for the backend configured in c.
func NewClient(c *linkedin.Config) (*Client, error) {
	const op = "exchange.NewClient"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, linkedin.ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: config is invalid: %w", op, err)
	}
	hc, err := c.HttpClient()
	if err != nil {
		return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
	}
	return &Client{
		endpoint: c.TokenExchangeURL(),
		client:   hc,
	}, nil
}

// Exchange posts the code and redirect URI to the backend and returns the
// id_token from its reply.  Every failure wraps linkedin.ErrExchangeFailed.
// No timeout is applied beyond ctx.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (linkedin.IdToken, error) {
	const op = "Client.Exchange"
	if code == "" {
		return "", fmt.Errorf("%s: code is empty: %w", op, linkedin.ErrInvalidParameter)
	}
	if redirectURI == "" {
		return "", fmt.Errorf("%s: redirect URI is empty: %w", op, linkedin.ErrInvalidParameter)
	}
	body, err := json.Marshal(Request{Code: code, RedirectURI: redirectURI})
	if err != nil {
		return "", fmt.Errorf("%s: unable to marshal request: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: request failed: %w: %s", op, linkedin.ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("%s: unable to read response: %w: %s", op, linkedin.ErrExchangeFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%s: backend returned %d: %w: %s", op, resp.StatusCode, linkedin.ErrExchangeFailed, bytes.TrimSpace(respBody))
	}
	var r Response
	if err := json.Unmarshal(respBody, &r); err != nil {
		return "", fmt.Errorf("%s: unable to decode response: %w: %s", op, linkedin.ErrExchangeFailed, err)
	}
	if r.IdToken == "" {
		return "", fmt.Errorf("%s: %w: %w", op, linkedin.ErrExchangeFailed, linkedin.ErrMissingIdToken)
	}
	return linkedin.IdToken(r.IdToken), nil
}
