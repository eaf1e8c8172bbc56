// Package proxy is the backend half of "Login with LinkedIn": it holds the
// client secret, trades authorization codes for tokens at LinkedIn, and looks
// up a member's profile for a bearer token.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-hclog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/oauth2"

	"github.com/socialpost/lilogin/linkedin"
	sdkHttp "github.com/socialpost/lilogin/sdk/http"
)

// maxUpstreamResponseSize bounds how much of a LinkedIn API response is read.
const maxUpstreamResponseSize = 1 << 20

// Server serves the proxy's endpoints.
type Server struct {
	config     *Config
	oauth2     oauth2.Config
	httpClient *http.Client
	logger     hclog.Logger
	validate   *validator.Validate
}

// TokenRequest is the body of a token exchange request.
type TokenRequest struct {
	Code        string `json:"code" validate:"required"`
	RedirectURI string `json:"redirect_uri" validate:"required"`
}

// TokenResponse is LinkedIn's token response, passed through to the client.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	IdToken      string `json:"id_token,omitempty"`
}

// Profile is a LinkedIn member's basic profile.
type Profile struct {
	Id        string `json:"id"`
	PersonURN string `json:"person_urn"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// ErrorResponse is the body of every error the proxy returns.
type ErrorResponse struct {
	Detail interface{} `json:"detail"`
}

// NewServer creates a Server.
// Supported options:
//	WithLogger
//	WithHTTPClient
func NewServer(c *Config, opt ...Option) (*Server, error) {
	const op = "proxy.NewServer"
	if c == nil {
		return nil, fmt.Errorf("%s: config is nil: %w", op, linkedin.ErrNilParameter)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: config is invalid: %w", op, err)
	}
	opts := getOpts(opt...)
	hc := opts.withHTTPClient
	if hc == nil {
		var err error
		if hc, err = sdkHttp.NewClient(c.ProviderCA); err != nil {
			return nil, fmt.Errorf("%s: unable to create http client: %w", op, err)
		}
	}
	return &Server{
		config: c,
		oauth2: oauth2.Config{
			ClientID:     c.ClientId,
			ClientSecret: string(c.ClientSecret),
			Endpoint: oauth2.Endpoint{
				TokenURL: c.TokenURL,
				// LinkedIn only accepts the client credentials in the body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: hc,
		logger:     opts.withLogger,
		validate:   validator.New(),
	}, nil
}

// Echo returns an echo instance serving the proxy's routes under
// /auth/linkedin, with request logging and CORS for the allowed origins.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		middleware.Recover(),
		middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogMethod:  true,
			LogURIPath: true,
			LogStatus:  true,
			LogLatency: true,
			LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
				s.logger.Info("request", "method", v.Method, "path", v.URIPath, "status", v.Status, "latency", v.Latency)
				return nil
			},
		}),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: s.config.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}),
	)
	s.MountRoutes(e.Group("/auth/linkedin"))
	return e
}

// MountRoutes adds the proxy's endpoints to group.
func (s *Server) MountRoutes(group *echo.Group) {
	group.POST("/token", s.TokenEndpoint)
	group.GET("/me", s.MeEndpoint)
}

// TokenEndpoint exchanges the posted authorization code at LinkedIn's token
// endpoint and returns LinkedIn's tokens.
func (s *Server) TokenEndpoint(c echo.Context) error {
	var req TokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Missing code or redirect_uri"})
	}
	if err := s.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "Missing code or redirect_uri"})
	}
	s.logger.Debug("exchanging authorization code", "redirect_uri", req.RedirectURI)

	cfg := s.oauth2
	cfg.RedirectURL = req.RedirectURI
	tk, err := cfg.Exchange(sdkHttp.ClientContext(c.Request().Context(), s.httpClient), req.Code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		var urlErr *url.Error
		switch {
		case errors.As(err, &retrieveErr):
			s.logger.Error("linkedin token error", "status", retrieveErr.Response.StatusCode, "body", string(retrieveErr.Body))
			return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: upstreamDetail(retrieveErr.Body)})
		case errors.As(err, &urlErr):
			s.logger.Error("linkedin token endpoint unreachable", "error", err)
			return c.JSON(http.StatusBadGateway, ErrorResponse{Detail: "LinkedIn token endpoint unreachable"})
		default:
			// x/oauth2 rejects a 200 response without an access_token
			s.logger.Error("no access token received from linkedin", "error", err)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "No access token received"})
		}
	}

	resp := TokenResponse{
		AccessToken:  tk.AccessToken,
		TokenType:    tk.TokenType,
		RefreshToken: tk.RefreshToken,
	}
	if !tk.Expiry.IsZero() {
		resp.ExpiresIn = int64(time.Until(tk.Expiry).Round(time.Second).Seconds())
	}
	if v, ok := tk.Extra("scope").(string); ok {
		resp.Scope = v
	}
	if v, ok := tk.Extra("id_token").(string); ok {
		resp.IdToken = v
	}
	return c.JSON(http.StatusOK, resp)
}

// MeEndpoint looks up the profile and primary email of the member the bearer
// token belongs to.
func (s *Server) MeEndpoint(c echo.Context) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "))
	if token == "" {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Detail: "Missing bearer token"})
	}
	ctx := c.Request().Context()

	var me struct {
		Id                 string `json:"id"`
		LocalizedFirstName string `json:"localizedFirstName"`
		LocalizedLastName  string `json:"localizedLastName"`
	}
	if status, body, err := s.apiGet(ctx, token, "/v2/me", &me); err != nil {
		return s.upstreamError(c, "linkedin profile error", status, body, err)
	}

	var email struct {
		Elements []struct {
			Handle struct {
				EmailAddress string `json:"emailAddress"`
			} `json:"handle~"`
		} `json:"elements"`
	}
	if status, body, err := s.apiGet(ctx, token, "/v2/emailAddress?q=members&projection=(elements*(handle~))", &email); err != nil {
		return s.upstreamError(c, "linkedin email error", status, body, err)
	}

	p := Profile{
		Id:   me.Id,
		Name: strings.TrimSpace(me.LocalizedFirstName + " " + me.LocalizedLastName),
	}
	if me.Id != "" {
		p.PersonURN = "urn:li:person:" + me.Id
	}
	if len(email.Elements) > 0 {
		p.Email = email.Elements[0].Handle.EmailAddress
	}
	return c.JSON(http.StatusOK, p)
}

// apiGet calls the LinkedIn API and decodes a 200 response into v.  For a
// non-200 response it returns the status and body along with an error.
func (s *Server) apiGet(ctx context.Context, token, path string, v interface{}) (int, []byte, error) {
	const op = "Server.apiGet"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(s.config.APIURL, "/")+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: unable to create request: %w", op, err)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: request failed: %w", op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamResponseSize))
	if err != nil {
		return 0, nil, fmt.Errorf("%s: unable to read response: %w", op, err)
	}
	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, body, fmt.Errorf("%s: linkedin returned %d", op, resp.StatusCode)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return 0, body, fmt.Errorf("%s: unable to decode response: %w", op, err)
	}
	return resp.StatusCode, body, nil
}

// upstreamError relays a LinkedIn API failure.  A response from LinkedIn keeps
// its status; anything else is a bad gateway.
func (s *Server) upstreamError(c echo.Context, msg string, status int, body []byte, err error) error {
	s.logger.Error(msg, "status", status, "error", err)
	if status == 0 {
		return c.JSON(http.StatusBadGateway, ErrorResponse{Detail: msg})
	}
	return c.JSON(status, ErrorResponse{Detail: upstreamDetail(body)})
}

// upstreamDetail returns body as JSON when it is JSON, otherwise as a string.
func upstreamDetail(body []byte) interface{} {
	var v interface{}
	if err := json.Unmarshal(body, &v); err == nil {
		return v
	}
	return strings.TrimSpace(string(body))
}
