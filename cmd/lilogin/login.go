package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/socialpost/lilogin/linkedin"
)

var errLoginTimeout = errors.New("timed out waiting for the login to complete")

const successHTML = `<!doctype html>
<html>
<head><title>Signed in</title></head>
<body><p>Signed in with LinkedIn. You can close this window and return to the terminal.</p></body>
</html>
`

type loginResult struct {
	identity linkedin.Identity
	err      error
}

func newLoginCmd(a *app) *cobra.Command {
	var timeout time.Duration
	var force bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with LinkedIn",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.login(cmd.Context(), cmd.OutOrStdout(), timeout, force)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for LinkedIn to redirect back")
	cmd.Flags().BoolVar(&force, "force", false, "sign in again when a user is already signed in")
	return cmd
}

func (a *app) login(ctx context.Context, out io.Writer, timeout time.Duration, force bool) error {
	m, err := a.startManager(ctx, out)
	if err != nil {
		return err
	}
	if u, ok := m.CurrentUser(); ok {
		if !force {
			fmt.Fprintf(out, "Already signed in as %s\n", displayName(u))
			return nil
		}
		if err := m.SignOut(ctx); err != nil {
			return err
		}
	}

	addr, err := listenAddr(a.config.RedirectURL)
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("unable to listen for the callback on %s: %w", addr, err)
	}
	doneCh := make(chan loginResult, 1)
	srv := &http.Server{
		Handler:           a.callbackMux(doneCh),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("callback listener stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := m.InitiateLogin(ctx); err != nil {
		return err
	}

	timeoutCh := time.After(timeout)
	select {
	case r := <-doneCh:
		if r.err != nil {
			return r.err
		}
		fmt.Fprintf(out, "Signed in as %s\n", displayName(r.identity))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timeoutCh:
		return errLoginTimeout
	}
}

// callbackMux serves the callback path.
func (a *app) callbackMux(doneCh chan<- loginResult) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(a.config.CallbackPath(), a.callbackHandler(doneCh))
	return mux
}

// callbackHandler runs a page load for every request to the callback path.
// A completed login is answered with the success page itself, since the
// listener is shut down once doneCh is read.  Only a completed login or a
// failed one is reported on doneCh; a request without a code or state leaves
// the login waiting.
func (a *app) callbackHandler(doneCh chan<- loginResult) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		b, err := newCallbackBrowser(a.config.RedirectURL, req.URL)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		m, err := a.newManager(b)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		startErr := m.Start(req.Context())
		u, ok := m.CurrentUser()
		switch {
		case ok:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte(successHTML)); err != nil {
				a.logger.Warn("unable to write success page", "error", err)
			}
			notify(doneCh, loginResult{identity: u})
		case startErr == nil:
			http.Error(w, "Login was not completed.", http.StatusBadRequest)
		default:
			msg := "Login failed."
			if len(b.alerts) > 0 {
				msg = strings.Join(b.alerts, "\n")
			}
			http.Error(w, msg, http.StatusUnauthorized)
			notify(doneCh, loginResult{err: startErr})
		}
	}
}

func notify(doneCh chan<- loginResult, r loginResult) {
	select {
	case doneCh <- r:
	default:
	}
}

// listenAddr is the host:port the redirect URL points at.
func listenAddr(redirectURL string) (string, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return "", fmt.Errorf("unable to parse redirect url: %w", err)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
