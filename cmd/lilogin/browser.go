package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/socialpost/lilogin/session"
)

var errNavigationUnsupported = errors.New("navigation is not supported while serving the callback")

// terminalBrowser is the Browser for a page load on the site root.  Its
// navigations are handed to the user's browser.
type terminalBrowser struct {
	location *url.URL
	out      io.Writer
	open     func(string) error
}

var _ session.Browser = (*terminalBrowser)(nil)

func newTerminalBrowser(redirectURL string, out io.Writer) (*terminalBrowser, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse redirect url: %w", err)
	}
	return &terminalBrowser{
		location: &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"},
		out:      out,
		open:     openURL,
	}, nil
}

func (b *terminalBrowser) Location() *url.URL {
	u := *b.location
	return &u
}

func (b *terminalBrowser) Assign(_ context.Context, u string) error {
	fmt.Fprintf(b.out, "Complete the login via your browser. If it doesn't open, visit:\n\n    %s\n\n", u)
	if err := b.open(u); err != nil {
		// the printed URL still works
		fmt.Fprintf(b.out, "Unable to open a browser: %s\n", err)
	}
	return nil
}

func (b *terminalBrowser) ReplaceLocation(path string) error {
	u := *b.location
	u.Path, u.RawQuery = path, ""
	b.location = &u
	return nil
}

func (b *terminalBrowser) Alert(msg string) {
	fmt.Fprintln(b.out, msg)
}

// callbackBrowser is the Browser for the page load LinkedIn redirects back
// to.  It's used by a single request handler and isn't safe for concurrent
// use.
type callbackBrowser struct {
	location *url.URL
	alerts   []string
}

var _ session.Browser = (*callbackBrowser)(nil)

// newCallbackBrowser positions the browser at the redirect URL carrying the
// query of the request being served.
func newCallbackBrowser(redirectURL string, req *url.URL) (*callbackBrowser, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse redirect url: %w", err)
	}
	u.RawQuery = req.RawQuery
	return &callbackBrowser{location: u}, nil
}

func (b *callbackBrowser) Location() *url.URL {
	u := *b.location
	return &u
}

func (b *callbackBrowser) Assign(context.Context, string) error {
	return errNavigationUnsupported
}

func (b *callbackBrowser) ReplaceLocation(path string) error {
	u := *b.location
	u.Path, u.RawQuery = path, ""
	b.location = &u
	return nil
}

func (b *callbackBrowser) Alert(msg string) {
	b.alerts = append(b.alerts, msg)
}

// openURL opens the specified URL in the default browser of the user.
// source: https://github.com/hashicorp/vault-plugin-auth-jwt
func openURL(url string) error {
	var cmd string
	var args []string

	switch {
	case "windows" == runtime.GOOS || isWSL():
		cmd = "cmd.exe"
		args = []string{"/c", "start"}
		url = strings.Replace(url, "&", "^&", -1)
	case "darwin" == runtime.GOOS:
		cmd = "open"
	default: // "linux", "freebsd", "openbsd", "netbsd"
		cmd = "xdg-open"
	}
	args = append(args, url)
	return exec.Command(cmd, args...).Start()
}

// isWSL tests if the binary is being run in Windows Subsystem for Linux
func isWSL() bool {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		return false
	}
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}
