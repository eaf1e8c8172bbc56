package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/socialpost/lilogin/exchange"
	"github.com/socialpost/lilogin/linkedin"
	"github.com/socialpost/lilogin/session"
)

var errNotSignedIn = errors.New("not signed in")

// app holds what every command needs: the config, and the storage and
// exchanger a session.Manager is built from.
type app struct {
	envFiles    []string
	storagePath string
	redisAddr   string
	logLevel    string

	config    *linkedin.Config
	logger    hclog.Logger
	storage   session.Storage
	exchanger session.TokenExchanger
	closers   []io.Closer

	// openURL hands navigations to the user's browser; nil means the
	// system browser.
	openURL func(string) error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:               "lilogin",
		Short:             "Sign in with LinkedIn from the terminal",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}
	f := root.PersistentFlags()
	f.StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	f.StringVar(&a.storagePath, "storage", "", "file the session is persisted to (default: user data dir)")
	f.StringVar(&a.redisAddr, "redis-addr", "", "persist the session to the redis server at this address instead of a file")
	f.StringVar(&a.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")

	root.AddCommand(newLoginCmd(a), newWhoamiCmd(a), newLogoutCmd(a))
	return root
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	const op = "app.init"
	level := hclog.LevelFromString(a.logLevel)
	if level == hclog.NoLevel {
		return fmt.Errorf("%s: unknown log level %q: %w", op, a.logLevel, linkedin.ErrInvalidParameter)
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "lilogin",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	c, err := linkedin.LoadConfig(a.envFiles...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	a.config = c

	switch {
	case a.redisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: a.redisAddr})
		a.closers = append(a.closers, client)
		a.storage, err = session.NewRedisStorage(client)
	default:
		path := a.storagePath
		if path == "" {
			if path, err = session.DefaultFileStoragePath(); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		var fs *session.FileStorage
		if fs, err = session.NewFileStorage(path); err == nil {
			a.closers = append(a.closers, fs)
			a.storage = fs
		}
	}
	if err != nil {
		return fmt.Errorf("%s: unable to open storage: %w", op, err)
	}

	if a.exchanger, err = exchange.NewClient(c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// close releases the storage opened by init.
func (a *app) close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil && a.logger != nil {
			a.logger.Warn("unable to close storage", "error", err)
		}
	}
	a.closers = nil
}

func (a *app) newManager(b session.Browser) (*session.Manager, error) {
	return session.NewManager(a.config, a.storage, a.exchanger, b, session.WithLogger(a.logger))
}

// startManager runs a page load on the site root, which only restores a
// persisted session.
func (a *app) startManager(ctx context.Context, out io.Writer) (*session.Manager, error) {
	b, err := newTerminalBrowser(a.config.RedirectURL, out)
	if err != nil {
		return nil, err
	}
	if a.openURL != nil {
		b.open = a.openURL
	}
	m, err := a.newManager(b)
	if err != nil {
		return nil, err
	}
	if err := m.Start(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func newWhoamiCmd(a *app) *cobra.Command {
	var showToken bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.whoami(cmd.Context(), cmd.OutOrStdout(), showToken)
		},
	}
	cmd.Flags().BoolVar(&showToken, "show-token", false, "include the raw id_token in the output")
	return cmd
}

func (a *app) whoami(ctx context.Context, out io.Writer, showToken bool) error {
	m, err := a.startManager(ctx, out)
	if err != nil {
		return err
	}
	u, ok := m.CurrentUser()
	if !ok {
		return errNotSignedIn
	}
	if !showToken {
		u.AccessToken = ""
	}
	data, err := json.MarshalIndent(printableIdentity(u), "", "    ")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", data)
	return nil
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.logout(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func (a *app) logout(ctx context.Context, out io.Writer) error {
	m, err := a.startManager(ctx, out)
	if err != nil {
		return err
	}
	if err := m.SignOut(ctx); err != nil {
		return err
	}
	fmt.Fprintln(out, "Signed out.")
	return nil
}

type respIdentity struct {
	Id          string `json:"id"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	AccessToken string `json:"accessToken,omitempty"`
}

func printableIdentity(u linkedin.Identity) respIdentity {
	return respIdentity{Id: u.Id, Name: u.Name, Email: u.Email, AccessToken: u.AccessToken}
}

func displayName(u linkedin.Identity) string {
	switch {
	case u.Name != "" && u.Email != "":
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.Id
	}
}
