package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/socialpost/lilogin/linkedin"
	"github.com/socialpost/lilogin/proxy"
)

const shutdownTimeout = 10 * time.Second

func newRootCmd() *cobra.Command {
	var (
		envFiles []string
		addr     string
		logLevel string
		logJSON  bool
	)
	cmd := &cobra.Command{
		Use:           "lilogin-proxy",
		Short:         "Exchange LinkedIn authorization codes for the browser",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			level := hclog.LevelFromString(logLevel)
			if level == hclog.NoLevel {
				return fmt.Errorf("unknown log level %q: %w", logLevel, linkedin.ErrInvalidParameter)
			}
			logger := hclog.New(&hclog.LoggerOptions{
				Name:       "lilogin-proxy",
				Level:      level,
				Output:     cmd.ErrOrStderr(),
				JSONFormat: logJSON,
			})
			c, err := proxy.LoadConfig(envFiles...)
			if err != nil {
				return err
			}
			if addr != "" {
				c.Addr = addr
			}
			l, err := net.Listen("tcp", c.Addr)
			if err != nil {
				return fmt.Errorf("unable to listen on %s: %w", c.Addr, err)
			}
			return serve(cmd.Context(), c, logger, l)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load before reading the environment")
	f.StringVar(&addr, "addr", "", "address to listen on (overrides PROXY_ADDR)")
	f.StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	f.BoolVar(&logJSON, "log-json", false, "log in JSON")
	return cmd
}

// serve runs the proxy on l until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, c *proxy.Config, logger hclog.Logger, l net.Listener) error {
	s, err := proxy.NewServer(c, proxy.WithLogger(logger))
	if err != nil {
		return err
	}
	e := s.Echo()
	e.Listener = l

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", l.Addr().String(), "allowed_origins", c.AllowedOrigins)
		errCh <- e.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("unable to shut down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
