// lilogin-proxy is the backend half of the LinkedIn login: it keeps the
// client secret and exchanges authorization codes at LinkedIn on behalf of
// the browser.
//
// Configuration is read from the environment and an optional .env file:
//
//	LINKEDIN_CLIENT_ID, LINKEDIN_CLIENT_SECRET (required)
//	PROXY_ADDR, LINKEDIN_TOKEN_URL, LINKEDIN_API_URL, ALLOWED_ORIGINS,
//	LINKEDIN_CA_PEM (optional)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
