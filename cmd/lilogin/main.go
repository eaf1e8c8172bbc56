// lilogin signs a terminal user in with LinkedIn.  It plays the part of the
// browser: login opens the authorization page in the user's browser and
// serves the callback on the redirect URI's host until LinkedIn sends the
// user back.
//
// Configuration is read from the environment and an optional .env file:
//
//	LINKEDIN_CLIENT_ID, LINKEDIN_REDIRECT_URI, BACKEND_URL (required)
//	LINKEDIN_AUTH_URL, POST_LOGIN_PATH, BACKEND_CA_PEM (optional)
//
// The signed in user is persisted to a bbolt file under the user's data dir, or
// to redis when --redis-addr is set.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	a := &app{}
	err := newRootCmd(a).ExecuteContext(ctx)
	a.close()
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}
