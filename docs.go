// lilogin provides the client side of "Login with LinkedIn": a session
// manager that redirects the browser to LinkedIn, validates the callback,
// exchanges the code through a backend and keeps the signed in user, plus the
// backend proxy that performs that exchange.
//
// Packages:
//
//	linkedin  config, authorization URL, id_token decoding, Identity
//	session   the session Manager and its Storage implementations
//	exchange  the client for the backend's token exchange endpoint
//	proxy     the backend token exchange and profile endpoints
package lilogin
