/*
Package linkedin contains the building blocks for a "Login with LinkedIn"
OpenID Connect authorization code flow run from a client application.

Primary types provided by the package

* Config: the client's configuration (client id, redirect URI, backend base
URL, the provider's authorization endpoint and the post-login location).  It
is read once at startup and never mutated.

* IdToken: the raw identity token returned by the backend token exchange.  It
redacts itself when printed or marshaled.

* Claims: the decoded claim set of an IdToken.  DecodeClaims does NOT verify
the token's signature; claims decoded on the client are an unverified trust
boundary and must not be used for authorization decisions by a server.

* Identity: the minimal user record (subject id, name, email and the raw
token) kept in the client's session.

Helpers

* AuthURL builds the provider authorization request URL for a nonce.

* NewNonce generates the random state value binding a request to its
callback.

See the session package for the state machine that drives the flow, and the
exchange package for the backend collaborator.
*/
package linkedin
