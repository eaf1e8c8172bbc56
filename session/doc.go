// Package session holds the client's signed in user and drives the "Login
// with LinkedIn" redirect flow: InitiateLogin sends the user to the provider,
// Start validates the provider's redirect back and exchanges the code, and
// SignOut forgets the user.
//
// A Manager is bound to one page load of a Browser.  It depends on a Storage
// for the pending login nonce and the persisted identity, and on a
// TokenExchanger for the backend code exchange.  Consumers receive the
// Manager through NewContext/FromContext.
package session
