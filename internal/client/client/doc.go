// Package client is the gateway between the Hablemos Verde client and its
// hosted backend.
//
// # Overview
//
// The package provides:
//  1. The Client interface: the session calls (GetCurrentUser, SignOut,
//     CreateAccount, SignIn), profile and user listing, post reads and
//     writes, and follows.
//  2. HTTPClient, a REST implementation. The backend session secret is kept
//     in the profile key/value store under cookieFallback and sent on every
//     request in the X-Fallback-Cookies header.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) wiring an
//     SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Failures surface as *HTTPError (see IsStatus). 401/403 responses also
// match ErrUnauthorized, 404 matches ErrNotFound, 5xx responses and transport failures match
// ErrUnavailable. GetCurrentUser reports "no session" as (nil, nil).
package client
