// Package session owns the authenticated identity of a running client.
//
// Store holds the state every screen reads (user, authenticated, loading,
// initialized). Guard is the only writer: it validates the backend session,
// enforces the absolute session lifetime, logs out, and reacts to logout
// signals published by other instances of the same profile.
//
// Guard never returns errors. Every failure is logged and resolves to "not
// authenticated", which at worst costs the user an extra sign-in.
//
// Consumers must not treat an empty user as signed out until
// State.IsInitialized is true; before that the first check may still be
// running.
package session
