// Package cli provides the interactive Hablemos Verde command-line client.
//
// It wires configuration, the profile key/value store, the backend client,
// the logout signal bus and the session guard into an interactive REPL.
// Typical flow: validate the stored session on start, listen for logouts
// from other instances of the profile, then execute user commands.
//
// Key features:
//   - Register / Login / Logout
//   - whoami profile card and home feed
//   - Publish, show, edit and delete posts (edit/delete for the author only)
//   - Creators list, follow / unfollow, followers
//   - Profile editing
//   - Logout in one instance signs out every instance of the profile
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, newBus, and runREPL for details.
package cli
