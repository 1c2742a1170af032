// Package common contains shared constants and sentinel errors used across
// the Hablemos Verde client.
package common

// Keys of the persisted key/value store. The store is scoped to one profile,
// the way browser local storage is scoped to one origin.
const (
	// KeyCookieFallback holds the backend session cookies as a JSON object.
	// An absent value, "null" or "[]" means there is no backend session.
	KeyCookieFallback = "cookieFallback"

	// KeyLoginTimestamp holds the epoch millis of the first successful
	// validation of the current login.
	KeyLoginTimestamp = "loginTimestamp"

	// KeyLoggedOut holds the epoch millis of the last logout.
	KeyLoggedOut = "isLoggedOut"

	// KeyRedirectToLogin is a one-shot "true" flag consumed by the route guard.
	KeyRedirectToLogin = "redirectToLogin"
)

// Routes the client navigates between.
const (
	RouteSignIn = "/sign-in"
	RouteSignUp = "/sign-up"
	RouteHome   = "/"
)

// SessionCookieName is the cookie name stored inside KeyCookieFallback.
const SessionCookieName = "a_session"

// FallbackCookiesHeader carries the session cookie on backend requests.
const FallbackCookiesHeader = "X-Fallback-Cookies"
