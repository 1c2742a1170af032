// Package models defines the client-side data models of the Hablemos Verde
// client: the session identity, backend account documents, and posts.
package models

// User is the identity record shown across the client.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	ImageURL string `json:"imageUrl"`
	Bio      string `json:"bio"`
}

// EmptyUser is the sentinel identity of an unauthenticated session.
var EmptyUser = User{}

// IsEmpty reports whether u is the unauthenticated sentinel.
func (u User) IsEmpty() bool {
	return u == EmptyUser
}

// NewUser is the sign-up form input.
type NewUser struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Credentials is the sign-in form input.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is the profile edit form input. ProfileFrom pre-fills it
// with the current values.
type ProfileUpdate struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Bio      string `json:"bio"`
}

func ProfileFrom(u User) ProfileUpdate {
	return ProfileUpdate{Name: u.Name, Username: u.Username, Email: u.Email, Bio: u.Bio}
}
