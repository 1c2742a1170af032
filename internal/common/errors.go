package common

import "errors"

var (
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrValidation is wrapped by every form validation failure.
	ErrValidation = errors.New("validation error")

	// Sign-up / sign-in flow errors.
	ErrSignUpFailed          = errors.New("sign up failed")
	ErrSignInFailed          = errors.New("sign in failed")
	ErrSessionNotEstablished = errors.New("session not established")

	// ErrNotOwner is returned when editing or deleting someone else's post.
	ErrNotOwner         = errors.New("not the owner of the post")
	ErrCannotFollowSelf = errors.New("cannot follow yourself")
)
