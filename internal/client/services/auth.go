// Package services contains the application services of the client.
// This file defines the authentication flows: sign-up, sign-in and sign-out.
package services

import (
	"context"
	"fmt"

	"github.com/hablemosverde/verde/internal/client/client"
	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/client/session"
	"github.com/hablemosverde/verde/internal/client/validation"
	"github.com/hablemosverde/verde/internal/common"
)

// AuthService defines the authentication operations of the CLI.
//
// Contract:
//   - SignUp: validate, create the account, open a session and confirm it.
//   - SignIn: validate, open a session and confirm it.
//   - SignOut: end the session locally and on the backend.
//
// Validation failures match common.ErrValidation. Each later step of a flow
// fails with its own sentinel from internal/common.
type AuthService interface {
	SignUp(ctx context.Context, user models.NewUser) (models.User, error)
	SignIn(ctx context.Context, creds models.Credentials) (models.User, error)
	SignOut(ctx context.Context)
}

type authService struct {
	client client.Client
	guard  *session.Guard
	nav    session.Navigator
}

func NewAuthService(client client.Client, guard *session.Guard, nav session.Navigator) AuthService {
	return &authService{client: client, guard: guard, nav: nav}
}

// SignUp registers a new account and signs into it. When the account was
// created but the sign-in failed the user is sent to the sign-in screen.
func (a *authService) SignUp(ctx context.Context, user models.NewUser) (models.User, error) {
	if err := validation.SignUp(user); err != nil {
		return models.EmptyUser, err
	}

	if _, err := a.client.CreateAccount(ctx, user); err != nil {
		return models.EmptyUser, fmt.Errorf("%w: %w", common.ErrSignUpFailed, err)
	}

	if err := a.client.SignIn(ctx, models.Credentials{Email: user.Email, Password: user.Password}); err != nil {
		a.nav.Navigate(common.RouteSignIn)
		return models.EmptyUser, fmt.Errorf("%w: %w", common.ErrSignInFailed, err)
	}

	return a.confirm(ctx)
}

func (a *authService) SignIn(ctx context.Context, creds models.Credentials) (models.User, error) {
	if err := validation.SignIn(creds); err != nil {
		return models.EmptyUser, err
	}

	if err := a.client.SignIn(ctx, creds); err != nil {
		return models.EmptyUser, fmt.Errorf("%w: %w", common.ErrSignInFailed, err)
	}

	return a.confirm(ctx)
}

func (a *authService) SignOut(ctx context.Context) {
	a.guard.Logout(ctx)
}

// confirm runs the session check after a fresh sign-in and moves the user
// to the home screen on success.
func (a *authService) confirm(ctx context.Context) (models.User, error) {
	if !a.guard.CheckAuthUser(ctx) {
		return models.EmptyUser, common.ErrSessionNotEstablished
	}
	a.nav.Navigate(common.RouteHome)
	return a.guard.Store().User(), nil
}
