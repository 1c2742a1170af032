package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hablemosverde/verde/internal/client/client"
	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/client/services"
	"github.com/hablemosverde/verde/internal/client/validation"
	"github.com/hablemosverde/verde/internal/common"
)

func (a *App) Creators(ctx context.Context) error {
	creators, err := a.peopleService.Creators(ctx, services.DefaultCreatorsLimit)
	if err != nil {
		a.reportPeopleError(ctx, "loading creators", err)
		return err
	}
	fmt.Fprintln(a.out, renderCreators(creators))
	return nil
}

func (a *App) Follow(ctx context.Context, userID string) error {
	if err := a.peopleService.Follow(ctx, userID); err != nil {
		a.reportPeopleError(ctx, "following", err)
		return err
	}
	fmt.Fprintln(a.out, "Siguiendo.")
	return nil
}

func (a *App) Unfollow(ctx context.Context, userID string) error {
	if err := a.peopleService.Unfollow(ctx, userID); err != nil {
		a.reportPeopleError(ctx, "unfollowing", err)
		return err
	}
	fmt.Fprintln(a.out, "Has dejado de seguir.")
	return nil
}

func (a *App) Followers(ctx context.Context, userID string) error {
	follows, err := a.peopleService.Followers(ctx, userID)
	if err != nil {
		a.reportPeopleError(ctx, "loading followers", err)
		return err
	}
	fmt.Fprintf(a.out, "%d seguidores\n", len(follows))
	for _, f := range follows {
		fmt.Fprintln(a.out, "  "+dimStyle.Render(f.FollowerID))
	}
	return nil
}

func (a *App) Profile(ctx context.Context) error {
	if !a.store.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in.")
		return common.ErrorUnauthorized
	}

	p := models.ProfileFrom(a.store.User())
	var err error
	fmt.Fprintln(a.out, "Editar Perfil (Enter keeps the current value)")
	if p.Name, err = promptDefault(a.reader, "Name", p.Name, a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if p.Username, err = promptDefault(a.reader, "Username", p.Username, a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if p.Email, err = promptDefault(a.reader, "Email", p.Email, a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if p.Bio, err = promptDefault(a.reader, "Bio", p.Bio, a.out); err != nil {
		return a.inputError(ctx, err)
	}

	user, err := a.peopleService.UpdateProfile(ctx, p)
	if err != nil {
		a.reportPeopleError(ctx, "updating profile", err)
		return err
	}
	fmt.Fprintln(a.out, renderProfile(user))
	return nil
}

func (a *App) reportPeopleError(ctx context.Context, op string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		a.printValidation(verrs)
		return
	case errors.Is(err, common.ErrorUnauthorized):
		return
	case errors.Is(err, common.ErrCannotFollowSelf):
		fmt.Fprintln(a.out, "No puedes seguirte a ti mismo.")
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, "No se encontró el usuario.")
	case client.IsStatus(err, http.StatusConflict):
		fmt.Fprintln(a.out, "Ya existe un usuario con ese correo.")
	default:
		fmt.Fprintln(a.out, "Algo malo sucedió. Por favor, inténtelo de nuevo.")
	}
	a.log.Warn(ctx, op, "error", err)
}
