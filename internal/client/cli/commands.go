package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/hablemosverde/verde/internal/client/client"
	"github.com/hablemosverde/verde/internal/client/models"
	"github.com/hablemosverde/verde/internal/client/services"
	"github.com/hablemosverde/verde/internal/client/validation"
	"github.com/hablemosverde/verde/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	a.nav.Navigate(common.RouteSignUp)

	var u models.NewUser
	var err error

	if u.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if u.Username, err = GetSimpleText(a.reader, "Username", a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if u.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
		return a.inputError(ctx, err)
	}
	pw, err := GetPassword(a.reader, a.out)
	if err != nil {
		return a.inputError(ctx, err)
	}
	u.Password = string(pw)
	clear(pw)

	user, err := a.authService.SignUp(ctx, u)
	if err != nil {
		a.reportAuthError(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, renderProfile(user))
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return a.inputError(ctx, err)
	}
	pw, err := GetPassword(a.reader, a.out)
	if err != nil {
		return a.inputError(ctx, err)
	}
	creds := models.Credentials{Email: email, Password: string(pw)}
	clear(pw)

	user, err := a.authService.SignIn(ctx, creds)
	if err != nil {
		a.reportAuthError(ctx, err)
		return err
	}

	fmt.Fprintln(a.out, renderProfile(user))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	if !a.store.IsInitialized() || !a.store.IsAuthenticated() {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintln(a.out, renderProfile(a.store.User()))
	return nil
}

func (a *App) Home(ctx context.Context) error {
	posts, err := a.feedService.Home(ctx, services.DefaultFeedLimit)
	if err != nil {
		if !errors.Is(err, common.ErrorUnauthorized) {
			a.log.Error(ctx, "loading home feed", "error", err)
			fmt.Fprintln(a.out, "No se pudieron cargar las publicaciones.")
		}
		return err
	}
	fmt.Fprintln(a.out, renderPosts(posts))
	return nil
}

func (a *App) Post(ctx context.Context) error {
	var p models.NewPost
	var err error

	if p.Caption, err = GetMultiline(a.reader, "Caption", a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if p.Location, err = GetSimpleText(a.reader, "Location", a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if p.Tags, err = GetSimpleText(a.reader, "Tags (comma separated)", a.out); err != nil {
		return a.inputError(ctx, err)
	}

	created, err := a.feedService.Publish(ctx, p)
	if err != nil {
		var verrs validation.Errors
		switch {
		case errors.As(err, &verrs):
			a.printValidation(verrs)
		case errors.Is(err, common.ErrorUnauthorized):
		default:
			a.log.Error(ctx, "publishing post", "error", err)
			fmt.Fprintln(a.out, "No se pudo publicar. Por favor, inténtelo de nuevo.")
		}
		return err
	}

	fmt.Fprintln(a.out, renderPosts([]models.Post{*created}))
	return nil
}

func (a *App) ShowPost(ctx context.Context, id string) error {
	d, err := a.feedService.Details(ctx, id)
	if err != nil {
		a.reportPostError(ctx, "loading post", err)
		return err
	}
	fmt.Fprintln(a.out, renderPostDetails(d))
	return nil
}

func (a *App) EditPost(ctx context.Context, id string) error {
	d, err := a.feedService.Details(ctx, id)
	if err != nil {
		a.reportPostError(ctx, "loading post", err)
		return err
	}
	if !d.IsOwner {
		a.reportPostError(ctx, "editing post", common.ErrNotOwner)
		return common.ErrNotOwner
	}

	p := models.EditFrom(d.Post)
	fmt.Fprintln(a.out, "Editar Publicación (Enter keeps the current value)")
	caption, err := GetMultiline(a.reader, fmt.Sprintf("Caption [%s]", p.Caption), a.out)
	if err != nil {
		return a.inputError(ctx, err)
	}
	if p.Location, err = promptDefault(a.reader, "Location", p.Location, a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if p.Tags, err = promptDefault(a.reader, "Tags (comma separated)", p.Tags, a.out); err != nil {
		return a.inputError(ctx, err)
	}
	if caption != "" {
		p.Caption = caption
	}

	updated, err := a.feedService.Edit(ctx, id, p)
	if err != nil {
		a.reportPostError(ctx, "editing post", err)
		return err
	}
	fmt.Fprintln(a.out, renderPosts([]models.Post{*updated}))
	return nil
}

func (a *App) DeletePost(ctx context.Context, id string) error {
	answer, err := GetSimpleText(a.reader, "¿Quieres eliminar esta publicación? (s/N)", a.out)
	if err != nil {
		return a.inputError(ctx, err)
	}
	if !confirmed(answer) {
		fmt.Fprintln(a.out, "Cancelado.")
		return nil
	}

	if err := a.feedService.Delete(ctx, id); err != nil {
		a.reportPostError(ctx, "deleting post", err)
		return err
	}
	fmt.Fprintln(a.out, "¡Eliminado! La publicación ha sido eliminada.")
	return nil
}

func (a *App) Check(ctx context.Context) error {
	if a.guard.CheckAuthUser(ctx) {
		fmt.Fprintln(a.out, "Session is valid.")
		return nil
	}
	fmt.Fprintln(a.out, "Not authenticated.")
	a.nav.Navigate(common.RouteSignIn)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.authService.SignOut(ctx)
	return nil
}

// reportPostError prints the message for a failed post operation. Guard
// rejections already printed the sign-in notice.
func (a *App) reportPostError(ctx context.Context, op string, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		a.printValidation(verrs)
		return
	case errors.Is(err, common.ErrorUnauthorized):
		return
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, "No se pudo encontrar la publicación. Por favor, inténtelo de nuevo.")
	case errors.Is(err, common.ErrNotOwner):
		fmt.Fprintln(a.out, "Solo el autor puede modificar esta publicación.")
	default:
		fmt.Fprintln(a.out, "Algo malo sucedió. Por favor, inténtelo de nuevo.")
	}
	a.log.Warn(ctx, op, "error", err)
}

func (a *App) inputError(ctx context.Context, err error) error {
	a.log.Warn(ctx, "reading input", "error", err)
	fmt.Fprintln(a.out, "error:", err)
	return err
}

func (a *App) reportAuthError(ctx context.Context, err error) {
	var verrs validation.Errors
	switch {
	case errors.As(err, &verrs):
		a.printValidation(verrs)
		return
	case errors.Is(err, common.ErrSignUpFailed):
		fmt.Fprintln(a.out, "El registro ha fallado. Por favor, inténtelo de nuevo.")
	case errors.Is(err, common.ErrSignInFailed):
		fmt.Fprintln(a.out, "Algo ha ido mal. Por favor ingrese su nueva cuenta.")
	case errors.Is(err, common.ErrSessionNotEstablished):
		fmt.Fprintln(a.out, "Error al iniciar sesión. Por favor, inténtelo de nuevo.")
	default:
		fmt.Fprintln(a.out, "error:", err)
	}
	a.log.Warn(ctx, "authentication failed", "error", err)
}

func (a *App) printValidation(verrs validation.Errors) {
	fields := make([]string, 0, len(verrs))
	for f := range verrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(a.out, "  %s: %s\n", f, verrs[f])
	}
}
