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

// DefaultCreatorsLimit is the number of creators listed next to the feed.
const DefaultCreatorsLimit = 10

// Creator is a user as seen by the signed-in user.
type Creator struct {
	User      models.User
	Followers int
	Following bool
}

// PeopleService covers users, follows and the signed-in user's profile.
// Every operation runs behind the route guard.
//
// Contract:
//   - Creators: the newest users except the signed-in one, with follow state.
//   - Follow / Unfollow: idempotent; following yourself fails with
//     common.ErrCannotFollowSelf.
//   - UpdateProfile: validate, update the account, then reload the session
//     identity so every consumer of the store sees the new profile.
type PeopleService interface {
	Creators(ctx context.Context, limit int) ([]Creator, error)
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
	Followers(ctx context.Context, userID string) ([]models.Follow, error)
	UpdateProfile(ctx context.Context, p models.ProfileUpdate) (models.User, error)
}

type peopleService struct {
	client client.Client
	guard  *session.Guard
}

func NewPeopleService(client client.Client, guard *session.Guard) PeopleService {
	return &peopleService{client: client, guard: guard}
}

func (s *peopleService) Creators(ctx context.Context, limit int) ([]Creator, error) {
	if !s.guard.RequireAuth(ctx) {
		return nil, common.ErrorUnauthorized
	}
	if limit <= 0 {
		limit = DefaultCreatorsLimit
	}
	me := s.guard.Store().User()

	users, err := s.client.Users(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading creators: %w", err)
	}

	creators := make([]Creator, 0, len(users))
	for _, u := range users {
		if u.ID == me.ID {
			continue
		}
		follows, err := s.client.Followers(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("loading followers of %s: %w", u.ID, err)
		}
		_, following := models.FollowerOf(follows, me.ID)
		creators = append(creators, Creator{
			User:      u.ToUser(),
			Followers: len(follows),
			Following: following,
		})
	}
	return creators, nil
}

func (s *peopleService) Follow(ctx context.Context, userID string) error {
	if !s.guard.RequireAuth(ctx) {
		return common.ErrorUnauthorized
	}
	me := s.guard.Store().User()
	if userID == me.ID {
		return common.ErrCannotFollowSelf
	}

	follows, err := s.client.Followers(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading followers of %s: %w", userID, err)
	}
	if _, ok := models.FollowerOf(follows, me.ID); ok {
		return nil
	}

	if _, err := s.client.Follow(ctx, me.ID, userID); err != nil {
		return fmt.Errorf("following %s: %w", userID, err)
	}
	return nil
}

func (s *peopleService) Unfollow(ctx context.Context, userID string) error {
	if !s.guard.RequireAuth(ctx) {
		return common.ErrorUnauthorized
	}
	me := s.guard.Store().User()

	follows, err := s.client.Followers(ctx, userID)
	if err != nil {
		return fmt.Errorf("loading followers of %s: %w", userID, err)
	}
	f, ok := models.FollowerOf(follows, me.ID)
	if !ok {
		return nil
	}

	if err := s.client.Unfollow(ctx, f.ID); err != nil {
		return fmt.Errorf("unfollowing %s: %w", userID, err)
	}
	return nil
}

func (s *peopleService) Followers(ctx context.Context, userID string) ([]models.Follow, error) {
	if !s.guard.RequireAuth(ctx) {
		return nil, common.ErrorUnauthorized
	}
	if userID == "" {
		userID = s.guard.Store().User().ID
	}

	follows, err := s.client.Followers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading followers of %s: %w", userID, err)
	}
	return follows, nil
}

func (s *peopleService) UpdateProfile(ctx context.Context, p models.ProfileUpdate) (models.User, error) {
	if err := validation.Profile(p); err != nil {
		return models.EmptyUser, err
	}
	if !s.guard.RequireAuth(ctx) {
		return models.EmptyUser, common.ErrorUnauthorized
	}
	me := s.guard.Store().User()

	if _, err := s.client.UpdateProfile(ctx, me.ID, p); err != nil {
		return models.EmptyUser, fmt.Errorf("updating profile: %w", err)
	}
	if !s.guard.CheckAuthUser(ctx) {
		return models.EmptyUser, common.ErrSessionNotEstablished
	}
	return s.guard.Store().User(), nil
}
