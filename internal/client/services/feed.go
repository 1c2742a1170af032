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

// DefaultFeedLimit is the number of posts shown on the home screen.
const DefaultFeedLimit = 20

// PostDetails is one post together with the other posts of its creator.
type PostDetails struct {
	Post    models.Post
	Related []models.Post
	IsOwner bool
}

// FeedService serves the post screens. Every operation runs behind the
// route guard and fails with common.ErrorUnauthorized when it rejects the
// session.
type FeedService interface {
	// Home returns the most recent posts.
	Home(ctx context.Context, limit int) ([]models.Post, error)
	// Publish validates and creates a post.
	Publish(ctx context.Context, post models.NewPost) (*models.Post, error)
	// Details returns a post and its creator's other posts.
	Details(ctx context.Context, id string) (*PostDetails, error)
	// Edit validates and updates a post of the signed-in user. Posts of
	// other users fail with common.ErrNotOwner.
	Edit(ctx context.Context, id string, post models.NewPost) (*models.Post, error)
	// Delete removes a post of the signed-in user, with the same owner rule
	// as Edit.
	Delete(ctx context.Context, id string) error
}

type feedService struct {
	client client.Client
	guard  *session.Guard
}

func NewFeedService(client client.Client, guard *session.Guard) FeedService {
	return &feedService{client: client, guard: guard}
}

func (s *feedService) Home(ctx context.Context, limit int) ([]models.Post, error) {
	if !s.guard.RequireAuth(ctx) {
		return nil, common.ErrorUnauthorized
	}
	if limit <= 0 {
		limit = DefaultFeedLimit
	}

	posts, err := s.client.RecentPosts(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("loading recent posts: %w", err)
	}
	return posts, nil
}

func (s *feedService) Publish(ctx context.Context, post models.NewPost) (*models.Post, error) {
	if err := validation.Post(post); err != nil {
		return nil, err
	}
	if !s.guard.RequireAuth(ctx) {
		return nil, common.ErrorUnauthorized
	}

	created, err := s.client.CreatePost(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("publishing post: %w", err)
	}
	return created, nil
}

func (s *feedService) Details(ctx context.Context, id string) (*PostDetails, error) {
	if !s.guard.RequireAuth(ctx) {
		return nil, common.ErrorUnauthorized
	}

	post, err := s.client.GetPost(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading post %s: %w", id, err)
	}
	byCreator, err := s.client.UserPosts(ctx, post.CreatorID)
	if err != nil {
		return nil, fmt.Errorf("loading posts of %s: %w", post.CreatorID, err)
	}

	related := make([]models.Post, 0, len(byCreator))
	for _, p := range byCreator {
		if p.ID != post.ID {
			related = append(related, p)
		}
	}
	return &PostDetails{
		Post:    *post,
		Related: related,
		IsOwner: post.CreatorID == s.guard.Store().User().ID,
	}, nil
}

func (s *feedService) Edit(ctx context.Context, id string, post models.NewPost) (*models.Post, error) {
	if err := validation.Post(post); err != nil {
		return nil, err
	}
	if !s.guard.RequireAuth(ctx) {
		return nil, common.ErrorUnauthorized
	}
	if err := s.checkOwner(ctx, id); err != nil {
		return nil, err
	}

	updated, err := s.client.UpdatePost(ctx, id, post)
	if err != nil {
		return nil, fmt.Errorf("updating post %s: %w", id, err)
	}
	return updated, nil
}

func (s *feedService) Delete(ctx context.Context, id string) error {
	if !s.guard.RequireAuth(ctx) {
		return common.ErrorUnauthorized
	}
	if err := s.checkOwner(ctx, id); err != nil {
		return err
	}

	if err := s.client.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	return nil
}

func (s *feedService) checkOwner(ctx context.Context, id string) error {
	post, err := s.client.GetPost(ctx, id)
	if err != nil {
		return fmt.Errorf("loading post %s: %w", id, err)
	}
	if post.CreatorID != s.guard.Store().User().ID {
		return common.ErrNotOwner
	}
	return nil
}
