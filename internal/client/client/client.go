package client

import (
	"context"

	"github.com/hablemosverde/verde/internal/client/models"
)

// Client is the backend gateway: the account, session, post and follow
// operations the client consumes from the hosted backend.
type Client interface {
	Close() error
	// GetCurrentUser returns the account of the current backend session, or
	// (nil, nil) when there is none.
	GetCurrentUser(ctx context.Context) (*models.Account, error)
	// SignOut deletes the current backend session.
	SignOut(ctx context.Context) error
	CreateAccount(ctx context.Context, user models.NewUser) (*models.Account, error)
	SignIn(ctx context.Context, creds models.Credentials) error
	UpdateProfile(ctx context.Context, userID string, p models.ProfileUpdate) (*models.Account, error)
	Users(ctx context.Context, limit int) ([]models.Account, error)

	RecentPosts(ctx context.Context, limit int) ([]models.Post, error)
	UserPosts(ctx context.Context, userID string) ([]models.Post, error)
	// GetPost fails with ErrNotFound for an unknown id.
	GetPost(ctx context.Context, id string) (*models.Post, error)
	CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error)
	UpdatePost(ctx context.Context, id string, post models.NewPost) (*models.Post, error)
	DeletePost(ctx context.Context, id string) error

	Follow(ctx context.Context, followerID, followedID string) (*models.Follow, error)
	Unfollow(ctx context.Context, followID string) error
	Followers(ctx context.Context, userID string) ([]models.Follow, error)
}
