package kvstore

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	// Update runs fn against a repository bound to one transaction. The
	// writes made by fn are applied together or not at all.
	Update(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error
}
