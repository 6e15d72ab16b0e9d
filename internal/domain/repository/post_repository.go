package repository

import (
	"context"

	"github.com/microbloghq/microblog/internal/domain/entity"
)

// PostRepository defines the interface for post storage and feed queries.
// List methods return posts ordered by created_at descending with id as a
// deterministic tie-break; Count methods return the matching total so the
// caller can paginate strictly.
type PostRepository interface {
	Create(ctx context.Context, p *entity.Post) error

	// Home feed: posts authored by userID or by anyone userID follows.
	CountHome(ctx context.Context, userID string) (int, error)
	ListHome(ctx context.Context, userID string, limit, offset int) ([]entity.Post, error)

	// Explore feed: every post in the system.
	CountAll(ctx context.Context) (int, error)
	ListAll(ctx context.Context, limit, offset int) ([]entity.Post, error)

	// Single author's posts, for the user page.
	CountByAuthor(ctx context.Context, userID string) (int, error)
	ListByAuthor(ctx context.Context, userID string, limit, offset int) ([]entity.Post, error)
}
