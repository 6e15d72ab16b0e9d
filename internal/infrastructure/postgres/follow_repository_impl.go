package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/microbloghq/microblog/internal/domain/repository"
)

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

// Add inserts the directed edge follower -> followed. ON CONFLICT makes the
// insert idempotent and resolves concurrent inserts of the same edge to a
// single row via the composite primary key.
func (r *FollowRepository) Add(ctx context.Context, followerID, followedID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO follows (follower_id, followed_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followed_id) DO NOTHING
	`, followerID, followedID)
	return err
}

// Remove deletes the edge if present; removing an absent edge is a no-op.
func (r *FollowRepository) Remove(ctx context.Context, followerID, followedID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM follows
		WHERE follower_id = $1 AND followed_id = $2
	`, followerID, followedID)
	return err
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2
		)
	`, followerID, followedID).Scan(&ok)
	return ok, err
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM follows WHERE followed_id = $1
	`, userID).Scan(&n)
	return n, err
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM follows WHERE follower_id = $1
	`, userID).Scan(&n)
	return n, err
}

var _ repository.FollowRepository = (*FollowRepository)(nil)
