package repository

import "context"

// FollowRepository maintains the directed follow-edge set.
// Add must be idempotent: inserting an existing edge is a no-op, and two
// concurrent inserts of the same edge must resolve to a single row via the
// storage-level uniqueness constraint.
type FollowRepository interface {
	Add(ctx context.Context, followerID, followedID string) error
	Remove(ctx context.Context, followerID, followedID string) error
	Exists(ctx context.Context, followerID, followedID string) (bool, error)
	CountFollowers(ctx context.Context, userID string) (int, error)
	CountFollowing(ctx context.Context, userID string) (int, error)
}
