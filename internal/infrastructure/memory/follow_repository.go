package memory

import (
	"context"
	"sync"

	"github.com/microbloghq/microblog/internal/domain/repository"
)

type edge struct {
	follower, followed string
}

type FollowRepository struct {
	mu    sync.RWMutex
	edges map[edge]struct{}
}

func NewFollowRepository() *FollowRepository {
	return &FollowRepository{edges: make(map[edge]struct{})}
}

func (r *FollowRepository) Add(ctx context.Context, followerID, followedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// map insert is naturally idempotent, like ON CONFLICT DO NOTHING
	r.edges[edge{followerID, followedID}] = struct{}{}
	return nil
}

func (r *FollowRepository) Remove(ctx context.Context, followerID, followedID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.edges, edge{followerID, followedID})
	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.edges[edge{followerID, followedID}]
	return ok, nil
}

func (r *FollowRepository) CountFollowers(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for e := range r.edges {
		if e.followed == userID {
			n++
		}
	}
	return n, nil
}

func (r *FollowRepository) CountFollowing(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for e := range r.edges {
		if e.follower == userID {
			n++
		}
	}
	return n, nil
}

// Following lists the ids a user follows; used by the post repository to
// compose the home feed the way the SQL subselect does.
func (r *FollowRepository) Following(userID string) map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]struct{})
	for e := range r.edges {
		if e.follower == userID {
			out[e.followed] = struct{}{}
		}
	}
	return out
}

var _ repository.FollowRepository = (*FollowRepository)(nil)
