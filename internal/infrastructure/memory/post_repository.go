package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/microbloghq/microblog/internal/domain/entity"
	"github.com/microbloghq/microblog/internal/domain/repository"
)

type storedPost struct {
	post entity.Post
	seq  int
}

type PostRepository struct {
	mu      sync.RWMutex
	posts   []storedPost
	seq     int
	ids     idGen
	users   *UserRepository
	follows *FollowRepository

	// Now is the clock for created_at defaults; tests can override it to
	// control feed ordering.
	Now func() time.Time
}

func NewPostRepository(users *UserRepository, follows *FollowRepository) *PostRepository {
	return &PostRepository{users: users, follows: follows, Now: time.Now}
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = r.ids.next("post")
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.Now()
	}
	if p.Author == "" && r.users != nil {
		if u, err := r.users.GetByID(ctx, p.UserID); err == nil {
			p.Author = u.Username
		}
	}
	r.seq++
	r.posts = append(r.posts, storedPost{post: *p, seq: r.seq})
	return nil
}

// ordered returns posts matching filter, newest first with insertion order
// as the tie-break (the id tie-break of the SQL implementation).
func (r *PostRepository) ordered(filter func(entity.Post) bool) []entity.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matched := make([]storedPost, 0, len(r.posts))
	for _, sp := range r.posts {
		if filter(sp.post) {
			matched = append(matched, sp)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.post.CreatedAt.Equal(b.post.CreatedAt) {
			return a.post.CreatedAt.After(b.post.CreatedAt)
		}
		return a.seq > b.seq
	})
	out := make([]entity.Post, len(matched))
	for i, sp := range matched {
		out[i] = sp.post
	}
	return out
}

func window(posts []entity.Post, limit, offset int) []entity.Post {
	if offset >= len(posts) {
		return nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

func (r *PostRepository) homeFilter(userID string) func(entity.Post) bool {
	followed := map[string]struct{}{}
	if r.follows != nil {
		followed = r.follows.Following(userID)
	}
	return func(p entity.Post) bool {
		if p.UserID == userID {
			return true
		}
		_, ok := followed[p.UserID]
		return ok
	}
}

func (r *PostRepository) CountHome(ctx context.Context, userID string) (int, error) {
	return len(r.ordered(r.homeFilter(userID))), nil
}

func (r *PostRepository) ListHome(ctx context.Context, userID string, limit, offset int) ([]entity.Post, error) {
	return window(r.ordered(r.homeFilter(userID)), limit, offset), nil
}

func (r *PostRepository) CountAll(ctx context.Context) (int, error) {
	return len(r.ordered(func(entity.Post) bool { return true })), nil
}

func (r *PostRepository) ListAll(ctx context.Context, limit, offset int) ([]entity.Post, error) {
	return window(r.ordered(func(entity.Post) bool { return true }), limit, offset), nil
}

func (r *PostRepository) CountByAuthor(ctx context.Context, userID string) (int, error) {
	return len(r.ordered(func(p entity.Post) bool { return p.UserID == userID })), nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, userID string, limit, offset int) ([]entity.Post, error) {
	return window(r.ordered(func(p entity.Post) bool { return p.UserID == userID }), limit, offset), nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
