package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microbloghq/microblog/internal/domain/entity"
	"github.com/microbloghq/microblog/internal/infrastructure/memory"
	"github.com/microbloghq/microblog/pkg/pagination"
)

type timelineFixture struct {
	users   *memory.UserRepository
	posts   *memory.PostRepository
	follows *memory.FollowRepository
	svc     *TimelineService
}

func newTimelineFixture(t *testing.T, perPage int) *timelineFixture {
	t.Helper()
	users := memory.NewUserRepository()
	follows := memory.NewFollowRepository()
	posts := memory.NewPostRepository(users, follows)
	return &timelineFixture{
		users:   users,
		posts:   posts,
		follows: follows,
		svc:     &TimelineService{Posts: posts, Follows: follows, Users: users, PerPage: perPage},
	}
}

func (f *timelineFixture) addUser(t *testing.T, username string) *entity.User {
	t.Helper()
	u := &entity.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *timelineFixture) addPost(t *testing.T, u *entity.User, body string, at time.Time) *entity.Post {
	t.Helper()
	p := &entity.Post{Body: body, UserID: u.ID, Author: u.Username, CreatedAt: at}
	require.NoError(t, f.posts.Create(context.Background(), p))
	return p
}

func bodies(posts []entity.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Body
	}
	return out
}

func TestFollowThenIsFollowing(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "alice")
	v := f.addUser(t, "bob")

	ok, err := f.svc.IsFollowing(ctx, u.ID, v.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.Follow(ctx, u.ID, "bob")
	require.NoError(t, err)

	ok, err = f.svc.IsFollowing(ctx, u.ID, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Directed edge: bob does not follow alice.
	ok, err = f.svc.IsFollowing(ctx, v.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "alice")
	v := f.addUser(t, "bob")

	_, err := f.svc.Follow(ctx, u.ID, "bob")
	require.NoError(t, err)
	_, err = f.svc.Follow(ctx, u.ID, "bob")
	require.NoError(t, err)

	n, err := f.follows.CountFollowers(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSelfFollowRejected(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "alice")

	_, err := f.svc.Follow(ctx, u.ID, "alice")
	assert.ErrorIs(t, err, ErrSelfFollow)

	ok, err := f.svc.IsFollowing(ctx, u.ID, u.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollowUnknownUser(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "alice")

	_, err := f.svc.Follow(ctx, u.ID, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = f.svc.Unfollow(ctx, u.ID, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUnfollowRestoresAndIsNoOpWhenAbsent(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "alice")
	v := f.addUser(t, "bob")

	_, err := f.svc.Follow(ctx, u.ID, "bob")
	require.NoError(t, err)
	_, err = f.svc.Unfollow(ctx, u.ID, "bob")
	require.NoError(t, err)

	ok, err := f.svc.IsFollowing(ctx, u.ID, v.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// Removing the already-absent edge succeeds without effect.
	_, err = f.svc.Unfollow(ctx, u.ID, "bob")
	require.NoError(t, err)
}

func TestHomeFeedComposition(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "u")
	v := f.addUser(t, "v")
	w := f.addUser(t, "w")
	x := f.addUser(t, "x")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.addPost(t, u, "from u", base.Add(1*time.Minute))
	f.addPost(t, v, "from v", base.Add(2*time.Minute))
	f.addPost(t, w, "from w", base.Add(3*time.Minute))
	f.addPost(t, x, "from x", base.Add(4*time.Minute))

	_, err := f.svc.Follow(ctx, u.ID, "v")
	require.NoError(t, err)
	_, err = f.svc.Follow(ctx, u.ID, "w")
	require.NoError(t, err)

	page, err := f.svc.Home(ctx, u.ID, 1)
	require.NoError(t, err)

	// Includes all posts from u, v, w; excludes every post from x.
	assert.Equal(t, []string{"from w", "from v", "from u"}, bodies(page.Items))
}

func TestHomeFeedAlwaysIncludesOwnPosts(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "loner")
	f.addPost(t, u, "talking to myself", time.Now())

	page, err := f.svc.Home(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"talking to myself"}, bodies(page.Items))
}

func TestExploreIsNotPersonalized(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "u")
	v := f.addUser(t, "v")
	f.addPost(t, u, "one", time.Now().Add(-time.Minute))
	f.addPost(t, v, "two", time.Now())

	// Explore carries no viewer identity at all: same content for anyone.
	page, err := f.svc.Explore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"two", "one"}, bodies(page.Items))
	assert.Equal(t, 2, page.Total)
}

func TestFeedOrderingIsNonIncreasing(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 50)
	u := f.addUser(t, "u")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	// Two posts share a timestamp to exercise the tie-break.
	f.addPost(t, u, "a", base.Add(2*time.Hour))
	f.addPost(t, u, "b", base.Add(1*time.Hour))
	f.addPost(t, u, "c", base.Add(2*time.Hour))
	f.addPost(t, u, "d", base)

	page, err := f.svc.Explore(ctx, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 4)
	for i := 1; i < len(page.Items); i++ {
		prev, cur := page.Items[i-1], page.Items[i]
		assert.False(t, cur.CreatedAt.After(prev.CreatedAt),
			"items must be ordered newest first")
	}
	// Later insert wins the tie.
	assert.Equal(t, []string{"c", "a", "b", "d"}, bodies(page.Items))
}

func TestExplorePaginationScenario(t *testing.T) {
	// Page size 2, five posts P1..P5 with strictly decreasing timestamps.
	ctx := context.Background()
	f := newTimelineFixture(t, 2)
	u := f.addUser(t, "u")
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	f.addPost(t, u, "P1", base.Add(5*time.Hour))
	f.addPost(t, u, "P2", base.Add(4*time.Hour))
	f.addPost(t, u, "P3", base.Add(3*time.Hour))
	f.addPost(t, u, "P4", base.Add(2*time.Hour))
	f.addPost(t, u, "P5", base.Add(1*time.Hour))

	p1, err := f.svc.Explore(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, bodies(p1.Items))
	assert.True(t, p1.HasNext())
	assert.False(t, p1.HasPrev())

	p3, err := f.svc.Explore(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"P5"}, bodies(p3.Items))
	assert.False(t, p3.HasNext())
	assert.True(t, p3.HasPrev())

	_, err = f.svc.Explore(ctx, 4)
	assert.ErrorIs(t, err, pagination.ErrPageNotFound)
}

func TestHomePaginationConcatenation(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 3)
	u := f.addUser(t, "u")
	v := f.addUser(t, "v")
	_, err := f.svc.Follow(ctx, u.ID, "v")
	require.NoError(t, err)

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		f.addPost(t, u, "u", base.Add(time.Duration(2*i)*time.Minute))
		f.addPost(t, v, "v", base.Add(time.Duration(2*i+1)*time.Minute))
	}

	seen := map[string]bool{}
	var joined []entity.Post
	for n := 1; ; n++ {
		page, err := f.svc.Home(ctx, u.ID, n)
		if errors.Is(err, pagination.ErrPageNotFound) {
			break
		}
		require.NoError(t, err)
		for _, p := range page.Items {
			assert.False(t, seen[p.ID], "post %s appeared twice", p.ID)
			seen[p.ID] = true
		}
		joined = append(joined, page.Items...)
	}
	assert.Len(t, joined, 10)
}

func TestUserPage(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "alice")
	v := f.addUser(t, "bob")
	f.addPost(t, u, "mine", time.Now())
	f.addPost(t, v, "theirs", time.Now())

	user, page, err := f.svc.UserPage(ctx, "alice", 1)
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.Equal(t, []string{"mine"}, bodies(page.Items))

	_, _, err = f.svc.UserPage(ctx, "nobody", 1)
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = f.svc.UserPage(ctx, "alice", 9)
	assert.ErrorIs(t, err, pagination.ErrPageNotFound)
}

func TestCreatePostValidation(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	u := f.addUser(t, "alice")

	_, err := f.svc.CreatePost(ctx, u.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyPost)

	long := make([]rune, entity.MaxPostLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = f.svc.CreatePost(ctx, u.ID, string(long))
	assert.ErrorIs(t, err, ErrPostTooLong)

	p, err := f.svc.CreatePost(ctx, u.ID, "hello world")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Author)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = f.svc.CreatePost(ctx, "missing-user", "hi")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestFollowCounts(t *testing.T) {
	ctx := context.Background()
	f := newTimelineFixture(t, 10)
	a := f.addUser(t, "a")
	b := f.addUser(t, "b")
	c := f.addUser(t, "c")

	_, err := f.svc.Follow(ctx, a.ID, "c")
	require.NoError(t, err)
	_, err = f.svc.Follow(ctx, b.ID, "c")
	require.NoError(t, err)
	_, err = f.svc.Follow(ctx, c.ID, "a")
	require.NoError(t, err)

	followers, following, err := f.svc.FollowCounts(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, followers)
	assert.Equal(t, 1, following)
}
