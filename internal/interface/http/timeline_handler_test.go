package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microbloghq/microblog/internal/application"
	"github.com/microbloghq/microblog/internal/infrastructure/memory"
	"github.com/microbloghq/microblog/internal/interface/middleware"
	"github.com/microbloghq/microblog/pkg/helpers"
	"github.com/microbloghq/microblog/pkg/validation"
)

type testServer struct {
	engine   *gin.Engine
	users    *application.UserService
	timeline *application.TimelineService
	jwt      *helpers.JWTManager
}

// newTestServer wires the handlers against in-memory repositories with a
// page size of 2 so pagination edges are cheap to reach.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	userRepo := memory.NewUserRepository()
	followRepo := memory.NewFollowRepository()
	postRepo := memory.NewPostRepository(userRepo, followRepo)

	jwtManager := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	userSvc := &application.UserService{Repo: userRepo, JWT: jwtManager}
	timelineSvc := &application.TimelineService{Posts: postRepo, Follows: followRepo, Users: userRepo, PerPage: 2}

	cookies := helpers.NewCookie("", false)
	uh := NewUserHandler(userSvc, cookies, nil)
	th := NewTimelineHandler(timelineSvc, nil)

	e := gin.New()
	api := e.Group("/api")
	api.POST("/register", uh.Register)
	api.POST("/login", uh.Login)

	auth := api.Group("/")
	auth.Use(middleware.Auth(nil, jwtManager))
	auth.Use(middleware.LastSeen(userSvc, nil))
	{
		auth.GET("/timeline", th.Home)
		auth.GET("/explore", th.Explore)
		auth.POST("/posts", th.CreatePost)
		auth.GET("/users/:username", th.UserPage)
		auth.POST("/users/:username/follow", th.Follow)
		auth.DELETE("/users/:username/follow", th.Unfollow)
		auth.GET("/profile", uh.GetProfile)
		auth.PUT("/profile", uh.UpdateProfile)
	}

	return &testServer{engine: e, users: userSvc, timeline: timelineSvc, jwt: jwtManager}
}

// signup creates a user directly through the service and returns an access
// token cookie for authenticated requests.
func (s *testServer) signup(t *testing.T, username string) (userID string, cookie *http.Cookie) {
	t.Helper()
	u, err := s.users.Register(context.Background(), application.RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	token, _, err := s.jwt.GenerateAccessToken(u.ID, "test-session")
	require.NoError(t, err)
	return u.ID, &http.Cookie{Name: "access_token", Value: token}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestRegisterAndLoginFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/register", gin.H{
		"username": "susan",
		"email":    "susan@example.com",
		"password": "correct-horse",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate username is a conflict
	rec = s.do(t, http.MethodPost, "/api/register", gin.H{
		"username": "susan",
		"email":    "other@example.com",
		"password": "correct-horse",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Login with the right password sets the cookie pair
	rec = s.do(t, http.MethodPost, "/api/login", gin.H{
		"username": "susan",
		"password": "correct-horse",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	names := make(map[string]bool)
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = true
	}
	assert.True(t, names["access_token"])
	assert.True(t, names["refresh_token"])

	// Wrong password is unauthorized
	rec = s.do(t, http.MethodPost, "/api/login", gin.H{
		"username": "susan",
		"password": "wrong-horse",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTimelineRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/timeline", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreatePostValidation(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signup(t, "john")

	rec := s.do(t, http.MethodPost, "/api/posts", gin.H{"body": "hello world"}, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	env := decodeEnvelope(t, rec)
	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "john", created["author"])

	long := make([]byte, 141)
	for i := range long {
		long[i] = 'x'
	}
	rec = s.do(t, http.MethodPost, "/api/posts", gin.H{"body": string(long)}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/posts", gin.H{"body": ""}, cookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFollowEndpoints(t *testing.T) {
	s := newTestServer(t)
	_, johnCookie := s.signup(t, "john")
	s.signup(t, "susan")

	rec := s.do(t, http.MethodPost, "/api/users/susan/follow", nil, johnCookie)
	require.Equal(t, http.StatusOK, rec.Code)

	// Idempotent
	rec = s.do(t, http.MethodPost, "/api/users/susan/follow", nil, johnCookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Self-follow rejected
	rec = s.do(t, http.MethodPost, "/api/users/john/follow", nil, johnCookie)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown target
	rec = s.do(t, http.MethodPost, "/api/users/ghost/follow", nil, johnCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/users/susan/follow", nil, johnCookie)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHomeTimelineComposition(t *testing.T) {
	s := newTestServer(t)
	johnID, johnCookie := s.signup(t, "john")
	susanID, _ := s.signup(t, "susan")
	maryID, _ := s.signup(t, "mary")

	ctx := context.Background()
	_, err := s.timeline.CreatePost(ctx, susanID, "from susan")
	require.NoError(t, err)
	_, err = s.timeline.CreatePost(ctx, maryID, "from mary")
	require.NoError(t, err)
	_, err = s.timeline.CreatePost(ctx, johnID, "from john")
	require.NoError(t, err)

	_, err = s.timeline.Follow(ctx, johnID, "susan")
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/timeline", nil, johnCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var posts []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &posts))

	authors := make([]string, 0, len(posts))
	for _, p := range posts {
		authors = append(authors, p["author"].(string))
	}
	// Own posts and susan's are in, mary's are not. Newest first.
	assert.Equal(t, []string{"john", "susan"}, authors)

	// Explore returns everything regardless of the follow graph.
	rec = s.do(t, http.MethodGet, "/api/explore", nil, johnCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	assert.EqualValues(t, 3, env.Meta["total"])
}

func TestTimelinePagination(t *testing.T) {
	s := newTestServer(t)
	johnID, johnCookie := s.signup(t, "john")

	ctx := context.Background()
	for i := 1; i <= 5; i++ {
		_, err := s.timeline.CreatePost(ctx, johnID, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
	}

	rec := s.do(t, http.MethodGet, "/api/timeline?page=1", nil, johnCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.EqualValues(t, 5, env.Meta["total"])
	assert.EqualValues(t, 2, env.Meta["next_page"])
	assert.NotContains(t, env.Meta, "prev_page")

	rec = s.do(t, http.MethodGet, "/api/timeline?page=3", nil, johnCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	env = decodeEnvelope(t, rec)
	var posts []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &posts))
	assert.Len(t, posts, 1)
	assert.NotContains(t, env.Meta, "next_page")
	assert.EqualValues(t, 2, env.Meta["prev_page"])

	// Past the last page is a 404, not an empty page.
	rec = s.do(t, http.MethodGet, "/api/timeline?page=4", nil, johnCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/timeline?page=0", nil, johnCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/timeline?page=abc", nil, johnCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Overflow-sized numbers are out of range too, not a server error.
	rec = s.do(t, http.MethodGet, "/api/timeline?page=576460752303423489", nil, johnCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserPage(t *testing.T) {
	s := newTestServer(t)
	johnID, johnCookie := s.signup(t, "john")
	susanID, _ := s.signup(t, "susan")

	ctx := context.Background()
	_, err := s.timeline.CreatePost(ctx, susanID, "susan says hi")
	require.NoError(t, err)
	_, err = s.timeline.Follow(ctx, johnID, "susan")
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/users/susan", nil, johnCookie)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)

	var data struct {
		User struct {
			Username  string `json:"username"`
			Followers int    `json:"followers"`
			Following int    `json:"following"`
		} `json:"user"`
		IsFollowing bool             `json:"is_following"`
		Posts       []map[string]any `json:"posts"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "susan", data.User.Username)
	assert.Equal(t, 1, data.User.Followers)
	assert.Equal(t, 0, data.User.Following)
	assert.True(t, data.IsFollowing)
	assert.Len(t, data.Posts, 1)

	rec = s.do(t, http.MethodGet, "/api/users/ghost", nil, johnCookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// brokenFollowRepo fails edge lookups while counts keep working.
type brokenFollowRepo struct {
	*memory.FollowRepository
}

func (r *brokenFollowRepo) Exists(ctx context.Context, followerID, followedID string) (bool, error) {
	return false, errors.New("follow store unavailable")
}

func TestUserPageFollowLookupFailureIsInternal(t *testing.T) {
	s := newTestServer(t)
	_, johnCookie := s.signup(t, "john")
	s.signup(t, "susan")

	s.timeline.Follows = &brokenFollowRepo{FollowRepository: memory.NewFollowRepository()}

	// A storage failure must not render as "not following".
	rec := s.do(t, http.MethodGet, "/api/users/susan", nil, johnCookie)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestProfileUpdate(t *testing.T) {
	s := newTestServer(t)
	_, cookie := s.signup(t, "john")

	about := "gardener and poet"
	rec := s.do(t, http.MethodPut, "/api/profile", gin.H{"about_me": &about}, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/profile", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	var profile map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "gardener and poet", profile["about_me"])

	// Last seen is refreshed by the middleware on authenticated requests.
	assert.NotNil(t, profile["last_seen"])
}

func TestLastSeenRefreshedOnRequest(t *testing.T) {
	s := newTestServer(t)
	userID, cookie := s.signup(t, "john")

	u, err := s.users.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	require.Nil(t, u.LastSeen)

	rec := s.do(t, http.MethodGet, "/api/explore", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)

	u, err = s.users.GetProfile(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, u.LastSeen)
}
