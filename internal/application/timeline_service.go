package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/microbloghq/microblog/internal/domain/entity"
	repo "github.com/microbloghq/microblog/internal/domain/repository"
	"github.com/microbloghq/microblog/pkg/pagination"
)

var (
	ErrSelfFollow  = errors.New("cannot follow yourself")
	ErrEmptyPost   = errors.New("post body must not be empty")
	ErrPostTooLong = errors.New("post body exceeds the maximum length")
)

// TimelineService composes the home and explore feeds and maintains the
// follow graph. Feeds are only ever handed out as pages.
type TimelineService struct {
	Posts   repo.PostRepository
	Follows repo.FollowRepository
	Users   repo.UserRepository
	PerPage int
	Logger  *logrus.Logger
}

func (s *TimelineService) perPage() int {
	if s.PerPage > 0 {
		return s.PerPage
	}
	return 25
}

// CreatePost validates and stores a new post authored by userID.
func (s *TimelineService) CreatePost(ctx context.Context, userID, body string) (*entity.Post, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyPost
	}
	if len([]rune(body)) > entity.MaxPostLen {
		return nil, ErrPostTooLong
	}
	author, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	p := &entity.Post{Body: body, UserID: author.ID, Author: author.Username}
	if err := s.Posts.Create(ctx, p); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": author.ID, "post_id": p.ID}).Debug("post created")
	}
	return p, nil
}

// Home returns one page of the viewer's personalized feed: posts authored
// by the viewer or by anyone the viewer follows, newest first.
func (s *TimelineService) Home(ctx context.Context, userID string, page int) (*pagination.Page[entity.Post], error) {
	return pagination.Paginate(ctx, page, s.perPage(),
		func(ctx context.Context) (int, error) {
			return s.Posts.CountHome(ctx, userID)
		},
		func(ctx context.Context, limit, offset int) ([]entity.Post, error) {
			return s.Posts.ListHome(ctx, userID, limit, offset)
		})
}

// Explore returns one page of the global feed; identical for every viewer.
func (s *TimelineService) Explore(ctx context.Context, page int) (*pagination.Page[entity.Post], error) {
	return pagination.Paginate(ctx, page, s.perPage(),
		s.Posts.CountAll,
		s.Posts.ListAll)
}

// UserPage resolves a user by username and returns their profile together
// with one page of their own posts.
func (s *TimelineService) UserPage(ctx context.Context, username string, page int) (*entity.User, *pagination.Page[entity.Post], error) {
	u, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, ErrUserNotFound
	}
	p, err := pagination.Paginate(ctx, page, s.perPage(),
		func(ctx context.Context) (int, error) {
			return s.Posts.CountByAuthor(ctx, u.ID)
		},
		func(ctx context.Context, limit, offset int) ([]entity.Post, error) {
			return s.Posts.ListByAuthor(ctx, u.ID, limit, offset)
		})
	if err != nil {
		return nil, nil, err
	}
	return u, p, nil
}

// Follow adds the edge actor -> username. Following an unknown user fails
// with ErrUserNotFound, following yourself with ErrSelfFollow, and
// following an already-followed user is a no-op.
func (s *TimelineService) Follow(ctx context.Context, actorID, username string) (*entity.User, error) {
	target, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if target.ID == actorID {
		return nil, ErrSelfFollow
	}
	if err := s.Follows.Add(ctx, actorID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// Unfollow removes the edge actor -> username; removing an absent edge is a
// no-op. The same not-found and self-action rules as Follow apply.
func (s *TimelineService) Unfollow(ctx context.Context, actorID, username string) (*entity.User, error) {
	target, err := s.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if target.ID == actorID {
		return nil, ErrSelfFollow
	}
	if err := s.Follows.Remove(ctx, actorID, target.ID); err != nil {
		return nil, err
	}
	return target, nil
}

// IsFollowing reports whether the directed edge actor -> target exists.
func (s *TimelineService) IsFollowing(ctx context.Context, actorID, targetID string) (bool, error) {
	return s.Follows.Exists(ctx, actorID, targetID)
}

// FollowCounts returns the follower/following totals shown on a user page.
func (s *TimelineService) FollowCounts(ctx context.Context, userID string) (followers, following int, err error) {
	followers, err = s.Follows.CountFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	following, err = s.Follows.CountFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}
