package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/microbloghq/microblog/internal/domain/entity"
	"github.com/microbloghq/microblog/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// homeFilter selects posts authored by the viewer or by anyone the viewer
// follows. $1 is the viewer's user id.
const homeFilter = `
	(p.user_id = $1 OR p.user_id IN (
		SELECT followed_id FROM follows WHERE follower_id = $1
	))`

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO posts (body, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, p.Body, p.UserID)
	return row.Scan(&p.ID, &p.CreatedAt)
}

func (r *PostRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostRepository) list(ctx context.Context, query string, args ...any) ([]entity.Post, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []entity.Post
	for rows.Next() {
		var p entity.Post
		if err := rows.Scan(&p.ID, &p.Body, &p.UserID, &p.Author, &p.CreatedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) CountHome(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM posts p WHERE `+homeFilter, userID)
}

func (r *PostRepository) ListHome(ctx context.Context, userID string, limit, offset int) ([]entity.Post, error) {
	return r.list(ctx, `
		SELECT p.id, p.body, p.user_id, u.username, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE `+homeFilter+`
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
}

func (r *PostRepository) CountAll(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM posts`)
}

func (r *PostRepository) ListAll(ctx context.Context, limit, offset int) ([]entity.Post, error) {
	return r.list(ctx, `
		SELECT p.id, p.body, p.user_id, u.username, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r *PostRepository) CountByAuthor(ctx context.Context, userID string) (int, error) {
	return r.count(ctx, `SELECT count(*) FROM posts WHERE user_id = $1`, userID)
}

func (r *PostRepository) ListByAuthor(ctx context.Context, userID string, limit, offset int) ([]entity.Post, error) {
	return r.list(ctx, `
		SELECT p.id, p.body, p.user_id, u.username, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
}

var _ repository.PostRepository = (*PostRepository)(nil)
