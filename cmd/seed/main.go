package main

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/microbloghq/microblog/config"
	"github.com/microbloghq/microblog/pkg/helpers"
)

type demoUser struct {
	username string
	email    string
	aboutMe  string
	posts    []string
	follows  []string
}

var demoUsers = []demoUser{
	{
		username: "john",
		email:    "john@example.com",
		aboutMe:  "Just moved here, saying hi.",
		posts:    []string{"Beautiful day in Portland!", "The Avengers movie was so cool!"},
		follows:  []string{"susan"},
	},
	{
		username: "susan",
		email:    "susan@example.com",
		aboutMe:  "Gardener, poet, occasional hiker.",
		posts:    []string{"The weather today is dreadful.", "Planted tomatoes this morning."},
		follows:  []string{"john", "mary"},
	},
	{
		username: "mary",
		email:    "mary@example.com",
		posts:    []string{"Reading a great book about rivers."},
	},
}

const demoPassword = "password123"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := helpers.HashPassword(demoPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ids := make(map[string]string, len(demoUsers))
	for _, u := range demoUsers {
		var id string
		err := db.QueryRow(`
			INSERT INTO users (username, email, password_hash, about_me)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (username) DO UPDATE SET about_me = EXCLUDED.about_me
			RETURNING id
		`, u.username, u.email, hash, u.aboutMe).Scan(&id)
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", u.username, err)
		}
		ids[u.username] = id
		fmt.Printf("seeded user: id=%s username=%s password=%s\n", id, u.username, demoPassword)
	}

	for _, u := range demoUsers {
		for _, body := range u.posts {
			// Re-running the seed should not duplicate posts
			if _, err := db.Exec(`
				INSERT INTO posts (user_id, body)
				SELECT $1, $2
				WHERE NOT EXISTS (SELECT 1 FROM posts WHERE user_id = $1 AND body = $2)
			`, ids[u.username], body); err != nil {
				log.Fatalf("failed to seed post for %s: %v", u.username, err)
			}
		}
		for _, followed := range u.follows {
			if _, err := db.Exec(`
				INSERT INTO follows (follower_id, followed_id)
				VALUES ($1, $2)
				ON CONFLICT (follower_id, followed_id) DO NOTHING
			`, ids[u.username], ids[followed]); err != nil {
				log.Fatalf("failed to seed follow %s -> %s: %v", u.username, followed, err)
			}
		}
	}
	fmt.Println("seed complete")
}
