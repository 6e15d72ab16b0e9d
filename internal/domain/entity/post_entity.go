package entity

import "time"

// MaxPostLen bounds the post body, matching the varchar(140) column.
const MaxPostLen = 140

// Post is a single immutable text update. Author carries the author's
// username when the post was loaded through a join; it is not persisted
// on the posts table itself.
type Post struct {
	ID        string
	Body      string
	UserID    string
	Author    string
	CreatedAt time.Time
}
