package model

import "time"

// CommunityPost is a free-board posting. AuthorName is a read-time join
// alias (users.nickname) and is not stored on the post row.
type CommunityPost struct {
	ID         int64     `json:"id"`
	UserNum    int64     `json:"userNum"`
	Title      string    `json:"title"`
	Category   string    `json:"category"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Comment is a reply attached to a community post.
type Comment struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"postId"`
	UserNum    int64     `json:"userNum"`
	Content    string    `json:"content"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}
