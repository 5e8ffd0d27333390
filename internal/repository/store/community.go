package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// CommunityStore implements repository.CommunityRepository.
type CommunityStore struct {
	conn *sql.DB
}

var _ repository.CommunityRepository = (*CommunityStore)(nil)

// CreatePost inserts a community post and fills in the generated id.
func (s *CommunityStore) CreatePost(ctx context.Context, post *model.CommunityPost) error {
	post.CreatedAt = time.Now()

	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO community_posts (user_num, title, category, content, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		post.UserNum,
		post.Title,
		post.Category,
		post.Content,
		post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("store: creating community post: %w", err)
	}

	return nil
}

// GetPost retrieves a post with its author name joined in.
func (s *CommunityStore) GetPost(ctx context.Context, id int64) (*model.CommunityPost, error) {
	var (
		p        model.CommunityPost
		nickname string
		name     string
	)

	err := s.conn.QueryRowContext(ctx,
		`SELECT p.id, p.user_num, p.title, p.category, p.content, p.created_at, u.nickname, u.name
		 FROM community_posts p
		 JOIN users u ON u.user_num = p.user_num
		 WHERE p.id = $1`,
		id,
	).Scan(&p.ID, &p.UserNum, &p.Title, &p.Category, &p.Content, &p.CreatedAt, &nickname, &name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("community post", id)
		}
		return nil, fmt.Errorf("store: getting community post %d: %w", id, err)
	}

	p.AuthorName = displayName(nickname, name)
	return &p, nil
}

// ListPosts retrieves posts, newest first, each with its author name.
func (s *CommunityStore) ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.CommunityPost, error) {
	limit, offset := clampList(opts)

	rows, err := s.conn.QueryContext(ctx,
		`SELECT p.id, p.user_num, p.title, p.category, p.content, p.created_at, u.nickname, u.name
		 FROM community_posts p
		 JOIN users u ON u.user_num = p.user_num
		 ORDER BY p.created_at DESC, p.id DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing community posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.CommunityPost, 0, limit)
	for rows.Next() {
		var (
			p        model.CommunityPost
			nickname string
			name     string
		)
		if err := rows.Scan(&p.ID, &p.UserNum, &p.Title, &p.Category, &p.Content, &p.CreatedAt, &nickname, &name); err != nil {
			return nil, fmt.Errorf("store: scanning community post row: %w", err)
		}
		p.AuthorName = displayName(nickname, name)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating community post rows: %w", err)
	}

	return posts, nil
}

// DeletePost removes a post; its comments go with it via ON DELETE CASCADE.
func (s *CommunityStore) DeletePost(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM community_posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: deleting community post %d: %w", id, err)
	}
	return checkAffected(result, "community post", id)
}

// CreateComment inserts a comment and fills in the generated id.
func (s *CommunityStore) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.CreatedAt = time.Now()

	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO community_comments (post_id, user_num, content, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		comment.PostID,
		comment.UserNum,
		comment.Content,
		comment.CreatedAt,
	).Scan(&comment.ID)
	if err != nil {
		return fmt.Errorf("store: creating comment: %w", err)
	}

	return nil
}

// GetComment retrieves a single comment.
func (s *CommunityStore) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment

	err := s.conn.QueryRowContext(ctx,
		`SELECT id, post_id, user_num, content, created_at
		 FROM community_comments WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.PostID, &c.UserNum, &c.Content, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("store: getting comment %d: %w", id, err)
	}

	return &c, nil
}

// ListComments retrieves a post's comments, oldest first (thread order).
func (s *CommunityStore) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT c.id, c.post_id, c.user_num, c.content, c.created_at, u.nickname, u.name
		 FROM community_comments c
		 JOIN users u ON u.user_num = c.user_num
		 WHERE c.post_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("store: listing comments for post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, 8)
	for rows.Next() {
		var (
			c        model.Comment
			nickname string
			name     string
		)
		if err := rows.Scan(&c.ID, &c.PostID, &c.UserNum, &c.Content, &c.CreatedAt, &nickname, &name); err != nil {
			return nil, fmt.Errorf("store: scanning comment row: %w", err)
		}
		c.AuthorName = displayName(nickname, name)
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating comment rows: %w", err)
	}

	return comments, nil
}

// DeleteComment removes a comment.
func (s *CommunityStore) DeleteComment(ctx context.Context, id int64) error {
	result, err := s.conn.ExecContext(ctx, `DELETE FROM community_comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("store: deleting comment %d: %w", id, err)
	}
	return checkAffected(result, "comment", id)
}

// displayName mirrors model.User.DisplayName for joined author columns.
func displayName(nickname, name string) string {
	if nickname != "" {
		return nickname
	}
	return name
}
