package service

import (
	"context"
	"log/slog"

	"github.com/petlink/petlink/internal/apperror"
	"github.com/petlink/petlink/internal/auth"
	"github.com/petlink/petlink/internal/model"
	"github.com/petlink/petlink/internal/repository"
)

// CommunityService manages the free board: posts and their comments.
type CommunityService struct {
	board  repository.CommunityRepository
	logger *slog.Logger
}

func NewCommunityService(board repository.CommunityRepository, logger *slog.Logger) *CommunityService {
	return &CommunityService{board: board, logger: logger}
}

// CreatePost stores a new board post for the caller.
func (s *CommunityService) CreatePost(ctx context.Context, claims *auth.Claims, post *model.CommunityPost) (*model.CommunityPost, error) {
	switch {
	case post.Title == "":
		return nil, apperror.ValidationFailed("title", "title is required")
	case post.Content == "":
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	post.UserNum = claims.UserNum
	post.AuthorName = claims.Nickname
	if err := s.board.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// ListPosts returns board posts, newest first.
func (s *CommunityService) ListPosts(ctx context.Context, opts repository.ListOptions) ([]model.CommunityPost, error) {
	return s.board.ListPosts(ctx, opts)
}

// GetPost returns one post with its comments.
func (s *CommunityService) GetPost(ctx context.Context, id int64) (*model.CommunityPost, []model.Comment, error) {
	post, err := s.board.GetPost(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.board.ListComments(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

// DeletePost removes a post (owner or admin). Comments go with it via the
// foreign-key cascade.
func (s *CommunityService) DeletePost(ctx context.Context, claims *auth.Claims, id int64) error {
	post, err := s.board.GetPost(ctx, id)
	if err != nil {
		return err
	}
	if !claims.CanModify(post.UserNum) {
		return apperror.Forbidden("you can only delete your own posts")
	}
	if err := s.board.DeletePost(ctx, id); err != nil {
		return err
	}
	s.logger.Info("community post deleted", slog.Int64("id", id), slog.Int64("by", claims.UserNum))
	return nil
}

// CreateComment attaches a comment to an existing post.
func (s *CommunityService) CreateComment(ctx context.Context, claims *auth.Claims, postID int64, content string) (*model.Comment, error) {
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	// Confirm the post exists so a comment cannot dangle.
	if _, err := s.board.GetPost(ctx, postID); err != nil {
		return nil, err
	}
	comment := &model.Comment{
		PostID:     postID,
		UserNum:    claims.UserNum,
		Content:    content,
		AuthorName: claims.Nickname,
	}
	if err := s.board.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment (owner or admin). The postID guards
// against deleting a comment through another post's URL.
func (s *CommunityService) DeleteComment(ctx context.Context, claims *auth.Claims, postID, commentID int64) error {
	comment, err := s.board.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.PostID != postID {
		return apperror.NotFound("comment", commentID)
	}
	if !claims.CanModify(comment.UserNum) {
		return apperror.Forbidden("you can only delete your own comments")
	}
	return s.board.DeleteComment(ctx, commentID)
}
