package service

import (
	"context"
	"strings"

	"neighborly/internal/authz"
	"neighborly/internal/models"
	"neighborly/internal/repository"
)

const maxCommentTextLen = 2000

// CommentService handles comments on posts.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService creates a new CommentService.
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) *CommentService {
	return &CommentService{commentRepo: commentRepo, postRepo: postRepo}
}

// AddComment attaches a comment to a post in the viewer's building.
func (s *CommentService) AddComment(ctx context.Context, viewer *models.User, postID uint, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(text) > maxCommentTextLen {
		return nil, models.NewValidationError("Text too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckScope(viewer, post.Building); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: viewer.ID,
		Text:   text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}
	return s.commentRepo.GetByID(ctx, comment.ID)
}

// ListComments returns a post's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, viewer *models.User, postID uint) ([]*models.Comment, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckScope(viewer, post.Building); err != nil {
		return nil, err
	}
	return s.commentRepo.ListByPost(ctx, postID)
}
