// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"strings"

	"neighborly/internal/authz"
	"neighborly/internal/cache"
	"neighborly/internal/models"
	"neighborly/internal/repository"
)

// DispatchFunc triggers an asynchronous creation-notice fan-out. It must
// return immediately; the caller never observes dispatch errors.
type DispatchFunc func(content models.ContentItem, author *models.User)

const maxPostTextLen = 10000

// PostService handles post creation, retrieval, moderation, and reporting.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	dispatch DispatchFunc
}

// CreatePostInput carries a post creation request.
type CreatePostInput struct {
	UserID   uint
	Text     string
	Category models.Category
	Block    string
	Images   []string
}

// NewPostService creates a new PostService. dispatch may be nil when push
// notifications are disabled.
func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	dispatch DispatchFunc,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		dispatch: dispatch,
	}
}

// CreatePost validates and persists a new post, then fires the notification
// fan-out. The fan-out never delays or fails the creation response.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(in.Text) > maxPostTextLen {
		return nil, models.NewValidationError("Text too long (max 10000 characters)")
	}
	if in.Block == "" {
		return nil, models.NewValidationError("Block is required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, models.NewValidationError("Invalid category")
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	// Building captured from the author at creation; relocating later must
	// not rescope historical content.
	post := &models.Post{
		UserID:   in.UserID,
		Building: author.Building,
		Block:    in.Block,
		Category: in.Category,
		Text:     in.Text,
		Images:   in.Images,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	if s.dispatch != nil {
		s.dispatch(models.NewPostItem(created), author)
	}

	return created, nil
}

// GetPost returns a post by ID, restricted to the viewer's building.
func (s *PostService) GetPost(ctx context.Context, viewer *models.User, id uint) (*models.Post, error) {
	var post models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.ContentTTL, func() error {
		fetched, err := s.postRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		post = *fetched
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := authz.CheckScope(viewer, post.Building); err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post if the viewer is its author or an admin.
func (s *PostService) DeletePost(ctx context.Context, viewer *models.User, id uint) error {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Authorize(viewer, authz.ActionDelete, authz.Resource{AuthorID: post.UserID, Building: post.Building}); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, id)
}

// TogglePin flips the pin state of a post. Admin only.
func (s *PostService) TogglePin(ctx context.Context, viewer *models.User, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(viewer, authz.ActionPin, authz.Resource{AuthorID: post.UserID, Building: post.Building}); err != nil {
		return nil, err
	}
	if err := s.postRepo.SetPinned(ctx, id, !post.IsPinned); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, id)
}

// ReportPost appends an abuse report and returns the updated report count.
// Duplicate reports are rejected with a Conflict, not silently ignored.
func (s *PostService) ReportPost(ctx context.Context, viewer *models.User, postID uint, reason string) (int64, error) {
	if strings.TrimSpace(reason) == "" {
		return 0, models.NewValidationError("Reason is required")
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return 0, err
	}
	if err := authz.Authorize(viewer, authz.ActionReport, authz.Resource{AuthorID: post.UserID, Building: post.Building}); err != nil {
		return 0, err
	}
	return s.postRepo.AddReport(ctx, postID, viewer.ID, reason)
}
