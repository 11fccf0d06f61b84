package repository

import (
	"context"
	"errors"
	"time"

	"neighborly/internal/cache"
	"neighborly/internal/models"

	"gorm.io/gorm"
)

// PostFilter narrows post listings. Building is required; category and block
// are optional.
type PostFilter struct {
	Building string
	Category models.Category
	Block    string
}

// PostRepository defines the interface for post data operations.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter PostFilter) ([]*models.Post, error)
	SetPinned(ctx context.Context, id uint, pinned bool) error
	Delete(ctx context.Context, id uint) error
	// AddReport appends a report unless one from the user already exists.
	// Returns the updated report count, or a Conflict error on a duplicate.
	AddReport(ctx context.Context, postID, userID uint, reason string) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// withCommentsCount adds the comment-count subquery so listings need a single
// round trip.
func (r *postRepository) withCommentsCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) as comments_count")
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewDependencyError(err)
	}
	cache.InvalidateFeed(ctx, post.Building)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.withCommentsCount(r.db.WithContext(ctx)).
		Preload("User").
		Preload("Reports").
		First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewDependencyError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]*models.Post, error) {
	var posts []*models.Post
	q := r.withCommentsCount(r.db.WithContext(ctx)).
		Preload("User").
		Where("building = ?", filter.Building)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Block != "" {
		q = q.Where("block = ?", filter.Block)
	}
	err := q.Order("is_pinned DESC, created_at DESC").Find(&posts).Error
	if err != nil {
		return nil, models.NewDependencyError(err)
	}
	return posts, nil
}

func (r *postRepository) SetPinned(ctx context.Context, id uint, pinned bool) error {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Update("is_pinned", pinned)
	if res.Error != nil {
		return models.NewDependencyError(res.Error)
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	cache.InvalidateFeed(ctx, post.Building)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	post, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	// Comments and reports go with the post; deletion is terminal.
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return models.NewDependencyError(err)
	}
	cache.Invalidate(ctx, cache.PostKey(id))
	cache.InvalidateFeed(ctx, post.Building)
	return nil
}

func (r *postRepository) AddReport(ctx context.Context, postID, userID uint, reason string) (int64, error) {
	// Conditional insert keeps the (post, user) uniqueness race-free; a
	// duplicate simply affects zero rows.
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO reports (post_id, user_id, reason, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID, reason, time.Now().UTC(),
	)
	if res.Error != nil {
		return 0, models.NewDependencyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, models.NewConflictError("You have already reported this post")
	}

	cache.Invalidate(ctx, cache.PostKey(postID))

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Report{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, models.NewDependencyError(err)
	}
	return count, nil
}
