package repository

import (
	"context"
	"errors"
	"time"

	"neighborly/internal/cache"
	"neighborly/internal/models"

	"gorm.io/gorm"
)

// PollRepository defines the interface for poll data operations.
type PollRepository interface {
	Create(ctx context.Context, poll *models.Poll) error
	// GetByID loads the poll with its options and derived tallies. viewerID
	// fills ViewerVote when non-zero.
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Poll, error)
	List(ctx context.Context, filter PostFilter, viewerID uint) ([]*models.Poll, error)
	// CastVote atomically records the user's vote, replacing any previous
	// vote on the same poll.
	CastVote(ctx context.Context, pollID, userID uint, optionIndex int) error
	// ViewerVotes returns the viewer's chosen option index per poll.
	ViewerVotes(ctx context.Context, pollIDs []uint, viewerID uint) (map[uint]int, error)
	SetPinned(ctx context.Context, id uint, pinned bool) error
	Delete(ctx context.Context, id uint) error
}

type pollRepository struct {
	db *gorm.DB
}

// NewPollRepository creates a new poll repository.
func NewPollRepository(db *gorm.DB) PollRepository {
	return &pollRepository{db: db}
}

func (r *pollRepository) Create(ctx context.Context, poll *models.Poll) error {
	if err := r.db.WithContext(ctx).Create(poll).Error; err != nil {
		return models.NewDependencyError(err)
	}
	cache.InvalidateFeed(ctx, poll.Building)
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Poll, error) {
	var poll models.Poll
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("poll_options.position ASC")
		}).
		First(&poll, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Poll", id)
		}
		return nil, models.NewDependencyError(err)
	}
	if err := r.loadTallies(ctx, []*models.Poll{&poll}, viewerID); err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) List(ctx context.Context, filter PostFilter, viewerID uint) ([]*models.Poll, error) {
	var polls []*models.Poll
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("poll_options.position ASC")
		}).
		Where("building = ?", filter.Building)
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.Block != "" {
		q = q.Where("block = ?", filter.Block)
	}
	if err := q.Order("is_pinned DESC, created_at DESC").Find(&polls).Error; err != nil {
		return nil, models.NewDependencyError(err)
	}
	if err := r.loadTallies(ctx, polls, viewerID); err != nil {
		return nil, err
	}
	return polls, nil
}

// loadTallies derives per-option vote counts and the viewer's own vote from
// poll_votes in two grouped queries. Tallies are never stored.
func (r *pollRepository) loadTallies(ctx context.Context, polls []*models.Poll, viewerID uint) error {
	if len(polls) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(polls))
	byID := make(map[uint]*models.Poll, len(polls))
	for _, p := range polls {
		ids = append(ids, p.ID)
		byID[p.ID] = p
	}

	type tallyRow struct {
		PollID      uint
		OptionIndex int
		Total       int64
	}
	var rows []tallyRow
	err := r.db.WithContext(ctx).
		Model(&models.PollVote{}).
		Select("poll_id, option_index, COUNT(*) as total").
		Where("poll_id IN ?", ids).
		Group("poll_id, option_index").
		Scan(&rows).Error
	if err != nil {
		return models.NewDependencyError(err)
	}
	for _, row := range rows {
		poll := byID[row.PollID]
		if poll == nil {
			continue
		}
		for i := range poll.Options {
			if poll.Options[i].Position == row.OptionIndex {
				poll.Options[i].VoteCount = row.Total
			}
		}
	}

	if viewerID == 0 {
		return nil
	}
	var viewerVotes []models.PollVote
	err = r.db.WithContext(ctx).
		Where("poll_id IN ? AND user_id = ?", ids, viewerID).
		Find(&viewerVotes).Error
	if err != nil {
		return models.NewDependencyError(err)
	}
	for _, v := range viewerVotes {
		if poll := byID[v.PollID]; poll != nil {
			idx := v.OptionIndex
			poll.ViewerVote = &idx
		}
	}
	return nil
}

func (r *pollRepository) CastVote(ctx context.Context, pollID, userID uint, optionIndex int) error {
	// Single atomic upsert: re-voting moves the row, so the user can never
	// hold two votes and concurrent voters can never lose each other's write.
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO poll_votes (poll_id, user_id, option_index, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (poll_id, user_id) DO UPDATE
		 SET option_index = excluded.option_index, updated_at = excluded.updated_at`,
		pollID, userID, optionIndex, now, now,
	)
	if res.Error != nil {
		return models.NewDependencyError(res.Error)
	}
	cache.Invalidate(ctx, cache.PollKey(pollID))
	return nil
}

func (r *pollRepository) ViewerVotes(ctx context.Context, pollIDs []uint, viewerID uint) (map[uint]int, error) {
	votes := make(map[uint]int, len(pollIDs))
	if len(pollIDs) == 0 || viewerID == 0 {
		return votes, nil
	}
	var rows []models.PollVote
	err := r.db.WithContext(ctx).
		Where("poll_id IN ? AND user_id = ?", pollIDs, viewerID).
		Find(&rows).Error
	if err != nil {
		return nil, models.NewDependencyError(err)
	}
	for _, v := range rows {
		votes[v.PollID] = v.OptionIndex
	}
	return votes, nil
}

func (r *pollRepository) SetPinned(ctx context.Context, id uint, pinned bool) error {
	poll, err := r.GetByID(ctx, id, 0)
	if err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Model(&models.Poll{}).Where("id = ?", id).Update("is_pinned", pinned)
	if res.Error != nil {
		return models.NewDependencyError(res.Error)
	}
	cache.Invalidate(ctx, cache.PollKey(id))
	cache.InvalidateFeed(ctx, poll.Building)
	return nil
}

func (r *pollRepository) Delete(ctx context.Context, id uint) error {
	poll, err := r.GetByID(ctx, id, 0)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollVote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Poll{}, id).Error
	})
	if err != nil {
		return models.NewDependencyError(err)
	}
	cache.Invalidate(ctx, cache.PollKey(id))
	cache.InvalidateFeed(ctx, poll.Building)
	return nil
}
