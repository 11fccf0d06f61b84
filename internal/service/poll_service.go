package service

import (
	"context"
	"strings"
	"time"

	"neighborly/internal/authz"
	"neighborly/internal/models"
	"neighborly/internal/observability"
	"neighborly/internal/repository"
)

const maxPollOptions = 20

// PollService handles poll creation, voting, and moderation.
type PollService struct {
	pollRepo repository.PollRepository
	userRepo repository.UserRepository
	dispatch DispatchFunc
	now      func() time.Time
}

// CreatePollInput carries a poll creation request.
type CreatePollInput struct {
	UserID    uint
	Question  string
	Options   []string
	Category  models.Category
	Block     string
	ExpiresAt *time.Time
}

// NewPollService creates a new PollService. dispatch may be nil when push
// notifications are disabled.
func NewPollService(
	pollRepo repository.PollRepository,
	userRepo repository.UserRepository,
	dispatch DispatchFunc,
) *PollService {
	return &PollService{
		pollRepo: pollRepo,
		userRepo: userRepo,
		dispatch: dispatch,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreatePoll validates and persists a new poll, then fires the notification
// fan-out.
func (s *PollService) CreatePoll(ctx context.Context, in CreatePollInput) (*models.Poll, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, models.NewValidationError("Question is required")
	}
	if in.Block == "" {
		return nil, models.NewValidationError("Block is required")
	}
	if !models.ValidCategory(in.Category) {
		return nil, models.NewValidationError("Invalid category")
	}

	var options []string
	for _, o := range in.Options {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			options = append(options, trimmed)
		}
	}
	if len(options) < 2 {
		return nil, models.NewValidationError("At least 2 non-empty options are required")
	}
	if len(options) > maxPollOptions {
		return nil, models.NewValidationError("Poll cannot have more than 20 options")
	}
	if in.ExpiresAt != nil && in.ExpiresAt.Before(s.now()) {
		return nil, models.NewValidationError("Expiry must be in the future")
	}

	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	poll := &models.Poll{
		UserID:    in.UserID,
		Question:  in.Question,
		Building:  author.Building,
		Block:     in.Block,
		Category:  in.Category,
		ExpiresAt: in.ExpiresAt,
	}
	for i, text := range options {
		poll.Options = append(poll.Options, models.PollOption{Position: i, Text: text})
	}
	if err := s.pollRepo.Create(ctx, poll); err != nil {
		return nil, err
	}

	created, err := s.pollRepo.GetByID(ctx, poll.ID, in.UserID)
	if err != nil {
		return nil, err
	}

	if s.dispatch != nil {
		s.dispatch(models.NewPollItem(created), author)
	}

	return created, nil
}

// GetPoll returns a poll by ID, restricted to the viewer's building.
func (s *PollService) GetPoll(ctx context.Context, viewer *models.User, id uint) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, id, viewer.ID)
	if err != nil {
		return nil, err
	}
	if err := authz.CheckScope(viewer, poll.Building); err != nil {
		return nil, err
	}
	return poll, nil
}

// CastVote records the viewer's vote on the given option index. Re-voting
// moves the vote; after every call the viewer holds exactly one vote on the
// poll.
func (s *PollService) CastVote(ctx context.Context, viewer *models.User, pollID uint, optionIndex int) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, pollID, viewer.ID)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(viewer, authz.ActionVote, authz.Resource{AuthorID: poll.UserID, Building: poll.Building}); err != nil {
		return nil, err
	}
	if optionIndex < 0 || optionIndex >= len(poll.Options) {
		observability.VotesCast.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError("Invalid option index")
	}
	if poll.Expired(s.now()) {
		observability.VotesCast.WithLabelValues("rejected").Inc()
		return nil, models.NewValidationError("Poll has expired")
	}

	if err := s.pollRepo.CastVote(ctx, pollID, viewer.ID, optionIndex); err != nil {
		return nil, err
	}

	if poll.ViewerVote != nil {
		observability.VotesCast.WithLabelValues("moved").Inc()
	} else {
		observability.VotesCast.WithLabelValues("new").Inc()
	}

	return s.pollRepo.GetByID(ctx, pollID, viewer.ID)
}

// DeletePoll removes a poll if the viewer is its author or an admin.
func (s *PollService) DeletePoll(ctx context.Context, viewer *models.User, id uint) error {
	poll, err := s.pollRepo.GetByID(ctx, id, 0)
	if err != nil {
		return err
	}
	if err := authz.Authorize(viewer, authz.ActionDelete, authz.Resource{AuthorID: poll.UserID, Building: poll.Building}); err != nil {
		return err
	}
	return s.pollRepo.Delete(ctx, id)
}

// TogglePin flips the pin state of a poll. Admin only.
func (s *PollService) TogglePin(ctx context.Context, viewer *models.User, id uint) (*models.Poll, error) {
	poll, err := s.pollRepo.GetByID(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	if err := authz.Authorize(viewer, authz.ActionPin, authz.Resource{AuthorID: poll.UserID, Building: poll.Building}); err != nil {
		return nil, err
	}
	if err := s.pollRepo.SetPinned(ctx, id, !poll.IsPinned); err != nil {
		return nil, err
	}
	return s.pollRepo.GetByID(ctx, id, viewer.ID)
}
