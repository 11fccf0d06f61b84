package service

import (
	"context"

	"neighborly/internal/models"
	"neighborly/internal/repository"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn    func(context.Context, *models.Post) error
	getByIDFn   func(context.Context, uint) (*models.Post, error)
	listFn      func(context.Context, repository.PostFilter) ([]*models.Post, error)
	setPinnedFn func(context.Context, uint, bool) error
	deleteFn    func(context.Context, uint) error
	addReportFn func(context.Context, uint, uint, string) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, filter repository.PostFilter) ([]*models.Post, error) {
	return s.listFn(ctx, filter)
}
func (s *postRepoStub) SetPinned(ctx context.Context, id uint, pinned bool) error {
	return s.setPinnedFn(ctx, id, pinned)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) AddReport(ctx context.Context, postID, userID uint, reason string) (int64, error) {
	return s.addReportFn(ctx, postID, userID, reason)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listFn: func(_ context.Context, _ repository.PostFilter) ([]*models.Post, error) {
			return nil, nil
		},
		setPinnedFn: func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
		addReportFn: func(_ context.Context, _, _ uint, _ string) (int64, error) { return 1, nil },
	}
}

// pollRepoStub is a stub for repository.PollRepository.
type pollRepoStub struct {
	createFn      func(context.Context, *models.Poll) error
	getByIDFn     func(context.Context, uint, uint) (*models.Poll, error)
	listFn        func(context.Context, repository.PostFilter, uint) ([]*models.Poll, error)
	castVoteFn    func(context.Context, uint, uint, int) error
	viewerVotesFn func(context.Context, []uint, uint) (map[uint]int, error)
	setPinnedFn   func(context.Context, uint, bool) error
	deleteFn      func(context.Context, uint) error
}

func (s *pollRepoStub) Create(ctx context.Context, poll *models.Poll) error {
	return s.createFn(ctx, poll)
}
func (s *pollRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Poll, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *pollRepoStub) List(ctx context.Context, filter repository.PostFilter, viewerID uint) ([]*models.Poll, error) {
	return s.listFn(ctx, filter, viewerID)
}
func (s *pollRepoStub) CastVote(ctx context.Context, pollID, userID uint, optionIndex int) error {
	return s.castVoteFn(ctx, pollID, userID, optionIndex)
}
func (s *pollRepoStub) ViewerVotes(ctx context.Context, pollIDs []uint, viewerID uint) (map[uint]int, error) {
	return s.viewerVotesFn(ctx, pollIDs, viewerID)
}
func (s *pollRepoStub) SetPinned(ctx context.Context, id uint, pinned bool) error {
	return s.setPinnedFn(ctx, id, pinned)
}
func (s *pollRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPollRepo() *pollRepoStub {
	return &pollRepoStub{
		createFn:  func(_ context.Context, _ *models.Poll) error { return nil },
		getByIDFn: func(_ context.Context, _, _ uint) (*models.Poll, error) { return &models.Poll{}, nil },
		listFn: func(_ context.Context, _ repository.PostFilter, _ uint) ([]*models.Poll, error) {
			return nil, nil
		},
		castVoteFn: func(_ context.Context, _, _ uint, _ int) error { return nil },
		viewerVotesFn: func(_ context.Context, _ []uint, _ uint) (map[uint]int, error) {
			return map[uint]int{}, nil
		},
		setPinnedFn: func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn                func(context.Context, *models.User) error
	getByIDFn               func(context.Context, uint) (*models.User, error)
	getByEmailFn            func(context.Context, string) (*models.User, error)
	updateNameFn            func(context.Context, uint, string) (*models.User, error)
	updateMutedCategoriesFn func(context.Context, uint, []models.Category) (*models.User, error)
	updatePushTokenFn       func(context.Context, uint, string) (*models.User, error)
	listRecipientsFn        func(context.Context, string, uint) ([]*models.User, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) UpdateName(ctx context.Context, id uint, name string) (*models.User, error) {
	return s.updateNameFn(ctx, id, name)
}
func (s *userRepoStub) UpdateMutedCategories(ctx context.Context, id uint, muted []models.Category) (*models.User, error) {
	return s.updateMutedCategoriesFn(ctx, id, muted)
}
func (s *userRepoStub) UpdatePushToken(ctx context.Context, id uint, token string) (*models.User, error) {
	return s.updatePushTokenFn(ctx, id, token)
}
func (s *userRepoStub) ListRecipients(ctx context.Context, building string, excludeUserID uint) ([]*models.User, error) {
	return s.listRecipientsFn(ctx, building, excludeUserID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Building: "Oakwood Tower", Block: "A"}, nil
		},
		getByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			return nil, models.NewNotFoundError("User", email)
		},
		updateNameFn: func(_ context.Context, id uint, name string) (*models.User, error) {
			return &models.User{ID: id, Name: name}, nil
		},
		updateMutedCategoriesFn: func(_ context.Context, id uint, muted []models.Category) (*models.User, error) {
			return &models.User{ID: id, MutedCategories: muted}, nil
		},
		updatePushTokenFn: func(_ context.Context, id uint, token string) (*models.User, error) {
			return &models.User{ID: id, PushToken: token}, nil
		},
		listRecipientsFn: func(_ context.Context, _ string, _ uint) ([]*models.User, error) {
			return nil, nil
		},
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
	}
}
