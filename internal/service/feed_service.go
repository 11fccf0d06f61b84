package service

import (
	"context"
	"sort"

	"neighborly/internal/cache"
	"neighborly/internal/models"
	"neighborly/internal/observability"
	"neighborly/internal/repository"
)

// Feed kinds selectable by callers.
const (
	FeedKindAll   = "all"
	FeedKindPosts = "posts"
	FeedKindPolls = "polls"
)

// FeedFilters narrows a feed request. Zero values mean "no filter".
type FeedFilters struct {
	Category models.Category
	Block    string
	Kind     string
}

// FeedService merges posts and polls into one ranked, pin-aware feed scoped
// to the viewer's building.
type FeedService struct {
	postRepo repository.PostRepository
	pollRepo repository.PollRepository
}

// NewFeedService creates a new FeedService.
func NewFeedService(postRepo repository.PostRepository, pollRepo repository.PollRepository) *FeedService {
	return &FeedService{postRepo: postRepo, pollRepo: pollRepo}
}

// Compose returns the viewer's feed: matching posts and polls merged, pinned
// items first, then reverse-chronological. Muted categories are hidden from
// the unfiltered view only; an explicit category filter overrides muting.
// Every call recomputes from current store state.
func (s *FeedService) Compose(ctx context.Context, viewer *models.User, filters FeedFilters) ([]models.ContentItem, error) {
	kind := filters.Kind
	if kind == "" {
		kind = FeedKindAll
	}
	switch kind {
	case FeedKindAll, FeedKindPosts, FeedKindPolls:
	default:
		return nil, models.NewValidationError("Invalid feed kind")
	}
	if filters.Category != "" && !models.ValidCategory(filters.Category) {
		return nil, models.NewValidationError("Invalid category")
	}
	observability.FeedCompositions.WithLabelValues(kind).Inc()

	// The merged page is cached without viewer personalization; mute
	// filtering and viewer votes are layered on per request below.
	var items []models.ContentItem
	key := cache.FeedKey(ctx, viewer.Building, string(filters.Category), filters.Block, kind)
	err := cache.Aside(ctx, key, &items, cache.FeedTTL, func() error {
		fetched, err := s.fetchMerged(ctx, viewer.Building, filters, kind)
		if err != nil {
			return err
		}
		items = fetched
		return nil
	})
	if err != nil {
		return nil, err
	}

	items = applyFilters(items, muteFilter(viewer, filters.Category))

	if err := s.fillViewerVotes(ctx, items, viewer.ID); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *FeedService) fetchMerged(ctx context.Context, building string, filters FeedFilters, kind string) ([]models.ContentItem, error) {
	repoFilter := repository.PostFilter{
		Building: building,
		Category: filters.Category,
		Block:    filters.Block,
	}

	var items []models.ContentItem

	if kind != FeedKindPolls {
		posts, err := s.postRepo.List(ctx, repoFilter)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			items = append(items, models.NewPostItem(p))
		}
	}

	if kind != FeedKindPosts {
		polls, err := s.pollRepo.List(ctx, repoFilter, 0)
		if err != nil {
			return nil, err
		}
		for _, p := range polls {
			items = append(items, models.NewPollItem(p))
		}
	}

	// Pinned items always precede unpinned ones; within the same pin state,
	// strict reverse-chronological order.
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsPinned() != b.IsPinned() {
			return a.IsPinned()
		}
		return a.CreatedAt().After(b.CreatedAt())
	})

	return items, nil
}

// feedPredicate keeps an item when it returns true.
type feedPredicate func(models.ContentItem) bool

// applyFilters runs the predicates over the items in order.
func applyFilters(items []models.ContentItem, preds ...feedPredicate) []models.ContentItem {
	out := items[:0:0]
	for _, item := range items {
		keep := true
		for _, pred := range preds {
			if !pred(item) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, item)
		}
	}
	return out
}

// muteFilter hides the viewer's muted categories, suppressed whenever an
// explicit category filter is present. A block-only filter does not suppress
// muting.
func muteFilter(viewer *models.User, explicitCategory models.Category) feedPredicate {
	return func(item models.ContentItem) bool {
		if explicitCategory != "" {
			return true
		}
		return !viewer.HasMuted(item.Category())
	}
}

func (s *FeedService) fillViewerVotes(ctx context.Context, items []models.ContentItem, viewerID uint) error {
	var pollIDs []uint
	for _, item := range items {
		if item.Kind == models.KindPoll {
			pollIDs = append(pollIDs, item.Poll.ID)
		}
	}
	if len(pollIDs) == 0 {
		return nil
	}

	votes, err := s.pollRepo.ViewerVotes(ctx, pollIDs, viewerID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Kind != models.KindPoll {
			continue
		}
		if idx, ok := votes[item.Poll.ID]; ok {
			v := idx
			item.Poll.ViewerVote = &v
		}
	}
	return nil
}
