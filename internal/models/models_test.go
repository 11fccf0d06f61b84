package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		assert.True(t, ValidCategory(c))
	}
	assert.False(t, ValidCategory("Gossip"))
	assert.False(t, ValidCategory(""))
}

func TestUserHasMuted(t *testing.T) {
	u := &User{MutedCategories: []Category{CategoryBuySell, CategoryEvents}}
	assert.True(t, u.HasMuted(CategoryBuySell))
	assert.False(t, u.HasMuted(CategoryMaintenance))

	none := &User{}
	assert.False(t, none.HasMuted(CategoryBuySell))
}

func TestPollExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	open := &Poll{}
	assert.False(t, open.Expired(now))

	future := now.Add(time.Hour)
	assert.False(t, (&Poll{ExpiresAt: &future}).Expired(now))

	past := now.Add(-time.Hour)
	assert.True(t, (&Poll{ExpiresAt: &past}).Expired(now))
}

func TestHTTPStatusFor(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{CodeUnauthenticated, 401},
		{CodeForbidden, 403},
		{CodeNotFound, 404},
		{CodeInvalidArgument, 400},
		{CodeConflict, 409},
		{CodeDependencyFailure, 500},
		{"SOMETHING_ELSE", 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, httpStatusFor(tt.code), tt.code)
	}
}

func TestContentItemAccessors(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	post := NewPostItem(&Post{ID: 1, UserID: 7, Category: CategoryEvents, IsPinned: true, CreatedAt: created})
	assert.True(t, post.IsPinned())
	assert.Equal(t, created, post.CreatedAt())
	assert.Equal(t, CategoryEvents, post.Category())
	assert.Equal(t, uint(7), post.AuthorID())

	poll := NewPollItem(&Poll{ID: 2, UserID: 8, Category: CategoryOther, CreatedAt: created})
	assert.False(t, poll.IsPinned())
	assert.Equal(t, uint(8), poll.AuthorID())
}
