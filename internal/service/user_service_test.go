package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neighborly/internal/models"
)

func TestUpdateMutedCategories(t *testing.T) {
	svc := NewUserService(noopUserRepo(), nil)
	ctx := context.Background()

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := svc.UpdateMutedCategories(ctx, 1, []models.Category{"Gossip"})
		assertCode(t, err, models.CodeInvalidArgument)
	})

	t.Run("dedupes", func(t *testing.T) {
		user, err := svc.UpdateMutedCategories(ctx, 1, []models.Category{
			models.CategoryEvents, models.CategoryEvents, models.CategoryBuySell,
		})
		require.NoError(t, err)
		assert.Equal(t, []models.Category{models.CategoryEvents, models.CategoryBuySell}, user.MutedCategories)
	})

	t.Run("empty set clears muting", func(t *testing.T) {
		user, err := svc.UpdateMutedCategories(ctx, 1, nil)
		require.NoError(t, err)
		assert.Empty(t, user.MutedCategories)
	})
}

func TestUpdatePushToken(t *testing.T) {
	valid := func(token string) bool { return token == "good" }
	svc := NewUserService(noopUserRepo(), valid)
	ctx := context.Background()

	_, err := svc.UpdatePushToken(ctx, 1, "bad")
	assertCode(t, err, models.CodeInvalidArgument)

	_, err = svc.UpdatePushToken(ctx, 1, "good")
	assert.NoError(t, err)

	// Empty token unregisters without validation.
	_, err = svc.UpdatePushToken(ctx, 1, "")
	assert.NoError(t, err)
}

func TestUpdateName(t *testing.T) {
	svc := NewUserService(noopUserRepo(), nil)
	ctx := context.Background()

	_, err := svc.UpdateName(ctx, 1, "   ")
	assertCode(t, err, models.CodeInvalidArgument)

	user, err := svc.UpdateName(ctx, 1, "  Priya Sharma ")
	require.NoError(t, err)
	assert.Equal(t, "Priya Sharma", user.Name)
}
