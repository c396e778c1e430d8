package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
)

func TestUserRepository_Upsert(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("creates on first sight", func(t *testing.T) {
		u, err := repo.Upsert(ctx, 12345, "An")
		require.NoError(t, err)
		assert.Equal(t, "An", u.Name)
		assert.NotZero(t, u.ID)
	})

	t.Run("updates name on repeat, keeps id", func(t *testing.T) {
		first, err := repo.GetByPlatformID(ctx, 12345)
		require.NoError(t, err)

		u, err := repo.Upsert(ctx, 12345, "An Nguyen")
		require.NoError(t, err)
		assert.Equal(t, first.ID, u.ID)
		assert.Equal(t, "An Nguyen", u.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := repo.GetByPlatformID(ctx, 999)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestUserRepository_Settings(t *testing.T) {
	db := setupTestDB(t).DB
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, 555, "Binh")
	require.NoError(t, err)

	t.Run("defaults when never saved", func(t *testing.T) {
		s, err := repo.GetSettings(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "VND", s.PreferredCurrency)
	})

	t.Run("round trip", func(t *testing.T) {
		err := repo.SaveSettings(ctx, &model.UserSettings{
			UserID:            u.ID,
			PreferredCurrency: "TWD",
			AllowNegative:     true,
		})
		require.NoError(t, err)

		s, err := repo.GetSettings(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "TWD", s.PreferredCurrency)
	})
}
