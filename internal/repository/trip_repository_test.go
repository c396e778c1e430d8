package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
)

func TestTripRepository_CreateWithOwner(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, db.rawDB.Create(&UserEntity{ID: 1, PlatformID: 100, Name: "An"}).Error)

	t.Run("owner becomes admin member", func(t *testing.T) {
		trip, err := repo.CreateWithOwner(ctx, &model.Trip{
			Code:         "AB12CD",
			Name:         "Taipei",
			BaseCurrency: "TWD",
			OwnerUserID:  1,
		})
		require.NoError(t, err)

		members, err := repo.Members(ctx, trip.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, model.RoleAdmin, members[0].Role)
		assert.Equal(t, "An", members[0].User.Name)
	})

	t.Run("duplicate code is rejected", func(t *testing.T) {
		_, err := repo.CreateWithOwner(ctx, &model.Trip{
			Code:         "AB12CD",
			Name:         "Tainan",
			BaseCurrency: "TWD",
			OwnerUserID:  1,
		})
		assert.ErrorIs(t, err, ErrDuplicateCode)
	})
}

func TestTripRepository_Join(t *testing.T) {
	db := setupTestDB(t)
	repo := NewTripRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, db.rawDB.Create(&UserEntity{ID: 1, PlatformID: 100, Name: "An"}).Error)
	require.NoError(t, db.rawDB.Create(&UserEntity{ID: 2, PlatformID: 200, Name: "Binh"}).Error)

	trip, err := repo.CreateWithOwner(ctx, &model.Trip{
		Code:         "XY99ZZ",
		Name:         "Da Nang",
		BaseCurrency: "VND",
		OwnerUserID:  1,
	})
	require.NoError(t, err)

	t.Run("join by code lookup", func(t *testing.T) {
		found, err := repo.GetByCode(ctx, "xy99zz")
		require.NoError(t, err)
		assert.Equal(t, trip.ID, found.ID)

		err = repo.Join(ctx, found.ID, 2)
		require.NoError(t, err)

		isMember, err := repo.IsMember(ctx, trip.ID, 2)
		require.NoError(t, err)
		assert.True(t, isMember)
	})

	t.Run("joining twice is rejected", func(t *testing.T) {
		err := repo.Join(ctx, trip.ID, 2)
		assert.ErrorIs(t, err, ErrAlreadyMember)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := repo.GetByCode(ctx, "NOPE00")
		assert.ErrorIs(t, err, ErrTripNotFound)
	})

	t.Run("trips listed for member", func(t *testing.T) {
		trips, err := repo.ListByUser(ctx, 2)
		require.NoError(t, err)
		require.Len(t, trips, 1)
		assert.Equal(t, "Da Nang", trips[0].Name)
	})
}
