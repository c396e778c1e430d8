package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
)

func TestDebtRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDebtRepository(db.DB)
	ctx := context.Background()

	t.Run("insert then accumulate", func(t *testing.T) {
		err := repo.Update(ctx, 1, 10, 20, decimal.NewFromInt(100000), "VND")
		require.NoError(t, err)
		err = repo.Update(ctx, 1, 10, 20, decimal.NewFromInt(50000), "VND")
		require.NoError(t, err)

		debts, err := repo.ListByTripAndCurrency(ctx, 1, "VND")
		require.NoError(t, err)
		require.Len(t, debts, 1)
		assert.True(t, debts[0].Amount.Equal(decimal.NewFromInt(150000)))
	})

	t.Run("delta to exactly zero deletes the row", func(t *testing.T) {
		err := repo.Update(ctx, 1, 10, 20, decimal.NewFromInt(-150000), "VND")
		require.NoError(t, err)

		debts, err := repo.ListByTripAndCurrency(ctx, 1, "VND")
		require.NoError(t, err)
		assert.Empty(t, debts)

		var count int64
		require.NoError(t, db.rawDB.Model(&GroupDebtEntity{}).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("zero delta with no row inserts nothing", func(t *testing.T) {
		err := repo.Update(ctx, 2, 10, 20, decimal.Zero, "USD")
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.rawDB.Model(&GroupDebtEntity{}).Where("trip_id = ?", 2).Count(&count).Error)
		assert.Equal(t, int64(0), count)
	})

	t.Run("currencies are tracked separately", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, 3, 10, 20, decimal.NewFromInt(500), "TWD"))
		require.NoError(t, repo.Update(ctx, 3, 10, 20, decimal.NewFromInt(9), "USD"))

		currencies, err := repo.Currencies(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []string{"TWD", "USD"}, currencies)
	})
}

func TestDebtRepository_ListByTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDebtRepository(db.DB)
	ctx := context.Background()

	for _, u := range []*UserEntity{
		{ID: 10, PlatformID: 100, Name: "An"},
		{ID: 20, PlatformID: 200, Name: "Binh"},
		{ID: 30, PlatformID: 300, Name: "Chi"},
	} {
		require.NoError(t, db.rawDB.Create(u).Error)
	}

	require.NoError(t, repo.Update(ctx, 1, 10, 20, decimal.NewFromInt(30000), "VND"))
	require.NoError(t, repo.Update(ctx, 1, 30, 20, decimal.NewFromInt(90000), "VND"))

	debts, err := repo.ListByTrip(ctx, 1)
	require.NoError(t, err)
	require.Len(t, debts, 2)

	// largest first, with both parties resolved
	assert.True(t, debts[0].Debt.Amount.Equal(decimal.NewFromInt(90000)))
	assert.Equal(t, "Chi", debts[0].Debtor.Name)
	assert.Equal(t, "Binh", debts[0].Creditor.Name)
	assert.Equal(t, "An", debts[1].Debtor.Name)
}

func TestDebtRepository_Contributions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDebtRepository(db.DB)
	ctx := context.Background()

	c := &model.DebtContribution{
		ExpenseID:      7,
		TripID:         1,
		DebtorUserID:   10,
		CreditorUserID: 20,
		Amount:         decimal.NewFromInt(100000),
		Currency:       "VND",
	}
	require.NoError(t, repo.AddContribution(ctx, c))

	got, err := repo.ContributionsByExpense(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(100000)))

	require.NoError(t, repo.DeleteContributionsByExpense(ctx, 7))
	got, err = repo.ContributionsByExpense(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, got)
}
