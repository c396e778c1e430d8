package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/pkg/pg"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB struct {
	*pg.DB
	rawDB *gorm.DB
}

func setupTestDB(t *testing.T) *testDB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&UserEntity{},
		&UserSettingsEntity{},
		&WalletEntity{},
		&WalletAdjustmentEntity{},
		&PersonalExpenseEntity{},
		&TripEntity{},
		&TripMemberEntity{},
		&GroupExpenseEntity{},
		&ExpenseShareEntity{},
		&GroupDebtEntity{},
		&DebtContributionEntity{},
		&PendingDeductionEntity{},
		&GroupDeductionEntity{},
		&ExchangeRateEntity{},
		&BankAccountEntity{},
	)
	require.NoError(t, err)

	return &testDB{
		DB:    pg.NewFromGorm(db),
		rawDB: db,
	}
}
