package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
)

func debt(debtor, creditor int64, amount string) *model.GroupDebt {
	return &model.GroupDebt{
		TripID:         1,
		DebtorUserID:   debtor,
		CreditorUserID: creditor,
		Amount:         decimal.RequireFromString(amount),
		Currency:       "VND",
	}
}

// applyTransfers replays a plan against zero balances so tests can check the
// conservation invariant: the plan must reproduce every net balance exactly.
func applyTransfers(transfers []Transfer) map[int64]decimal.Decimal {
	result := make(map[int64]decimal.Decimal)
	for _, tr := range transfers {
		result[tr.CreditorUserID] = result[tr.CreditorUserID].Add(tr.Amount)
		result[tr.DebtorUserID] = result[tr.DebtorUserID].Sub(tr.Amount)
	}
	return result
}

func TestPlan_EmptyInput(t *testing.T) {
	assert.Empty(t, PlanDebts(nil))
	assert.Empty(t, Plan(map[int64]decimal.Decimal{}))
}

func TestPlan_SinglePair(t *testing.T) {
	transfers := PlanDebts([]*model.GroupDebt{debt(2, 1, "100000")})

	require.Len(t, transfers, 1)
	assert.Equal(t, int64(2), transfers[0].DebtorUserID)
	assert.Equal(t, int64(1), transfers[0].CreditorUserID)
	assert.True(t, transfers[0].Amount.Equal(decimal.RequireFromString("100000")))
}

func TestPlan_EqualSplit(t *testing.T) {
	// A paid 300k split equally three ways: B and C each owe A 100k.
	debts := []*model.GroupDebt{
		debt(2, 1, "100000"),
		debt(3, 1, "100000"),
	}
	transfers := PlanDebts(debts)

	require.Len(t, transfers, 2)
	for _, tr := range transfers {
		assert.Equal(t, int64(1), tr.CreditorUserID)
		assert.True(t, tr.Amount.Equal(decimal.RequireFromString("100000")))
	}
}

func TestPlan_CycleWashesOut(t *testing.T) {
	debts := []*model.GroupDebt{
		debt(1, 2, "50"),
		debt(2, 3, "50"),
		debt(3, 1, "50"),
	}
	assert.Empty(t, PlanDebts(debts))
}

func TestPlan_MinimalityBound(t *testing.T) {
	// One creditor, four debtors: at most N-1 transfers for N non-zero users.
	debts := []*model.GroupDebt{
		debt(2, 1, "10"),
		debt(3, 1, "20"),
		debt(4, 1, "30"),
		debt(5, 1, "40"),
	}
	transfers := PlanDebts(debts)
	assert.LessOrEqual(t, len(transfers), 4)
}

func TestPlan_Conservation(t *testing.T) {
	debts := []*model.GroupDebt{
		debt(1, 2, "37.50"),
		debt(3, 2, "112.25"),
		debt(1, 4, "9.99"),
		debt(4, 3, "55.01"),
		debt(5, 1, "3.33"),
	}
	balances := Net(debts)
	transfers := PlanDebts(debts)

	replayed := applyTransfers(transfers)
	for userID, want := range balances {
		assert.True(t, replayed[userID].Equal(want), "user %d: want %s, got %s", userID, want, replayed[userID])
	}
	assert.LessOrEqual(t, len(transfers), len(balances)-1)
}

func TestPlan_ExactDecimalTermination(t *testing.T) {
	// Fractional amounts must settle to exact zero with no residual row.
	debts := []*model.GroupDebt{
		debt(2, 1, "0.01"),
		debt(1, 2, "0.01"),
	}
	assert.Empty(t, Plan(Net(debts)))
}

func TestNet(t *testing.T) {
	debts := []*model.GroupDebt{
		debt(2, 1, "100"),
		debt(1, 2, "40"),
	}
	balances := Net(debts)

	assert.True(t, balances[1].Equal(decimal.RequireFromString("60")))
	assert.True(t, balances[2].Equal(decimal.RequireFromString("-60")))
}
