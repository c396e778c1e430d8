// Package settlement reduces a web of pairwise debts in one currency to a
// minimal set of settling transfers. All arithmetic is exact decimal; no
// rounding happens here, so the plan always reproduces the input balances.
package settlement

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

// Transfer is one settling payment: debtor pays creditor the amount.
type Transfer struct {
	DebtorUserID   int64           `json:"debtor_user_id"`
	CreditorUserID int64           `json:"creditor_user_id"`
	Amount         decimal.Decimal `json:"amount"`
}

// Net collapses pairwise debt rows into one signed balance per user.
// Positive means the user is owed money, negative means the user owes.
func Net(debts []*model.GroupDebt) map[int64]decimal.Decimal {
	balances := make(map[int64]decimal.Decimal)
	for _, d := range debts {
		balances[d.CreditorUserID] = balances[d.CreditorUserID].Add(d.Amount)
		balances[d.DebtorUserID] = balances[d.DebtorUserID].Sub(d.Amount)
	}
	return balances
}

type party struct {
	userID int64
	amount decimal.Decimal
}

// Plan matches the largest remaining creditor with the largest remaining
// debtor until one side empties. The result has at most N-1 transfers for N
// users with non-zero balance, and summing the transfers reproduces every
// balance exactly.
func Plan(balances map[int64]decimal.Decimal) []Transfer {
	var creditors, debtors []party
	for userID, balance := range balances {
		switch {
		case balance.IsPositive():
			creditors = append(creditors, party{userID, balance})
		case balance.IsNegative():
			debtors = append(debtors, party{userID, balance.Neg()})
		}
	}

	sortParties(creditors)
	sortParties(debtors)

	var transfers []Transfer
	for len(creditors) > 0 && len(debtors) > 0 {
		creditor := &creditors[0]
		debtor := &debtors[0]

		amount := decimal.Min(creditor.amount, debtor.amount)
		transfers = append(transfers, Transfer{
			DebtorUserID:   debtor.userID,
			CreditorUserID: creditor.userID,
			Amount:         amount,
		})

		creditor.amount = creditor.amount.Sub(amount)
		debtor.amount = debtor.amount.Sub(amount)

		if creditor.amount.IsZero() {
			creditors = creditors[1:]
		}
		if debtor.amount.IsZero() {
			debtors = debtors[1:]
		}

		// The shrunk side may no longer hold the largest remainder.
		sortParties(creditors)
		sortParties(debtors)
	}

	return transfers
}

// PlanDebts is Net followed by Plan for one trip and currency.
func PlanDebts(debts []*model.GroupDebt) []Transfer {
	return Plan(Net(debts))
}

func sortParties(parties []party) {
	sort.SliceStable(parties, func(i, j int) bool {
		if !parties[i].amount.Equal(parties[j].amount) {
			return parties[i].amount.GreaterThan(parties[j].amount)
		}
		return parties[i].userID < parties[j].userID
	})
}
