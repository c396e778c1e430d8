package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
)

type MockGroupExpenseRepository struct {
	mock.Mock
}

func (m *MockGroupExpenseRepository) Create(ctx context.Context, e *model.GroupExpense, shares []*model.ExpenseShare) (*model.GroupExpense, error) {
	args := m.Called(ctx, e, shares)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupExpense), args.Error(1)
}

func (m *MockGroupExpenseRepository) GetByID(ctx context.Context, id int64) (*model.GroupExpense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupExpense), args.Error(1)
}

func (m *MockGroupExpenseRepository) GetLatestByTrip(ctx context.Context, tripID int64) (*model.GroupExpense, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupExpense), args.Error(1)
}

func (m *MockGroupExpenseRepository) ListByTrip(ctx context.Context, tripID int64, limit int) ([]*model.GroupExpense, error) {
	args := m.Called(ctx, tripID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.GroupExpense), args.Error(1)
}

func (m *MockGroupExpenseRepository) Shares(ctx context.Context, expenseID int64) ([]*model.ExpenseShare, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.ExpenseShare), args.Error(1)
}

func (m *MockGroupExpenseRepository) Delete(ctx context.Context, expenseID int64) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

func (m *MockGroupExpenseRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockDebtRepository struct {
	mock.Mock
}

func (m *MockDebtRepository) Update(ctx context.Context, tripID, debtorID, creditorID int64, delta decimal.Decimal, currency string) error {
	args := m.Called(ctx, tripID, debtorID, creditorID, delta, currency)
	return args.Error(0)
}

func (m *MockDebtRepository) ListByTrip(ctx context.Context, tripID int64) ([]*model.DebtWithUsers, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DebtWithUsers), args.Error(1)
}

func (m *MockDebtRepository) ListByTripAndCurrency(ctx context.Context, tripID int64, currency string) ([]*model.GroupDebt, error) {
	args := m.Called(ctx, tripID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.GroupDebt), args.Error(1)
}

func (m *MockDebtRepository) Currencies(ctx context.Context, tripID int64) ([]string, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDebtRepository) AddContribution(ctx context.Context, c *model.DebtContribution) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockDebtRepository) ContributionsByExpense(ctx context.Context, expenseID int64) ([]*model.DebtContribution, error) {
	args := m.Called(ctx, expenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DebtContribution), args.Error(1)
}

func (m *MockDebtRepository) DeleteContributionsByExpense(ctx context.Context, expenseID int64) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

type MockDeductionProposer struct {
	mock.Mock
}

func (m *MockDeductionProposer) ProposePending(ctx context.Context, userID, tripID, expenseID int64, share decimal.Decimal, currency string) error {
	args := m.Called(ctx, userID, tripID, expenseID, share, currency)
	return args.Error(0)
}

func (m *MockDeductionProposer) DeletePendingByExpense(ctx context.Context, expenseID int64) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

func memberTripRepo(ctx context.Context, trip *model.Trip, members ...int64) *MockTripRepository {
	tripRepo := new(MockTripRepository)
	tripRepo.On("GetByID", ctx, trip.ID).Return(trip, nil)
	for _, id := range members {
		tripRepo.On("IsMember", ctx, trip.ID, id).Return(true, nil)
	}
	return tripRepo
}

func TestGroupExpenseService_Add(t *testing.T) {
	ctx := context.Background()
	trip := &model.Trip{ID: 3, BaseCurrency: "TWD"}

	t.Run("splits equally and records debts toward the payer", func(t *testing.T) {
		expenseRepo := new(MockGroupExpenseRepository)
		debtRepo := new(MockDebtRepository)
		proposer := new(MockDeductionProposer)
		tripRepo := memberTripRepo(ctx, trip, 1, 2, 4)

		share := decimal.RequireFromString("333.33")
		ratio := decimal.RequireFromString("0.333333333")

		expenseRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		expenseRepo.On("Create", ctx, mock.MatchedBy(func(e *model.GroupExpense) bool {
			return e.RateToBase.Equal(decimal.NewFromInt(1)) && e.AmountBase.Equal(decimal.NewFromInt(1000))
		}), mock.MatchedBy(func(shares []*model.ExpenseShare) bool {
			if len(shares) != 3 {
				return false
			}
			for _, s := range shares {
				if !s.ShareRatio.Equal(ratio) {
					return false
				}
			}
			return true
		})).Return(&model.GroupExpense{ID: 7, TripID: 3, PayerUserID: 1}, nil)

		// non-payers owe the payer one share each
		debtRepo.On("Update", ctx, int64(3), int64(2), int64(1), share, "TWD").Return(nil)
		debtRepo.On("Update", ctx, int64(3), int64(4), int64(1), share, "TWD").Return(nil)
		debtRepo.On("AddContribution", ctx, mock.MatchedBy(func(c *model.DebtContribution) bool {
			return c.ExpenseID == 7 && c.Amount.Equal(share) && c.CreditorUserID == 1
		})).Return(nil).Twice()

		// every participant gets a pending deduction, payer included
		for _, id := range []int64{1, 2, 4} {
			proposer.On("ProposePending", ctx, id, int64(3), int64(7), share, "TWD").Return(nil)
		}

		svc := NewGroupExpenseService(expenseRepo, debtRepo, NewTripService(tripRepo), new(MockConverter), proposer)
		created, err := svc.Add(ctx, model.AddGroupExpenseRequest{
			TripID:       3,
			PayerUserID:  1,
			Amount:       decimal.NewFromInt(1000),
			Currency:     "TWD",
			Participants: []int64{1, 2, 4},
			Note:         "dinner",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), created.ID)
		debtRepo.AssertExpectations(t)
		proposer.AssertExpectations(t)
	})

	t.Run("converts to the trip base currency for reporting", func(t *testing.T) {
		expenseRepo := new(MockGroupExpenseRepository)
		debtRepo := new(MockDebtRepository)
		proposer := new(MockDeductionProposer)
		converter := new(MockConverter)
		tripRepo := memberTripRepo(ctx, trip, 1, 2)

		rate := decimal.RequireFromString("0.00125")
		converter.On("Convert", ctx, decimal.NewFromInt(400000), "VND", "TWD").
			Return(rate, decimal.NewFromInt(500), nil)

		expenseRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		expenseRepo.On("Create", ctx, mock.MatchedBy(func(e *model.GroupExpense) bool {
			return e.RateToBase.Equal(rate) && e.AmountBase.Equal(decimal.NewFromInt(500))
		}), mock.Anything).Return(&model.GroupExpense{ID: 8, TripID: 3, PayerUserID: 1}, nil)

		// debts stay in the expense currency
		halfShare := mock.MatchedBy(func(d decimal.Decimal) bool {
			return d.Equal(decimal.NewFromInt(200000))
		})
		debtRepo.On("Update", ctx, int64(3), int64(2), int64(1), halfShare, "VND").Return(nil)
		debtRepo.On("AddContribution", ctx, mock.Anything).Return(nil)
		proposer.On("ProposePending", ctx, mock.Anything, int64(3), int64(8), halfShare, "VND").Return(nil)

		svc := NewGroupExpenseService(expenseRepo, debtRepo, NewTripService(tripRepo), converter, proposer)
		_, err := svc.Add(ctx, model.AddGroupExpenseRequest{
			TripID:       3,
			PayerUserID:  1,
			Amount:       decimal.NewFromInt(400000),
			Currency:     "VND",
			Participants: []int64{1, 2},
			Note:         "hotel",
		})

		require.NoError(t, err)
		expenseRepo.AssertExpectations(t)
	})

	t.Run("rejects a participant from outside the trip", func(t *testing.T) {
		tripRepo := new(MockTripRepository)
		tripRepo.On("GetByID", ctx, int64(3)).Return(trip, nil)
		tripRepo.On("IsMember", ctx, int64(3), int64(1)).Return(true, nil)
		tripRepo.On("IsMember", ctx, int64(3), int64(99)).Return(false, nil)

		svc := NewGroupExpenseService(new(MockGroupExpenseRepository), new(MockDebtRepository), NewTripService(tripRepo), new(MockConverter), new(MockDeductionProposer))
		_, err := svc.Add(ctx, model.AddGroupExpenseRequest{
			TripID:       3,
			PayerUserID:  1,
			Amount:       decimal.NewFromInt(100),
			Currency:     "TWD",
			Participants: []int64{1, 99},
		})

		assert.ErrorIs(t, err, ErrParticipantOutside)
	})
}

func TestGroupExpenseService_Undo(t *testing.T) {
	ctx := context.Background()
	share := decimal.RequireFromString("333.33")

	expense := &model.GroupExpense{
		ID:          7,
		TripID:      3,
		PayerUserID: 1,
		UndoUntil:   time.Now().Add(time.Hour),
	}

	t.Run("reverses the recorded contributions exactly", func(t *testing.T) {
		expenseRepo := new(MockGroupExpenseRepository)
		debtRepo := new(MockDebtRepository)
		proposer := new(MockDeductionProposer)

		expenseRepo.On("GetByID", ctx, int64(7)).Return(expense, nil)
		expenseRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		debtRepo.On("ContributionsByExpense", ctx, int64(7)).Return([]*model.DebtContribution{
			{ExpenseID: 7, TripID: 3, DebtorUserID: 2, CreditorUserID: 1, Amount: share, Currency: "TWD"},
			{ExpenseID: 7, TripID: 3, DebtorUserID: 4, CreditorUserID: 1, Amount: share, Currency: "TWD"},
		}, nil)
		debtRepo.On("Update", ctx, int64(3), int64(2), int64(1), share.Neg(), "TWD").Return(nil)
		debtRepo.On("Update", ctx, int64(3), int64(4), int64(1), share.Neg(), "TWD").Return(nil)
		debtRepo.On("DeleteContributionsByExpense", ctx, int64(7)).Return(nil)
		proposer.On("DeletePendingByExpense", ctx, int64(7)).Return(nil)
		expenseRepo.On("Delete", ctx, int64(7)).Return(nil)

		svc := NewGroupExpenseService(expenseRepo, debtRepo, NewTripService(new(MockTripRepository)), new(MockConverter), proposer)
		require.NoError(t, svc.Undo(ctx, 1, 7))
		debtRepo.AssertExpectations(t)
		expenseRepo.AssertExpectations(t)
	})

	t.Run("only the payer can undo", func(t *testing.T) {
		expenseRepo := new(MockGroupExpenseRepository)
		expenseRepo.On("GetByID", ctx, int64(7)).Return(expense, nil)

		svc := NewGroupExpenseService(expenseRepo, new(MockDebtRepository), NewTripService(new(MockTripRepository)), new(MockConverter), new(MockDeductionProposer))
		assert.ErrorIs(t, svc.Undo(ctx, 2, 7), ErrNotExpensePayer)
	})

	t.Run("window closed", func(t *testing.T) {
		expenseRepo := new(MockGroupExpenseRepository)
		stale := *expense
		stale.UndoUntil = time.Now().Add(-time.Minute)
		expenseRepo.On("GetByID", ctx, int64(7)).Return(&stale, nil)

		svc := NewGroupExpenseService(expenseRepo, new(MockDebtRepository), NewTripService(new(MockTripRepository)), new(MockConverter), new(MockDeductionProposer))
		assert.ErrorIs(t, svc.Undo(ctx, 1, 7), ErrUndoWindowClosed)
	})
}
