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
	"github.com/tdnguyen/tripledger/internal/repository"
)

type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) Create(ctx context.Context, w *model.Wallet) (*model.Wallet, error) {
	args := m.Called(ctx, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id int64) (*model.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserAndCurrency(ctx context.Context, userID int64, currency string) (*model.Wallet, error) {
	args := m.Called(ctx, userID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Wallet), args.Error(1)
}

func (m *MockWalletRepository) AdjustBalance(ctx context.Context, walletID int64, delta decimal.Decimal, reason string) error {
	args := m.Called(ctx, walletID, delta, reason)
	return args.Error(0)
}

func (m *MockWalletRepository) Delete(ctx context.Context, walletID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletRepository) ListAdjustments(ctx context.Context, walletID int64, limit int) ([]*model.WalletAdjustment, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WalletAdjustment), args.Error(1)
}

func (m *MockWalletRepository) GetTransactions(ctx context.Context, walletID int64, limit int) ([]*model.WalletTransaction, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WalletTransaction), args.Error(1)
}

func (m *MockWalletRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockExpenseRepository struct {
	mock.Mock
}

func (m *MockExpenseRepository) Create(ctx context.Context, e *model.PersonalExpense) (*model.PersonalExpense, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PersonalExpense), args.Error(1)
}

func (m *MockExpenseRepository) GetByID(ctx context.Context, id int64) (*model.PersonalExpense, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PersonalExpense), args.Error(1)
}

func (m *MockExpenseRepository) GetLatestByUser(ctx context.Context, userID int64) (*model.PersonalExpense, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PersonalExpense), args.Error(1)
}

func (m *MockExpenseRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*model.PersonalExpense, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PersonalExpense), args.Error(1)
}

func (m *MockExpenseRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, amount, from, to)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

func TestExpenseService_Add_SameCurrency(t *testing.T) {
	expenseRepo := new(MockExpenseRepository)
	walletRepo := new(MockWalletRepository)
	converter := new(MockConverter)
	ctx := context.Background()

	wallet := &model.Wallet{ID: 5, UserID: 1, Currency: "VND"}
	walletRepo.On("GetByID", ctx, int64(5)).Return(wallet, nil)
	walletRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	walletRepo.On("AdjustBalance", ctx, int64(5), decimal.NewFromInt(-30000), "lunch").Return(nil)
	expenseRepo.On("Create", ctx, mock.AnythingOfType("*model.PersonalExpense")).
		Return(&model.PersonalExpense{ID: 9, UserID: 1, WalletID: 5, Amount: decimal.NewFromInt(30000), Currency: "VND"}, nil)

	svc := NewExpenseService(expenseRepo, walletRepo, converter)
	created, err := svc.Add(ctx, model.AddPersonalExpenseRequest{
		UserID:   1,
		WalletID: 5,
		Amount:   decimal.NewFromInt(30000),
		Currency: "VND",
		Note:     "lunch",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	converter.AssertNotCalled(t, "Convert", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	walletRepo.AssertExpectations(t)
}

func TestExpenseService_Add_ConvertsToWalletCurrency(t *testing.T) {
	expenseRepo := new(MockExpenseRepository)
	walletRepo := new(MockWalletRepository)
	converter := new(MockConverter)
	ctx := context.Background()

	wallet := &model.Wallet{ID: 5, UserID: 1, Currency: "VND"}
	rate := decimal.RequireFromString("800")
	converted := decimal.NewFromInt(400000)

	walletRepo.On("GetByID", ctx, int64(5)).Return(wallet, nil)
	converter.On("Convert", ctx, decimal.NewFromInt(500), "TWD", "VND").Return(rate, converted, nil)
	walletRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
	// the wallet is debited by the converted amount, not the raw one
	walletRepo.On("AdjustBalance", ctx, int64(5), converted.Neg(), "night market").Return(nil)
	expenseRepo.On("Create", ctx, mock.MatchedBy(func(e *model.PersonalExpense) bool {
		return e.FxRate != nil && e.FxRate.Equal(rate) &&
			e.ConvertedAmount != nil && e.ConvertedAmount.Equal(converted)
	})).Return(&model.PersonalExpense{ID: 10, WalletID: 5, FxRate: &rate, ConvertedAmount: &converted}, nil)

	svc := NewExpenseService(expenseRepo, walletRepo, converter)
	_, err := svc.Add(ctx, model.AddPersonalExpenseRequest{
		UserID:   1,
		WalletID: 5,
		Amount:   decimal.NewFromInt(500),
		Currency: "TWD",
		Note:     "night market",
	})

	require.NoError(t, err)
	walletRepo.AssertExpectations(t)
	expenseRepo.AssertExpectations(t)
}

func TestExpenseService_Add_WalletOwnership(t *testing.T) {
	expenseRepo := new(MockExpenseRepository)
	walletRepo := new(MockWalletRepository)
	ctx := context.Background()

	walletRepo.On("GetByID", ctx, int64(5)).Return(&model.Wallet{ID: 5, UserID: 2, Currency: "VND"}, nil)

	svc := NewExpenseService(expenseRepo, walletRepo, new(MockConverter))
	_, err := svc.Add(ctx, model.AddPersonalExpenseRequest{
		UserID:   1,
		WalletID: 5,
		Amount:   decimal.NewFromInt(100),
		Currency: "VND",
	})

	assert.ErrorIs(t, err, ErrNotWalletOwner)
}

func TestExpenseService_Reverse(t *testing.T) {
	ctx := context.Background()

	converted := decimal.NewFromInt(400000)
	expense := &model.PersonalExpense{
		ID:              9,
		UserID:          1,
		WalletID:        5,
		Amount:          decimal.NewFromInt(500),
		Currency:        "TWD",
		ConvertedAmount: &converted,
		UndoUntil:       time.Now().Add(time.Hour),
	}

	t.Run("restores the converted amount within the window", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		walletRepo := new(MockWalletRepository)

		expenseRepo.On("GetByID", ctx, int64(9)).Return(expense, nil)
		walletRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		walletRepo.On("AdjustBalance", ctx, int64(5), converted, "expense reversed").Return(nil)
		expenseRepo.On("Delete", ctx, int64(9)).Return(nil)

		svc := NewExpenseService(expenseRepo, walletRepo, new(MockConverter))
		require.NoError(t, svc.Reverse(ctx, 1, 9))
		walletRepo.AssertExpectations(t)
		expenseRepo.AssertExpectations(t)
	})

	t.Run("rejects after the window", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		walletRepo := new(MockWalletRepository)

		late := *expense
		late.UndoUntil = time.Now().Add(-time.Minute)
		expenseRepo.On("GetByID", ctx, int64(9)).Return(&late, nil)

		svc := NewExpenseService(expenseRepo, walletRepo, new(MockConverter))
		assert.ErrorIs(t, svc.Reverse(ctx, 1, 9), ErrUndoWindowClosed)
		walletRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects a stranger", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)
		expenseRepo.On("GetByID", ctx, int64(9)).Return(expense, nil)

		svc := NewExpenseService(expenseRepo, new(MockWalletRepository), new(MockConverter))
		assert.ErrorIs(t, svc.Reverse(ctx, 2, 9), ErrNotExpenseOwner)
	})

	t.Run("deadline exactly now is closed", func(t *testing.T) {
		expenseRepo := new(MockExpenseRepository)

		frozen := time.Now()
		onEdge := *expense
		onEdge.UndoUntil = frozen
		expenseRepo.On("GetByID", ctx, int64(9)).Return(&onEdge, nil)

		svc := NewExpenseService(expenseRepo, new(MockWalletRepository), new(MockConverter))
		svc.now = func() time.Time { return frozen }
		assert.ErrorIs(t, svc.Reverse(ctx, 1, 9), ErrUndoWindowClosed)
	})
}

func TestExpenseService_HardDelete(t *testing.T) {
	expenseRepo := new(MockExpenseRepository)
	walletRepo := new(MockWalletRepository)
	ctx := context.Background()

	expense := &model.PersonalExpense{ID: 9, UserID: 1, WalletID: 5, Amount: decimal.NewFromInt(100)}
	expenseRepo.On("GetByID", ctx, int64(9)).Return(expense, nil)
	expenseRepo.On("Delete", ctx, int64(9)).Return(nil)

	svc := NewExpenseService(expenseRepo, walletRepo, new(MockConverter))
	require.NoError(t, svc.HardDelete(ctx, 1, 9))

	// hard delete never touches the wallet
	walletRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExpenseService_ReverseLatest_NoExpenses(t *testing.T) {
	expenseRepo := new(MockExpenseRepository)
	ctx := context.Background()

	expenseRepo.On("GetLatestByUser", ctx, int64(1)).Return(nil, repository.ErrExpenseNotFound)

	svc := NewExpenseService(expenseRepo, new(MockWalletRepository), new(MockConverter))
	_, err := svc.ReverseLatest(ctx, 1)
	assert.ErrorIs(t, err, ErrExpenseNotFound)
}
