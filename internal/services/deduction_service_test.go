package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
)

type MockDeductionRepository struct {
	mock.Mock
}

func (m *MockDeductionRepository) CreatePending(ctx context.Context, p *model.PendingDeduction) (*model.PendingDeduction, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingDeduction), args.Error(1)
}

func (m *MockDeductionRepository) GetPending(ctx context.Context, id int64) (*model.PendingDeduction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PendingDeduction), args.Error(1)
}

func (m *MockDeductionRepository) ListPendingByUser(ctx context.Context, userID int64) ([]*model.PendingDeduction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.PendingDeduction), args.Error(1)
}

func (m *MockDeductionRepository) DeletePending(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDeductionRepository) DeletePendingByExpense(ctx context.Context, expenseID int64) error {
	args := m.Called(ctx, expenseID)
	return args.Error(0)
}

func (m *MockDeductionRepository) CreateDeduction(ctx context.Context, d *model.GroupDeduction) (*model.GroupDeduction, error) {
	args := m.Called(ctx, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.GroupDeduction), args.Error(1)
}

func (m *MockDeductionRepository) ListDeductionsByTrip(ctx context.Context, tripID int64) ([]*model.GroupDeduction, error) {
	args := m.Called(ctx, tripID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.GroupDeduction), args.Error(1)
}

type MockSettingsReader struct {
	mock.Mock
}

func (m *MockSettingsReader) GetSettings(ctx context.Context, userID int64) (*model.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSettings), args.Error(1)
}

func TestDeductionService_SuggestWallet(t *testing.T) {
	ctx := context.Background()
	share := decimal.NewFromInt(500)

	t.Run("share-currency wallet wins one to one", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		twdWallet := &model.Wallet{ID: 1, UserID: 7, Currency: "TWD"}
		walletRepo.On("GetByUserAndCurrency", ctx, int64(7), "TWD").Return(twdWallet, nil)

		svc := NewDeductionService(new(MockDeductionRepository), walletRepo, new(MockSettingsReader), new(MockConverter))
		suggestion, err := svc.SuggestWallet(ctx, 7, share, "TWD")

		require.NoError(t, err)
		require.NotNil(t, suggestion)
		assert.Equal(t, int64(1), suggestion.Wallet.ID)
		assert.True(t, suggestion.FxRate.Equal(decimal.NewFromInt(1)))
		assert.True(t, suggestion.Amount.Equal(share))
	})

	t.Run("falls back to preferred-currency wallet with conversion", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		settings := new(MockSettingsReader)
		converter := new(MockConverter)

		vndWallet := &model.Wallet{ID: 2, UserID: 7, Currency: "VND"}
		walletRepo.On("GetByUserAndCurrency", ctx, int64(7), "TWD").Return(nil, repository.ErrWalletNotFound)
		settings.On("GetSettings", ctx, int64(7)).Return(&model.UserSettings{UserID: 7, PreferredCurrency: "VND"}, nil)
		walletRepo.On("GetByUserAndCurrency", ctx, int64(7), "VND").Return(vndWallet, nil)
		converter.On("Convert", ctx, share, "TWD", "VND").
			Return(decimal.RequireFromString("800"), decimal.NewFromInt(400000), nil)

		svc := NewDeductionService(new(MockDeductionRepository), walletRepo, settings, converter)
		suggestion, err := svc.SuggestWallet(ctx, 7, share, "TWD")

		require.NoError(t, err)
		require.NotNil(t, suggestion)
		assert.Equal(t, int64(2), suggestion.Wallet.ID)
		assert.True(t, suggestion.Amount.Equal(decimal.NewFromInt(400000)))
	})

	t.Run("no wallets at all yields nil suggestion", func(t *testing.T) {
		walletRepo := new(MockWalletRepository)
		settings := new(MockSettingsReader)

		walletRepo.On("GetByUserAndCurrency", ctx, int64(7), "TWD").Return(nil, repository.ErrWalletNotFound)
		settings.On("GetSettings", ctx, int64(7)).Return(&model.UserSettings{UserID: 7, PreferredCurrency: "VND"}, nil)
		walletRepo.On("GetByUserAndCurrency", ctx, int64(7), "VND").Return(nil, repository.ErrWalletNotFound)
		walletRepo.On("ListByUser", ctx, int64(7)).Return([]*model.Wallet{}, nil)

		svc := NewDeductionService(new(MockDeductionRepository), walletRepo, settings, new(MockConverter))
		suggestion, err := svc.SuggestWallet(ctx, 7, share, "TWD")

		require.NoError(t, err)
		assert.Nil(t, suggestion)
	})
}

func TestDeductionService_Confirm(t *testing.T) {
	ctx := context.Background()

	walletID := int64(2)
	pending := &model.PendingDeduction{
		ID:                11,
		UserID:            7,
		TripID:            3,
		ExpenseID:         4,
		ShareAmount:       decimal.NewFromInt(500),
		ShareCurrency:     "TWD",
		SuggestedWalletID: &walletID,
	}

	t.Run("debits, archives, and removes the pending row", func(t *testing.T) {
		deductionRepo := new(MockDeductionRepository)
		walletRepo := new(MockWalletRepository)
		converter := new(MockConverter)

		deductionRepo.On("GetPending", ctx, int64(11)).Return(pending, nil)
		walletRepo.On("GetByID", ctx, walletID).Return(&model.Wallet{ID: walletID, UserID: 7, Currency: "VND"}, nil)
		// conversion happens at confirmation time for the wallet actually used
		converter.On("Convert", ctx, pending.ShareAmount, "TWD", "VND").
			Return(decimal.RequireFromString("800"), decimal.NewFromInt(400000), nil)
		walletRepo.On("WithinTransaction", ctx, mock.AnythingOfType("func(context.Context) error")).Return(nil)
		walletRepo.On("AdjustBalance", ctx, walletID, decimal.NewFromInt(-400000), mock.AnythingOfType("string")).Return(nil)
		deductionRepo.On("CreateDeduction", ctx, mock.MatchedBy(func(d *model.GroupDeduction) bool {
			return d.DeductedAmount.Equal(decimal.NewFromInt(400000)) && d.WalletID == walletID
		})).Return(&model.GroupDeduction{ID: 20, WalletID: walletID, DeductedAmount: decimal.NewFromInt(400000)}, nil)
		deductionRepo.On("DeletePending", ctx, int64(11)).Return(nil)

		svc := NewDeductionService(deductionRepo, walletRepo, new(MockSettingsReader), converter)
		confirmed, err := svc.Confirm(ctx, 7, 11, nil)

		require.NoError(t, err)
		assert.Equal(t, int64(20), confirmed.ID)
		deductionRepo.AssertExpectations(t)
		walletRepo.AssertExpectations(t)
	})

	t.Run("no suggestion and no override", func(t *testing.T) {
		deductionRepo := new(MockDeductionRepository)
		orphan := *pending
		orphan.SuggestedWalletID = nil
		deductionRepo.On("GetPending", ctx, int64(11)).Return(&orphan, nil)

		svc := NewDeductionService(deductionRepo, new(MockWalletRepository), new(MockSettingsReader), new(MockConverter))
		_, err := svc.Confirm(ctx, 7, 11, nil)
		assert.ErrorIs(t, err, ErrNoWalletChosen)
	})

	t.Run("stranger cannot confirm", func(t *testing.T) {
		deductionRepo := new(MockDeductionRepository)
		deductionRepo.On("GetPending", ctx, int64(11)).Return(pending, nil)

		svc := NewDeductionService(deductionRepo, new(MockWalletRepository), new(MockSettingsReader), new(MockConverter))
		_, err := svc.Confirm(ctx, 8, 11, nil)
		assert.ErrorIs(t, err, ErrNotPendingOwner)
	})
}

func TestDeductionService_Cancel(t *testing.T) {
	deductionRepo := new(MockDeductionRepository)
	walletRepo := new(MockWalletRepository)
	ctx := context.Background()

	pending := &model.PendingDeduction{ID: 11, UserID: 7, ShareAmount: decimal.NewFromInt(500), ShareCurrency: "TWD"}
	deductionRepo.On("GetPending", ctx, int64(11)).Return(pending, nil)
	deductionRepo.On("DeletePending", ctx, int64(11)).Return(nil)

	svc := NewDeductionService(deductionRepo, walletRepo, new(MockSettingsReader), new(MockConverter))
	require.NoError(t, svc.Cancel(ctx, 7, 11))

	// cancel is delete-only; no wallet movement
	walletRepo.AssertNotCalled(t, "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
