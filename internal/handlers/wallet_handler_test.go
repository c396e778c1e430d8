package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/services"
	xhttp "github.com/tdnguyen/tripledger/pkg/http"
	"github.com/valyala/fasthttp"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Create(ctx context.Context, p model.CreateWalletRequest) (*model.Wallet, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletService) Get(ctx context.Context, userID, walletID int64) (*model.Wallet, error) {
	args := m.Called(ctx, userID, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletService) List(ctx context.Context, userID int64) ([]*model.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Wallet), args.Error(1)
}

func (m *MockWalletService) Adjust(ctx context.Context, userID, walletID int64, delta decimal.Decimal, reason string) (*model.Wallet, error) {
	args := m.Called(ctx, userID, walletID, delta, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Wallet), args.Error(1)
}

func (m *MockWalletService) Delete(ctx context.Context, userID, walletID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, userID, walletID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockWalletService) Transactions(ctx context.Context, userID, walletID int64, limit int) ([]*model.WalletTransaction, error) {
	args := m.Called(ctx, userID, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.WalletTransaction), args.Error(1)
}

func setupTestContext(method, path string, body []byte) *xhttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return ctx
}

func TestWalletHandler_CreateWallet(t *testing.T) {
	t.Run("successful wallet creation", func(t *testing.T) {
		svc := new(MockWalletService)
		handler := NewWalletHandler(svc)

		bodyBytes, _ := json.Marshal(createWalletRequest{
			UserID:        1,
			Currency:      "VND",
			InitialAmount: decimal.NewFromInt(5000000),
		})

		svc.On("Create", mock.Anything, mock.MatchedBy(func(p model.CreateWalletRequest) bool {
			return p.UserID == 1 && p.Currency == "VND" && p.InitialAmount.Equal(decimal.NewFromInt(5000000))
		})).Return(&model.Wallet{ID: 5, UserID: 1, Currency: "VND", CurrentBalance: decimal.NewFromInt(5000000)}, nil)

		ctx := setupTestContext("POST", "/api/v1/wallets", bodyBytes)
		handler.CreateWallet(ctx)

		assert.Equal(t, xhttp.StatusCreated, ctx.Response.StatusCode())

		var wallet model.Wallet
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &wallet))
		assert.Equal(t, int64(5), wallet.ID)
		svc.AssertExpectations(t)
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		handler := NewWalletHandler(new(MockWalletService))

		ctx := setupTestContext("POST", "/api/v1/wallets", []byte("{broken"))
		handler.CreateWallet(ctx)

		assert.Equal(t, xhttp.StatusBadRequest, ctx.Response.StatusCode())
	})

	t.Run("duplicate currency maps to conflict", func(t *testing.T) {
		svc := new(MockWalletService)
		handler := NewWalletHandler(svc)

		bodyBytes, _ := json.Marshal(createWalletRequest{UserID: 1, Currency: "VND"})
		svc.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrDuplicateWallet)

		ctx := setupTestContext("POST", "/api/v1/wallets", bodyBytes)
		handler.CreateWallet(ctx)

		assert.Equal(t, xhttp.StatusConflict, ctx.Response.StatusCode())
	})
}

func TestWalletHandler_ListWallets(t *testing.T) {
	t.Run("lists the user's wallets", func(t *testing.T) {
		svc := new(MockWalletService)
		handler := NewWalletHandler(svc)

		svc.On("List", mock.Anything, int64(1)).Return([]*model.Wallet{
			{ID: 5, UserID: 1, Currency: "VND"},
			{ID: 6, UserID: 1, Currency: "TWD"},
		}, nil)

		ctx := setupTestContext("GET", "/api/v1/wallets?user_id=1", nil)
		handler.ListWallets(ctx)

		assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())

		var wallets []*model.Wallet
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &wallets))
		assert.Len(t, wallets, 2)
	})

	t.Run("missing user_id", func(t *testing.T) {
		handler := NewWalletHandler(new(MockWalletService))

		ctx := setupTestContext("GET", "/api/v1/wallets", nil)
		handler.ListWallets(ctx)

		assert.Equal(t, xhttp.StatusBadRequest, ctx.Response.StatusCode())
	})
}

func TestWalletHandler_AdjustWallet(t *testing.T) {
	svc := new(MockWalletService)
	handler := NewWalletHandler(svc)

	delta := decimal.NewFromInt(-200000)
	bodyBytes, _ := json.Marshal(adjustWalletRequest{UserID: 1, Delta: delta, Reason: "bus tickets"})

	svc.On("Adjust", mock.Anything, int64(1), int64(5), delta, "bus tickets").
		Return(&model.Wallet{ID: 5, UserID: 1, Currency: "VND", CurrentBalance: decimal.NewFromInt(4800000)}, nil)

	ctx := setupTestContext("POST", "/api/v1/wallets/5/adjust", bodyBytes)
	ctx.SetUserValue("id", "5")
	handler.AdjustWallet(ctx)

	assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())

	var wallet model.Wallet
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &wallet))
	assert.True(t, wallet.CurrentBalance.Equal(decimal.NewFromInt(4800000)))
	svc.AssertExpectations(t)
}

func TestWalletHandler_DeleteWallet(t *testing.T) {
	t.Run("returns the forfeited balance", func(t *testing.T) {
		svc := new(MockWalletService)
		handler := NewWalletHandler(svc)

		svc.On("Delete", mock.Anything, int64(1), int64(5)).Return(decimal.NewFromInt(42), nil)

		ctx := setupTestContext("DELETE", "/api/v1/wallets/5?user_id=1", nil)
		ctx.SetUserValue("id", "5")
		handler.DeleteWallet(ctx)

		assert.Equal(t, xhttp.StatusOK, ctx.Response.StatusCode())

		var resp map[string]decimal.Decimal
		require.NoError(t, json.Unmarshal(ctx.Response.Body(), &resp))
		assert.True(t, resp["forfeited_balance"].Equal(decimal.NewFromInt(42)))
	})

	t.Run("stranger's wallet maps to forbidden", func(t *testing.T) {
		svc := new(MockWalletService)
		handler := NewWalletHandler(svc)

		svc.On("Delete", mock.Anything, int64(2), int64(5)).Return(decimal.Zero, services.ErrNotWalletOwner)

		ctx := setupTestContext("DELETE", "/api/v1/wallets/5?user_id=2", nil)
		ctx.SetUserValue("id", "5")
		handler.DeleteWallet(ctx)

		assert.Equal(t, xhttp.StatusForbidden, ctx.Response.StatusCode())
	})
}
