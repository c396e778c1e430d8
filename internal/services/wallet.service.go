package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
)

var (
	ErrWalletNotFound  = errors.New("wallet not found")
	ErrDuplicateWallet = errors.New("wallet already exists for this currency")
	ErrNotWalletOwner  = errors.New("wallet belongs to another user")
)

type WalletRepository interface {
	Create(ctx context.Context, w *model.Wallet) (*model.Wallet, error)
	GetByID(ctx context.Context, id int64) (*model.Wallet, error)
	GetByUserAndCurrency(ctx context.Context, userID int64, currency string) (*model.Wallet, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Wallet, error)
	AdjustBalance(ctx context.Context, walletID int64, delta decimal.Decimal, reason string) error
	Delete(ctx context.Context, walletID int64) (decimal.Decimal, error)
	ListAdjustments(ctx context.Context, walletID int64, limit int) ([]*model.WalletAdjustment, error)
	GetTransactions(ctx context.Context, walletID int64, limit int) ([]*model.WalletTransaction, error)
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type WalletService struct {
	walletRepo WalletRepository
}

func NewWalletService(walletRepo WalletRepository) *WalletService {
	return &WalletService{walletRepo: walletRepo}
}

func (s *WalletService) Create(ctx context.Context, p model.CreateWalletRequest) (*model.Wallet, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	var created *model.Wallet
	err := s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		w, err := s.walletRepo.Create(ctx, &model.Wallet{
			UserID:        p.UserID,
			Currency:      p.Currency,
			InitialAmount: p.InitialAmount,
			Note:          p.Note,
		})
		if err != nil {
			if errors.Is(err, repository.ErrDuplicateWallet) {
				return ErrDuplicateWallet
			}
			return fmt.Errorf("create wallet: %w", err)
		}
		created = w
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *WalletService) Get(ctx context.Context, userID, walletID int64) (*model.Wallet, error) {
	return s.ownedWallet(ctx, userID, walletID)
}

func (s *WalletService) List(ctx context.Context, userID int64) ([]*model.Wallet, error) {
	return s.walletRepo.ListByUser(ctx, userID)
}

// Adjust applies a signed delta. Negative balances are allowed; there is no
// insufficient-funds rejection.
func (s *WalletService) Adjust(ctx context.Context, userID, walletID int64, delta decimal.Decimal, reason string) (*model.Wallet, error) {
	if reason == "" {
		reason = "manual adjustment"
	}
	if _, err := s.ownedWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}

	err := s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.walletRepo.AdjustBalance(ctx, walletID, delta, reason)
	})
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	return s.walletRepo.GetByID(ctx, walletID)
}

// Delete removes the wallet regardless of balance. The forfeited balance is
// returned so callers can warn when it was non-zero.
func (s *WalletService) Delete(ctx context.Context, userID, walletID int64) (decimal.Decimal, error) {
	if _, err := s.ownedWallet(ctx, userID, walletID); err != nil {
		return decimal.Zero, err
	}

	forfeited, err := s.walletRepo.Delete(ctx, walletID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return decimal.Zero, ErrWalletNotFound
		}
		return decimal.Zero, err
	}
	return forfeited, nil
}

func (s *WalletService) Transactions(ctx context.Context, userID, walletID int64, limit int) ([]*model.WalletTransaction, error) {
	if _, err := s.ownedWallet(ctx, userID, walletID); err != nil {
		return nil, err
	}
	return s.walletRepo.GetTransactions(ctx, walletID, limit)
}

func (s *WalletService) ownedWallet(ctx context.Context, userID, walletID int64) (*model.Wallet, error) {
	w, err := s.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if w.UserID != userID {
		return nil, ErrNotWalletOwner
	}
	return w, nil
}
