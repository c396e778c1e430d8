package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
	"github.com/tdnguyen/tripledger/pkg/logger"
	"github.com/tdnguyen/tripledger/pkg/prom"
)

var (
	ErrPendingNotFound = errors.New("pending deduction not found")
	ErrNotPendingOwner = errors.New("pending deduction belongs to another user")
	ErrNoWalletChosen  = errors.New("no wallet chosen for deduction")
)

type DeductionRepository interface {
	CreatePending(ctx context.Context, p *model.PendingDeduction) (*model.PendingDeduction, error)
	GetPending(ctx context.Context, id int64) (*model.PendingDeduction, error)
	ListPendingByUser(ctx context.Context, userID int64) ([]*model.PendingDeduction, error)
	DeletePending(ctx context.Context, id int64) error
	DeletePendingByExpense(ctx context.Context, expenseID int64) error
	CreateDeduction(ctx context.Context, d *model.GroupDeduction) (*model.GroupDeduction, error)
	ListDeductionsByTrip(ctx context.Context, tripID int64) ([]*model.GroupDeduction, error)
}

type SettingsReader interface {
	GetSettings(ctx context.Context, userID int64) (*model.UserSettings, error)
}

type DeductionService struct {
	deductionRepo DeductionRepository
	walletRepo    WalletRepository
	settings      SettingsReader
	converter     Converter
}

func NewDeductionService(
	deductionRepo DeductionRepository,
	walletRepo WalletRepository,
	settings SettingsReader,
	converter Converter,
) *DeductionService {
	return &DeductionService{
		deductionRepo: deductionRepo,
		walletRepo:    walletRepo,
		settings:      settings,
		converter:     converter,
	}
}

// SuggestWallet picks the wallet a share should be debited from: a wallet in
// the share currency wins, then one in the user's preferred currency, then
// any wallet at all. The returned suggestion is nil when the user has no
// usable wallet; the pending row is still created in that case.
func (s *DeductionService) SuggestWallet(ctx context.Context, userID int64, share decimal.Decimal, currency string) (*model.WalletSuggestion, error) {
	if w, err := s.walletRepo.GetByUserAndCurrency(ctx, userID, currency); err == nil {
		return &model.WalletSuggestion{
			Wallet: *w,
			FxRate: decimal.NewFromInt(1),
			Amount: share,
		}, nil
	} else if !errors.Is(err, repository.ErrWalletNotFound) {
		return nil, err
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings.PreferredCurrency != currency {
		if w, err := s.walletRepo.GetByUserAndCurrency(ctx, userID, settings.PreferredCurrency); err == nil {
			if suggestion := s.convertedSuggestion(ctx, w, share, currency); suggestion != nil {
				return suggestion, nil
			}
		} else if !errors.Is(err, repository.ErrWalletNotFound) {
			return nil, err
		}
	}

	wallets, err := s.walletRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, w := range wallets {
		if suggestion := s.convertedSuggestion(ctx, w, share, currency); suggestion != nil {
			return suggestion, nil
		}
	}
	return nil, nil
}

func (s *DeductionService) convertedSuggestion(ctx context.Context, w *model.Wallet, share decimal.Decimal, currency string) *model.WalletSuggestion {
	rate, converted, err := s.converter.Convert(ctx, share, currency, w.Currency)
	if err != nil {
		logger.Warn("no rate for wallet suggestion", "from", currency, "to", w.Currency, "error", err)
		return nil
	}
	return &model.WalletSuggestion{Wallet: *w, FxRate: rate, Amount: converted}
}

// ProposePending creates the pending row for one participant's share with the
// wallet suggestion already worked out.
func (s *DeductionService) ProposePending(ctx context.Context, userID, tripID, expenseID int64, share decimal.Decimal, currency string) error {
	pending := &model.PendingDeduction{
		UserID:        userID,
		TripID:        tripID,
		ExpenseID:     expenseID,
		ShareAmount:   share,
		ShareCurrency: currency,
	}

	suggestion, err := s.SuggestWallet(ctx, userID, share, currency)
	if err != nil {
		return err
	}
	if suggestion != nil {
		pending.SuggestedWalletID = &suggestion.Wallet.ID
		pending.SuggestedFxRate = &suggestion.FxRate
		pending.SuggestedAmount = &suggestion.Amount
	}

	_, err = s.deductionRepo.CreatePending(ctx, pending)
	return err
}

func (s *DeductionService) DeletePendingByExpense(ctx context.Context, expenseID int64) error {
	return s.deductionRepo.DeletePendingByExpense(ctx, expenseID)
}

func (s *DeductionService) ListPending(ctx context.Context, userID int64) ([]*model.PendingDeduction, error) {
	return s.deductionRepo.ListPendingByUser(ctx, userID)
}

// Confirm debits the chosen wallet and archives the deduction, all in one
// transaction with the pending row's removal. walletID overrides the stored
// suggestion; the conversion is recomputed for the wallet actually chosen, so
// a stale suggestion never fixes the rate.
func (s *DeductionService) Confirm(ctx context.Context, userID, pendingID int64, walletID *int64) (*model.GroupDeduction, error) {
	pending, err := s.getOwnedPending(ctx, userID, pendingID)
	if err != nil {
		return nil, err
	}

	chosenID := pending.SuggestedWalletID
	if walletID != nil {
		chosenID = walletID
	}
	if chosenID == nil {
		return nil, ErrNoWalletChosen
	}

	wallet, err := s.walletRepo.GetByID(ctx, *chosenID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if wallet.UserID != userID {
		return nil, ErrNotWalletOwner
	}

	fxRate := decimal.NewFromInt(1)
	amount := pending.ShareAmount
	if wallet.Currency != pending.ShareCurrency {
		fxRate, amount, err = s.converter.Convert(ctx, pending.ShareAmount, pending.ShareCurrency, wallet.Currency)
		if err != nil {
			return nil, err
		}
	}

	var confirmed *model.GroupDeduction
	err = s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		reason := fmt.Sprintf("group share %s %s", pending.ShareAmount, pending.ShareCurrency)
		if err := s.walletRepo.AdjustBalance(ctx, wallet.ID, amount.Neg(), reason); err != nil {
			return err
		}

		d, err := s.deductionRepo.CreateDeduction(ctx, &model.GroupDeduction{
			UserID:         userID,
			TripID:         pending.TripID,
			ExpenseID:      pending.ExpenseID,
			ShareAmount:    pending.ShareAmount,
			ShareCurrency:  pending.ShareCurrency,
			WalletID:       wallet.ID,
			FxRateUsed:     fxRate,
			DeductedAmount: amount,
		})
		if err != nil {
			return err
		}
		confirmed = d
		return s.deductionRepo.DeletePending(ctx, pending.ID)
	})
	if err != nil {
		return nil, err
	}

	prom.IncCounterVec(prom.SystemLedger, prom.MetricDeductions, "confirmed")
	return confirmed, nil
}

// Cancel deletes the pending row and nothing else. The group debt recorded by
// the expense split stays in place; debt tracking and wallet bookkeeping are
// deliberately decoupled.
func (s *DeductionService) Cancel(ctx context.Context, userID, pendingID int64) error {
	pending, err := s.getOwnedPending(ctx, userID, pendingID)
	if err != nil {
		return err
	}
	if err := s.deductionRepo.DeletePending(ctx, pending.ID); err != nil {
		return err
	}
	prom.IncCounterVec(prom.SystemLedger, prom.MetricDeductions, "canceled")
	return nil
}

func (s *DeductionService) ListByTrip(ctx context.Context, tripID int64) ([]*model.GroupDeduction, error) {
	return s.deductionRepo.ListDeductionsByTrip(ctx, tripID)
}

func (s *DeductionService) getOwnedPending(ctx context.Context, userID, pendingID int64) (*model.PendingDeduction, error) {
	pending, err := s.deductionRepo.GetPending(ctx, pendingID)
	if err != nil {
		if errors.Is(err, repository.ErrPendingNotFound) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	if pending.UserID != userID {
		return nil, ErrNotPendingOwner
	}
	return pending, nil
}
