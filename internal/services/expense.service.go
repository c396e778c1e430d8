package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
)

var (
	ErrExpenseNotFound  = errors.New("expense not found")
	ErrNotExpenseOwner  = errors.New("expense belongs to another user")
	ErrUndoWindowClosed = errors.New("undo window has closed")
)

type ExpenseRepository interface {
	Create(ctx context.Context, e *model.PersonalExpense) (*model.PersonalExpense, error)
	GetByID(ctx context.Context, id int64) (*model.PersonalExpense, error)
	GetLatestByUser(ctx context.Context, userID int64) (*model.PersonalExpense, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]*model.PersonalExpense, error)
	Delete(ctx context.Context, id int64) error
}

type Converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, decimal.Decimal, error)
}

type ExpenseService struct {
	expenseRepo ExpenseRepository
	walletRepo  WalletRepository
	converter   Converter
	now         func() time.Time
}

func NewExpenseService(expenseRepo ExpenseRepository, walletRepo WalletRepository, converter Converter) *ExpenseService {
	return &ExpenseService{
		expenseRepo: expenseRepo,
		walletRepo:  walletRepo,
		converter:   converter,
		now:         time.Now,
	}
}

// Add records a personal expense and debits the wallet in one transaction.
// When the expense currency differs from the wallet's, the amount is converted
// at recording time and the rate is stored on the expense so a later undo
// restores exactly what was debited.
func (s *ExpenseService) Add(ctx context.Context, p model.AddPersonalExpenseRequest) (*model.PersonalExpense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	wallet, err := s.walletRepo.GetByID(ctx, p.WalletID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, err
	}
	if wallet.UserID != p.UserID {
		return nil, ErrNotWalletOwner
	}

	expense := &model.PersonalExpense{
		UserID:   p.UserID,
		WalletID: p.WalletID,
		Amount:   p.Amount,
		Currency: p.Currency,
		Note:     p.Note,
	}

	if p.Currency != wallet.Currency {
		rate, converted, err := s.converter.Convert(ctx, p.Amount, p.Currency, wallet.Currency)
		if err != nil {
			return nil, err
		}
		expense.FxRate = &rate
		expense.ConvertedAmount = &converted
	}

	now := s.now()
	expense.CreatedAt = now
	expense.UndoUntil = now.Add(model.UndoWindow)

	reason := p.Note
	if reason == "" {
		reason = "personal expense"
	}

	var created *model.PersonalExpense
	err = s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		e, err := s.expenseRepo.Create(ctx, expense)
		if err != nil {
			return fmt.Errorf("create expense: %w", err)
		}
		created = e
		return s.walletRepo.AdjustBalance(ctx, wallet.ID, e.DebitedAmount().Neg(), reason)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Reverse undoes an expense within its undo window: the wallet is credited
// back by the amount originally debited and the expense row is deleted.
func (s *ExpenseService) Reverse(ctx context.Context, userID, expenseID int64) error {
	expense, err := s.getOwned(ctx, userID, expenseID)
	if err != nil {
		return err
	}
	if !s.now().Before(expense.UndoUntil) {
		return ErrUndoWindowClosed
	}

	return s.walletRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.walletRepo.AdjustBalance(ctx, expense.WalletID, expense.DebitedAmount(), "expense reversed"); err != nil {
			return err
		}
		return s.expenseRepo.Delete(ctx, expense.ID)
	})
}

// ReverseLatest undoes the user's most recent expense.
func (s *ExpenseService) ReverseLatest(ctx context.Context, userID int64) (*model.PersonalExpense, error) {
	latest, err := s.expenseRepo.GetLatestByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	if err := s.Reverse(ctx, userID, latest.ID); err != nil {
		return nil, err
	}
	return latest, nil
}

// HardDelete removes the record without restoring any balance. Administrative
// cleanup only; not an undo.
func (s *ExpenseService) HardDelete(ctx context.Context, userID, expenseID int64) error {
	if _, err := s.getOwned(ctx, userID, expenseID); err != nil {
		return err
	}
	return s.expenseRepo.Delete(ctx, expenseID)
}

func (s *ExpenseService) List(ctx context.Context, userID int64, limit int) ([]*model.PersonalExpense, error) {
	return s.expenseRepo.ListByUser(ctx, userID, limit)
}

func (s *ExpenseService) getOwned(ctx context.Context, userID, expenseID int64) (*model.PersonalExpense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	if expense.UserID != userID {
		return nil, ErrNotExpenseOwner
	}
	return expense, nil
}
