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
	ErrNotExpensePayer    = errors.New("only the payer can undo a group expense")
	ErrParticipantOutside = errors.New("participant is not a trip member")
)

type GroupExpenseRepository interface {
	Create(ctx context.Context, e *model.GroupExpense, shares []*model.ExpenseShare) (*model.GroupExpense, error)
	GetByID(ctx context.Context, id int64) (*model.GroupExpense, error)
	GetLatestByTrip(ctx context.Context, tripID int64) (*model.GroupExpense, error)
	ListByTrip(ctx context.Context, tripID int64, limit int) ([]*model.GroupExpense, error)
	Shares(ctx context.Context, expenseID int64) ([]*model.ExpenseShare, error)
	Delete(ctx context.Context, expenseID int64) error
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type DebtRepository interface {
	Update(ctx context.Context, tripID, debtorID, creditorID int64, delta decimal.Decimal, currency string) error
	ListByTrip(ctx context.Context, tripID int64) ([]*model.DebtWithUsers, error)
	ListByTripAndCurrency(ctx context.Context, tripID int64, currency string) ([]*model.GroupDebt, error)
	Currencies(ctx context.Context, tripID int64) ([]string, error)
	AddContribution(ctx context.Context, c *model.DebtContribution) error
	ContributionsByExpense(ctx context.Context, expenseID int64) ([]*model.DebtContribution, error)
	DeleteContributionsByExpense(ctx context.Context, expenseID int64) error
}

// DeductionProposer builds the wallet-debit proposal for one participant's
// share.
type DeductionProposer interface {
	ProposePending(ctx context.Context, userID, tripID, expenseID int64, share decimal.Decimal, currency string) error
	DeletePendingByExpense(ctx context.Context, expenseID int64) error
}

type GroupExpenseService struct {
	expenseRepo GroupExpenseRepository
	debtRepo    DebtRepository
	trips       *TripService
	converter   Converter
	proposer    DeductionProposer
	now         func() time.Time
}

func NewGroupExpenseService(
	expenseRepo GroupExpenseRepository,
	debtRepo DebtRepository,
	trips *TripService,
	converter Converter,
	proposer DeductionProposer,
) *GroupExpenseService {
	return &GroupExpenseService{
		expenseRepo: expenseRepo,
		debtRepo:    debtRepo,
		trips:       trips,
		converter:   converter,
		proposer:    proposer,
		now:         time.Now,
	}
}

// Add records a group expense split equally among the participants. In one
// transaction it writes the expense with its shares, accumulates one debt per
// non-payer participant toward the payer, records the matching contribution
// rows so an undo can reverse exactly these deltas, and proposes a pending
// wallet deduction for every participant's share.
func (s *GroupExpenseService) Add(ctx context.Context, p model.AddGroupExpenseRequest) (*model.GroupExpense, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	trip, err := s.trips.RequireMember(ctx, p.TripID, p.PayerUserID)
	if err != nil {
		return nil, err
	}
	for _, participant := range p.Participants {
		isMember, err := s.trips.tripRepo.IsMember(ctx, p.TripID, participant)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrParticipantOutside
		}
	}

	rateToBase := decimal.NewFromInt(1)
	amountBase := p.Amount
	if p.Currency != trip.BaseCurrency {
		rateToBase, amountBase, err = s.converter.Convert(ctx, p.Amount, p.Currency, trip.BaseCurrency)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	expense := &model.GroupExpense{
		TripID:      p.TripID,
		PayerUserID: p.PayerUserID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		RateToBase:  rateToBase,
		AmountBase:  amountBase,
		Note:        p.Note,
		CreatedAt:   now,
		UndoUntil:   now.Add(model.UndoWindow),
	}

	participants := int64(len(p.Participants))
	ratio := decimal.NewFromInt(1).DivRound(decimal.NewFromInt(participants), 9)
	share := p.Amount.DivRound(decimal.NewFromInt(participants), 2)

	shares := make([]*model.ExpenseShare, 0, participants)
	for _, participant := range p.Participants {
		shares = append(shares, &model.ExpenseShare{
			UserID:     participant,
			ShareRatio: ratio,
		})
	}

	var created *model.GroupExpense
	err = s.expenseRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		e, err := s.expenseRepo.Create(ctx, expense, shares)
		if err != nil {
			return fmt.Errorf("create group expense: %w", err)
		}
		created = e

		for _, participant := range p.Participants {
			if participant == p.PayerUserID {
				continue
			}
			if err := s.debtRepo.Update(ctx, p.TripID, participant, p.PayerUserID, share, p.Currency); err != nil {
				return fmt.Errorf("update debt: %w", err)
			}
			if err := s.debtRepo.AddContribution(ctx, &model.DebtContribution{
				ExpenseID:      e.ID,
				TripID:         p.TripID,
				DebtorUserID:   participant,
				CreditorUserID: p.PayerUserID,
				Amount:         share,
				Currency:       p.Currency,
			}); err != nil {
				return fmt.Errorf("record contribution: %w", err)
			}
		}

		for _, participant := range p.Participants {
			if err := s.proposer.ProposePending(ctx, participant, p.TripID, e.ID, share, p.Currency); err != nil {
				return fmt.Errorf("propose deduction: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Undo reverses the expense's exact debt deltas, then removes its shares,
// contribution rows, pending deductions, and finally the expense itself.
// Confirmed deductions are immutable records and stay untouched.
func (s *GroupExpenseService) Undo(ctx context.Context, userID, expenseID int64) error {
	expense, err := s.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}
	if expense.PayerUserID != userID {
		return ErrNotExpensePayer
	}
	if !s.now().Before(expense.UndoUntil) {
		return ErrUndoWindowClosed
	}

	return s.expenseRepo.WithinTransaction(ctx, func(ctx context.Context) error {
		contributions, err := s.debtRepo.ContributionsByExpense(ctx, expenseID)
		if err != nil {
			return err
		}
		for _, c := range contributions {
			if err := s.debtRepo.Update(ctx, c.TripID, c.DebtorUserID, c.CreditorUserID, c.Amount.Neg(), c.Currency); err != nil {
				return fmt.Errorf("reverse debt: %w", err)
			}
		}
		if err := s.debtRepo.DeleteContributionsByExpense(ctx, expenseID); err != nil {
			return err
		}
		if err := s.proposer.DeletePendingByExpense(ctx, expenseID); err != nil {
			return err
		}
		return s.expenseRepo.Delete(ctx, expenseID)
	})
}

// UndoLatest reverses the trip's most recent group expense.
func (s *GroupExpenseService) UndoLatest(ctx context.Context, userID, tripID int64) (*model.GroupExpense, error) {
	latest, err := s.expenseRepo.GetLatestByTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}
	if err := s.Undo(ctx, userID, latest.ID); err != nil {
		return nil, err
	}
	return latest, nil
}

func (s *GroupExpenseService) List(ctx context.Context, userID, tripID int64, limit int) ([]*model.GroupExpense, error) {
	if _, err := s.trips.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.expenseRepo.ListByTrip(ctx, tripID, limit)
}

func (s *GroupExpenseService) Shares(ctx context.Context, expenseID int64) ([]*model.ExpenseShare, error) {
	return s.expenseRepo.Shares(ctx, expenseID)
}
