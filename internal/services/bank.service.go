package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	gateway "github.com/tdnguyen/tripledger/internal/gateways"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/repository"
)

var ErrBankNotFound = errors.New("bank account not found")

type BankRepository interface {
	Add(ctx context.Context, p model.AddBankAccountRequest) (*model.BankAccount, error)
	GetDefault(ctx context.Context, userID int64) (*model.BankAccount, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.BankAccount, error)
	SetDefault(ctx context.Context, userID, accountID int64) error
	Delete(ctx context.Context, userID, accountID int64) error
}

type BankService struct {
	bankRepo  BankRepository
	converter Converter
}

func NewBankService(bankRepo BankRepository, converter Converter) *BankService {
	return &BankService{bankRepo: bankRepo, converter: converter}
}

func (s *BankService) Add(ctx context.Context, p model.AddBankAccountRequest) (*model.BankAccount, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.bankRepo.Add(ctx, p)
}

func (s *BankService) List(ctx context.Context, userID int64) ([]*model.BankAccount, error) {
	return s.bankRepo.ListByUser(ctx, userID)
}

func (s *BankService) SetDefault(ctx context.Context, userID, accountID int64) error {
	err := s.bankRepo.SetDefault(ctx, userID, accountID)
	if errors.Is(err, repository.ErrBankNotFound) {
		return ErrBankNotFound
	}
	return err
}

func (s *BankService) Delete(ctx context.Context, userID, accountID int64) error {
	err := s.bankRepo.Delete(ctx, userID, accountID)
	if errors.Is(err, repository.ErrBankNotFound) {
		return ErrBankNotFound
	}
	return err
}

// PaymentQR builds a VietQR image URL against the user's default account.
// Non-VND amounts are converted first; VietQR transfers are always in dong.
func (s *BankService) PaymentQR(ctx context.Context, userID int64, amount decimal.Decimal, currency, description string) (string, error) {
	account, err := s.bankRepo.GetDefault(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrBankNotFound) {
			return "", ErrBankNotFound
		}
		return "", err
	}

	if currency != "VND" {
		_, converted, err := s.converter.Convert(ctx, amount, currency, "VND")
		if err != nil {
			return "", err
		}
		amount = converted
	}
	if description == "" {
		description = "Transfer"
	}
	return gateway.PaymentQRURL(account, amount, description), nil
}
