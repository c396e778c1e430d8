package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	gateway "github.com/tdnguyen/tripledger/internal/gateways"
	"github.com/tdnguyen/tripledger/internal/model"
	"github.com/tdnguyen/tripledger/internal/queue"
	"github.com/tdnguyen/tripledger/internal/repository"
	"github.com/tdnguyen/tripledger/internal/settlement"
	"github.com/tdnguyen/tripledger/pkg/logger"
	"github.com/tdnguyen/tripledger/pkg/prom"
)

type BankReader interface {
	GetDefault(ctx context.Context, userID int64) (*model.BankAccount, error)
}

// SettlementService turns a trip's debt ledger into minimal transfer plans
// and fans the result out to debtors through the notification queue.
type SettlementService struct {
	debtRepo  DebtRepository
	bankRepo  BankReader
	trips     *TripService
	converter Converter
	queue     *queue.Queue
}

func NewSettlementService(
	debtRepo DebtRepository,
	bankRepo BankReader,
	trips *TripService,
	converter Converter,
	q *queue.Queue,
) *SettlementService {
	return &SettlementService{
		debtRepo:  debtRepo,
		bankRepo:  bankRepo,
		trips:     trips,
		converter: converter,
		queue:     q,
	}
}

// Debts lists a trip's outstanding debts, largest first.
func (s *SettlementService) Debts(ctx context.Context, userID, tripID int64) ([]*model.DebtWithUsers, error) {
	if _, err := s.trips.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}
	return s.debtRepo.ListByTrip(ctx, tripID)
}

// Balances nets the debt ledger into one signed balance per user, keyed by
// currency.
func (s *SettlementService) Balances(ctx context.Context, userID, tripID int64) (map[string]map[int64]decimal.Decimal, error) {
	if _, err := s.trips.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}

	currencies, err := s.debtRepo.Currencies(ctx, tripID)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]map[int64]decimal.Decimal, len(currencies))
	for _, currency := range currencies {
		debts, err := s.debtRepo.ListByTripAndCurrency(ctx, tripID, currency)
		if err != nil {
			return nil, err
		}
		balances[currency] = settlement.Net(debts)
	}
	return balances, nil
}

// Optimize computes the minimal transfer plan for one trip and currency and
// publishes a notification per transfer. Publishing failures do not fail the
// plan; the transfers are already correct and the caller gets them either way.
func (s *SettlementService) Optimize(ctx context.Context, userID, tripID int64, currency string) ([]settlement.Transfer, error) {
	if err := model.ValidateCurrency(currency); err != nil {
		return nil, err
	}
	if _, err := s.trips.RequireMember(ctx, tripID, userID); err != nil {
		return nil, err
	}

	debts, err := s.debtRepo.ListByTripAndCurrency(ctx, tripID, currency)
	if err != nil {
		return nil, err
	}

	transfers := settlement.PlanDebts(debts)
	prom.ObserveHistogram(prom.SystemLedger, prom.MetricSettlementTransfers, float64(len(transfers)))

	for _, transfer := range transfers {
		s.publishTransfer(ctx, tripID, transfer, currency)
	}
	return transfers, nil
}

// OptimizeAll runs Optimize for every currency with outstanding debt.
func (s *SettlementService) OptimizeAll(ctx context.Context, userID, tripID int64) (map[string][]settlement.Transfer, error) {
	currencies, err := s.debtRepo.Currencies(ctx, tripID)
	if err != nil {
		return nil, err
	}

	plans := make(map[string][]settlement.Transfer, len(currencies))
	for _, currency := range currencies {
		transfers, err := s.Optimize(ctx, userID, tripID, currency)
		if err != nil {
			return nil, err
		}
		plans[currency] = transfers
	}
	return plans, nil
}

func (s *SettlementService) publishTransfer(ctx context.Context, tripID int64, transfer settlement.Transfer, currency string) {
	if s.queue == nil {
		return
	}

	notification := &model.Notification{
		Kind:            model.NotificationSettlement,
		TripID:          tripID,
		DebtorUserID:    transfer.DebtorUserID,
		CreditorUserID:  transfer.CreditorUserID,
		Amount:          transfer.Amount,
		Currency:        currency,
		FormattedAmount: FormatAmount(transfer.Amount, currency),
		CreatedAt:       time.Now(),
	}
	notification.PaymentQRURL = s.paymentQR(ctx, transfer, currency)

	if _, err := s.queue.PublishJSON(ctx, notification, map[string]string{"kind": notification.Kind}); err != nil {
		logger.Error("settlement notification publish failed", "trip_id", tripID, "debtor", transfer.DebtorUserID, "error", err)
		return
	}
	prom.IncCounter(prom.SystemLedger, prom.MetricNotifications)
}

// paymentQR attaches a VietQR link when the creditor registered a bank
// account. VietQR only carries VND, so other currencies are converted first;
// a missing rate just means no QR, never a failed notification.
func (s *SettlementService) paymentQR(ctx context.Context, transfer settlement.Transfer, currency string) string {
	account, err := s.bankRepo.GetDefault(ctx, transfer.CreditorUserID)
	if err != nil {
		if !errors.Is(err, repository.ErrBankNotFound) {
			logger.Warn("bank account lookup failed", "user_id", transfer.CreditorUserID, "error", err)
		}
		return ""
	}

	amount := transfer.Amount
	if currency != "VND" {
		_, converted, err := s.converter.Convert(ctx, transfer.Amount, currency, "VND")
		if err != nil {
			logger.Warn("no VND rate for payment QR", "currency", currency, "error", err)
			return ""
		}
		amount = converted
	}
	return gateway.PaymentQRURL(account, amount, "Settle up")
}
