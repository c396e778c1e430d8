package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	NotificationSettlement = "settlement"
	NotificationDebtUpdate = "debt_update"
)

// Notification is the payload handed to the notifier queue. Amounts travel
// pre-formatted so the delivery side never needs currency logic.
type Notification struct {
	Kind            string          `json:"kind"`
	TripID          int64           `json:"trip_id"`
	DebtorUserID    int64           `json:"debtor_user_id"`
	CreditorUserID  int64           `json:"creditor_user_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	FormattedAmount string          `json:"formatted_amount"`
	PaymentQRURL    string          `json:"payment_qr_url,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}
