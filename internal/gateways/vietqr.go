package gateway

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/tdnguyen/tripledger/internal/model"
)

const vietQRTemplate = "compact2"

// PaymentQRURL builds an img.vietqr.io image URL for a bank transfer. The
// amount must already be in VND; VietQR only accepts whole-dong amounts, so
// any fraction is truncated.
func PaymentQRURL(account *model.BankAccount, amount decimal.Decimal, description string) string {
	query := url.Values{}
	query.Set("amount", amount.Truncate(0).String())
	query.Set("addInfo", description)
	query.Set("accountName", account.AccountName)

	return fmt.Sprintf("https://img.vietqr.io/image/%s-%s-%s.png?%s",
		account.BankCode, account.AccountNumber, vietQRTemplate, query.Encode())
}
