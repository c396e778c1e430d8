package repository

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrDuplicateWallet    = errors.New("wallet already exists for this currency")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrTripNotFound       = errors.New("trip not found")
	ErrDuplicateCode      = errors.New("trip code already taken")
	ErrAlreadyMember      = errors.New("user is already a trip member")
	ErrPendingNotFound    = errors.New("pending deduction not found")
	ErrRateNotFound       = errors.New("exchange rate not found")
	ErrBankNotFound       = errors.New("bank account not found")
	ErrConcurrentUpdate   = errors.New("concurrent update detected")
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)
