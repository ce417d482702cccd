package domain

import "time"

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
	TransactionTypePayment    TransactionType = "payment"
	TransactionTypeFee        TransactionType = "fee"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

type Transaction struct {
	ID                 string
	Reference          string
	AccountID          string
	RecipientAccountID *string
	Amount             string
	Description        string
	TransactionType    TransactionType
	Status             TransactionStatus
	CreatedBy          string
	Date               time.Time
	UpdatedAt          time.Time
}

// Posting is the result of applying a transaction's monetary effect.
// RecipientBalance is set only for transfers.
type Posting struct {
	Transaction      Transaction
	AccountBalance   string
	RecipientBalance *string
}

func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer,
		TransactionTypePayment, TransactionTypeFee:
		return true
	}
	return false
}

// Debits reports whether the type removes funds from the source account.
// Payments and fees post as plain debits with no credit side.
func (t TransactionType) Debits() bool {
	switch t {
	case TransactionTypeWithdrawal, TransactionTypeTransfer, TransactionTypePayment, TransactionTypeFee:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transition.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}
