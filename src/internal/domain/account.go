package domain

import "time"

type AccountStatus string

const (
	AccountStatusActive AccountStatus = "active"
	AccountStatusFrozen AccountStatus = "frozen"
	AccountStatusClosed AccountStatus = "closed"
)

type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
	AccountTypeCredit   AccountType = "credit"
)

// Account balance is never written directly by callers; it only moves
// through a completed transaction posted by the ledger repository.
type Account struct {
	ID            string
	UserID        string
	AccountNumber string
	AccountType   AccountType
	Balance       string
	Status        AccountStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeSavings, AccountTypeChecking, AccountTypeCredit:
		return true
	}
	return false
}
