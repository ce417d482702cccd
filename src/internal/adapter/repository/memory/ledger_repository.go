package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

// LedgerRepository applies postings under the store mutex, with the same
// guard semantics as the postgres implementation: the pending re-check and
// the balance check happen inside the critical section that performs the
// writes.
type LedgerRepository struct {
	store *Store
}

func (r *LedgerRepository) Apply(_ context.Context, transaction domain.Transaction) (domain.Posting, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.transactions[transaction.ID]
	if !ok {
		return domain.Posting{}, domain.ErrRecordNotFound
	}
	if current.Status != domain.TransactionStatusPending {
		return domain.Posting{}, domain.ErrAlreadyProcessed
	}

	amount, err := decimal.NewFromString(current.Amount)
	if err != nil {
		return domain.Posting{}, fmt.Errorf("parse transaction amount: %w", err)
	}

	source, ok := r.store.accounts[current.AccountID]
	if !ok {
		return domain.Posting{}, domain.ErrRecordNotFound
	}
	sourceBalance, err := decimal.NewFromString(source.Balance)
	if err != nil {
		return domain.Posting{}, fmt.Errorf("parse account balance: %w", err)
	}

	if current.TransactionType.Debits() && sourceBalance.LessThan(amount) {
		return domain.Posting{}, domain.ErrInsufficientBalance
	}

	now := time.Now().UTC()
	var recipientBalance *string

	switch current.TransactionType {
	case domain.TransactionTypeDeposit:
		sourceBalance = sourceBalance.Add(amount)
	case domain.TransactionTypeTransfer:
		recipient, ok := r.store.accounts[*current.RecipientAccountID]
		if !ok {
			return domain.Posting{}, domain.ErrRecordNotFound
		}
		credited, err := decimal.NewFromString(recipient.Balance)
		if err != nil {
			return domain.Posting{}, fmt.Errorf("parse recipient balance: %w", err)
		}
		credited = credited.Add(amount)
		recipient.Balance = credited.StringFixed(2)
		recipient.UpdatedAt = now
		r.store.accounts[recipient.ID] = recipient

		sourceBalance = sourceBalance.Sub(amount)
		value := credited.StringFixed(2)
		recipientBalance = &value
	default:
		sourceBalance = sourceBalance.Sub(amount)
	}

	source.Balance = sourceBalance.StringFixed(2)
	source.UpdatedAt = now
	r.store.accounts[source.ID] = source

	current.Status = domain.TransactionStatusCompleted
	current.UpdatedAt = now
	r.store.transactions[current.ID] = current

	return domain.Posting{
		Transaction:      current,
		AccountBalance:   source.Balance,
		RecipientBalance: recipientBalance,
	}, nil
}

func (r *LedgerRepository) MarkFailed(_ context.Context, transactionID string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, ok := r.store.transactions[transactionID]
	if !ok {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	if current.Status != domain.TransactionStatusPending {
		return domain.Transaction{}, domain.ErrAlreadyProcessed
	}

	current.Status = domain.TransactionStatusFailed
	current.UpdatedAt = time.Now().UTC()
	r.store.transactions[transactionID] = current

	return current, nil
}
