package repo_interfaces

import (
	"context"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

// LedgerRepository posts the monetary effect of a pending transaction.
//
// Apply must hold exclusive locks on the transaction row and every account
// row it touches for the whole read-check-write sequence, re-check that the
// transaction is still pending under that lock, and persist the balance
// change(s) together with the completed status as one atomic unit. A loser
// of a concurrent approval race gets domain.ErrAlreadyProcessed; a debit
// exceeding the locked balance gets domain.ErrInsufficientBalance with no
// mutation and the transaction left pending; a bounded lock wait that
// expires gets domain.ErrAccountBusy.
type LedgerRepository interface {
	Apply(ctx context.Context, transaction domain.Transaction) (domain.Posting, error)
	MarkFailed(ctx context.Context, transactionID string) (domain.Transaction, error)
}
