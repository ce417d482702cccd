package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

// LedgerRepository posts balance mutations. Every Apply runs inside a
// single database transaction holding FOR UPDATE locks on the transaction
// row and the involved account rows, so the balance check and the write it
// guards cannot be split by a concurrent approval.
type LedgerRepository struct {
	db *sql.DB
}

func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// lockWait bounds how long a posting waits for contended account rows
// before surfacing a busy conflict instead of hanging.
const lockWait = "3s"

func (r *LedgerRepository) Apply(ctx context.Context, transaction domain.Transaction) (domain.Posting, error) {
	logger.Info("ledger repository apply", logger.Fields{
		"transactionId":   transaction.ID,
		"transactionType": transaction.TransactionType,
		"accountId":       transaction.AccountID,
		"amount":          transaction.Amount,
	})

	amount, err := decimal.NewFromString(transaction.Amount)
	if err != nil {
		return domain.Posting{}, fmt.Errorf("parse transaction amount: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Posting{}, fmt.Errorf("begin posting transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, execErr := tx.ExecContext(ctx, fmt.Sprintf(`SET LOCAL lock_timeout = '%s'`, lockWait)); execErr != nil {
		err = fmt.Errorf("set lock timeout: %w", execErr)
		return domain.Posting{}, err
	}

	// Serialize competing approvals on the transaction row itself: only the
	// first to lock it still observes pending.
	var status domain.TransactionStatus
	lockErr := tx.QueryRowContext(ctx,
		`SELECT status FROM transactions WHERE id = $1 FOR UPDATE`,
		transaction.ID,
	).Scan(&status)
	if lockErr != nil {
		err = classifyLockErr(lockErr, "lock transaction row")
		return domain.Posting{}, err
	}
	if status != domain.TransactionStatusPending {
		err = domain.ErrAlreadyProcessed
		return domain.Posting{}, err
	}

	// Account rows are always locked in ascending id order so two
	// opposite-direction transfers cannot deadlock.
	accountIDs := []string{transaction.AccountID}
	if transaction.RecipientAccountID != nil {
		accountIDs = append(accountIDs, *transaction.RecipientAccountID)
	}
	sort.Strings(accountIDs)

	balances := make(map[string]decimal.Decimal, len(accountIDs))
	for _, accountID := range accountIDs {
		var raw string
		rowErr := tx.QueryRowContext(ctx,
			`SELECT balance::text FROM accounts WHERE id = $1 FOR UPDATE`,
			accountID,
		).Scan(&raw)
		if rowErr != nil {
			err = classifyLockErr(rowErr, "lock account row")
			return domain.Posting{}, err
		}

		balance, parseErr := decimal.NewFromString(raw)
		if parseErr != nil {
			err = fmt.Errorf("parse locked balance: %w", parseErr)
			return domain.Posting{}, err
		}
		balances[accountID] = balance
	}

	sourceBalance := balances[transaction.AccountID]
	if transaction.TransactionType.Debits() && sourceBalance.LessThan(amount) {
		err = domain.ErrInsufficientBalance
		return domain.Posting{}, err
	}

	var recipientBalance *string
	switch transaction.TransactionType {
	case domain.TransactionTypeDeposit:
		sourceBalance = sourceBalance.Add(amount)
	case domain.TransactionTypeTransfer:
		sourceBalance = sourceBalance.Sub(amount)
		credited := balances[*transaction.RecipientAccountID].Add(amount)
		if err = updateBalance(ctx, tx, *transaction.RecipientAccountID, credited); err != nil {
			return domain.Posting{}, err
		}
		value := credited.StringFixed(2)
		recipientBalance = &value
	default:
		sourceBalance = sourceBalance.Sub(amount)
	}

	if err = updateBalance(ctx, tx, transaction.AccountID, sourceBalance); err != nil {
		return domain.Posting{}, err
	}

	result, execErr := tx.ExecContext(ctx,
		`UPDATE transactions SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
		transaction.ID, domain.TransactionStatusCompleted, domain.TransactionStatusPending,
	)
	if execErr != nil {
		err = fmt.Errorf("complete transaction: %w", execErr)
		return domain.Posting{}, err
	}
	rows, rowsErr := result.RowsAffected()
	if rowsErr != nil {
		err = fmt.Errorf("complete transaction rows affected: %w", rowsErr)
		return domain.Posting{}, err
	}
	if rows == 0 {
		err = domain.ErrAlreadyProcessed
		return domain.Posting{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Posting{}, fmt.Errorf("commit posting transaction: %w", err)
	}

	transaction.Status = domain.TransactionStatusCompleted

	logger.Info("ledger repository apply success", logger.Fields{
		"transactionId": transaction.ID,
		"newBalance":    sourceBalance.StringFixed(2),
	})

	return domain.Posting{
		Transaction:      transaction,
		AccountBalance:   sourceBalance.StringFixed(2),
		RecipientBalance: recipientBalance,
	}, nil
}

func (r *LedgerRepository) MarkFailed(ctx context.Context, transactionID string) (domain.Transaction, error) {
	logger.Info("ledger repository mark failed", logger.Fields{
		"transactionId": transactionID,
	})

	const query = `
UPDATE transactions
SET status = $2,
    updated_at = NOW()
WHERE id = $1
  AND status = $3
RETURNING ` + transactionColumns

	transaction, err := scanTransaction(r.db.QueryRowContext(
		ctx, query, transactionID, domain.TransactionStatusFailed, domain.TransactionStatusPending,
	))
	if err == nil {
		return transaction, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, fmt.Errorf("mark transaction failed: %w", err)
	}

	// Distinguish a missing transaction from one that already left pending.
	var count int
	if checkErr := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM transactions WHERE id = $1`, transactionID).Scan(&count); checkErr != nil {
		return domain.Transaction{}, fmt.Errorf("check transaction exists: %w", checkErr)
	}
	if count == 0 {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}

	return domain.Transaction{}, domain.ErrAlreadyProcessed
}

func updateBalance(ctx context.Context, tx *sql.Tx, accountID string, balance decimal.Decimal) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $2::numeric, updated_at = NOW() WHERE id = $1`,
		accountID, balance.StringFixed(2),
	)
	if err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account balance rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func classifyLockErr(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRecordNotFound
	}
	if isLockNotAvailable(err) {
		return domain.ErrAccountBusy
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isLockNotAvailable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "55P03"
	}
	return false
}
