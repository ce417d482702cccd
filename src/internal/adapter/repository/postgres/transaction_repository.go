package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

const transactionColumns = `id, reference, account_id, recipient_account_id, amount::text, description,
	transaction_type, status, created_by, date, updated_at`

func (r *TransactionRepository) Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	logger.Info("transaction repository create", logger.Fields{
		"reference":       transaction.Reference,
		"accountId":       transaction.AccountID,
		"transactionType": transaction.TransactionType,
		"status":          transaction.Status,
	})

	const query = `
INSERT INTO transactions (
	reference,
	account_id,
	recipient_account_id,
	amount,
	description,
	transaction_type,
	status,
	created_by
) VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
RETURNING id, date, updated_at`

	var (
		id        string
		date      time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		transaction.Reference,
		transaction.AccountID,
		transaction.RecipientAccountID,
		transaction.Amount,
		transaction.Description,
		transaction.TransactionType,
		transaction.Status,
		transaction.CreatedBy,
	).Scan(&id, &date, &updatedAt); err != nil {
		logger.Error("transaction repository create failed", err, logger.Fields{
			"reference": transaction.Reference,
		})
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	transaction.ID = id
	transaction.Date = date
	transaction.UpdatedAt = updatedAt

	return transaction, nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	transaction, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrRecordNotFound
		}
		return domain.Transaction{}, fmt.Errorf("get transaction by id: %w", err)
	}

	return transaction, nil
}

// ListByAccountID returns a newest-first window of the account's outgoing
// transactions plus the total match count for pagination.
func (r *TransactionRepository) ListByAccountID(ctx context.Context, accountID string, filter repo_interfaces.TransactionFilter) ([]domain.Transaction, int, error) {
	where := []string{"account_id = $1"}
	args := []any{accountID}

	if filter.Type != "" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("transaction_type = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		where = append(where, fmt.Sprintf("(description ILIKE $%d OR amount::text LIKE $%d)", len(args), len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(1) FROM transactions WHERE ` + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	args = append(args, limit, offset)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM transactions WHERE %s ORDER BY date DESC LIMIT $%d OFFSET $%d`,
		transactionColumns, whereClause, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0, limit)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction row: %w", err)
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return transactions, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var (
		transaction domain.Transaction
		recipient   sql.NullString
	)

	if err := row.Scan(
		&transaction.ID,
		&transaction.Reference,
		&transaction.AccountID,
		&recipient,
		&transaction.Amount,
		&transaction.Description,
		&transaction.TransactionType,
		&transaction.Status,
		&transaction.CreatedBy,
		&transaction.Date,
		&transaction.UpdatedAt,
	); err != nil {
		return domain.Transaction{}, err
	}

	if recipient.Valid {
		value := recipient.String
		transaction.RecipientAccountID = &value
	}

	return transaction, nil
}
