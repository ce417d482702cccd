package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, user_id, account_number, account_type, balance::text, status, created_at, updated_at`

func (r *AccountRepository) Create(ctx context.Context, account domain.Account) (domain.Account, error) {
	const query = `
INSERT INTO accounts (
	user_id,
	account_number,
	account_type,
	balance,
	status
) VALUES ($1, $2, $3, $4::numeric, $5)
RETURNING id, created_at, updated_at`

	var (
		id        string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		account.UserID,
		account.AccountNumber,
		account.AccountType,
		account.Balance,
		account.Status,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		if isUniqueViolation(err) {
			return domain.Account{}, domain.ErrDuplicateAccountNumber
		}
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	account.ID = id
	account.CreatedAt = createdAt
	account.UpdatedAt = updatedAt

	return account, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, id), "get account by id")
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_number = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, accountNumber), "get account by number")
}

func (r *AccountRepository) GetByUserID(ctx context.Context, userID string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE user_id = $1`
	return r.scanAccount(r.db.QueryRowContext(ctx, query, userID), "get account by user id")
}

func (r *AccountRepository) UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	const query = `
UPDATE accounts
SET status = $2,
    updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

	return r.scanAccount(r.db.QueryRowContext(ctx, query, id, status), "update account status")
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == "23505"
	}
	return false
}

func (r *AccountRepository) scanAccount(row *sql.Row, op string) (domain.Account, error) {
	var account domain.Account

	if err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.AccountNumber,
		&account.AccountType,
		&account.Balance,
		&account.Status,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, domain.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("%s: %w", op, err)
	}

	return account, nil
}
