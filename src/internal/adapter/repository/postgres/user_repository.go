package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, first_name, last_name, phone_number, password_hash,
	is_email_verified, is_admin, email_verification_token, email_verification_expires,
	created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const query = `
INSERT INTO users (
	email,
	username,
	first_name,
	last_name,
	phone_number,
	password_hash,
	is_email_verified,
	is_admin,
	email_verification_token,
	email_verification_expires
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, created_at, updated_at`

	var (
		id        string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := r.db.QueryRowContext(
		ctx,
		query,
		user.Email,
		user.Username,
		user.FirstName,
		user.LastName,
		user.PhoneNumber,
		user.PasswordHash,
		user.IsEmailVerified,
		user.IsAdmin,
		user.EmailVerificationToken,
		user.EmailVerificationExpires,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}

	user.ID = id
	user.CreatedAt = createdAt
	user.UpdatedAt = updatedAt

	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id), "get user by id")
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email), "get user by email")
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_verification_token = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, token), "get user by verification token")
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE email = $1`, email).Scan(&count); err != nil {
		return false, fmt.Errorf("check user email exists: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE username = $1`, username).Scan(&count); err != nil {
		return false, fmt.Errorf("check username exists: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string) error {
	const query = `
UPDATE users
SET is_email_verified = TRUE,
    email_verification_token = NULL,
    email_verification_expires = NULL,
    updated_at = NOW()
WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark email verified rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrRecordNotFound
	}

	return nil
}

func (r *UserRepository) scanUser(row *sql.Row, op string) (domain.User, error) {
	var (
		user         domain.User
		token        sql.NullString
		tokenExpires sql.NullTime
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.PhoneNumber,
		&user.PasswordHash,
		&user.IsEmailVerified,
		&user.IsAdmin,
		&token,
		&tokenExpires,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrRecordNotFound
		}
		return domain.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if token.Valid {
		value := token.String
		user.EmailVerificationToken = &value
	}
	if tokenExpires.Valid {
		value := tokenExpires.Time
		user.EmailVerificationExpires = &value
	}

	return user, nil
}
