package memory

import (
	"context"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

type AccountRepository struct {
	store *Store
}

func (r *AccountRepository) Create(_ context.Context, account domain.Account) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.accounts {
		if existing.AccountNumber == account.AccountNumber {
			return domain.Account{}, domain.ErrDuplicateAccountNumber
		}
	}

	account.ID = newID()
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.store.accounts[account.ID] = account

	return account, nil
}

func (r *AccountRepository) GetByID(_ context.Context, id string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}
	return account, nil
}

func (r *AccountRepository) GetByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, account := range r.store.accounts {
		if account.AccountNumber == accountNumber {
			return account, nil
		}
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (r *AccountRepository) GetByUserID(_ context.Context, userID string) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, account := range r.store.accounts {
		if account.UserID == userID {
			return account, nil
		}
	}
	return domain.Account{}, domain.ErrRecordNotFound
}

func (r *AccountRepository) UpdateStatus(_ context.Context, id string, status domain.AccountStatus) (domain.Account, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrRecordNotFound
	}

	account.Status = status
	account.UpdatedAt = time.Now().UTC()
	r.store.accounts[id] = account

	return account, nil
}
