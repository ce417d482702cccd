package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/domain"
)

type TransactionRepository struct {
	store *Store
}

func (r *TransactionRepository) Create(_ context.Context, transaction domain.Transaction) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction.ID = newID()
	now := time.Now().UTC()
	transaction.Date = now
	transaction.UpdatedAt = now
	r.store.transactions[transaction.ID] = transaction

	return transaction, nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (domain.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	transaction, ok := r.store.transactions[id]
	if !ok {
		return domain.Transaction{}, domain.ErrRecordNotFound
	}
	return transaction, nil
}

func (r *TransactionRepository) ListByAccountID(_ context.Context, accountID string, filter repo_interfaces.TransactionFilter) ([]domain.Transaction, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]domain.Transaction, 0)
	for _, transaction := range r.store.transactions {
		if transaction.AccountID != accountID {
			continue
		}
		if filter.Type != "" && transaction.TransactionType != filter.Type {
			continue
		}
		if filter.Status != "" && transaction.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil && transaction.Date.Before(*filter.DateFrom) {
			continue
		}
		if filter.DateTo != nil && transaction.Date.After(*filter.DateTo) {
			continue
		}
		if search := strings.TrimSpace(filter.Search); search != "" {
			if !strings.Contains(strings.ToLower(transaction.Description), strings.ToLower(search)) &&
				!strings.Contains(transaction.Amount, search) {
				continue
			}
		}
		matched = append(matched, transaction)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	total := len(matched)

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.Transaction{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return matched[offset:end], total, nil
}
