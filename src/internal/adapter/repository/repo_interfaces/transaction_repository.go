package repo_interfaces

import (
	"context"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

// TransactionFilter narrows a transaction listing. Zero values mean
// "no constraint".
type TransactionFilter struct {
	Type     domain.TransactionType
	Status   domain.TransactionStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Limit    int
	Offset   int
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction domain.Transaction) (domain.Transaction, error)
	GetByID(ctx context.Context, id string) (domain.Transaction, error)
	ListByAccountID(ctx context.Context, accountID string, filter TransactionFilter) ([]domain.Transaction, int, error)
}
