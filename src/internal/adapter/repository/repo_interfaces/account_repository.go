package repo_interfaces

import (
	"context"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

type AccountRepository interface {
	Create(ctx context.Context, account domain.Account) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	GetByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	GetByUserID(ctx context.Context, userID string) (domain.Account, error)
	UpdateStatus(ctx context.Context, id string, status domain.AccountStatus) (domain.Account, error)
}
