// Package memory holds in-process repository implementations with the same
// conflict and guard semantics as the postgres ones. Service tests run
// against them.
package memory

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

type Store struct {
	mu           sync.Mutex
	users        map[string]domain.User
	accounts     map[string]domain.Account
	transactions map[string]domain.Transaction
}

func NewStore() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		accounts:     make(map[string]domain.Account),
		transactions: make(map[string]domain.Transaction),
	}
}

func (s *Store) Users() *UserRepository               { return &UserRepository{store: s} }
func (s *Store) Accounts() *AccountRepository         { return &AccountRepository{store: s} }
func (s *Store) Transactions() *TransactionRepository { return &TransactionRepository{store: s} }
func (s *Store) Ledger() *LedgerRepository            { return &LedgerRepository{store: s} }

func newID() string {
	return uuid.NewString()
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
