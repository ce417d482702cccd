package services_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/memory"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/usecase/services"
)

// sequenceGenerator replays a fixed list of account numbers, then repeats
// the last one forever.
type sequenceGenerator struct {
	numbers []string
	calls   int
}

func (g *sequenceGenerator) Generate() (string, error) {
	i := g.calls
	if i >= len(g.numbers) {
		i = len(g.numbers) - 1
	}
	g.calls++
	return g.numbers[i], nil
}

func newAccountService(store *memory.Store, generator services.AccountNumberGenerator) *services.AccountService {
	if generator == nil {
		generator = services.NewRandomAccountNumberGenerator()
	}
	return services.NewAccountService(store.Accounts(), store.Users(), store.Transactions(), generator)
}

func seedUser(t *testing.T, store *memory.Store, email string, verified bool) domain.User {
	t.Helper()

	user, err := store.Users().Create(context.Background(), domain.User{
		Email:           email,
		Username:        email,
		FirstName:       "Test",
		LastName:        "User",
		PasswordHash:    "x",
		IsEmailVerified: verified,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestCreateAccountDefaultsToSavings(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "a@example.com", true)
	service := newAccountService(store, nil)

	response, err := service.CreateAccount(context.Background(), user.ID, models.CreateAccountRequest{})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	if response.Data.AccountType != string(domain.AccountTypeSavings) {
		t.Fatalf("expected savings by default, got %s", response.Data.AccountType)
	}
	if response.Data.Balance != "0.00" {
		t.Fatalf("expected zero opening balance, got %s", response.Data.Balance)
	}
	if len(response.Data.AccountNumber) != 12 {
		t.Fatalf("expected 12-digit account number, got %q", response.Data.AccountNumber)
	}
	for _, r := range response.Data.AccountNumber {
		if r < '0' || r > '9' {
			t.Fatalf("expected numeric account number, got %q", response.Data.AccountNumber)
		}
	}
}

func TestCreateAccountRejectsInvalidType(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "a@example.com", true)
	service := newAccountService(store, nil)

	_, err := service.CreateAccount(context.Background(), user.ID, models.CreateAccountRequest{AccountType: "offshore"})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateAccountOnePerUser(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "a@example.com", true)
	service := newAccountService(store, nil)

	if _, err := service.CreateAccount(context.Background(), user.ID, models.CreateAccountRequest{}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := service.CreateAccount(context.Background(), user.ID, models.CreateAccountRequest{AccountType: "checking"})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for second account, got %v", err)
	}
}

func TestCreateAccountUnknownUser(t *testing.T) {
	store := memory.NewStore()
	service := newAccountService(store, nil)

	_, err := service.CreateAccount(context.Background(), "ghost", models.CreateAccountRequest{})
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestCreateAccountRetriesOnCollision(t *testing.T) {
	store := memory.NewStore()
	first := seedUser(t, store, "first@example.com", true)
	second := seedUser(t, store, "second@example.com", true)

	generator := &sequenceGenerator{numbers: []string{"111111111111", "111111111111", "222222222222"}}
	service := newAccountService(store, generator)

	if _, err := service.CreateAccount(context.Background(), first.ID, models.CreateAccountRequest{}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	response, err := service.CreateAccount(context.Background(), second.ID, models.CreateAccountRequest{})
	if err != nil {
		t.Fatalf("expected collision retry to succeed: %v", err)
	}
	if response.Data.AccountNumber != "222222222222" {
		t.Fatalf("expected retried number, got %s", response.Data.AccountNumber)
	}
}

func TestCreateAccountGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := memory.NewStore()
	first := seedUser(t, store, "first@example.com", true)
	second := seedUser(t, store, "second@example.com", true)

	generator := &sequenceGenerator{numbers: []string{"111111111111"}}
	service := newAccountService(store, generator)

	if _, err := service.CreateAccount(context.Background(), first.ID, models.CreateAccountRequest{}); err != nil {
		t.Fatalf("first create: %v", err)
	}

	_, err := service.CreateAccount(context.Background(), second.ID, models.CreateAccountRequest{})
	if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
		t.Fatalf("expected duplicate account number after exhausting retries, got %v", err)
	}
	// One attempt for the first user plus the bounded retries for the second.
	if want := 1 + 5; generator.calls != want {
		t.Fatalf("expected %d generator calls, got %d (retries must be bounded)", want, generator.calls)
	}
}

func TestDashboardRequiresVerifiedEmail(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "a@example.com", false)
	service := newAccountService(store, nil)

	_, err := service.GetDashboard(context.Background(), domain.Principal{UserID: user.ID})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDashboardShowsRecentTransactionsNewestFirst(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "a@example.com", true)
	service := newAccountService(store, nil)

	created, err := service.CreateAccount(context.Background(), user.ID, models.CreateAccountRequest{})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	for i := 0; i < 12; i++ {
		if _, err := store.Transactions().Create(context.Background(), domain.Transaction{
			Reference:       "ref-" + strconv.Itoa(i),
			AccountID:       created.Data.ID,
			Amount:          "1.00",
			Description:     "seed " + strconv.Itoa(i),
			TransactionType: domain.TransactionTypeDeposit,
			Status:          domain.TransactionStatusPending,
			CreatedBy:       user.ID,
		}); err != nil {
			t.Fatalf("seed transaction %d: %v", i, err)
		}
	}

	response, err := service.GetDashboard(context.Background(), domain.Principal{UserID: user.ID, IsEmailVerified: true})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if len(response.Data.RecentTransactions) != 10 {
		t.Fatalf("expected 10 recent transactions, got %d", len(response.Data.RecentTransactions))
	}
	if response.Data.Account.ID != created.Data.ID {
		t.Fatalf("expected account %s, got %s", created.Data.ID, response.Data.Account.ID)
	}
	if response.Data.AccountMessage != "" {
		t.Fatalf("expected no status message for an active account, got %q", response.Data.AccountMessage)
	}
}

func TestDashboardFrozenAccountMessage(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "a@example.com", true)
	service := newAccountService(store, nil)

	created, err := service.CreateAccount(context.Background(), user.ID, models.CreateAccountRequest{})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if _, err := store.Accounts().UpdateStatus(context.Background(), created.Data.ID, domain.AccountStatusFrozen); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	response, err := service.GetDashboard(context.Background(), domain.Principal{UserID: user.ID, IsEmailVerified: true})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if response.Data.AccountMessage == "" {
		t.Fatal("expected a frozen-account message")
	}
}

func TestFreezeAccountRequiresAdmin(t *testing.T) {
	store := memory.NewStore()
	user := seedUser(t, store, "a@example.com", true)
	service := newAccountService(store, nil)

	created, err := service.CreateAccount(context.Background(), user.ID, models.CreateAccountRequest{})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	_, err = service.FreezeAccount(context.Background(), created.Data.ID, domain.Principal{UserID: user.ID, IsEmailVerified: true})
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}

	admin := domain.Principal{UserID: "admin", IsEmailVerified: true, IsAdmin: true}
	frozen, err := service.FreezeAccount(context.Background(), created.Data.ID, admin)
	if err != nil {
		t.Fatalf("freeze as admin: %v", err)
	}
	if frozen.Data.Status != string(domain.AccountStatusFrozen) {
		t.Fatalf("expected frozen status, got %s", frozen.Data.Status)
	}

	active, err := service.UnfreezeAccount(context.Background(), created.Data.ID, admin)
	if err != nil {
		t.Fatalf("unfreeze as admin: %v", err)
	}
	if active.Data.Status != string(domain.AccountStatusActive) {
		t.Fatalf("expected active status, got %s", active.Data.Status)
	}
}
