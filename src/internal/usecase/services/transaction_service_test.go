package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/memory"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/usecase/services"
)

func newTransactionService(store *memory.Store) *services.TransactionService {
	return services.NewTransactionService(store.Transactions(), store.Accounts())
}

func principalFor(account domain.Account, verified bool) domain.Principal {
	return domain.Principal{UserID: account.UserID, IsEmailVerified: verified}
}

func depositRequest(amount string) models.CreateTransactionRequest {
	return models.CreateTransactionRequest{
		TransactionType: "deposit",
		Amount:          decimal.RequireFromString(amount),
		Description:     "salary",
	}
}

func TestCreateTransactionRecordsPending(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", true)
	service := newTransactionService(env.store)

	response, err := service.CreateTransaction(context.Background(), principalFor(account, true), depositRequest("100.50"))
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if response.Data.Status != string(domain.TransactionStatusPending) {
		t.Fatalf("expected pending status, got %s", response.Data.Status)
	}
	if response.Data.Reference == "" {
		t.Fatal("expected a generated reference")
	}
	if response.Data.Amount != "100.50" {
		t.Fatalf("expected amount 100.50, got %s", response.Data.Amount)
	}

	// Creation never touches the balance.
	if got := env.balance(t, account.ID); got != "0.00" {
		t.Fatalf("expected balance untouched, got %s", got)
	}
}

func TestCreateTransactionRequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", false)
	service := newTransactionService(env.store)

	_, err := service.CreateTransaction(context.Background(), principalFor(account, false), depositRequest("10.00"))
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for unverified email, got %v", err)
	}
}

func TestCreateTransactionRejectsInactiveAccount(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", true)
	if _, err := env.store.Accounts().UpdateStatus(context.Background(), account.ID, domain.AccountStatusFrozen); err != nil {
		t.Fatalf("freeze account: %v", err)
	}
	service := newTransactionService(env.store)

	_, err := service.CreateTransaction(context.Background(), principalFor(account, true), depositRequest("10.00"))
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for frozen account, got %v", err)
	}
}

func TestCreateTransactionValidation(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", true)
	service := newTransactionService(env.store)
	principal := principalFor(account, true)

	cases := []struct {
		name string
		req  models.CreateTransactionRequest
	}{
		{"unknown type", models.CreateTransactionRequest{TransactionType: "wire", Amount: decimal.RequireFromString("10.00"), Description: "x"}},
		{"zero amount", models.CreateTransactionRequest{TransactionType: "deposit", Amount: decimal.Zero, Description: "x"}},
		{"negative amount", models.CreateTransactionRequest{TransactionType: "deposit", Amount: decimal.RequireFromString("-5.00"), Description: "x"}},
		{"sub-cent amount", models.CreateTransactionRequest{TransactionType: "deposit", Amount: decimal.RequireFromString("1.005"), Description: "x"}},
		{"missing description", models.CreateTransactionRequest{TransactionType: "deposit", Amount: decimal.RequireFromString("10.00"), Description: "  "}},
		{"transfer without recipient", models.CreateTransactionRequest{TransactionType: "transfer", Amount: decimal.RequireFromString("10.00"), Description: "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateTransaction(context.Background(), principal, tc.req)
			if !domain.IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateTransferResolvesRecipient(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "100.00", true)
	recipient := env.seedRecipient(t, "0.00")
	service := newTransactionService(env.store)

	response, err := service.CreateTransaction(context.Background(), principalFor(account, true), models.CreateTransactionRequest{
		TransactionType:        "transfer",
		Amount:                 decimal.RequireFromString("25.00"),
		RecipientAccountNumber: recipient.AccountNumber,
		Description:            "rent share",
	})
	if err != nil {
		t.Fatalf("create transfer: %v", err)
	}
	if response.Data.RecipientAccountNumber != recipient.AccountNumber {
		t.Fatalf("expected recipient number %s, got %s", recipient.AccountNumber, response.Data.RecipientAccountNumber)
	}

	stored, err := env.store.Transactions().GetByID(context.Background(), response.Data.ID)
	if err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if stored.RecipientAccountID == nil || *stored.RecipientAccountID != recipient.ID {
		t.Fatalf("expected recipient id %s, got %v", recipient.ID, stored.RecipientAccountID)
	}
}

func TestCreateTransferToSelfRejected(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "100.00", true)
	service := newTransactionService(env.store)

	_, err := service.CreateTransaction(context.Background(), principalFor(account, true), models.CreateTransactionRequest{
		TransactionType:        "transfer",
		Amount:                 decimal.RequireFromString("10.00"),
		RecipientAccountNumber: account.AccountNumber,
		Description:            "loop",
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for self transfer, got %v", err)
	}
}

func TestCreateTransferUnknownRecipientRejected(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "100.00", true)
	service := newTransactionService(env.store)

	_, err := service.CreateTransaction(context.Background(), principalFor(account, true), models.CreateTransactionRequest{
		TransactionType:        "transfer",
		Amount:                 decimal.RequireFromString("10.00"),
		RecipientAccountNumber: "999999999999",
		Description:            "nowhere",
	})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for unknown recipient, got %v", err)
	}
}

func TestCreateTransactionWithoutAccount(t *testing.T) {
	env := newTestEnv(t)
	service := newTransactionService(env.store)
	principal := domain.Principal{UserID: "no-account", IsEmailVerified: true}

	_, err := service.CreateTransaction(context.Background(), principal, depositRequest("10.00"))
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected record not found, got %v", err)
	}
}

func TestListTransactionsFiltersAndPaginates(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", true)
	service := newTransactionService(env.store)

	env.seedPending(t, account, domain.TransactionTypeDeposit, "10.00", nil)
	env.seedPending(t, account, domain.TransactionTypeDeposit, "20.00", nil)
	env.seedPending(t, account, domain.TransactionTypeWithdrawal, "5.00", nil)

	response, err := service.ListTransactions(context.Background(), principalFor(account, true), repo_interfaces.TransactionFilter{
		Type: domain.TransactionTypeDeposit,
	})
	if err != nil {
		t.Fatalf("list deposits: %v", err)
	}
	if response.Data.Total != 2 {
		t.Fatalf("expected 2 deposits, got %d", response.Data.Total)
	}
	for _, item := range response.Data.Items {
		if item.TransactionType != string(domain.TransactionTypeDeposit) {
			t.Fatalf("unexpected type in filtered listing: %s", item.TransactionType)
		}
	}

	paged, err := service.ListTransactions(context.Background(), principalFor(account, true), repo_interfaces.TransactionFilter{
		Limit:  2,
		Offset: 2,
	})
	if err != nil {
		t.Fatalf("list with pagination: %v", err)
	}
	if paged.Data.Total != 3 {
		t.Fatalf("expected total 3, got %d", paged.Data.Total)
	}
	if len(paged.Data.Items) != 1 {
		t.Fatalf("expected 1 item on the last page, got %d", len(paged.Data.Items))
	}
}

func TestListTransactionsSearchesDescription(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", true)
	service := newTransactionService(env.store)

	if _, err := env.store.Transactions().Create(context.Background(), domain.Transaction{
		Reference:       "ref-groceries",
		AccountID:       account.ID,
		Amount:          "42.00",
		Description:     "Weekly groceries",
		TransactionType: domain.TransactionTypePayment,
		Status:          domain.TransactionStatusPending,
		CreatedBy:       account.UserID,
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
	env.seedPending(t, account, domain.TransactionTypeDeposit, "10.00", nil)

	response, err := service.ListTransactions(context.Background(), principalFor(account, true), repo_interfaces.TransactionFilter{
		Search: "groceries",
	})
	if err != nil {
		t.Fatalf("list with search: %v", err)
	}
	if response.Data.Total != 1 {
		t.Fatalf("expected 1 match, got %d", response.Data.Total)
	}
	if response.Data.Items[0].Description != "Weekly groceries" {
		t.Fatalf("unexpected match: %+v", response.Data.Items[0])
	}
}

func TestListTransactionsRequiresVerifiedEmail(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", false)
	service := newTransactionService(env.store)

	_, err := service.ListTransactions(context.Background(), principalFor(account, false), repo_interfaces.TransactionFilter{})
	if !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAssertAccountOwner(t *testing.T) {
	env := newTestEnv(t)
	account := env.seedAccount(t, "0.00", true)
	service := newTransactionService(env.store)

	if err := service.AssertAccountOwner(context.Background(), account.ID, account.UserID); err != nil {
		t.Fatalf("expected owner check to pass: %v", err)
	}

	err := service.AssertAccountOwner(context.Background(), account.ID, "someone-else")
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}
