package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/commons"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
	"github.com/mani-labs/mani-banking/src/internal/metrics"
)

type TransactionService struct {
	transactionRepo repo_interfaces.TransactionRepository
	accountRepo     repo_interfaces.AccountRepository
}

func NewTransactionService(
	transactionRepo repo_interfaces.TransactionRepository,
	accountRepo repo_interfaces.AccountRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
	}
}

// AssertAccountOwner is the ownership-check primitive: the request layer
// calls it before acting on an explicit account id.
func (s *TransactionService) AssertAccountOwner(ctx context.Context, accountID, userID string) error {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.UserID != userID {
		return domain.ErrPermissionDenied
	}
	return nil
}

// CreateTransaction records a pending transaction against the caller's own
// account. Balances are untouched until the approval workflow posts it.
func (s *TransactionService) CreateTransaction(ctx context.Context, principal domain.Principal, req models.CreateTransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transaction service create request", logger.Fields{
		"userId":  principal.UserID,
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		verr := domain.NewValidationError("invalid_request", err.Error())
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", verr.Error()), verr
	}

	if !principal.IsEmailVerified {
		verr := domain.NewValidationError("email_not_verified", "email must be verified to perform transactions")
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", verr.Error()), verr
	}

	account, err := s.accountRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.TransactionResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.TransactionResponse]("failed to create transaction", "Unable to create transaction right now"), err
	}

	if account.Status != domain.AccountStatusActive {
		verr := domain.NewValidationError("account_not_active", "cannot create transactions for a "+string(account.Status)+" account")
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", verr.Error()), verr
	}

	transactionType := domain.TransactionType(strings.TrimSpace(req.TransactionType))

	var recipientID *string
	var recipientNumber string
	if transactionType == domain.TransactionTypeTransfer {
		recipient, err := s.accountRepo.GetByAccountNumber(ctx, strings.TrimSpace(req.RecipientAccountNumber))
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				verr := domain.NewValidationError("recipient_not_found", "recipient account does not exist")
				return commons.ErrorResponse[models.TransactionResponse]("validation failed", verr.Error()), verr
			}
			return commons.ErrorResponse[models.TransactionResponse]("failed to create transaction", "Unable to create transaction right now"), err
		}
		if recipient.ID == account.ID {
			verr := domain.NewValidationError("self_transfer", "cannot transfer to the same account")
			return commons.ErrorResponse[models.TransactionResponse]("validation failed", verr.Error()), verr
		}
		recipientID = &recipient.ID
		recipientNumber = recipient.AccountNumber
	}

	created, err := s.transactionRepo.Create(ctx, domain.Transaction{
		Reference:          uuid.NewString(),
		AccountID:          account.ID,
		RecipientAccountID: recipientID,
		Amount:             req.Amount.StringFixed(2),
		Description:        strings.TrimSpace(req.Description),
		TransactionType:    transactionType,
		Status:             domain.TransactionStatusPending,
		CreatedBy:          principal.UserID,
	})
	if err != nil {
		logger.Error("transaction service create repository failed", err, logger.Fields{
			"accountId": account.ID,
		})
		return commons.ErrorResponse[models.TransactionResponse]("failed to create transaction", "Unable to create transaction right now"), err
	}

	metrics.TransactionCreated(string(transactionType))

	logger.Info("transaction service create success", logger.Fields{
		"transactionId": created.ID,
		"reference":     created.Reference,
	})

	response := mapTransactionToResponse(created)
	response.AccountNumber = account.AccountNumber
	response.RecipientAccountNumber = recipientNumber

	return commons.SuccessResponse("transaction created and pending approval", response), nil
}

// ListTransactions returns a filtered, newest-first page of the caller's
// own transactions.
func (s *TransactionService) ListTransactions(ctx context.Context, principal domain.Principal, filter repo_interfaces.TransactionFilter) (commons.Response[commons.Page[models.TransactionResponse]], error) {
	logger.Info("transaction service list request", logger.Fields{
		"userId": principal.UserID,
	})

	if !principal.IsEmailVerified {
		verr := domain.NewValidationError("email_not_verified", "email must be verified to view transactions")
		return commons.ErrorResponse[commons.Page[models.TransactionResponse]]("validation failed", verr.Error()), verr
	}

	account, err := s.accountRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[commons.Page[models.TransactionResponse]]("Account not found"), err
		}
		return commons.ErrorResponse[commons.Page[models.TransactionResponse]]("failed to list transactions", "Unable to list transactions right now"), err
	}

	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	transactions, total, err := s.transactionRepo.ListByAccountID(ctx, account.ID, filter)
	if err != nil {
		return commons.ErrorResponse[commons.Page[models.TransactionResponse]]("failed to list transactions", "Unable to list transactions right now"), err
	}

	page := commons.Page[models.TransactionResponse]{
		Items:  mapTransactionsToResponses(transactions),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	return commons.SuccessResponse("transactions fetched successfully", page), nil
}

func mapTransactionToResponse(transaction domain.Transaction) models.TransactionResponse {
	return models.TransactionResponse{
		ID:              transaction.ID,
		Reference:       transaction.Reference,
		Amount:          transaction.Amount,
		Description:     transaction.Description,
		TransactionType: string(transaction.TransactionType),
		Status:          string(transaction.Status),
		Date:            transaction.Date.Format(time.RFC3339),
	}
}

func mapTransactionsToResponses(transactions []domain.Transaction) []models.TransactionResponse {
	out := make([]models.TransactionResponse, 0, len(transactions))
	for _, transaction := range transactions {
		out = append(out, mapTransactionToResponse(transaction))
	}
	return out
}
