package services

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/commons"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
	"github.com/mani-labs/mani-banking/src/internal/metrics"
)

// bulkApprovalConcurrency bounds how many approvals a bulk request runs at
// once. Each member is its own atomic unit either way.
const bulkApprovalConcurrency = 4

type ApprovalService struct {
	transactionRepo repo_interfaces.TransactionRepository
	accountRepo     repo_interfaces.AccountRepository
	userRepo        repo_interfaces.UserRepository
	ledgerRepo      repo_interfaces.LedgerRepository
	notifier        Notifier
}

func NewApprovalService(
	transactionRepo repo_interfaces.TransactionRepository,
	accountRepo repo_interfaces.AccountRepository,
	userRepo repo_interfaces.UserRepository,
	ledgerRepo repo_interfaces.LedgerRepository,
	notifier Notifier,
) *ApprovalService {
	return &ApprovalService{
		transactionRepo: transactionRepo,
		accountRepo:     accountRepo,
		userRepo:        userRepo,
		ledgerRepo:      ledgerRepo,
		notifier:        notifier,
	}
}

// ApproveTransaction resolves one pending transaction to completed,
// posting its balance effect. A validation failure (insufficient funds,
// missing recipient, unverified owner) reports an error and leaves the
// transaction pending for a later retry or an explicit reject.
func (s *ApprovalService) ApproveTransaction(ctx context.Context, transactionID string, principal domain.Principal) (commons.Response[models.ApprovalResponse], error) {
	logger.Info("approval service approve request", logger.Fields{
		"transactionId": transactionID,
		"approverId":    principal.UserID,
	})

	if !principal.IsAdmin {
		return commons.ErrorResponse[models.ApprovalResponse]("permission denied", "admin privilege required"), domain.ErrPermissionDenied
	}

	transaction, err := s.transactionRepo.GetByID(ctx, transactionID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.ApprovalResponse]("Transaction not found"), err
		}
		return commons.ErrorResponse[models.ApprovalResponse]("failed to approve transaction", "Unable to approve transaction right now"), err
	}

	if transaction.Status != domain.TransactionStatusPending {
		metrics.TransactionResolved(string(transaction.TransactionType), "conflict")
		return commons.ErrorResponse[models.ApprovalResponse]("Transaction already processed"), domain.ErrAlreadyProcessed
	}

	if err := s.checkPreconditions(ctx, transaction); err != nil {
		metrics.TransactionResolved(string(transaction.TransactionType), "validation_failed")
		return commons.ErrorResponse[models.ApprovalResponse]("validation failed", err.Error()), err
	}

	start := time.Now()
	posting, err := s.ledgerRepo.Apply(ctx, transaction)
	metrics.ObservePosting(start)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientBalance):
			metrics.TransactionResolved(string(transaction.TransactionType), "insufficient_funds")
			logger.Info("approval service insufficient funds", logger.Fields{
				"transactionId": transactionID,
			})
			return commons.ErrorResponse[models.ApprovalResponse]("Insufficient balance", err.Error()), err
		case errors.Is(err, domain.ErrAlreadyProcessed):
			metrics.TransactionResolved(string(transaction.TransactionType), "conflict")
			return commons.ErrorResponse[models.ApprovalResponse]("Transaction already processed"), err
		case errors.Is(err, domain.ErrAccountBusy):
			metrics.TransactionResolved(string(transaction.TransactionType), "conflict")
			return commons.ErrorResponse[models.ApprovalResponse]("Account busy", "account is locked by another operation"), err
		case errors.Is(err, domain.ErrRecordNotFound):
			return commons.ErrorResponse[models.ApprovalResponse]("Transaction not found"), err
		default:
			metrics.TransactionResolved(string(transaction.TransactionType), "error")
			logger.Error("approval service posting failed", err, logger.Fields{
				"transactionId": transactionID,
			})
			return commons.ErrorResponse[models.ApprovalResponse]("failed to approve transaction", "Unable to approve transaction right now"), err
		}
	}

	metrics.TransactionResolved(string(transaction.TransactionType), "completed")
	s.notifier.TransactionPosted(ctx, posting.Transaction)

	logger.Info("approval service approve success", logger.Fields{
		"transactionId": transactionID,
		"newBalance":    posting.AccountBalance,
	})

	return commons.SuccessResponse("transaction approved and completed", models.ApprovalResponse{
		TransactionID:    posting.Transaction.ID,
		Reference:        posting.Transaction.Reference,
		Status:           string(posting.Transaction.Status),
		AccountBalance:   posting.AccountBalance,
		RecipientBalance: posting.RecipientBalance,
	}), nil
}

// RejectTransaction resolves one pending transaction to failed with no
// balance effect.
func (s *ApprovalService) RejectTransaction(ctx context.Context, transactionID string, principal domain.Principal) (commons.Response[models.ApprovalResponse], error) {
	logger.Info("approval service reject request", logger.Fields{
		"transactionId": transactionID,
		"approverId":    principal.UserID,
	})

	if !principal.IsAdmin {
		return commons.ErrorResponse[models.ApprovalResponse]("permission denied", "admin privilege required"), domain.ErrPermissionDenied
	}

	transaction, err := s.ledgerRepo.MarkFailed(ctx, transactionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			return commons.ErrorResponse[models.ApprovalResponse]("Transaction not found"), err
		case errors.Is(err, domain.ErrAlreadyProcessed):
			metrics.TransactionResolved("unknown", "conflict")
			return commons.ErrorResponse[models.ApprovalResponse]("Transaction already processed"), err
		default:
			return commons.ErrorResponse[models.ApprovalResponse]("failed to reject transaction", "Unable to reject transaction right now"), err
		}
	}

	metrics.TransactionResolved(string(transaction.TransactionType), "rejected")

	return commons.SuccessResponse("transaction rejected", models.ApprovalResponse{
		TransactionID: transaction.ID,
		Reference:     transaction.Reference,
		Status:        string(transaction.Status),
	}), nil
}

// ApproveTransactions applies the single-transaction contract to each
// member independently; one member's failure never affects another.
func (s *ApprovalService) ApproveTransactions(ctx context.Context, transactionIDs []string, principal domain.Principal) (commons.Response[[]models.BulkApprovalResult], error) {
	return s.resolveBulk(ctx, transactionIDs, principal, s.ApproveTransaction)
}

func (s *ApprovalService) RejectTransactions(ctx context.Context, transactionIDs []string, principal domain.Principal) (commons.Response[[]models.BulkApprovalResult], error) {
	return s.resolveBulk(ctx, transactionIDs, principal, s.RejectTransaction)
}

func (s *ApprovalService) resolveBulk(
	ctx context.Context,
	transactionIDs []string,
	principal domain.Principal,
	resolve func(context.Context, string, domain.Principal) (commons.Response[models.ApprovalResponse], error),
) (commons.Response[[]models.BulkApprovalResult], error) {
	if !principal.IsAdmin {
		return commons.ErrorResponse[[]models.BulkApprovalResult]("permission denied", "admin privilege required"), domain.ErrPermissionDenied
	}
	if len(transactionIDs) == 0 {
		verr := domain.NewValidationError("missing_transaction_ids", "at least one transaction id is required")
		return commons.ErrorResponse[[]models.BulkApprovalResult]("validation failed", verr.Error()), verr
	}

	results := make([]models.BulkApprovalResult, len(transactionIDs))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(bulkApprovalConcurrency)
	for i, transactionID := range transactionIDs {
		i, transactionID := i, transactionID
		group.Go(func() error {
			response, err := resolve(groupCtx, transactionID, principal)
			result := models.BulkApprovalResult{TransactionID: transactionID}
			if err != nil {
				result.Error = response.Message
			} else {
				result.Success = true
				if response.Data != nil {
					result.Status = response.Data.Status
				}
			}
			results[i] = result
			// Per-member failures are reported in the result, never
			// propagated, so the group keeps going.
			return nil
		})
	}
	_ = group.Wait()

	return commons.SuccessResponse("bulk resolution finished", results), nil
}

func (s *ApprovalService) checkPreconditions(ctx context.Context, transaction domain.Transaction) error {
	amount, err := decimal.NewFromString(transaction.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return domain.NewValidationError("invalid_amount", "amount must be greater than zero")
	}

	if transaction.TransactionType == domain.TransactionTypeTransfer {
		if transaction.RecipientAccountID == nil {
			return domain.NewValidationError("missing_recipient", "recipient account is required for transfers")
		}
		if *transaction.RecipientAccountID == transaction.AccountID {
			return domain.NewValidationError("self_transfer", "cannot transfer to the same account")
		}
	}

	account, err := s.accountRepo.GetByID(ctx, transaction.AccountID)
	if err != nil {
		return err
	}

	owner, err := s.userRepo.GetByID(ctx, account.UserID)
	if err != nil {
		return err
	}
	if !owner.IsEmailVerified {
		return domain.NewValidationError("email_not_verified", "account owner's email must be verified")
	}

	return nil
}
