package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/commons"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

// accountNumberAttempts bounds retries on account-number collisions before
// creation gives up.
const accountNumberAttempts = 5

const dashboardRecentTransactions = 10

type AccountService struct {
	accountRepo     repo_interfaces.AccountRepository
	userRepo        repo_interfaces.UserRepository
	transactionRepo repo_interfaces.TransactionRepository
	numberGenerator AccountNumberGenerator
}

func NewAccountService(
	accountRepo repo_interfaces.AccountRepository,
	userRepo repo_interfaces.UserRepository,
	transactionRepo repo_interfaces.TransactionRepository,
	numberGenerator AccountNumberGenerator,
) *AccountService {
	return &AccountService{
		accountRepo:     accountRepo,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		numberGenerator: numberGenerator,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, userID string, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"userId":      userID,
		"accountType": req.AccountType,
	})

	accountType := domain.AccountType(strings.TrimSpace(req.AccountType))
	if accountType == "" {
		accountType = domain.AccountTypeSavings
	}
	if !accountType.Valid() {
		err := domain.NewValidationError("invalid_account_type", "accountType must be savings, checking or credit")
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("User not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	// One account per user.
	if _, err := s.accountRepo.GetByUserID(ctx, userID); err == nil {
		verr := domain.NewValidationError("account_exists", "user already has an account")
		return commons.ErrorResponse[models.AccountResponse]("validation failed", verr.Error()), verr
	} else if !errors.Is(err, domain.ErrRecordNotFound) {
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	var created domain.Account
	var err error
	for attempt := 0; attempt < accountNumberAttempts; attempt++ {
		var accountNumber string
		accountNumber, err = s.numberGenerator.Generate()
		if err != nil {
			return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
		}

		created, err = s.accountRepo.Create(ctx, domain.Account{
			UserID:        userID,
			AccountNumber: accountNumber,
			AccountType:   accountType,
			Balance:       "0.00",
			Status:        domain.AccountStatusActive,
		})
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrDuplicateAccountNumber) {
			return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
		}
	}
	if err != nil {
		err = fmt.Errorf("account number collisions exhausted %d attempts: %w", accountNumberAttempts, err)
		logger.Error("account service create account exhausted retries", err, logger.Fields{
			"userId": userID,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	logger.Info("account service create account success", logger.Fields{
		"accountId":     created.ID,
		"accountNumber": created.AccountNumber,
		"userId":        userID,
	})

	return commons.SuccessResponse("account created successfully", mapAccountToResponse(created)), nil
}

func (s *AccountService) GetDashboard(ctx context.Context, principal domain.Principal) (commons.Response[models.DashboardResponse], error) {
	logger.Info("account service dashboard request", logger.Fields{
		"userId": principal.UserID,
	})

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.DashboardResponse]("User not found"), err
		}
		return commons.ErrorResponse[models.DashboardResponse]("failed to get dashboard", "Unable to fetch dashboard right now"), err
	}

	if !user.IsEmailVerified {
		verr := domain.NewValidationError("email_not_verified", "email verification required to access dashboard")
		return commons.ErrorResponse[models.DashboardResponse]("validation failed", verr.Error()), verr
	}

	account, err := s.accountRepo.GetByUserID(ctx, principal.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.DashboardResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.DashboardResponse]("failed to get dashboard", "Unable to fetch dashboard right now"), err
	}

	recent, _, err := s.transactionRepo.ListByAccountID(ctx, account.ID, repo_interfaces.TransactionFilter{
		Limit: dashboardRecentTransactions,
	})
	if err != nil {
		return commons.ErrorResponse[models.DashboardResponse]("failed to get dashboard", "Unable to fetch dashboard right now"), err
	}

	response := models.DashboardResponse{
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Email:              user.Email,
		IsEmailVerified:    user.IsEmailVerified,
		Account:            mapAccountToResponse(account),
		RecentTransactions: mapTransactionsToResponses(recent),
	}

	switch account.Status {
	case domain.AccountStatusFrozen:
		response.AccountMessage = "Your account is frozen. Contact support to reactivate."
	case domain.AccountStatusClosed:
		response.AccountMessage = "Your account is closed. This account cannot perform transactions."
	}

	return commons.SuccessResponse("dashboard fetched successfully", response), nil
}

func (s *AccountService) FreezeAccount(ctx context.Context, accountID string, principal domain.Principal) (commons.Response[models.AccountResponse], error) {
	return s.updateStatus(ctx, accountID, principal, domain.AccountStatusFrozen)
}

func (s *AccountService) UnfreezeAccount(ctx context.Context, accountID string, principal domain.Principal) (commons.Response[models.AccountResponse], error) {
	return s.updateStatus(ctx, accountID, principal, domain.AccountStatusActive)
}

func (s *AccountService) updateStatus(ctx context.Context, accountID string, principal domain.Principal, status domain.AccountStatus) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service update status request", logger.Fields{
		"accountId": accountID,
		"userId":    principal.UserID,
		"status":    status,
	})

	if !principal.IsAdmin {
		return commons.ErrorResponse[models.AccountResponse]("permission denied", "admin privilege required"), domain.ErrPermissionDenied
	}

	if strings.TrimSpace(accountID) == "" {
		verr := domain.NewValidationError("missing_account_id", "accountId is required")
		return commons.ErrorResponse[models.AccountResponse]("validation failed", verr.Error()), verr
	}

	account, err := s.accountRepo.UpdateStatus(ctx, accountID, status)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return commons.ErrorResponse[models.AccountResponse]("Account not found"), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to update account", "Unable to update account right now"), err
	}

	return commons.SuccessResponse("account updated successfully", mapAccountToResponse(account)), nil
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	return models.AccountResponse{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		AccountType:   string(account.AccountType),
		Balance:       account.Balance,
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     account.UpdatedAt.Format(time.RFC3339),
	}
}
