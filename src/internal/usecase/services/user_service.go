package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/commons"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

const verificationTokenTTL = 24 * time.Hour

// Notifier receives facts the core emits for out-of-scope delivery
// channels. The core never sends email itself.
type Notifier interface {
	VerificationRequested(ctx context.Context, email, token string)
	TransactionPosted(ctx context.Context, transaction domain.Transaction)
}

// LogNotifier is the wired Notifier; it records the fact and nothing else.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) VerificationRequested(_ context.Context, email, _ string) {
	logger.Info("notification verification requested", logger.Fields{
		"email": email,
	})
}

func (n *LogNotifier) TransactionPosted(_ context.Context, transaction domain.Transaction) {
	logger.Info("notification transaction posted", logger.Fields{
		"transactionId":   transaction.ID,
		"transactionType": transaction.TransactionType,
		"status":          transaction.Status,
	})
}

type UserService struct {
	userRepo repo_interfaces.UserRepository
	notifier Notifier
}

func NewUserService(userRepo repo_interfaces.UserRepository, notifier Notifier) *UserService {
	return &UserService{userRepo: userRepo, notifier: notifier}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (commons.Response[models.RegisterResponse], error) {
	logger.Info("user service register request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("user service register validation failed", err, nil)
		return commons.ErrorResponse[models.RegisterResponse]("validation failed", err.Error()), err
	}

	email := normalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	emailTaken, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register right now"), err
	}
	if emailTaken {
		verr := domain.NewValidationError("email_taken", "email already exists")
		return commons.ErrorResponse[models.RegisterResponse]("validation failed", verr.Error()), verr
	}

	usernameTaken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register right now"), err
	}
	if usernameTaken {
		verr := domain.NewValidationError("username_taken", "username already exists")
		return commons.ErrorResponse[models.RegisterResponse]("validation failed", verr.Error()), verr
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(req.Password)), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("hash password: %w", err)
		logger.Error("user service register hash failed", err, nil)
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register right now"), err
	}

	token := uuid.NewString()
	tokenExpires := time.Now().UTC().Add(verificationTokenTTL)

	created, err := s.userRepo.Create(ctx, domain.User{
		Email:                    email,
		Username:                 username,
		FirstName:                strings.TrimSpace(req.FirstName),
		LastName:                 strings.TrimSpace(req.LastName),
		PhoneNumber:              strings.TrimSpace(req.PhoneNumber),
		PasswordHash:             string(passwordHash),
		EmailVerificationToken:   &token,
		EmailVerificationExpires: &tokenExpires,
	})
	if err != nil {
		logger.Error("user service register repository failed", err, logger.Fields{
			"email": email,
		})
		return commons.ErrorResponse[models.RegisterResponse]("failed to register user", "Unable to register right now"), err
	}

	// Explicit post-registration step, not a persistence hook.
	s.notifier.VerificationRequested(ctx, created.Email, token)

	response := models.RegisterResponse{
		ID:              created.ID,
		Email:           created.Email,
		Username:        created.Username,
		FirstName:       created.FirstName,
		LastName:        created.LastName,
		IsEmailVerified: created.IsEmailVerified,
	}

	logger.Info("user service register success", logger.Fields{
		"userId": created.ID,
	})

	return commons.SuccessResponse("user registered successfully. Please verify your email", response), nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) (commons.Response[models.VerifyEmailResponse], error) {
	logger.Info("user service verify email request", nil)

	token = strings.TrimSpace(token)
	if token == "" {
		verr := domain.NewValidationError("missing_token", "token is required")
		return commons.ErrorResponse[models.VerifyEmailResponse]("validation failed", verr.Error()), verr
	}

	user, err := s.userRepo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			verr := domain.NewValidationError("invalid_token", "invalid verification link")
			return commons.ErrorResponse[models.VerifyEmailResponse]("validation failed", verr.Error()), verr
		}
		return commons.ErrorResponse[models.VerifyEmailResponse]("failed to verify email", "Unable to verify email right now"), err
	}

	if user.IsEmailVerified {
		return commons.SuccessResponse("email already verified", models.VerifyEmailResponse{
			Email:           user.Email,
			IsEmailVerified: true,
		}), nil
	}

	if user.EmailVerificationExpires != nil && user.EmailVerificationExpires.Before(time.Now().UTC()) {
		verr := domain.NewValidationError("token_expired", "verification link has expired")
		return commons.ErrorResponse[models.VerifyEmailResponse]("validation failed", verr.Error()), verr
	}

	if err := s.userRepo.MarkEmailVerified(ctx, user.ID); err != nil {
		return commons.ErrorResponse[models.VerifyEmailResponse]("failed to verify email", "Unable to verify email right now"), err
	}

	logger.Info("user service verify email success", logger.Fields{
		"userId": user.ID,
	})

	return commons.SuccessResponse("email verified successfully", models.VerifyEmailResponse{
		Email:           user.Email,
		IsEmailVerified: true,
	}), nil
}

// Authenticate resolves basic-auth credentials to a Principal for the
// request layer.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.Principal, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			return domain.Principal{}, domain.ErrPermissionDenied
		}
		return domain.Principal{}, fmt.Errorf("authenticate lookup: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return domain.Principal{}, domain.ErrPermissionDenied
		}
		return domain.Principal{}, fmt.Errorf("authenticate compare: %w", err)
	}

	return domain.Principal{
		UserID:          user.ID,
		IsEmailVerified: user.IsEmailVerified,
		IsAdmin:         user.IsAdmin,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
