package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/memory"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/usecase/services"
)

func validRegisterRequest() models.RegisterRequest {
	return models.RegisterRequest{
		Email:       "Jane.Doe@Example.com",
		Username:    "janedoe",
		FirstName:   "Jane",
		LastName:    "Doe",
		PhoneNumber: "+15550100",
		Password:    "correct horse battery",
	}
}

func TestRegisterCreatesUnverifiedUserWithToken(t *testing.T) {
	store := memory.NewStore()
	notifier := &recordingNotifier{}
	service := services.NewUserService(store.Users(), notifier)

	response, err := service.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if response.Data.IsEmailVerified {
		t.Fatal("expected new user to start unverified")
	}
	if response.Data.Email != "jane.doe@example.com" {
		t.Fatalf("expected normalized email, got %s", response.Data.Email)
	}

	stored, err := store.Users().GetByID(context.Background(), response.Data.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.EmailVerificationToken == nil || *stored.EmailVerificationToken == "" {
		t.Fatal("expected a verification token")
	}
	if stored.EmailVerificationExpires == nil || !stored.EmailVerificationExpires.After(time.Now().UTC()) {
		t.Fatal("expected a future token expiry")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery")); err != nil {
		t.Fatalf("expected stored hash to match password: %v", err)
	}
	if stored.PasswordHash == "correct horse battery" {
		t.Fatal("password must not be stored in clear")
	}

	if len(notifier.verifications) != 1 || notifier.verifications[0] != "jane.doe@example.com" {
		t.Fatalf("expected one verification notification, got %v", notifier.verifications)
	}
}

func TestRegisterValidation(t *testing.T) {
	store := memory.NewStore()
	service := services.NewUserService(store.Users(), &recordingNotifier{})

	cases := []struct {
		name   string
		mutate func(*models.RegisterRequest)
	}{
		{"missing email", func(r *models.RegisterRequest) { r.Email = "" }},
		{"malformed email", func(r *models.RegisterRequest) { r.Email = "not-an-email" }},
		{"missing username", func(r *models.RegisterRequest) { r.Username = " " }},
		{"missing first name", func(r *models.RegisterRequest) { r.FirstName = "" }},
		{"missing last name", func(r *models.RegisterRequest) { r.LastName = "" }},
		{"short password", func(r *models.RegisterRequest) { r.Password = "short" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRegisterRequest()
			tc.mutate(&req)
			if _, err := service.Register(context.Background(), req); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestRegisterRejectsDuplicateEmailAndUsername(t *testing.T) {
	store := memory.NewStore()
	service := services.NewUserService(store.Users(), &recordingNotifier{})

	if _, err := service.Register(context.Background(), validRegisterRequest()); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dupEmail := validRegisterRequest()
	dupEmail.Username = "other"
	if _, err := service.Register(context.Background(), dupEmail); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for duplicate email, got %v", err)
	}

	// Email comparison is case insensitive.
	dupEmailCase := validRegisterRequest()
	dupEmailCase.Email = "JANE.DOE@EXAMPLE.COM"
	dupEmailCase.Username = "other2"
	if _, err := service.Register(context.Background(), dupEmailCase); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for case-folded duplicate email, got %v", err)
	}

	dupUsername := validRegisterRequest()
	dupUsername.Email = "other@example.com"
	if _, err := service.Register(context.Background(), dupUsername); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for duplicate username, got %v", err)
	}
}

func TestVerifyEmail(t *testing.T) {
	store := memory.NewStore()
	service := services.NewUserService(store.Users(), &recordingNotifier{})

	response, err := service.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	stored, err := store.Users().GetByID(context.Background(), response.Data.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}

	verified, err := service.VerifyEmail(context.Background(), *stored.EmailVerificationToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !verified.Data.IsEmailVerified {
		t.Fatal("expected verified flag in response")
	}

	after, err := store.Users().GetByID(context.Background(), response.Data.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !after.IsEmailVerified {
		t.Fatal("expected user to be marked verified")
	}
	if after.EmailVerificationToken != nil {
		t.Fatal("expected token to be cleared after verification")
	}
}

func TestVerifyEmailInvalidToken(t *testing.T) {
	store := memory.NewStore()
	service := services.NewUserService(store.Users(), &recordingNotifier{})

	if _, err := service.VerifyEmail(context.Background(), "bogus"); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := service.VerifyEmail(context.Background(), "  "); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for blank token, got %v", err)
	}
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	store := memory.NewStore()
	service := services.NewUserService(store.Users(), &recordingNotifier{})

	token := "expired-token"
	expired := time.Now().UTC().Add(-time.Hour)
	if _, err := store.Users().Create(context.Background(), domain.User{
		Email:                    "stale@example.com",
		Username:                 "stale",
		FirstName:                "Stale",
		LastName:                 "User",
		PasswordHash:             "x",
		EmailVerificationToken:   &token,
		EmailVerificationExpires: &expired,
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	if _, err := service.VerifyEmail(context.Background(), token); !domain.IsValidationError(err) {
		t.Fatalf("expected validation error for expired token, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	store := memory.NewStore()
	service := services.NewUserService(store.Users(), &recordingNotifier{})

	response, err := service.Register(context.Background(), validRegisterRequest())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := store.Users().MarkEmailVerified(context.Background(), response.Data.ID); err != nil {
		t.Fatalf("mark verified: %v", err)
	}

	principal, err := service.Authenticate(context.Background(), "jane.doe@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if principal.UserID != response.Data.ID {
		t.Fatalf("expected principal for %s, got %s", response.Data.ID, principal.UserID)
	}
	if !principal.IsEmailVerified {
		t.Fatal("expected verified principal")
	}
	if principal.IsAdmin {
		t.Fatal("expected non-admin principal")
	}

	if _, err := service.Authenticate(context.Background(), "jane.doe@example.com", "wrong password"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for wrong password, got %v", err)
	}
	if _, err := service.Authenticate(context.Background(), "nobody@example.com", "whatever"); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for unknown user, got %v", err)
	}
}
