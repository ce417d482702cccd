package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/commons"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (commons.Response[models.RegisterResponse], error)
	VerifyEmail(ctx context.Context, token string) (commons.Response[models.VerifyEmailResponse], error)
}

type AccountCreator interface {
	CreateAccount(ctx context.Context, userID string, req models.CreateAccountRequest) (commons.Response[models.AccountResponse], error)
}

type UserController struct {
	userService UserService
	accounts    AccountCreator
}

func NewUserController(userService UserService, accounts AccountCreator) *UserController {
	return &UserController{userService: userService, accounts: accounts}
}

func (c *UserController) RegisterRoutes(mux *http.ServeMux, _ func(http.Handler) http.Handler) {
	mux.Handle("/register", http.HandlerFunc(c.register))
	mux.Handle("/verify-email", http.HandlerFunc(c.verifyEmail))
}

func (c *UserController) register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.RegisterResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.RegisterResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.userService.Register(r.Context(), req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	// Post-registration orchestration: the fresh user gets their account
	// here, as an explicit call rather than a persistence hook.
	if response.Data != nil {
		if _, err := c.accounts.CreateAccount(r.Context(), response.Data.ID, models.CreateAccountRequest{}); err != nil {
			logError(r, err, logger.Fields{"userId": response.Data.ID})
		}
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *UserController) verifyEmail(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.VerifyEmailResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	token := r.URL.Query().Get("token")

	response, err := c.userService.VerifyEmail(r.Context(), token)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusOK, response)
	logResponse(r, http.StatusOK, response, start)
}
