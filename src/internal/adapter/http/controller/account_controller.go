package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/middleware"
	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/commons"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

type AccountService interface {
	GetDashboard(ctx context.Context, principal domain.Principal) (commons.Response[models.DashboardResponse], error)
	FreezeAccount(ctx context.Context, accountID string, principal domain.Principal) (commons.Response[models.AccountResponse], error)
	UnfreezeAccount(ctx context.Context, accountID string, principal domain.Principal) (commons.Response[models.AccountResponse], error)
}

type AccountController struct {
	service AccountService
}

func NewAccountController(service AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	dashboard := http.Handler(http.HandlerFunc(c.dashboard))
	freeze := http.Handler(http.HandlerFunc(c.freeze))
	unfreeze := http.Handler(http.HandlerFunc(c.unfreeze))
	if authMiddleware != nil {
		dashboard = authMiddleware(dashboard)
		freeze = authMiddleware(middleware.RequireAdmin(freeze))
		unfreeze = authMiddleware(middleware.RequireAdmin(unfreeze))
	}

	mux.Handle("/dashboard", dashboard)
	mux.Handle("/accounts/freeze", freeze)
	mux.Handle("/accounts/unfreeze", unfreeze)
}

func (c *AccountController) dashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	if r.Method != http.MethodGet {
		response := commons.ErrorResponse[models.DashboardResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response := commons.ErrorResponse[models.DashboardResponse]("unauthorized")
		writeJSON(w, http.StatusUnauthorized, response)
		logResponse(r, http.StatusUnauthorized, response, start)
		return
	}

	response, err := c.service.GetDashboard(r.Context(), principal)
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

func (c *AccountController) freeze(w http.ResponseWriter, r *http.Request) {
	c.updateStatus(w, r, c.service.FreezeAccount)
}

func (c *AccountController) unfreeze(w http.ResponseWriter, r *http.Request) {
	c.updateStatus(w, r, c.service.UnfreezeAccount)
}

func (c *AccountController) updateStatus(
	w http.ResponseWriter,
	r *http.Request,
	update func(context.Context, string, domain.Principal) (commons.Response[models.AccountResponse], error),
) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.AccountResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response := commons.ErrorResponse[models.AccountResponse]("unauthorized")
		writeJSON(w, http.StatusUnauthorized, response)
		logResponse(r, http.StatusUnauthorized, response, start)
		return
	}

	var req models.AccountStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		response := commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := update(r.Context(), req.AccountID, principal)
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
