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

type ApprovalService interface {
	ApproveTransaction(ctx context.Context, transactionID string, principal domain.Principal) (commons.Response[models.ApprovalResponse], error)
	RejectTransaction(ctx context.Context, transactionID string, principal domain.Principal) (commons.Response[models.ApprovalResponse], error)
	ApproveTransactions(ctx context.Context, transactionIDs []string, principal domain.Principal) (commons.Response[[]models.BulkApprovalResult], error)
	RejectTransactions(ctx context.Context, transactionIDs []string, principal domain.Principal) (commons.Response[[]models.BulkApprovalResult], error)
}

type ApprovalController struct {
	service ApprovalService
}

func NewApprovalController(service ApprovalService) *ApprovalController {
	return &ApprovalController{service: service}
}

func (c *ApprovalController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	approve := http.Handler(http.HandlerFunc(c.approve))
	reject := http.Handler(http.HandlerFunc(c.reject))
	if authMiddleware != nil {
		approve = authMiddleware(middleware.RequireAdmin(approve))
		reject = authMiddleware(middleware.RequireAdmin(reject))
	}

	mux.Handle("/transactions/approve", approve)
	mux.Handle("/transactions/reject", reject)
}

func (c *ApprovalController) approve(w http.ResponseWriter, r *http.Request) {
	c.resolve(w, r, c.service.ApproveTransaction, c.service.ApproveTransactions)
}

func (c *ApprovalController) reject(w http.ResponseWriter, r *http.Request) {
	c.resolve(w, r, c.service.RejectTransaction, c.service.RejectTransactions)
}

func (c *ApprovalController) resolve(
	w http.ResponseWriter,
	r *http.Request,
	single func(context.Context, string, domain.Principal) (commons.Response[models.ApprovalResponse], error),
	bulk func(context.Context, []string, domain.Principal) (commons.Response[[]models.BulkApprovalResult], error),
) {
	start := time.Now()

	if r.Method != http.MethodPost {
		response := commons.ErrorResponse[models.ApprovalResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
		logResponse(r, http.StatusMethodNotAllowed, response, start)
		return
	}

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response := commons.ErrorResponse[models.ApprovalResponse]("unauthorized")
		writeJSON(w, http.StatusUnauthorized, response)
		logResponse(r, http.StatusUnauthorized, response, start)
		return
	}

	var req models.ApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.ApprovalResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	if err := req.Validate(); err != nil {
		response := commons.ErrorResponse[models.ApprovalResponse]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	ids := req.IDs()
	if len(ids) == 0 {
		response := commons.ErrorResponse[models.ApprovalResponse]("validation failed", "transactionId or transactionIds is required")
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	if len(ids) > 1 {
		response, err := bulk(r.Context(), ids, principal)
		if err != nil {
			logError(r, err, logger.Fields{"message": response.Message})
			status := statusForError(err)
			writeJSON(w, status, response)
			logResponse(r, status, response, start)
			return
		}
		writeJSON(w, http.StatusOK, response)
		logResponse(r, http.StatusOK, response, start)
		return
	}

	response, err := single(r.Context(), ids[0], principal)
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
