package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/mani-labs/mani-banking/src/internal/adapter/http/middleware"
	"github.com/mani-labs/mani-banking/src/internal/adapter/http/models"
	"github.com/mani-labs/mani-banking/src/internal/adapter/repository/repo_interfaces"
	"github.com/mani-labs/mani-banking/src/internal/commons"
	"github.com/mani-labs/mani-banking/src/internal/domain"
	"github.com/mani-labs/mani-banking/src/internal/logger"
)

type TransactionService interface {
	CreateTransaction(ctx context.Context, principal domain.Principal, req models.CreateTransactionRequest) (commons.Response[models.TransactionResponse], error)
	ListTransactions(ctx context.Context, principal domain.Principal, filter repo_interfaces.TransactionFilter) (commons.Response[commons.Page[models.TransactionResponse]], error)
}

type TransactionController struct {
	service TransactionService
}

func NewTransactionController(service TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	handler := http.Handler(http.HandlerFunc(c.transactions))
	if authMiddleware != nil {
		handler = authMiddleware(handler)
	}

	mux.Handle("/transactions", handler)
}

func (c *TransactionController) transactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		c.create(w, r)
	case http.MethodGet:
		c.list(w, r)
	default:
		response := commons.ErrorResponse[models.TransactionResponse]("method not allowed")
		writeJSON(w, http.StatusMethodNotAllowed, response)
	}
}

func (c *TransactionController) create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response := commons.ErrorResponse[models.TransactionResponse]("unauthorized")
		writeJSON(w, http.StatusUnauthorized, response)
		logResponse(r, http.StatusUnauthorized, response, start)
		return
	}

	var req models.CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logError(r, err, nil)
		response := commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}
	logRequest(r, req)

	response, err := c.service.CreateTransaction(r.Context(), principal, req)
	if err != nil {
		logError(r, err, logger.Fields{"message": response.Message})
		status := statusForError(err)
		writeJSON(w, status, response)
		logResponse(r, status, response, start)
		return
	}

	writeJSON(w, http.StatusCreated, response)
	logResponse(r, http.StatusCreated, response, start)
}

func (c *TransactionController) list(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logRequest(r, nil)

	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		response := commons.ErrorResponse[commons.Page[models.TransactionResponse]]("unauthorized")
		writeJSON(w, http.StatusUnauthorized, response)
		logResponse(r, http.StatusUnauthorized, response, start)
		return
	}

	filter, err := parseTransactionFilter(r)
	if err != nil {
		response := commons.ErrorResponse[commons.Page[models.TransactionResponse]]("validation failed", err.Error())
		writeJSON(w, http.StatusBadRequest, response)
		logResponse(r, http.StatusBadRequest, response, start)
		return
	}

	response, err := c.service.ListTransactions(r.Context(), principal, filter)
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

func parseTransactionFilter(r *http.Request) (repo_interfaces.TransactionFilter, error) {
	query := r.URL.Query()

	filter := repo_interfaces.TransactionFilter{
		Type:   domain.TransactionType(query.Get("type")),
		Status: domain.TransactionStatus(query.Get("status")),
		Search: query.Get("search"),
	}

	if raw := query.Get("dateFrom"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return repo_interfaces.TransactionFilter{}, domain.NewValidationError("invalid_date_from", "dateFrom must be RFC3339")
		}
		filter.DateFrom = &parsed
	}
	if raw := query.Get("dateTo"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return repo_interfaces.TransactionFilter{}, domain.NewValidationError("invalid_date_to", "dateTo must be RFC3339")
		}
		filter.DateTo = &parsed
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return repo_interfaces.TransactionFilter{}, domain.NewValidationError("invalid_limit", "limit must be a non-negative integer")
		}
		filter.Limit = limit
	}
	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return repo_interfaces.TransactionFilter{}, domain.NewValidationError("invalid_offset", "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}
