package models

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var allowedTransactionTypes = []string{
	"deposit",
	"withdrawal",
	"transfer",
	"payment",
	"fee",
}

type CreateTransactionRequest struct {
	TransactionType        string          `json:"transactionType"`
	Amount                 decimal.Decimal `json:"amount"`
	RecipientAccountNumber string          `json:"recipientAccountNumber,omitempty"`
	Description            string          `json:"description"`
}

func (r CreateTransactionRequest) Validate() error {
	var errs []string

	transactionType := strings.TrimSpace(r.TransactionType)
	if !isAllowedTransactionType(transactionType) {
		errs = append(errs, "transactionType must be one of: "+strings.Join(allowedTransactionTypes, ", "))
	}

	if r.Amount.LessThanOrEqual(decimal.Zero) {
		errs = append(errs, "amount must be greater than zero")
	}
	if r.Amount.Exponent() < -2 {
		errs = append(errs, "amount cannot have more than 2 decimal places")
	}

	if transactionType == "transfer" && strings.TrimSpace(r.RecipientAccountNumber) == "" {
		errs = append(errs, "recipientAccountNumber is required for transfers")
	}

	if strings.TrimSpace(r.Description) == "" {
		errs = append(errs, "description is required")
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

type TransactionResponse struct {
	ID                     string `json:"id"`
	Reference              string `json:"reference"`
	AccountNumber          string `json:"accountNumber,omitempty"`
	RecipientAccountNumber string `json:"recipientAccountNumber,omitempty"`
	Amount                 string `json:"amount"`
	Description            string `json:"description"`
	TransactionType        string `json:"transactionType"`
	Status                 string `json:"status"`
	Date                   string `json:"date"`
}

type ApprovalRequest struct {
	TransactionID  string   `json:"transactionId,omitempty"`
	TransactionIDs []string `json:"transactionIds,omitempty"`
}

func (r ApprovalRequest) Validate() error {
	if strings.TrimSpace(r.TransactionID) == "" && len(r.TransactionIDs) == 0 {
		return errors.New("transactionId or transactionIds is required")
	}
	return nil
}

// IDs flattens the single and bulk forms of the request.
func (r ApprovalRequest) IDs() []string {
	if id := strings.TrimSpace(r.TransactionID); id != "" {
		return []string{id}
	}
	out := make([]string, 0, len(r.TransactionIDs))
	for _, id := range r.TransactionIDs {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type ApprovalResponse struct {
	TransactionID    string  `json:"transactionId"`
	Reference        string  `json:"reference"`
	Status           string  `json:"status"`
	AccountBalance   string  `json:"accountBalance,omitempty"`
	RecipientBalance *string `json:"recipientBalance,omitempty"`
}

type BulkApprovalResult struct {
	TransactionID string `json:"transactionId"`
	Success       bool   `json:"success"`
	Status        string `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
}

func isAllowedTransactionType(transactionType string) bool {
	for _, allowed := range allowedTransactionTypes {
		if transactionType == allowed {
			return true
		}
	}
	return false
}
