package models

import (
	"errors"
	"strings"
)

type CreateAccountRequest struct {
	AccountType string `json:"accountType"`
}

type AccountResponse struct {
	ID            string `json:"id"`
	AccountNumber string `json:"accountNumber"`
	AccountType   string `json:"accountType"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

type DashboardResponse struct {
	FirstName          string                `json:"firstName"`
	LastName           string                `json:"lastName"`
	Email              string                `json:"email"`
	IsEmailVerified    bool                  `json:"isEmailVerified"`
	Account            AccountResponse       `json:"account"`
	AccountMessage     string                `json:"accountMessage,omitempty"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

type AccountStatusRequest struct {
	AccountID string `json:"accountId"`
}

func (r AccountStatusRequest) Validate() error {
	if strings.TrimSpace(r.AccountID) == "" {
		return errors.New("accountId is required")
	}
	return nil
}
