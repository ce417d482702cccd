package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCreateTransactionRequestValidate(t *testing.T) {
	valid := CreateTransactionRequest{
		TransactionType: "deposit",
		Amount:          decimal.RequireFromString("10.00"),
		Description:     "salary",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	cases := []struct {
		name string
		req  CreateTransactionRequest
	}{
		{"empty type", CreateTransactionRequest{Amount: decimal.RequireFromString("10.00"), Description: "x"}},
		{"unknown type", CreateTransactionRequest{TransactionType: "wire", Amount: decimal.RequireFromString("10.00"), Description: "x"}},
		{"zero amount", CreateTransactionRequest{TransactionType: "deposit", Description: "x"}},
		{"negative amount", CreateTransactionRequest{TransactionType: "deposit", Amount: decimal.RequireFromString("-1.00"), Description: "x"}},
		{"three decimal places", CreateTransactionRequest{TransactionType: "deposit", Amount: decimal.RequireFromString("1.001"), Description: "x"}},
		{"blank description", CreateTransactionRequest{TransactionType: "deposit", Amount: decimal.RequireFromString("10.00"), Description: "   "}},
		{"transfer without recipient", CreateTransactionRequest{TransactionType: "transfer", Amount: decimal.RequireFromString("10.00"), Description: "x"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	transfer := CreateTransactionRequest{
		TransactionType:        "transfer",
		Amount:                 decimal.RequireFromString("10.00"),
		RecipientAccountNumber: "123456789012",
		Description:            "rent",
	}
	if err := transfer.Validate(); err != nil {
		t.Fatalf("expected valid transfer, got %v", err)
	}
}

func TestApprovalRequestIDs(t *testing.T) {
	if err := (ApprovalRequest{}).Validate(); err == nil {
		t.Fatal("expected error for empty request")
	}

	single := ApprovalRequest{TransactionID: " tx-1 "}
	if err := single.Validate(); err != nil {
		t.Fatalf("expected valid single request, got %v", err)
	}
	if ids := single.IDs(); len(ids) != 1 || ids[0] != "tx-1" {
		t.Fatalf("expected trimmed single id, got %v", ids)
	}

	bulk := ApprovalRequest{TransactionIDs: []string{"tx-1", "  ", "tx-2"}}
	if err := bulk.Validate(); err != nil {
		t.Fatalf("expected valid bulk request, got %v", err)
	}
	if ids := bulk.IDs(); len(ids) != 2 || ids[0] != "tx-1" || ids[1] != "tx-2" {
		t.Fatalf("expected blank ids dropped, got %v", ids)
	}

	// The single form wins when both are set.
	both := ApprovalRequest{TransactionID: "tx-9", TransactionIDs: []string{"tx-1"}}
	if ids := both.IDs(); len(ids) != 1 || ids[0] != "tx-9" {
		t.Fatalf("expected single form to take precedence, got %v", ids)
	}
}
