package controller

import (
	"errors"
	"net/http"
	"testing"

	"github.com/mani-labs/mani-banking/src/internal/domain"
)

func TestStatusForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{"validation", domain.NewValidationError("invalid_amount", "bad"), http.StatusBadRequest},
		{"not found", domain.ErrRecordNotFound, http.StatusNotFound},
		{"already processed", domain.ErrAlreadyProcessed, http.StatusConflict},
		{"account busy", domain.ErrAccountBusy, http.StatusConflict},
		{"permission denied", domain.ErrPermissionDenied, http.StatusForbidden},
		{"wrapped not found", errors.Join(errors.New("lookup"), domain.ErrRecordNotFound), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := statusForError(tc.err); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}
