package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", NewValidationError("kg must be positive"), http.StatusBadRequest},
		{"not found", NewNotFoundError("order", 42), http.StatusNotFound},
		{"conflict", NewConflictError("stock changed concurrently"), http.StatusConflict},
		{"insufficient stock", &InsufficientStockError{StockItemId: 1, Available: decimal.NewFromInt(5), Requested: decimal.NewFromInt(9)}, http.StatusBadRequest},
		{"forbidden", &ForbiddenError{Role: "warehouse"}, http.StatusForbidden},
		{"record not found sentinel", ErrorRecordNotFound, http.StatusNotFound},
		{"wrapped conflict", fmt.Errorf("saving entry: %w", NewConflictError("busy")), http.StatusConflict},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Fatalf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &InsufficientStockError{
		StockItemId: 7,
		Available:   decimal.RequireFromString("12.5"),
		Requested:   decimal.RequireFromString("20"),
	}
	msg := err.Error()
	for _, want := range []string{"7", "12.5", "20"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("error message %q missing %q", msg, want)
		}
	}
}
