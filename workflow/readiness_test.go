package workflow

import (
	"testing"

	"bitbucket.org/polifilmdata/films_backend/models"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestIsOrderReady_ThresholdBoundary(t *testing.T) {
	cases := []struct {
		name         string
		stockKg      string
		productionKg string
		quantity     string
		want         bool
	}{
		{"exactly at threshold", "95", "0", "100", true},
		{"just below threshold", "94", "0.9999", "100", false},
		{"split across sides at threshold", "94", "1", "100", true},
		{"over fulfilled", "80", "40", "100", true},
		{"zero progress", "0", "0", "100", false},
		{"zero quantity never ready", "10", "10", "0", false},
		{"negative quantity never ready", "10", "10", "-5", false},
		{"fractional quantities", "9.4", "0.1", "10", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsOrderReady(d(tc.stockKg), d(tc.productionKg), d(tc.quantity))
			if got != tc.want {
				t.Fatalf("IsOrderReady(%s, %s, %s) = %v, want %v",
					tc.stockKg, tc.productionKg, tc.quantity, got, tc.want)
			}
		})
	}
}

func TestComputeReadyPercent(t *testing.T) {
	got := ComputeReadyPercent(d("40"), d("20"), d("120"))
	if !got.Equal(d("50")) {
		t.Fatalf("expected 50, got %s", got)
	}
	if !ComputeReadyPercent(d("40"), d("20"), d("0")).IsZero() {
		t.Fatal("zero quantity must yield zero percent")
	}
}

func TestDeriveOrderStatus(t *testing.T) {
	cases := []struct {
		name       string
		current    models.OrderStatus
		sourceType models.OrderSourceType
		isReady    bool
		want       models.OrderStatus
	}{
		{"confirmed becomes ready", models.OrderStatusConfirmed, models.OrderSourceTypeBoth, true, models.OrderStatusReady},
		{"in_production becomes ready", models.OrderStatusInProduction, models.OrderSourceTypeProduction, true, models.OrderStatusReady},
		{"ready stays ready", models.OrderStatusReady, models.OrderSourceTypeBoth, true, models.OrderStatusReady},
		{"ready regresses to in_production", models.OrderStatusReady, models.OrderSourceTypeProduction, false, models.OrderStatusInProduction},
		{"ready regresses to in_production for both", models.OrderStatusReady, models.OrderSourceTypeBoth, false, models.OrderStatusInProduction},
		{"ready regresses to confirmed for stock-only", models.OrderStatusReady, models.OrderSourceTypeStock, false, models.OrderStatusConfirmed},
		{"confirmed unchanged below threshold", models.OrderStatusConfirmed, models.OrderSourceTypeBoth, false, models.OrderStatusConfirmed},
		{"draft unchanged below threshold", models.OrderStatusDraft, models.OrderSourceTypeBoth, false, models.OrderStatusDraft},
		{"cancelled immutable even when ready", models.OrderStatusCancelled, models.OrderSourceTypeBoth, true, models.OrderStatusCancelled},
		{"shipped immutable on regression", models.OrderStatusShipped, models.OrderSourceTypeBoth, false, models.OrderStatusShipped},
		{"closed immutable", models.OrderStatusClosed, models.OrderSourceTypeStock, true, models.OrderStatusClosed},
		{"delivered immutable", models.OrderStatusDelivered, models.OrderSourceTypeBoth, true, models.OrderStatusDelivered},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveOrderStatus(tc.current, tc.sourceType, tc.isReady)
			if got != tc.want {
				t.Fatalf("DeriveOrderStatus(%s, %s, %v) = %s, want %s",
					tc.current, tc.sourceType, tc.isReady, got, tc.want)
			}
		})
	}
}

// Applying the derivation twice with the same aggregates must be a no-op.
func TestDeriveOrderStatus_Idempotent(t *testing.T) {
	statuses := []models.OrderStatus{
		models.OrderStatusDraft, models.OrderStatusConfirmed, models.OrderStatusInProduction,
		models.OrderStatusReady, models.OrderStatusShipped, models.OrderStatusDelivered,
		models.OrderStatusClosed, models.OrderStatusCancelled,
	}
	sourceTypes := []models.OrderSourceType{
		models.OrderSourceTypeStock, models.OrderSourceTypeProduction, models.OrderSourceTypeBoth,
	}
	for _, status := range statuses {
		for _, st := range sourceTypes {
			for _, isReady := range []bool{true, false} {
				once := DeriveOrderStatus(status, st, isReady)
				twice := DeriveOrderStatus(once, st, isReady)
				if once != twice {
					t.Fatalf("not idempotent: %s/%s/%v -> %s -> %s", status, st, isReady, once, twice)
				}
			}
		}
	}
}
