package models

import "testing"

func TestOrderStatusIsTerminal(t *testing.T) {
	terminal := []OrderStatus{OrderStatusCancelled, OrderStatusClosed, OrderStatusShipped, OrderStatusDelivered}
	for _, s := range terminal {
		if !s.IsTerminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
	open := []OrderStatus{OrderStatusDraft, OrderStatusConfirmed, OrderStatusInProduction, OrderStatusReady}
	for _, s := range open {
		if s.IsTerminal() {
			t.Fatalf("%s should not be terminal", s)
		}
	}
}

func TestBobinTransitions(t *testing.T) {
	allowed := []struct{ from, to BobinStatus }{
		{BobinStatusProduced, BobinStatusWarehouse},
		{BobinStatusProduced, BobinStatusScrapped},
		{BobinStatusWarehouse, BobinStatusReady},
		{BobinStatusWarehouse, BobinStatusScrapped},
		{BobinStatusReady, BobinStatusShipped},
		{BobinStatusReady, BobinStatusWarehouse},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("%s -> %s should be allowed", tc.from, tc.to)
		}
	}
	denied := []struct{ from, to BobinStatus }{
		{BobinStatusProduced, BobinStatusShipped},
		{BobinStatusProduced, BobinStatusReady},
		{BobinStatusShipped, BobinStatusWarehouse},
		{BobinStatusShipped, BobinStatusReady},
		{BobinStatusScrapped, BobinStatusProduced},
		{BobinStatusReady, BobinStatusScrapped},
	}
	for _, tc := range denied {
		if tc.from.CanTransitionTo(tc.to) {
			t.Fatalf("%s -> %s should be denied", tc.from, tc.to)
		}
	}
}

func TestBobinCountsAsReady(t *testing.T) {
	counting := []BobinStatus{BobinStatusProduced, BobinStatusWarehouse, BobinStatusReady}
	for _, s := range counting {
		if !s.CountsAsReady() {
			t.Fatalf("%s should count toward readiness", s)
		}
	}
	for _, s := range []BobinStatus{BobinStatusShipped, BobinStatusScrapped} {
		if s.CountsAsReady() {
			t.Fatalf("%s should not count toward readiness", s)
		}
	}
}
