package workflow

import (
	"errors"
	"testing"
)

// NOTE: These tests are intentionally DB-free. They validate the undo-stack
// semantics every multi-step write relies on: reverse ordering, best-effort
// execution past a failing undo, and an accurate failure count.

func TestCompensations_RunInReverseOrder(t *testing.T) {
	comp := newCompensations("workflow", "test")

	var order []string
	comp.push("first", func() error {
		order = append(order, "first")
		return nil
	})
	comp.push("second", func() error {
		order = append(order, "second")
		return nil
	})
	comp.push("third", func() error {
		order = append(order, "third")
		return nil
	})

	if failed := comp.run(); failed != 0 {
		t.Fatalf("expected 0 failures, got %d", failed)
	}
	want := []string{"third", "second", "first"}
	if len(order) != len(want) {
		t.Fatalf("expected %d undos, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("undo %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

func TestCompensations_FailingUndoDoesNotStopTheRest(t *testing.T) {
	comp := newCompensations("workflow", "test")

	var ran []string
	comp.push("restore stock", func() error {
		ran = append(ran, "restore stock")
		return nil
	})
	comp.push("delete movement", func() error {
		return errors.New("connection lost")
	})
	comp.push("delete entry", func() error {
		ran = append(ran, "delete entry")
		return nil
	})

	if failed := comp.run(); failed != 1 {
		t.Fatalf("expected 1 failure, got %d", failed)
	}
	if len(ran) != 2 || ran[0] != "delete entry" || ran[1] != "restore stock" {
		t.Fatalf("remaining undos did not run in order: %v", ran)
	}
}

func TestCompensations_EmptyStackIsNoop(t *testing.T) {
	comp := newCompensations("workflow", "test")
	if failed := comp.run(); failed != 0 {
		t.Fatalf("expected 0 failures on empty stack, got %d", failed)
	}
}
