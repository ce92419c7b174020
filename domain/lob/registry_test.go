package lob

import (
	"errors"
	"testing"
)

func TestRegistryRegisterAndDuplicate(t *testing.T) {
	r := NewRegistry()
	o := &Order{ID: "o1", Size: 10, RemainingSize: 10}
	if err := r.Register(o); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := r.Register(&Order{ID: "o1"}); !errors.Is(err, ErrDuplicateOrderID) {
		t.Errorf("expected ErrDuplicateOrderID, got %v", err)
	}
	if got, ok := r.Get("o1"); !ok || got != o {
		t.Error("Get must return the registered order")
	}
}

func TestRegistryUpdateRemainingDerivesStatus(t *testing.T) {
	r := NewRegistry()
	o := &Order{ID: "o1", Size: 10, RemainingSize: 10, Status: Active}
	if err := r.Register(o); err != nil {
		t.Fatal(err)
	}

	if err := r.UpdateRemaining("o1", 10); err != nil {
		t.Fatal(err)
	}
	if o.Status != Active {
		t.Errorf("untouched remaining must not change status, got %v", o.Status)
	}

	if err := r.UpdateRemaining("o1", 4); err != nil {
		t.Fatal(err)
	}
	if o.Status != PartiallyFilled || o.RemainingSize != 4 {
		t.Errorf("got %v remaining=%d", o.Status, o.RemainingSize)
	}

	if err := r.UpdateRemaining("o1", 0); err != nil {
		t.Fatal(err)
	}
	if o.Status != Filled {
		t.Errorf("got %v", o.Status)
	}

	if err := r.UpdateRemaining("ghost", 1); !errors.Is(err, ErrUnknownOrderID) {
		t.Errorf("expected ErrUnknownOrderID, got %v", err)
	}
}

func TestRegistryCancelTransitions(t *testing.T) {
	r := NewRegistry()
	o := &Order{ID: "o1", Size: 10, RemainingSize: 10, Status: Active}
	if err := r.Register(o); err != nil {
		t.Fatal(err)
	}

	if err := r.Cancel("ghost"); !errors.Is(err, ErrUnknownOrderID) {
		t.Errorf("expected ErrUnknownOrderID, got %v", err)
	}
	if err := r.Cancel("o1"); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if o.Status != Canceled {
		t.Errorf("got %v", o.Status)
	}
	if err := r.Cancel("o1"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("canceling a terminal order must fail, got %v", err)
	}
}
