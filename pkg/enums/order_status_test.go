package enums

import "testing"

func TestOrderStatusTransitions(t *testing.T) {
	t.Parallel()

	allowed := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusPaid},
		{OrderStatusPending, OrderStatusCancelled},
		{OrderStatusPaid, OrderStatusShipped},
		{OrderStatusPaid, OrderStatusCancelled},
		{OrderStatusShipped, OrderStatusDelivered},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from OrderStatus
		to   OrderStatus
	}{
		{OrderStatusPending, OrderStatusDelivered},
		{OrderStatusPending, OrderStatusShipped},
		{OrderStatusPaid, OrderStatusPending},
		{OrderStatusShipped, OrderStatusCancelled},
		{OrderStatusDelivered, OrderStatusShipped},
		{OrderStatusCancelled, OrderStatusPaid},
	}
	for _, tc := range forbidden {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestOrderStatusValid(t *testing.T) {
	t.Parallel()

	if !OrderStatusShipped.Valid() {
		t.Fatal("shipped should be valid")
	}
	if OrderStatus("archived").Valid() {
		t.Fatal("unknown status should be invalid")
	}
}
