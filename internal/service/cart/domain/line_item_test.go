// internal/service/cart/domain/line_item_test.go
package domain

import (
	"errors"
	"testing"
	"time"
)

func TestNewCartLineItemValidation(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		line, err := NewCartLineItem("cart-1", "SKU-1", 2, 19.9)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if line.ID == "" {
			t.Fatal("expected generated line ID")
		}
		if line.ReservationStatus != ReservationIdle {
			t.Fatalf("expected IDLE, got %s", line.ReservationStatus)
		}
	})

	t.Run("missing cart id", func(t *testing.T) {
		if _, err := NewCartLineItem("", "SKU-1", 1, 1); !errors.Is(err, ErrInvalidLineItem) {
			t.Fatalf("expected ErrInvalidLineItem, got %v", err)
		}
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		if _, err := NewCartLineItem("cart-1", "SKU-1", 0, 1); !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})
}

func TestApplyHoldMakesLineFresh(t *testing.T) {
	line, _ := NewCartLineItem("cart-1", "SKU-1", 3, 10)
	expires := time.Now().Add(30 * time.Minute)

	line.ApplyHold("hold-1", expires, StoreLocation("STORE_A"))

	if line.ReservationStatus != ReservationReserved {
		t.Fatalf("expected RESERVED, got %s", line.ReservationStatus)
	}
	if !line.Held() {
		t.Fatal("expected line to hold a reservation")
	}
	if !line.Fresh() {
		t.Fatal("expected hold to be fresh right after ApplyHold")
	}
	if line.ReservedQuantity != 3 {
		t.Fatalf("expected reserved quantity 3, got %d", line.ReservedQuantity)
	}
	if line.ReservationLocation != "store:STORE_A" {
		t.Fatalf("unexpected location %s", line.ReservationLocation)
	}
}

func TestQuantityChangeBreaksFreshness(t *testing.T) {
	line, _ := NewCartLineItem("cart-1", "SKU-1", 3, 10)
	line.ApplyHold("hold-1", time.Now().Add(time.Hour), LocationOnline)

	if err := line.SetQuantity(5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if line.Fresh() {
		t.Fatal("hold must not stay fresh after a quantity edit")
	}
}

func TestResetReservationRestoresIdleShape(t *testing.T) {
	line, _ := NewCartLineItem("cart-1", "SKU-1", 3, 10)
	line.ApplyHold("hold-1", time.Now().Add(time.Hour), LocationOnline)

	line.ResetReservation()

	if line.ReservationStatus != ReservationIdle {
		t.Fatalf("expected IDLE, got %s", line.ReservationStatus)
	}
	if line.ReservationHoldID != "" || line.ReservationExpiresAt != nil ||
		line.ReservationLocation != "" || line.ReservedQuantity != 0 {
		t.Fatalf("reservation fields not fully cleared: %+v", line)
	}
	if line.Held() {
		t.Fatal("expected Held() to be false after reset")
	}
}

func TestLocationPreferenceLocation(t *testing.T) {
	online := &LocationPreference{Online: true}
	if online.Location() != LocationOnline {
		t.Fatalf("expected online, got %s", online.Location())
	}
	store := &LocationPreference{StoreID: "STORE_X"}
	if store.Location() != "store:STORE_X" {
		t.Fatalf("expected store:STORE_X, got %s", store.Location())
	}
}
