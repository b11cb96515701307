// internal/service/cart/domain/snapshot_test.go
package domain

import (
	"encoding/json"
	"testing"
)

func TestInventorySnapshotUnmarshalKeepsStoreOrder(t *testing.T) {
	raw := []byte(`{"store_stock":{"STORE_MUMBAI":3,"STORE_DELHI":7,"STORE_PUNE":1},"online_stock":12}`)

	var snapshot InventorySnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []StoreStock{
		{StoreID: "STORE_MUMBAI", Quantity: 3},
		{StoreID: "STORE_DELHI", Quantity: 7},
		{StoreID: "STORE_PUNE", Quantity: 1},
	}
	if len(snapshot.Stores) != len(want) {
		t.Fatalf("expected %d stores, got %d", len(want), len(snapshot.Stores))
	}
	for i, st := range snapshot.Stores {
		if st != want[i] {
			t.Fatalf("store %d: expected %+v, got %+v", i, want[i], st)
		}
	}
	if snapshot.Online != 12 {
		t.Fatalf("expected online stock 12, got %d", snapshot.Online)
	}
}

func TestInventorySnapshotUnmarshalSkipsUnknownFields(t *testing.T) {
	raw := []byte(`{"sku":"SKU-1","warehouse":{"nested":{"deep":[1,2,3]}},"store_stock":{"A":5},"online_stock":2,"updated_at":"2026-08-30T10:00:00Z"}`)

	var snapshot InventorySnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(snapshot.Stores) != 1 || snapshot.Stores[0].StoreID != "A" || snapshot.Stores[0].Quantity != 5 {
		t.Fatalf("unexpected stores: %+v", snapshot.Stores)
	}
	if snapshot.Online != 2 {
		t.Fatalf("expected online stock 2, got %d", snapshot.Online)
	}
}

func TestInventorySnapshotUnmarshalNullStoreStock(t *testing.T) {
	raw := []byte(`{"store_stock":null,"online_stock":4}`)

	var snapshot InventorySnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(snapshot.Stores) != 0 {
		t.Fatalf("expected no stores, got %+v", snapshot.Stores)
	}
	if snapshot.Online != 4 {
		t.Fatalf("expected online stock 4, got %d", snapshot.Online)
	}
}

func TestInventorySnapshotMarshalRoundTrip(t *testing.T) {
	original := InventorySnapshot{
		Stores: []StoreStock{
			{StoreID: "STORE_B", Quantity: 2},
			{StoreID: "STORE_A", Quantity: 9},
		},
		Online: 6,
	}

	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded InventorySnapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if len(decoded.Stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(decoded.Stores))
	}
	// 顺序必须在往返后保持不变
	if decoded.Stores[0].StoreID != "STORE_B" || decoded.Stores[1].StoreID != "STORE_A" {
		t.Fatalf("store order not preserved: %+v", decoded.Stores)
	}
	if decoded.Online != 6 {
		t.Fatalf("expected online stock 6, got %d", decoded.Online)
	}
}

func TestStoreQuantity(t *testing.T) {
	snapshot := InventorySnapshot{
		Stores: []StoreStock{{StoreID: "A", Quantity: 3}},
		Online: 1,
	}
	if got := snapshot.StoreQuantity("A"); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := snapshot.StoreQuantity("MISSING"); got != 0 {
		t.Fatalf("expected 0 for missing store, got %d", got)
	}
}
