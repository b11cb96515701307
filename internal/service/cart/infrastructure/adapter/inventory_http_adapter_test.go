// internal/service/cart/infrastructure/adapter/inventory_http_adapter_test.go
package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"

	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/cart/domain/port"
)

func newTestAdapter(t *testing.T, handler http.Handler) (*InventoryHTTPAdapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	addr := strings.TrimPrefix(server.URL, "http://")
	client := httpclient.NewClient(otel.Tracer("test"), httpclient.StaticResolver{
		"inventory-service": addr,
	})
	return NewInventoryHTTPAdapter(client, "inventory-service"), server
}

func TestFetchSnapshotPreservesStoreOrder(t *testing.T) {
	adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inventory/SKU-1" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"store_stock":{"STORE_Z":2,"STORE_A":8},"online_stock":5}`))
	}))

	snapshot, err := adapter.FetchSnapshot(context.Background(), "SKU-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot.Stores) != 2 || snapshot.Stores[0].StoreID != "STORE_Z" {
		t.Fatalf("store order not preserved: %+v", snapshot.Stores)
	}
	if snapshot.Online != 5 {
		t.Fatalf("expected online 5, got %d", snapshot.Online)
	}
}

func TestFetchSnapshotRemoteError(t *testing.T) {
	adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"inventory backend down"}`))
	}))

	_, err := adapter.FetchSnapshot(context.Background(), "SKU-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "inventory backend down") {
		t.Fatalf("expected remote message surfaced, got %v", err)
	}
}

func TestHoldCreated(t *testing.T) {
	adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/hold" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"hold_id":"hold-42","expires_at":"2026-08-30T12:30:00Z"}`))
	}))

	result, err := adapter.Hold(context.Background(), port.HoldRequest{
		SKU: "SKU-1", Quantity: 2, Location: "store:STORE_A", TTLSeconds: 1800,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.HoldID != "hold-42" {
		t.Fatalf("expected hold-42, got %s", result.HoldID)
	}
	if result.ExpiresAt.IsZero() {
		t.Fatal("expected parsed expiry")
	}
}

func TestHoldConflictVariants(t *testing.T) {
	cases := []struct {
		name        string
		body        string
		wantMessage string
		wantStores  int
	}{
		{
			name:        "snapshot under inventory key",
			body:        `{"message":"not enough stock","inventory":{"store_stock":{"STORE_B":6},"online_stock":1}}`,
			wantMessage: "not enough stock",
			wantStores:  1,
		},
		{
			name:        "snapshot under data key",
			body:        `{"error":"conflict","data":{"store_stock":{"STORE_C":3},"online_stock":0}}`,
			wantMessage: "conflict",
			wantStores:  1,
		},
		{
			name:        "empty body",
			body:        ``,
			wantMessage: "insufficient stock",
			wantStores:  0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusConflict)
				w.Write([]byte(tc.body))
			}))

			_, err := adapter.Hold(context.Background(), port.HoldRequest{SKU: "SKU-1", Quantity: 9, Location: "online"})
			var rerr *port.ReservationError
			if !errors.As(err, &rerr) {
				t.Fatalf("expected *port.ReservationError, got %v", err)
			}
			if rerr.Kind != port.FailureConflict {
				t.Fatalf("expected conflict kind, got %s", rerr.Kind)
			}
			if rerr.Message != tc.wantMessage {
				t.Fatalf("expected message %q, got %q", tc.wantMessage, rerr.Message)
			}
			if tc.wantStores == 0 {
				if rerr.Snapshot != nil {
					t.Fatalf("expected no snapshot, got %+v", rerr.Snapshot)
				}
			} else if rerr.Snapshot == nil || len(rerr.Snapshot.Stores) != tc.wantStores {
				t.Fatalf("expected snapshot with %d stores, got %+v", tc.wantStores, rerr.Snapshot)
			}
		})
	}
}

func TestHoldRemoteFailure(t *testing.T) {
	adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"maintenance window"}`))
	}))

	_, err := adapter.Hold(context.Background(), port.HoldRequest{SKU: "SKU-1", Quantity: 1, Location: "online"})
	var rerr *port.ReservationError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *port.ReservationError, got %v", err)
	}
	if rerr.Kind != port.FailureRemote {
		t.Fatalf("expected remote kind, got %s", rerr.Kind)
	}
	if rerr.Message != "maintenance window" {
		t.Fatalf("expected remote message, got %q", rerr.Message)
	}
}

func TestHoldTransportFailure(t *testing.T) {
	adapter, server := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := adapter.Hold(context.Background(), port.HoldRequest{SKU: "SKU-1", Quantity: 1, Location: "online"})
	var rerr *port.ReservationError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *port.ReservationError, got %v", err)
	}
	if rerr.Kind != port.FailureTransport {
		t.Fatalf("expected transport kind, got %s", rerr.Kind)
	}
}

func TestHoldMalformedSuccessBody(t *testing.T) {
	adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`not json`))
	}))

	_, err := adapter.Hold(context.Background(), port.HoldRequest{SKU: "SKU-1", Quantity: 1, Location: "online"})
	var rerr *port.ReservationError
	if !errors.As(err, &rerr) || rerr.Kind != port.FailureTransport {
		t.Fatalf("expected transport kind for malformed body, got %v", err)
	}
}

func TestRelease(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/release/hold-7" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.WriteHeader(http.StatusOK)
		}))
		if err := adapter.Release(context.Background(), "hold-7"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("remote failure", func(t *testing.T) {
		adapter, _ := newTestAdapter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"message":"unknown hold"}`))
		}))
		if err := adapter.Release(context.Background(), "hold-7"); err == nil {
			t.Fatal("expected error for 404 release")
		}
	})
}
