// internal/service/cart/application/options_test.go
package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/infrastructure"
)

func TestRefreshCommitsOptionsPerSKU(t *testing.T) {
	repo := infrastructure.NewMemoryCartRepository()
	inv := &fakeInventory{
		snapshot: &domain.InventorySnapshot{
			Stores: []domain.StoreStock{{StoreID: "STORE_A", Quantity: 4}},
			Online: 7,
		},
	}
	s := NewOptionsService(repo, inv, otel.Tracer("test"))

	line, _ := domain.NewCartLineItem("cart-1", "SKU-1", 1, 5)
	if err := repo.SaveLine(context.Background(), line); err != nil {
		t.Fatalf("save line: %v", err)
	}

	s.Refresh(context.Background(), "cart-1")

	options := s.Options("cart-1")
	snapshot, ok := options["SKU-1"]
	if !ok {
		t.Fatalf("expected options for SKU-1, got %v", options)
	}
	if snapshot.Online != 7 || snapshot.StoreQuantity("STORE_A") != 4 {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
}

func TestStaleRefreshResultDiscarded(t *testing.T) {
	repo := infrastructure.NewMemoryCartRepository()
	s := NewOptionsService(repo, &fakeInventory{}, otel.Tracer("test"))

	generation := s.begin("cart-1")

	// 视图在刷新完成前离开，晚到的结果必须被丢弃
	s.Detach("cart-1")

	committed := s.commit("cart-1", generation, map[string]*domain.InventorySnapshot{
		"SKU-1": {Online: 3},
	})
	if committed {
		t.Fatal("stale commit must be rejected after Detach")
	}
	if got := s.Options("cart-1"); got != nil {
		t.Fatalf("expected no options after Detach, got %v", got)
	}
}

func TestNewerRefreshWinsOverOlder(t *testing.T) {
	repo := infrastructure.NewMemoryCartRepository()
	s := NewOptionsService(repo, &fakeInventory{}, otel.Tracer("test"))

	oldGen := s.begin("cart-1")
	newGen := s.begin("cart-1")

	if !s.commit("cart-1", newGen, map[string]*domain.InventorySnapshot{"SKU-1": {Online: 9}}) {
		t.Fatal("current generation commit must succeed")
	}
	if s.commit("cart-1", oldGen, map[string]*domain.InventorySnapshot{"SKU-1": {Online: 1}}) {
		t.Fatal("superseded generation commit must be rejected")
	}

	if got := s.Options("cart-1")["SKU-1"].Online; got != 9 {
		t.Fatalf("expected newer result to win, got online=%d", got)
	}
}

type fakeOptionsCache struct {
	mu      sync.Mutex
	entries map[string]*domain.InventorySnapshot
	sets    int
}

func (c *fakeOptionsCache) Get(ctx context.Context, sku string) (*domain.InventorySnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[sku], nil
}

func (c *fakeOptionsCache) Set(ctx context.Context, sku string, snapshot *domain.InventorySnapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]*domain.InventorySnapshot)
	}
	c.entries[sku] = snapshot
	c.sets++
	return nil
}

func TestSnapshotReadsThroughCache(t *testing.T) {
	repo := infrastructure.NewMemoryCartRepository()
	inv := &fakeInventory{snapshot: &domain.InventorySnapshot{Online: 5}}
	cache := &fakeOptionsCache{}
	s := NewOptionsService(repo, inv, otel.Tracer("test"), WithOptionsCache(cache, time.Minute))

	first, err := s.snapshot(context.Background(), "SKU-1")
	if err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	if first.Online != 5 {
		t.Fatalf("unexpected snapshot: %+v", first)
	}
	if len(inv.callLog()) != 1 {
		t.Fatalf("expected one fetch, got %v", inv.callLog())
	}

	// 第二次命中缓存，不再访问库存服务
	if _, err := s.snapshot(context.Background(), "SKU-1"); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if len(inv.callLog()) != 1 {
		t.Fatalf("expected cache hit, got extra calls %v", inv.callLog())
	}
}
