// internal/service/cart/application/fakes_test.go
package application

import (
	"context"
	"sync"

	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/domain/port"
)

// fakeInventory 是 port.InventoryService 的可编程测试替身，
// 按调用顺序记录所有交互，便于断言"先释放后占用"这类时序。
type fakeInventory struct {
	mu sync.Mutex

	snapshot    *domain.InventorySnapshot
	snapshotErr error

	holdFn     func(req port.HoldRequest) (*port.HoldResult, error)
	releaseErr error

	calls    []string
	holds    []port.HoldRequest
	released []string
}

func (f *fakeInventory) FetchSnapshot(ctx context.Context, sku string) (*domain.InventorySnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "fetch:"+sku)
	if f.snapshotErr != nil {
		return nil, f.snapshotErr
	}
	if f.snapshot == nil {
		return &domain.InventorySnapshot{}, nil
	}
	copied := *f.snapshot
	return &copied, nil
}

func (f *fakeInventory) Hold(ctx context.Context, req port.HoldRequest) (*port.HoldResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "hold:"+req.Location)
	f.holds = append(f.holds, req)
	fn := f.holdFn
	f.mu.Unlock()
	if fn != nil {
		return fn(req)
	}
	return &port.HoldResult{HoldID: "hold-fake"}, nil
}

func (f *fakeInventory) Release(ctx context.Context, holdID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "release:"+holdID)
	f.released = append(f.released, holdID)
	return f.releaseErr
}

func (f *fakeInventory) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

type fakeNotifier struct {
	mu      sync.Mutex
	updates []port.FeedbackUpdate
}

func (f *fakeNotifier) PushFeedback(ctx context.Context, update port.FeedbackUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, update)
}

type fakeEvents struct {
	mu         sync.Mutex
	placed     []*domain.ReservationPlaced
	released   []*domain.ReservationReleased
	conflicted []*domain.ReservationConflicted
}

func (f *fakeEvents) PublishPlaced(ctx context.Context, event *domain.ReservationPlaced) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = append(f.placed, event)
	return nil
}

func (f *fakeEvents) PublishReleased(ctx context.Context, event *domain.ReservationReleased) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released = append(f.released, event)
	return nil
}

func (f *fakeEvents) PublishConflicted(ctx context.Context, event *domain.ReservationConflicted) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicted = append(f.conflicted, event)
	return nil
}
