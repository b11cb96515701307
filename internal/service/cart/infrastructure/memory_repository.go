// internal/service/cart/infrastructure/memory_repository.go
package infrastructure

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/service/cart/domain"
)

// MemoryCartRepository 是 domain.CartRepository 的进程内实现，
// 用于本地开发和测试。按值拷贝行，避免调用方与存储共享可变状态。
type MemoryCartRepository struct {
	mu    sync.RWMutex
	lines map[string]map[string]domain.CartLineItem // cartID -> lineID -> line
}

func NewMemoryCartRepository() *MemoryCartRepository {
	return &MemoryCartRepository{lines: make(map[string]map[string]domain.CartLineItem)}
}

func (r *MemoryCartRepository) GetLine(ctx context.Context, cartID, lineID string) (*domain.CartLineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cart, ok := r.lines[cartID]; ok {
		if line, ok := cart[lineID]; ok {
			copied := line
			return &copied, nil
		}
	}
	return nil, domain.ErrLineNotFound
}

func (r *MemoryCartRepository) ListLines(ctx context.Context, cartID string) ([]*domain.CartLineItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cart := r.lines[cartID]
	out := make([]*domain.CartLineItem, 0, len(cart))
	for _, line := range cart {
		copied := line
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryCartRepository) SaveLine(ctx context.Context, line *domain.CartLineItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.lines[line.CartID]
	if !ok {
		cart = make(map[string]domain.CartLineItem)
		r.lines[line.CartID] = cart
	}
	cart[line.ID] = *line
	return nil
}

func (r *MemoryCartRepository) RemoveLine(ctx context.Context, cartID, lineID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.lines[cartID]
	if !ok {
		return domain.ErrLineNotFound
	}
	if _, ok := cart[lineID]; !ok {
		return domain.ErrLineNotFound
	}
	delete(cart, lineID)
	return nil
}

func (r *MemoryCartRepository) ClearCart(ctx context.Context, cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lines, cartID)
	return nil
}
