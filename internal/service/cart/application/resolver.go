// internal/service/cart/application/resolver.go
package application

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/domain/port"
)

// ConflictResolver 把一次预订冲突翻译成可执行的建议文案。
type ConflictResolver struct {
	inventory port.InventoryService
	tracer    trace.Tracer
}

func NewConflictResolver(inventory port.InventoryService, tracer trace.Tracer) *ConflictResolver {
	return &ConflictResolver{inventory: inventory, tracer: tracer}
}

// Resolve 生成冲突建议。优先使用错误响应里内嵌的快照，否则现拉一份；
// 连解析用的快照都拿不到时退化为通用重试文案。
func (r *ConflictResolver) Resolve(ctx context.Context, sku string, quantity int, embedded *domain.InventorySnapshot) string {
	ctx, span := r.tracer.Start(ctx, "cart.ResolveConflict")
	defer span.End()

	snapshot := embedded
	if snapshot == nil {
		fresh, err := r.inventory.FetchSnapshot(ctx, sku)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("conflict resolution fetch failed")
			span.RecordError(err)
			return msgReserveRetry
		}
		snapshot = fresh
	}

	// 只有库存能覆盖请求数量的门店才算候选，按库存降序取前两家
	candidates := make([]domain.StoreStock, 0, len(snapshot.Stores))
	for _, store := range snapshot.Stores {
		if store.Quantity >= quantity {
			candidates = append(candidates, store)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Quantity > candidates[j].Quantity
	})
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}

	if len(candidates) > 0 {
		entries := make([]string, 0, len(candidates))
		for _, store := range candidates {
			entries = append(entries, fmt.Sprintf(fmtStoreEntry, store.StoreID, store.Quantity))
		}
		return fmt.Sprintf(fmtStoresAvailable, strings.Join(entries, ", "))
	}

	if snapshot.Online > 0 {
		return fmt.Sprintf(fmtOnlineOnly, snapshot.Online)
	}

	return msgOutOfStock
}
