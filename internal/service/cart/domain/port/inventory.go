// internal/service/cart/domain/port/inventory.go
package port

import (
	"context"
	"time"

	"storefront/internal/service/cart/domain"
)

// HoldRequest 描述一次对远端库存服务的占用请求。
type HoldRequest struct {
	SKU        string
	Quantity   int
	Location   string // "online" 或 "store:<id>"
	TTLSeconds int
}

// HoldResult 是一次成功 hold 的回执。
type HoldResult struct {
	HoldID    string
	ExpiresAt time.Time
}

// FailureKind 对 hold 失败做一次性分类，分类发生在服务调用边界，不在上层重复判断。
type FailureKind string

const (
	FailureConflict  FailureKind = "conflict"  // 远端明确报库存不足（通常 409）
	FailureTransport FailureKind = "transport" // 网络错误、响应不可解析
	FailureRemote    FailureKind = "remote"    // 其他 4xx/5xx
)

// ReservationError 是库存适配器返回的类型化失败。
// 冲突响应若附带库存快照，会原样携带给冲突解析器使用。
type ReservationError struct {
	Kind     FailureKind
	Message  string
	Snapshot *domain.InventorySnapshot
}

func (e *ReservationError) Error() string {
	if e.Message != "" {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind)
}

// InventoryService 是远端库存服务的出站端口。
type InventoryService interface {
	// FetchSnapshot 拉取指定 SKU 的瞬时库存视图。
	FetchSnapshot(ctx context.Context, sku string) (*domain.InventorySnapshot, error)

	// Hold 在指定位置占用库存。失败时返回 *ReservationError。
	Hold(ctx context.Context, req HoldRequest) (*HoldResult, error)

	// Release 释放一个 hold。调用方按 fail-open 处理失败：
	// 本地状态无条件复位，泄漏的 hold 由远端 TTL 兜底回收。
	Release(ctx context.Context, holdID string) error
}
