// internal/service/cart/domain/event.go
package domain

import "time"

// ReservationPlaced 在成功取得 hold 后发布。
type ReservationPlaced struct {
	EventID    string    `json:"eventId"`
	CartID     string    `json:"cartId"`
	LineItemID string    `json:"lineItemId"`
	SKU        string    `json:"sku"`
	Quantity   int       `json:"quantity"`
	HoldID     string    `json:"holdId"`
	Location   string    `json:"location"`
	ExpiresAt  time.Time `json:"expiresAt"`
	PlacedAt   time.Time `json:"placedAt"`
}

// ReservationReleased 在本地清理一个 hold 时发布。
// Reason 记录触发来源: released / superseded / quantity_changed / removed。
// release 对远端是 fail-open 的，该事件不代表远端一定确认。
type ReservationReleased struct {
	EventID    string    `json:"eventId"`
	CartID     string    `json:"cartId"`
	LineItemID string    `json:"lineItemId"`
	SKU        string    `json:"sku"`
	HoldID     string    `json:"holdId"`
	Reason     string    `json:"reason"`
	ReleasedAt time.Time `json:"releasedAt"`
}

// ReservationConflicted 在远端以库存不足拒绝 hold 请求时发布。
type ReservationConflicted struct {
	EventID    string    `json:"eventId"`
	CartID     string    `json:"cartId"`
	LineItemID string    `json:"lineItemId"`
	SKU        string    `json:"sku"`
	Quantity   int       `json:"quantity"`
	Location   string    `json:"location"`
	Feedback   string    `json:"feedback"`
	At         time.Time `json:"at"`
}
