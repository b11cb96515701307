// internal/service/cart/domain/line_item.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReservationStatus 定义了单个购物车行的预订生命周期状态
type ReservationStatus string

const (
	ReservationIdle      ReservationStatus = "IDLE"      // 无有效 hold
	ReservationReserving ReservationStatus = "RESERVING" // hold 请求进行中
	ReservationReserved  ReservationStatus = "RESERVED"  // hold 生效且覆盖当前数量
)

// 履约位置编码为 "online" 或 "store:<storeId>"
const LocationOnline = "online"

// StoreLocation 返回指定门店的履约位置编码。
func StoreLocation(storeID string) string {
	return "store:" + storeID
}

// CartLineItem 是购物车中一个独立条目的聚合根。
// ID 独立于 SKU：同一个 SKU 搭配不同选项会出现在多个行里。
//
// 不变式: ReservationHoldID 非空 当且仅当 ReservationStatus == RESERVED。
// 一个 hold 是"新鲜"的当且仅当 ReservedQuantity == Quantity；
// 任何数量修改都会打破新鲜性，必须触发 release。
type CartLineItem struct {
	ID        string
	CartID    string
	SKU       string
	Quantity  int
	UnitPrice float64

	ReservationStatus    ReservationStatus
	ReservationHoldID    string
	ReservationExpiresAt *time.Time
	ReservationLocation  string
	ReservedQuantity     int

	// 用户显式选择的履约位置，预订时原样采用
	LocationPreference *LocationPreference

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LocationPreference 表达用户对履约位置的显式选择。
type LocationPreference struct {
	Online  bool   `json:"online"`
	StoreID string `json:"storeId,omitempty"`
}

// Location 把偏好映射为位置编码。
func (p *LocationPreference) Location() string {
	if p.Online {
		return LocationOnline
	}
	return StoreLocation(p.StoreID)
}

// NewCartLineItem 创建一个新的购物车行，初始处于 IDLE 状态。
func NewCartLineItem(cartID, sku string, quantity int, unitPrice float64) (*CartLineItem, error) {
	if cartID == "" || sku == "" {
		return nil, ErrInvalidLineItem
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now()
	return &CartLineItem{
		ID:                uuid.New().String(),
		CartID:            cartID,
		SKU:               sku,
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		ReservationStatus: ReservationIdle,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// MarkReserving 将行标记为预订进行中。
func (l *CartLineItem) MarkReserving() error {
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	l.ReservationStatus = ReservationReserving
	l.UpdatedAt = time.Now()
	return nil
}

// ApplyHold 记录一次成功的 hold。覆盖数量固定等于当前请求数量。
func (l *CartLineItem) ApplyHold(holdID string, expiresAt time.Time, location string) {
	l.ReservationStatus = ReservationReserved
	l.ReservationHoldID = holdID
	l.ReservationExpiresAt = &expiresAt
	l.ReservationLocation = location
	l.ReservedQuantity = l.Quantity
	l.UpdatedAt = time.Now()
}

// ResetReservation 将预订字段全部清回 IDLE 形态。
// release、冲突、数量修改、删除都会走到这里。
func (l *CartLineItem) ResetReservation() {
	l.ReservationStatus = ReservationIdle
	l.ReservationHoldID = ""
	l.ReservationExpiresAt = nil
	l.ReservationLocation = ""
	l.ReservedQuantity = 0
	l.UpdatedAt = time.Now()
}

// SetQuantity 修改请求数量。调用方必须先处理掉已存在的 hold。
func (l *CartLineItem) SetQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	l.Quantity = quantity
	l.UpdatedAt = time.Now()
	return nil
}

// Held 报告该行当前是否持有远端 hold。
func (l *CartLineItem) Held() bool {
	return l.ReservationHoldID != ""
}

// Fresh 报告当前 hold 是否仍然覆盖请求数量。
func (l *CartLineItem) Fresh() bool {
	return l.ReservationStatus == ReservationReserved &&
		l.ReservationHoldID != "" &&
		l.ReservedQuantity == l.Quantity
}
