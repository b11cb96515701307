// internal/service/cart/infrastructure/gorm_model.go
package infrastructure

import (
	"time"
)

// CartLineModel 对应数据库中的 cart_line 表。
// 预订元数据直接落在行上，行删除时随行消失。
type CartLineModel struct {
	ID        string `gorm:"primaryKey;size:36"`
	CartID    string `gorm:"index;size:64"`
	SKU       string `gorm:"size:64"`
	Quantity  int
	UnitPrice float64 `gorm:"type:decimal(10,2)"`

	ReservationStatus    string `gorm:"size:16;default:IDLE"`
	ReservationHoldID    string `gorm:"size:64"`
	ReservationExpiresAt *time.Time
	ReservationLocation  string `gorm:"size:80"`
	ReservedQuantity     int

	PreferOnline   bool
	PreferredStore string `gorm:"size:64"`
	HasPreference  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName 指定 GORM 应该使用的表名。
func (CartLineModel) TableName() string {
	return "cart_line"
}
