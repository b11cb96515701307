// internal/service/cart/application/dto.go
package application

import (
	"time"

	"storefront/internal/service/cart/domain"
)

// AddItemInput 是加入购物车用例的输入数据。
type AddItemInput struct {
	SKU        string                     `json:"sku"`
	Quantity   int                        `json:"quantity"`
	UnitPrice  float64                    `json:"unitPrice"`
	Preference *domain.LocationPreference `json:"preference,omitempty"`
}

// ReservationView 是行上预订元数据的对外视图。
type ReservationView struct {
	Status           domain.ReservationStatus `json:"status"`
	HoldID           string                   `json:"holdId,omitempty"`
	ExpiresAt        *time.Time               `json:"expiresAt,omitempty"`
	Location         string                   `json:"location,omitempty"`
	ReservedQuantity int                      `json:"reservedQuantity"`
}

// LineItemView 是单个购物车行的对外视图，反馈文案随行返回。
type LineItemView struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   float64         `json:"unitPrice"`
	Reservation ReservationView `json:"reservation"`
	Feedback    string          `json:"feedback,omitempty"`
}

// FulfillmentOption 是展示用的单个履约位置选项。
type FulfillmentOption struct {
	Location  string `json:"location"`
	Available int    `json:"available"`
}

// CartView 是整个购物车的对外视图。
type CartView struct {
	CartID  string                         `json:"cartId"`
	Lines   []LineItemView                 `json:"lines"`
	Options map[string][]FulfillmentOption `json:"options,omitempty"`
}

// NewLineItemView 从领域模型组装对外视图。
func NewLineItemView(line *domain.CartLineItem, feedback string) LineItemView {
	return LineItemView{
		ID:        line.ID,
		SKU:       line.SKU,
		Quantity:  line.Quantity,
		UnitPrice: line.UnitPrice,
		Reservation: ReservationView{
			Status:           line.ReservationStatus,
			HoldID:           line.ReservationHoldID,
			ExpiresAt:        line.ReservationExpiresAt,
			Location:         line.ReservationLocation,
			ReservedQuantity: line.ReservedQuantity,
		},
		Feedback: feedback,
	}
}

func toFulfillmentOptions(snapshot *domain.InventorySnapshot) []FulfillmentOption {
	if snapshot == nil {
		return nil
	}
	options := make([]FulfillmentOption, 0, len(snapshot.Stores)+1)
	for _, store := range snapshot.Stores {
		if store.Quantity <= 0 {
			continue
		}
		options = append(options, FulfillmentOption{
			Location:  domain.StoreLocation(store.StoreID),
			Available: store.Quantity,
		})
	}
	if snapshot.Online > 0 {
		options = append(options, FulfillmentOption{
			Location:  domain.LocationOnline,
			Available: snapshot.Online,
		})
	}
	return options
}
