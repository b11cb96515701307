// internal/service/cart/infrastructure/mapper.go
package infrastructure

import (
	"storefront/internal/service/cart/domain"
)

// ToDomainCartLine 将数据库模型转换为领域模型。
func ToDomainCartLine(model *CartLineModel) *domain.CartLineItem {
	if model == nil {
		return nil
	}
	line := &domain.CartLineItem{
		ID:                   model.ID,
		CartID:               model.CartID,
		SKU:                  model.SKU,
		Quantity:             model.Quantity,
		UnitPrice:            model.UnitPrice,
		ReservationStatus:    domain.ReservationStatus(model.ReservationStatus),
		ReservationHoldID:    model.ReservationHoldID,
		ReservationExpiresAt: model.ReservationExpiresAt,
		ReservationLocation:  model.ReservationLocation,
		ReservedQuantity:     model.ReservedQuantity,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
	if model.HasPreference {
		line.LocationPreference = &domain.LocationPreference{
			Online:  model.PreferOnline,
			StoreID: model.PreferredStore,
		}
	}
	return line
}

// FromDomainCartLine 将领域模型转换为数据库模型。
func FromDomainCartLine(line *domain.CartLineItem) *CartLineModel {
	if line == nil {
		return nil
	}
	model := &CartLineModel{
		ID:                   line.ID,
		CartID:               line.CartID,
		SKU:                  line.SKU,
		Quantity:             line.Quantity,
		UnitPrice:            line.UnitPrice,
		ReservationStatus:    string(line.ReservationStatus),
		ReservationHoldID:    line.ReservationHoldID,
		ReservationExpiresAt: line.ReservationExpiresAt,
		ReservationLocation:  line.ReservationLocation,
		ReservedQuantity:     line.ReservedQuantity,
		CreatedAt:            line.CreatedAt,
		UpdatedAt:            line.UpdatedAt,
	}
	if line.LocationPreference != nil {
		model.HasPreference = true
		model.PreferOnline = line.LocationPreference.Online
		model.PreferredStore = line.LocationPreference.StoreID
	}
	return model
}
