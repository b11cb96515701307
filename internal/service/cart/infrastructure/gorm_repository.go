// internal/service/cart/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/service/cart/domain"
)

// GormCartRepository 是 domain.CartRepository 的 GORM 实现。
type GormCartRepository struct {
	db *gorm.DB
}

func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) GetLine(ctx context.Context, cartID, lineID string) (*domain.CartLineItem, error) {
	var model CartLineModel
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, lineID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLineNotFound
		}
		return nil, err
	}
	return ToDomainCartLine(&model), nil
}

func (r *GormCartRepository) ListLines(ctx context.Context, cartID string) ([]*domain.CartLineItem, error) {
	var models []CartLineModel
	err := r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	lines := make([]*domain.CartLineItem, 0, len(models))
	for i := range models {
		lines = append(lines, ToDomainCartLine(&models[i]))
	}
	return lines, nil
}

// SaveLine 按主键 upsert，覆盖所有列。
func (r *GormCartRepository) SaveLine(ctx context.Context, line *domain.CartLineItem) error {
	model := FromDomainCartLine(line)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(model).Error
}

func (r *GormCartRepository) RemoveLine(ctx context.Context, cartID, lineID string) error {
	result := r.db.WithContext(ctx).
		Where("cart_id = ? AND id = ?", cartID, lineID).
		Delete(&CartLineModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrLineNotFound
	}
	return nil
}

func (r *GormCartRepository) ClearCart(ctx context.Context, cartID string) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&CartLineModel{}).Error
}
