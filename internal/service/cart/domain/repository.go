// internal/service/cart/domain/repository.go
package domain

import "context"

// CartRepository 是购物车行数据的持久化接口。
// 预订元数据只存在于行上，行被删除时元数据随之消失，没有独立的持久化存储。
type CartRepository interface {
	GetLine(ctx context.Context, cartID, lineID string) (*CartLineItem, error)
	ListLines(ctx context.Context, cartID string) ([]*CartLineItem, error)
	SaveLine(ctx context.Context, line *CartLineItem) error
	RemoveLine(ctx context.Context, cartID, lineID string) error
	ClearCart(ctx context.Context, cartID string) error
}
