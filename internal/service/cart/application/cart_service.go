// internal/service/cart/application/cart_service.go
package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/service/cart/domain"
)

// CartService 处理购物车本身的增删查，预订动作全部委托给协调器。
// 每次内容变化都会触发一次异步的履约选项重算。
type CartService struct {
	repo        domain.CartRepository
	coordinator *ReservationCoordinator
	options     *OptionsService
	tracer      trace.Tracer
}

func NewCartService(repo domain.CartRepository, coordinator *ReservationCoordinator, options *OptionsService, tracer trace.Tracer) *CartService {
	return &CartService{
		repo:        repo,
		coordinator: coordinator,
		options:     options,
		tracer:      tracer,
	}
}

// AddItem 在购物车里新建一行，初始为 IDLE，预订由调用方显式触发。
func (s *CartService) AddItem(ctx context.Context, cartID string, in AddItemInput) (*domain.CartLineItem, error) {
	ctx, span := s.tracer.Start(ctx, "cart.AddItem")
	defer span.End()
	span.SetAttributes(
		attribute.String("cart.id", cartID),
		attribute.String("cart.sku", in.SKU),
		attribute.Int("cart.quantity", in.Quantity),
	)

	line, err := domain.NewCartLineItem(cartID, in.SKU, in.Quantity, in.UnitPrice)
	if err != nil {
		return nil, err
	}
	line.LocationPreference = in.Preference

	if err := s.repo.SaveLine(ctx, line); err != nil {
		return nil, err
	}

	s.refreshOptionsAsync(ctx, cartID)
	return line, nil
}

// GetCart 组装购物车视图：行、各行反馈、已知的履约选项。
func (s *CartService) GetCart(ctx context.Context, cartID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "cart.GetCart")
	defer span.End()

	lines, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		return nil, err
	}

	view := &CartView{CartID: cartID, Lines: make([]LineItemView, 0, len(lines))}
	for _, line := range lines {
		view.Lines = append(view.Lines, NewLineItemView(line, s.coordinator.Feedback(line.ID)))
	}

	if s.options != nil {
		snapshots := s.options.Options(cartID)
		if len(snapshots) > 0 {
			view.Options = make(map[string][]FulfillmentOption, len(snapshots))
			for sku, snapshot := range snapshots {
				view.Options[sku] = toFulfillmentOptions(snapshot)
			}
		}
	}
	return view, nil
}

// SetQuantity 修改行数量。数量 <= 0 等同删除，此时返回的行为 nil。
func (s *CartService) SetQuantity(ctx context.Context, cartID, lineID string, quantity int) (*domain.CartLineItem, error) {
	line, err := s.coordinator.ChangeQuantity(ctx, cartID, lineID, quantity)
	if err != nil {
		return nil, err
	}
	s.refreshOptionsAsync(ctx, cartID)
	return line, nil
}

// RemoveItem 删除一行（hold 先释放）。
func (s *CartService) RemoveItem(ctx context.Context, cartID, lineID string) error {
	if err := s.coordinator.Remove(ctx, cartID, lineID); err != nil {
		return err
	}
	s.refreshOptionsAsync(ctx, cartID)
	return nil
}

// ClearCart 清空购物车，逐行走删除路径以保证 hold 全部释放。
func (s *CartService) ClearCart(ctx context.Context, cartID string) error {
	ctx, span := s.tracer.Start(ctx, "cart.ClearCart")
	defer span.End()

	lines, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := s.coordinator.Remove(ctx, cartID, line.ID); err != nil {
			return err
		}
	}
	s.refreshOptionsAsync(ctx, cartID)
	return nil
}

// refreshOptionsAsync 在后台重算履约选项。
// 从当前上下文中抽取纯粹的 Span 信息注入新的后台上下文，
// 既保持链路关联，又不受请求超时限制。
func (s *CartService) refreshOptionsAsync(ctx context.Context, cartID string) {
	if s.options == nil {
		return
	}
	spanContext := trace.SpanContextFromContext(ctx)
	backgroundCtx := trace.ContextWithRemoteSpanContext(context.Background(), spanContext)
	go s.options.Refresh(backgroundCtx, cartID)
}
