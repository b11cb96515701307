// internal/service/cart/application/coordinator.go
package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/domain/port"
)

const defaultHoldTTL = 30 * time.Minute

// ReservationCoordinator 编排购物车行的库存预订：hold 的创建与释放、
// 数量变更和删除的联动，以及按行的 busy 标志与反馈文案。
//
// 所有远端失败都在这里收敛为行级反馈并把行复位回 IDLE，不向上传播；
// 只有前置条件（行不存在、数量非法、重复在途）以 error 返回。
type ReservationCoordinator struct {
	repo      domain.CartRepository
	inventory port.InventoryService
	resolver  *ConflictResolver
	notifier  port.FeedbackNotifier
	events    port.ReservationEventProducer
	tracer    trace.Tracer
	statuses  *statusRegistry

	holdTTL        time.Duration
	defaultStoreID string
}

type CoordinatorOption func(*ReservationCoordinator)

// WithHoldTTL 覆盖默认的 30 分钟 hold TTL。
func WithHoldTTL(d time.Duration) CoordinatorOption {
	return func(c *ReservationCoordinator) {
		if d > 0 {
			c.holdTTL = d
		}
	}
}

// WithDefaultStore 设置选址兜底门店。
func WithDefaultStore(storeID string) CoordinatorOption {
	return func(c *ReservationCoordinator) {
		if storeID != "" {
			c.defaultStoreID = storeID
		}
	}
}

// WithNotifier 注入实时反馈推送。
func WithNotifier(n port.FeedbackNotifier) CoordinatorOption {
	return func(c *ReservationCoordinator) { c.notifier = n }
}

// WithEventProducer 注入预订事件发布器。
func WithEventProducer(p port.ReservationEventProducer) CoordinatorOption {
	return func(c *ReservationCoordinator) { c.events = p }
}

func NewReservationCoordinator(repo domain.CartRepository, inventory port.InventoryService, tracer trace.Tracer, opts ...CoordinatorOption) *ReservationCoordinator {
	c := &ReservationCoordinator{
		repo:           repo,
		inventory:      inventory,
		resolver:       NewConflictResolver(inventory, tracer),
		tracer:         tracer,
		statuses:       newStatusRegistry(),
		holdTTL:        defaultHoldTTL,
		defaultStoreID: "STORE_CENTRAL",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Feedback 返回该行最近一次预订操作产生的反馈文案。
func (c *ReservationCoordinator) Feedback(lineID string) string {
	return c.statuses.feedback(lineID)
}

// Reserve 为购物车行在远端库存服务上创建一个 hold。
//
// 流程: busy 护栏 -> 标记 RESERVING -> 拉新鲜快照 -> 释放旧 hold（如有，
// 先释放后占用，两次独立往返，不构成事务）-> 选址 -> hold 请求。
// 成功写回 hold 元数据；冲突交给解析器产出建议并复位；其他失败透出远端
// 文案（或通用兜底）并复位。busy 标志在所有出口清除。
func (c *ReservationCoordinator) Reserve(ctx context.Context, cartID, lineID string, pref *domain.LocationPreference) (*domain.CartLineItem, error) {
	ctx, span := c.tracer.Start(ctx, "cart.Reserve")
	defer span.End()
	span.SetAttributes(
		attribute.String("cart.id", cartID),
		attribute.String("cart.line_id", lineID),
	)

	line, err := c.repo.GetLine(ctx, cartID, lineID)
	if err != nil {
		return nil, err
	}
	if line.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if pref == nil {
		pref = line.LocationPreference
	}

	if !c.statuses.tryAcquire(lineID) {
		span.AddEvent("reservation already in flight")
		return nil, domain.ErrReservationInFlight
	}
	defer c.statuses.release(lineID)

	if err := line.MarkReserving(); err != nil {
		return nil, err
	}
	if err := c.repo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	c.notify(ctx, line)

	// 快照每次现拉，绝不复用上一次调用的结果
	snapshot, err := c.inventory.FetchSnapshot(ctx, line.SKU)
	if err != nil {
		span.RecordError(err)
		return c.failReserve(ctx, line, msgReserveRetry)
	}

	// 先释放旧 hold 再请求新 hold。两次调用之间没有共享事务，
	// 远端可能出现短暂的空窗或双重占用，这是已接受的设计限制。
	if line.Held() {
		priorHold := line.ReservationHoldID
		if err := c.inventory.Release(ctx, priorHold); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("hold_id", priorHold).Msg("release of superseded hold failed")
			span.RecordError(err)
		}
		c.publishReleased(ctx, line, priorHold, "superseded")
	}

	location := SelectLocation(snapshot, line.Quantity, pref, c.defaultStoreID)
	span.SetAttributes(attribute.String("reservation.location", location))

	result, err := c.inventory.Hold(ctx, port.HoldRequest{
		SKU:        line.SKU,
		Quantity:   line.Quantity,
		Location:   location,
		TTLSeconds: int(c.holdTTL.Seconds()),
	})
	if err != nil {
		var rerr *port.ReservationError
		if errors.As(err, &rerr) && rerr.Kind == port.FailureConflict {
			span.AddEvent("reservation conflict")
			feedback := c.resolver.Resolve(ctx, line.SKU, line.Quantity, rerr.Snapshot)
			c.publishConflicted(ctx, line, location, feedback)
			return c.failReserve(ctx, line, feedback)
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, "hold request failed")
		feedback := msgReserveRetry
		if errors.As(err, &rerr) && rerr.Message != "" && rerr.Kind != port.FailureTransport {
			feedback = rerr.Message
		}
		return c.failReserve(ctx, line, feedback)
	}

	line.ApplyHold(result.HoldID, result.ExpiresAt, location)
	if err := c.repo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	c.statuses.setFeedback(lineID, msgReserved)
	c.notify(ctx, line)
	c.publishPlaced(ctx, line)

	span.AddEvent("hold placed")
	logger.Ctx(ctx).Info().
		Str("line_id", line.ID).
		Str("hold_id", line.ReservationHoldID).
		Str("location", location).
		Msg("reservation placed")
	return line, nil
}

// failReserve 统一处理 Reserve 的失败出口：复位、落库、覆盖反馈。
func (c *ReservationCoordinator) failReserve(ctx context.Context, line *domain.CartLineItem, feedback string) (*domain.CartLineItem, error) {
	line.ResetReservation()
	if err := c.repo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	c.statuses.setFeedback(line.ID, feedback)
	c.notify(ctx, line)
	return line, nil
}

// Release 释放购物车行持有的 hold。
// 远端释放失败不阻塞用户：本地状态无条件复位，残留的 hold 由 TTL 过期。
func (c *ReservationCoordinator) Release(ctx context.Context, cartID, lineID string) (*domain.CartLineItem, error) {
	ctx, span := c.tracer.Start(ctx, "cart.Release")
	defer span.End()

	line, err := c.repo.GetLine(ctx, cartID, lineID)
	if err != nil {
		return nil, err
	}

	if !line.Held() {
		line.ResetReservation()
		if err := c.repo.SaveLine(ctx, line); err != nil {
			return nil, err
		}
		return line, nil
	}

	priorHold := line.ReservationHoldID
	if err := c.inventory.Release(ctx, priorHold); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("hold_id", priorHold).Msg("remote release failed, resetting locally anyway")
		span.RecordError(err)
		c.statuses.setFeedback(lineID, msgReleaseFailed)
	} else {
		c.statuses.setFeedback(lineID, "")
	}

	line.ResetReservation()
	if err := c.repo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	c.notify(ctx, line)
	c.publishReleased(ctx, line, priorHold, "released")
	return line, nil
}

// ChangeQuantity 处理数量编辑。任何数量修改都会打破 hold 的新鲜性，
// 所以先释放旧 hold 再落新数量，行停在 IDLE，由调用方显式再预订。
// newQuantity <= 0 等同于删除，绝不会产生数量为零的 hold 请求。
func (c *ReservationCoordinator) ChangeQuantity(ctx context.Context, cartID, lineID string, newQuantity int) (*domain.CartLineItem, error) {
	ctx, span := c.tracer.Start(ctx, "cart.ChangeQuantity")
	defer span.End()
	span.SetAttributes(attribute.Int("cart.new_quantity", newQuantity))

	if newQuantity <= 0 {
		if err := c.Remove(ctx, cartID, lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	line, err := c.repo.GetLine(ctx, cartID, lineID)
	if err != nil {
		return nil, err
	}

	if line.Held() {
		priorHold := line.ReservationHoldID
		if err := c.inventory.Release(ctx, priorHold); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("hold_id", priorHold).Msg("release on quantity change failed")
			span.RecordError(err)
			c.statuses.setFeedback(lineID, msgReleaseFailed)
		}
		c.publishReleased(ctx, line, priorHold, "quantity_changed")
	}

	line.ResetReservation()
	if err := line.SetQuantity(newQuantity); err != nil {
		return nil, err
	}
	if err := c.repo.SaveLine(ctx, line); err != nil {
		return nil, err
	}
	c.notify(ctx, line)
	return line, nil
}

// Remove 删除购物车行，持有 hold 时先释放（fail-open）。
// 预订字段不会比行本身活得更久。
func (c *ReservationCoordinator) Remove(ctx context.Context, cartID, lineID string) error {
	ctx, span := c.tracer.Start(ctx, "cart.Remove")
	defer span.End()

	line, err := c.repo.GetLine(ctx, cartID, lineID)
	if err != nil {
		return err
	}

	if line.Held() {
		priorHold := line.ReservationHoldID
		if err := c.inventory.Release(ctx, priorHold); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("hold_id", priorHold).Msg("release on removal failed")
			span.RecordError(err)
		}
		c.publishReleased(ctx, line, priorHold, "removed")
	}

	if err := c.repo.RemoveLine(ctx, cartID, lineID); err != nil {
		return err
	}
	c.statuses.drop(lineID)
	return nil
}

func (c *ReservationCoordinator) notify(ctx context.Context, line *domain.CartLineItem) {
	if c.notifier == nil {
		return
	}
	c.notifier.PushFeedback(ctx, port.FeedbackUpdate{
		CartID:     line.CartID,
		LineItemID: line.ID,
		Status:     line.ReservationStatus,
		Feedback:   c.statuses.feedback(line.ID),
	})
}

func (c *ReservationCoordinator) publishPlaced(ctx context.Context, line *domain.CartLineItem) {
	if c.events == nil {
		return
	}
	event := &domain.ReservationPlaced{
		EventID:    uuid.New().String(),
		CartID:     line.CartID,
		LineItemID: line.ID,
		SKU:        line.SKU,
		Quantity:   line.ReservedQuantity,
		HoldID:     line.ReservationHoldID,
		Location:   line.ReservationLocation,
		PlacedAt:   time.Now(),
	}
	if line.ReservationExpiresAt != nil {
		event.ExpiresAt = *line.ReservationExpiresAt
	}
	if err := c.events.PublishPlaced(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("line_id", line.ID).Msg("failed to publish reservation placed event")
	}
}

func (c *ReservationCoordinator) publishReleased(ctx context.Context, line *domain.CartLineItem, holdID, reason string) {
	if c.events == nil {
		return
	}
	event := &domain.ReservationReleased{
		EventID:    uuid.New().String(),
		CartID:     line.CartID,
		LineItemID: line.ID,
		SKU:        line.SKU,
		HoldID:     holdID,
		Reason:     reason,
		ReleasedAt: time.Now(),
	}
	if err := c.events.PublishReleased(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("line_id", line.ID).Msg("failed to publish reservation released event")
	}
}

func (c *ReservationCoordinator) publishConflicted(ctx context.Context, line *domain.CartLineItem, location, feedback string) {
	if c.events == nil {
		return
	}
	event := &domain.ReservationConflicted{
		EventID:    uuid.New().String(),
		CartID:     line.CartID,
		LineItemID: line.ID,
		SKU:        line.SKU,
		Quantity:   line.Quantity,
		Location:   location,
		Feedback:   feedback,
		At:         time.Now(),
	}
	if err := c.events.PublishConflicted(ctx, event); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("line_id", line.ID).Msg("failed to publish reservation conflicted event")
	}
}
