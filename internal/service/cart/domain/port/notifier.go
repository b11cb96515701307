// internal/service/cart/domain/port/notifier.go
package port

import (
	"context"

	"storefront/internal/service/cart/domain"
)

// FeedbackUpdate 是推送给购物车视图的单行预订状态。
type FeedbackUpdate struct {
	CartID     string                   `json:"cartId"`
	LineItemID string                   `json:"lineItemId"`
	Status     domain.ReservationStatus `json:"status"`
	Feedback   string                   `json:"feedback,omitempty"`
}

// FeedbackNotifier 把每行的预订反馈实时推给前端。
// 推送是尽力而为的，失败不影响预订流程。
type FeedbackNotifier interface {
	PushFeedback(ctx context.Context, update FeedbackUpdate)
}

// ReservationEventProducer 发布预订生命周期事件。
type ReservationEventProducer interface {
	PublishPlaced(ctx context.Context, event *domain.ReservationPlaced) error
	PublishReleased(ctx context.Context, event *domain.ReservationReleased) error
	PublishConflicted(ctx context.Context, event *domain.ReservationConflicted) error
}
