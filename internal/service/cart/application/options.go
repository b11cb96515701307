// internal/service/cart/application/options.go
package application

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/domain/port"
)

// OptionsCache 是按 SKU 的履约选项快照缓存。
// 只服务展示用途的选项刷新，预订路径永远现拉快照，不经过这里。
type OptionsCache interface {
	Get(ctx context.Context, sku string) (*domain.InventorySnapshot, error)
	Set(ctx context.Context, sku string, snapshot *domain.InventorySnapshot, ttl time.Duration) error
}

// OptionsService 在购物车内容变化时重算每个 SKU 的履约位置选项。
//
// 每次刷新在发起时捕获会话代数（liveness guard），完成后只有代数仍然
// 一致且会话仍活跃时才写回结果；视图离开（Detach）或被更新的刷新取代
// 后到达的结果直接丢弃，防止过期写入。
type OptionsService struct {
	repo      domain.CartRepository
	inventory port.InventoryService
	cache     OptionsCache
	tracer    trace.Tracer
	cacheTTL  time.Duration

	flight singleflight.Group

	mu       sync.Mutex
	sessions map[string]*optionsSession
	options  map[string]map[string]*domain.InventorySnapshot
}

type optionsSession struct {
	generation uint64
	active     bool
}

type OptionsOption func(*OptionsService)

// WithOptionsCache 注入读穿缓存及其 TTL。
func WithOptionsCache(cache OptionsCache, ttl time.Duration) OptionsOption {
	return func(s *OptionsService) {
		s.cache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

func NewOptionsService(repo domain.CartRepository, inventory port.InventoryService, tracer trace.Tracer, opts ...OptionsOption) *OptionsService {
	s := &OptionsService{
		repo:      repo,
		inventory: inventory,
		tracer:    tracer,
		cacheTTL:  time.Minute,
		sessions:  make(map[string]*optionsSession),
		options:   make(map[string]map[string]*domain.InventorySnapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh 重算购物车内所有 SKU 的履约选项。
func (s *OptionsService) Refresh(ctx context.Context, cartID string) {
	ctx, span := s.tracer.Start(ctx, "cart.RefreshOptions")
	defer span.End()

	generation := s.begin(cartID)

	lines, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("cart_id", cartID).Msg("options refresh: listing lines failed")
		span.RecordError(err)
		return
	}

	results := make(map[string]*domain.InventorySnapshot)
	for _, line := range lines {
		if _, done := results[line.SKU]; done {
			continue
		}
		snapshot, err := s.snapshot(ctx, line.SKU)
		if err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("sku", line.SKU).Msg("options refresh: snapshot fetch failed")
			continue
		}
		results[line.SKU] = snapshot
	}

	if !s.commit(cartID, generation, results) {
		span.AddEvent("stale options refresh discarded")
	}
}

// Options 返回购物车当前已知的按 SKU 选项快照。
func (s *OptionsService) Options(cartID string) map[string]*domain.InventorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.options[cartID]
	if !ok {
		return nil
	}
	out := make(map[string]*domain.InventorySnapshot, len(current))
	for sku, snap := range current {
		out[sku] = snap
	}
	return out
}

// Detach 在购物车视图不再活跃时调用，之后到达的刷新结果全部丢弃。
func (s *OptionsService) Detach(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[cartID]; ok {
		sess.generation++
		sess.active = false
	}
	delete(s.options, cartID)
}

func (s *OptionsService) begin(cartID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[cartID]
	if !ok {
		sess = &optionsSession{}
		s.sessions[cartID] = sess
	}
	sess.generation++
	sess.active = true
	return sess.generation
}

func (s *OptionsService) commit(cartID string, generation uint64, results map[string]*domain.InventorySnapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[cartID]
	if !ok || !sess.active || sess.generation != generation {
		return false
	}
	s.options[cartID] = results
	return true
}

// snapshot 读穿缓存获取单个 SKU 的快照，并用 singleflight 合并并发拉取。
func (s *OptionsService) snapshot(ctx context.Context, sku string) (*domain.InventorySnapshot, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, sku); err == nil && cached != nil {
			return cached, nil
		}
	}

	v, err, _ := s.flight.Do(sku, func() (interface{}, error) {
		snapshot, err := s.inventory.FetchSnapshot(ctx, sku)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, sku, snapshot, s.cacheTTL); err != nil {
				logger.Ctx(ctx).Warn().Err(err).Str("sku", sku).Msg("options cache write failed")
			}
		}
		return snapshot, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.InventorySnapshot), nil
}
