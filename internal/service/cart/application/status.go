// internal/service/cart/application/status.go
package application

import "sync"

// itemStatus 是单个购物车行的组件局部状态：busy 标志和最近一次反馈文案。
// 按行 ID 显式建模，不放全局可变量。
type itemStatus struct {
	busy     bool
	feedback string
}

type statusRegistry struct {
	mu    sync.Mutex
	items map[string]*itemStatus
}

func newStatusRegistry() *statusRegistry {
	return &statusRegistry{items: make(map[string]*itemStatus)}
}

func (r *statusRegistry) get(lineID string) *itemStatus {
	st, ok := r.items[lineID]
	if !ok {
		st = &itemStatus{}
		r.items[lineID] = st
	}
	return st
}

// tryAcquire 尝试置位 busy 标志。已在途时返回 false。
// 这是协作式的并发护栏，只防同一行的重复 reserve，不是硬锁。
func (r *statusRegistry) tryAcquire(lineID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.get(lineID)
	if st.busy {
		return false
	}
	st.busy = true
	return true
}

func (r *statusRegistry) release(lineID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(lineID).busy = false
}

// setFeedback 无条件覆盖该行的反馈。后发生的结果总是胜出。
func (r *statusRegistry) setFeedback(lineID, feedback string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.get(lineID).feedback = feedback
}

func (r *statusRegistry) feedback(lineID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.items[lineID]; ok {
		return st.feedback
	}
	return ""
}

// drop 在行被删除时丢弃其状态，预订状态不跨行存活。
func (r *statusRegistry) drop(lineID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, lineID)
}
