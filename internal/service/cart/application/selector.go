// internal/service/cart/application/selector.go
package application

import "storefront/internal/service/cart/domain"

// SelectLocation 为请求数量挑选一个履约位置，纯函数。
//
// 规则（按优先级）:
//  1. 用户显式偏好原样采用，即使快照显示该处库存不足——远端库存服务才是
//     权威，选错了它会用冲突拒绝。
//  2. 按快照给出的门店顺序取第一家库存 >= 数量的门店。first-fit 而非
//     best-fit，是刻意保留的简化。
//  3. 线上库存 >= 数量时选 "online"。
//  4. 兜底到配置的默认门店，请求照常发出，预期由远端拒绝并走冲突路径。
func SelectLocation(snapshot *domain.InventorySnapshot, quantity int, pref *domain.LocationPreference, defaultStoreID string) string {
	if pref != nil {
		return pref.Location()
	}

	if snapshot != nil {
		for _, store := range snapshot.Stores {
			if store.Quantity >= quantity {
				return domain.StoreLocation(store.StoreID)
			}
		}
		if snapshot.Online >= quantity {
			return domain.LocationOnline
		}
	}

	return domain.StoreLocation(defaultStoreID)
}
