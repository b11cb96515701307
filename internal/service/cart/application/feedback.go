// internal/service/cart/application/feedback.go
package application

// 面向用户的反馈文案。所有失败都在协调器边界收敛成这些按行作用域的文案，
// 绝不上抛为页面级错误。
const (
	msgReserved      = "Reserved in store."
	msgOutOfStock    = "Product is out of stock."
	msgReserveRetry  = "Unable to reserve, please try again."
	msgReleaseFailed = "Could not release reservation. Please try again."
)

const (
	fmtStoresAvailable = "Not enough stock at the selected location. Available at: %s."
	fmtOnlineOnly      = "No stock in stores for this SKU. %d available online."
	fmtStoreEntry      = "%s (%d)"
)
