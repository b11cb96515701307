// internal/service/cart/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/pkg/httpclient"
	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/domain/port"
)

// InventoryHTTPAdapter 实现了 port.InventoryService 接口。
// 远端响应的异构形态（状态码、消息字段、内嵌快照）在这里一次性
// 归类成类型化结果，上层不再做任何状态码判断。
type InventoryHTTPAdapter struct {
	client      *httpclient.Client
	serviceName string
}

// NewInventoryHTTPAdapter 创建库存服务适配器。
// serviceName 是远端库存服务在注册中心里的服务名。
func NewInventoryHTTPAdapter(client *httpclient.Client, serviceName string) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client, serviceName: serviceName}
}

type holdPayload struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
	TTL      int    `json:"ttl"`
}

type holdCreatedBody struct {
	HoldID    string    `json:"hold_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// conflictBody 兼容 409 响应携带快照的两种字段形态。
type conflictBody struct {
	Inventory *domain.InventorySnapshot `json:"inventory"`
	Data      *domain.InventorySnapshot `json:"data"`
	Message   string                    `json:"message"`
	Error     string                    `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// FetchSnapshot 拉取指定 SKU 的瞬时库存。
func (a *InventoryHTTPAdapter) FetchSnapshot(ctx context.Context, sku string) (*domain.InventorySnapshot, error) {
	result, err := a.client.Get(ctx, a.serviceName, "/inventory/"+url.PathEscape(sku))
	if err != nil {
		return nil, fmt.Errorf("inventory snapshot fetch failed: %w", err)
	}
	if result.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory snapshot fetch for %s returned status %d: %s",
			sku, result.StatusCode, remoteMessage(result.Body))
	}

	var snapshot domain.InventorySnapshot
	if err := json.Unmarshal(result.Body, &snapshot); err != nil {
		return nil, fmt.Errorf("malformed inventory snapshot for %s: %w", sku, err)
	}
	return &snapshot, nil
}

// Hold 请求占用库存。所有失败形态都收敛为 *port.ReservationError。
func (a *InventoryHTTPAdapter) Hold(ctx context.Context, req port.HoldRequest) (*port.HoldResult, error) {
	payload := holdPayload{
		SKU:      req.SKU,
		Quantity: req.Quantity,
		Location: req.Location,
		TTL:      req.TTLSeconds,
	}

	result, err := a.client.Post(ctx, a.serviceName, "/hold", payload)
	if err != nil {
		return nil, &port.ReservationError{Kind: port.FailureTransport, Message: err.Error()}
	}

	switch result.StatusCode {
	case http.StatusCreated:
		var body holdCreatedBody
		if err := json.Unmarshal(result.Body, &body); err != nil {
			return nil, &port.ReservationError{Kind: port.FailureTransport, Message: "malformed hold response: " + err.Error()}
		}
		return &port.HoldResult{HoldID: body.HoldID, ExpiresAt: body.ExpiresAt}, nil

	case http.StatusConflict:
		var body conflictBody
		// 409 的 body 可能为空或不可解析，此时快照留空，由上层现拉
		_ = json.Unmarshal(result.Body, &body)
		snapshot := body.Inventory
		if snapshot == nil {
			snapshot = body.Data
		}
		message := body.Message
		if message == "" {
			message = body.Error
		}
		if message == "" {
			message = "insufficient stock"
		}
		return nil, &port.ReservationError{Kind: port.FailureConflict, Message: message, Snapshot: snapshot}

	default:
		return nil, &port.ReservationError{
			Kind:    port.FailureRemote,
			Message: remoteMessage(result.Body),
		}
	}
}

// Release 释放一个 hold。失败由调用方按 fail-open 处理。
func (a *InventoryHTTPAdapter) Release(ctx context.Context, holdID string) error {
	result, err := a.client.Post(ctx, a.serviceName, "/release/"+url.PathEscape(holdID), nil)
	if err != nil {
		return fmt.Errorf("release request failed: %w", err)
	}
	if result.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("release of hold %s returned status %d: %s",
			holdID, result.StatusCode, remoteMessage(result.Body))
	}
	return nil
}

// remoteMessage 从 {message|error} 形态的响应体里提取文案。
func remoteMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Message != "" {
			return parsed.Message
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return "unexpected inventory service response"
}
