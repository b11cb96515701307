// internal/pkg/httpclient/client.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Resolver 将逻辑服务名解析为一个可用实例的 "host:port" 地址。
// 生产环境由 Nacos 客户端实现，测试中可以用 StaticResolver。
type Resolver interface {
	Resolve(serviceName string) (string, error)
}

// StaticResolver 是一个固定映射的 Resolver 实现。
type StaticResolver map[string]string

func (r StaticResolver) Resolve(serviceName string) (string, error) {
	addr, ok := r[serviceName]
	if !ok {
		return "", fmt.Errorf("no static address for service %s", serviceName)
	}
	return addr, nil
}

// Client 是一个可追踪的、可注入的 HTTP 客户端。
type Client struct {
	Tracer     trace.Tracer
	HTTPClient *http.Client
	resolver   Resolver
}

// NewClient 创建一个新的客户端实例。
// 不设置全局 Timeout，超时完全受控于每次请求传入的 context。
func NewClient(tracer trace.Tracer, resolver Resolver) *Client {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
	}
	return &Client{
		Tracer:     tracer,
		HTTPClient: httpClient,
		resolver:   resolver,
	}
}

// Result 承载一次调用的原始响应。
// 状态码的业务含义（冲突/失败分类）由调用方在服务边界上一次性裁决。
type Result struct {
	StatusCode int
	Body       []byte
}

// Do 向指定服务发起一次 JSON 调用。
// 返回 error 仅代表传输层失败（解析、连接、读取）；HTTP 错误状态通过 Result 返回。
func (c *Client) Do(ctx context.Context, method, serviceName, path string, payload interface{}) (*Result, error) {
	addr, err := c.resolver.Resolve(serviceName)
	if err != nil {
		return nil, err
	}

	ctx, span := c.Tracer.Start(ctx, fmt.Sprintf("call-%s", serviceName), trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		body = bytes.NewReader(raw)
	}

	url := fmt.Sprintf("http://%s%s", addr, path)
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	span.SetAttributes(
		attribute.String("http.url", url),
		attribute.String("http.method", method),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}
	return &Result{StatusCode: resp.StatusCode, Body: raw}, nil
}

// Get 发起一次 GET 调用。
func (c *Client) Get(ctx context.Context, serviceName, path string) (*Result, error) {
	return c.Do(ctx, http.MethodGet, serviceName, path, nil)
}

// Post 发起一次携带 JSON 负载的 POST 调用。
func (c *Client) Post(ctx context.Context, serviceName, path string, payload interface{}) (*Result, error) {
	return c.Do(ctx, http.MethodPost, serviceName, path, payload)
}
