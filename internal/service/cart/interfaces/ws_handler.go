// internal/service/cart/interfaces/ws_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/cart/domain/port"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type feedbackClient struct {
	hub    *FeedbackHub
	conn   *websocket.Conn
	cartID string
	send   chan []byte
}

// FeedbackHub 维护按购物车分组的 WebSocket 连接，
// 把预订反馈实时推给正在看这辆购物车的客户端。
// 实现 port.FeedbackNotifier。
type FeedbackHub struct {
	clients    map[string]map[*feedbackClient]struct{}
	register   chan *feedbackClient
	unregister chan *feedbackClient
	broadcast  chan port.FeedbackUpdate

	// onCartDetached 在某购物车最后一个客户端断开时调用。
	onCartDetached func(cartID string)
}

func NewFeedbackHub(onCartDetached func(cartID string)) *FeedbackHub {
	return &FeedbackHub{
		clients:        make(map[string]map[*feedbackClient]struct{}),
		register:       make(chan *feedbackClient),
		unregister:     make(chan *feedbackClient),
		broadcast:      make(chan port.FeedbackUpdate, 64),
		onCartDetached: onCartDetached,
	}
}

// Run 是 Hub 的主循环，所有对 clients 的读写都在这个 goroutine 里完成。
func (h *FeedbackHub) Run() {
	for {
		select {
		case client := <-h.register:
			if h.clients[client.cartID] == nil {
				h.clients[client.cartID] = make(map[*feedbackClient]struct{})
			}
			h.clients[client.cartID][client] = struct{}{}
			logger.Logger().Info().Str("cart_id", client.cartID).Msg("feedback client connected")

		case client := <-h.unregister:
			group, ok := h.clients[client.cartID]
			if !ok {
				continue
			}
			if _, ok := group[client]; !ok {
				continue
			}
			delete(group, client)
			close(client.send)
			if len(group) == 0 {
				delete(h.clients, client.cartID)
				if h.onCartDetached != nil {
					h.onCartDetached(client.cartID)
				}
			}
			logger.Logger().Info().Str("cart_id", client.cartID).Msg("feedback client disconnected")

		case update := <-h.broadcast:
			group, ok := h.clients[update.CartID]
			if !ok {
				continue
			}
			raw, err := json.Marshal(update)
			if err != nil {
				logger.Logger().Error().Err(err).Msg("marshal feedback update failed")
				continue
			}
			for client := range group {
				select {
				case client.send <- raw:
				default:
					// 慢客户端直接丢弃这条，不阻塞 Hub
				}
			}
		}
	}
}

// PushFeedback 把一条反馈投进广播队列。队列满时丢弃，推送是尽力而为。
func (h *FeedbackHub) PushFeedback(ctx context.Context, update port.FeedbackUpdate) {
	select {
	case h.broadcast <- update:
	default:
		logger.Ctx(ctx).Warn().Str("cart_id", update.CartID).Msg("feedback broadcast queue full, update dropped")
	}
}

// ServeWS 把 HTTP 请求升级为 WebSocket 连接，cartId 由查询参数指定。
func (h *FeedbackHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	cartID := r.URL.Query().Get("cartId")
	if cartID == "" {
		http.Error(w, "cartId is required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &feedbackClient{
		hub:    h,
		conn:   conn,
		cartID: cartID,
		send:   make(chan []byte, 16),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *feedbackClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 只负责消费控制帧并感知断连，客户端不上行业务消息。
func (c *feedbackClient) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
