// internal/service/cart/interfaces/ws_handler_test.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/domain/port"
)

func TestFeedbackHubPushesToSubscribedCart(t *testing.T) {
	detached := make(chan string, 1)
	hub := NewFeedbackHub(func(cartID string) { detached <- cartID })
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?cartId=cart-1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	// 等待注册完成后再推送
	deadline := time.Now().Add(2 * time.Second)
	update := port.FeedbackUpdate{
		CartID:     "cart-1",
		LineItemID: "line-1",
		Status:     domain.ReservationReserved,
		Feedback:   "Reserved in store.",
	}
	for time.Now().Before(deadline) {
		hub.PushFeedback(context.Background(), update)
		conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		var got port.FeedbackUpdate
		if err := json.Unmarshal(raw, &got); err != nil {
			t.Fatalf("unmarshal pushed update: %v", err)
		}
		if got != update {
			t.Fatalf("expected %+v, got %+v", update, got)
		}

		// 最后一个客户端断开时必须触发 detach 回调
		conn.Close()
		select {
		case cartID := <-detached:
			if cartID != "cart-1" {
				t.Fatalf("expected detach for cart-1, got %s", cartID)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("detach callback not invoked after last client left")
		}
		return
	}
	t.Fatal("never received pushed feedback")
}

func TestServeWSRequiresCartID(t *testing.T) {
	hub := NewFeedbackHub(nil)
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	server := httptest.NewServer(mux)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail without cartId")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Fatalf("expected 400 response, got %+v", resp)
	}
}
