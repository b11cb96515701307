// internal/service/cart/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"storefront/internal/pkg/logger"
	"storefront/internal/service/cart/application"
	"storefront/internal/service/cart/domain"
)

// CartHandler 封装购物车与预订的 HTTP 处理器。
type CartHandler struct {
	cartSvc     *application.CartService
	coordinator *application.ReservationCoordinator
	hub         *FeedbackHub
}

func NewCartHandler(cartSvc *application.CartService, coordinator *application.ReservationCoordinator, hub *FeedbackHub) *CartHandler {
	return &CartHandler{cartSvc: cartSvc, coordinator: coordinator, hub: hub}
}

// RegisterRoutes 在 ServeMux 上注册所有路由。
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("GET /carts/{cartID}", h.getCart)
	mux.HandleFunc("DELETE /carts/{cartID}", h.clearCart)
	mux.HandleFunc("POST /carts/{cartID}/items", h.addItem)
	mux.HandleFunc("PATCH /carts/{cartID}/items/{lineID}", h.setQuantity)
	mux.HandleFunc("DELETE /carts/{cartID}/items/{lineID}", h.removeItem)
	mux.HandleFunc("POST /carts/{cartID}/items/{lineID}/reserve", h.reserve)
	mux.HandleFunc("POST /carts/{cartID}/items/{lineID}/release", h.release)

	if h.hub != nil {
		mux.HandleFunc("GET /ws", h.hub.ServeWS)
	}
}

func (h *CartHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	view, err := h.cartSvc.GetCart(ctx, r.PathValue("cartID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var in application.AddItemInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeError(w, r, pkgerrors.Wrap(domain.ErrInvalidLineItem, err.Error()))
		return
	}

	line, err := h.cartSvc.AddItem(ctx, r.PathValue("cartID"), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, application.NewLineItemView(line, ""))
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) setQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, pkgerrors.Wrap(domain.ErrInvalidQuantity, err.Error()))
		return
	}

	line, err := h.cartSvc.SetQuantity(ctx, r.PathValue("cartID"), r.PathValue("lineID"), req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if line == nil {
		// 数量 <= 0 等同删除
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, application.NewLineItemView(line, h.coordinator.Feedback(line.ID)))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if err := h.cartSvc.RemoveItem(ctx, r.PathValue("cartID"), r.PathValue("lineID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CartHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)
	if err := h.cartSvc.ClearCart(ctx, r.PathValue("cartID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type reserveRequest struct {
	Preference *domain.LocationPreference `json:"preference,omitempty"`
}

func (h *CartHandler) reserve(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	var req reserveRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, r, pkgerrors.Wrap(domain.ErrInvalidLineItem, err.Error()))
			return
		}
	}

	line, err := h.coordinator.Reserve(ctx, r.PathValue("cartID"), r.PathValue("lineID"), req.Preference)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, application.NewLineItemView(line, h.coordinator.Feedback(line.ID)))
}

func (h *CartHandler) release(w http.ResponseWriter, r *http.Request) {
	ctx := extract(r)

	line, err := h.coordinator.Release(ctx, r.PathValue("cartID"), r.PathValue("lineID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, application.NewLineItemView(line, h.coordinator.Feedback(line.ID)))
}

// extract 从请求头恢复链路上下文。
func extract(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	return propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

func (h *CartHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrLineNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidLineItem):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrReservationInFlight):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
