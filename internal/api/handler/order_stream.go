// 文件路径: internal/api/handler/order_stream.go
// 模块说明: 后台实时订单推送（WebSocket），新订单与状态变更即时送达。
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/brinaregal/brina/internal/async"
	"github.com/brinaregal/brina/internal/service"
	"github.com/brinaregal/brina/internal/support/i18n"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

// EventSource is satisfied by *async.EventHub.
type EventSource interface {
	Subscribe() (<-chan async.Event, func())
}

// OrderStreamHandler upgrades admin connections and relays the live feed.
type OrderStreamHandler struct {
	auth     service.AuthService
	feed     EventSource
	i18n     *i18n.Manager
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewOrderStreamHandler(auth service.AuthService, feed EventSource, i18nMgr *i18n.Manager, logger *slog.Logger) *OrderStreamHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderStreamHandler{
		auth:   auth,
		feed:   feed,
		i18n:   i18nMgr,
		logger: logger.With("component", "order_stream"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// the bearer token is the access control, not the origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream authenticates with the Authorization header or ?token= (browsers
// cannot set headers on a websocket handshake), then pushes JSON events.
func (h *OrderStreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := r.URL.Query().Get("token")
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	claims, err := h.auth.Verify(ctx, token)
	if err != nil {
		respondServiceError(ctx, w, "admin.order.stream", "", err, h.i18n)
		return
	}
	if !claims.IsAdmin {
		RespondErrorI18nAction(ctx, w, http.StatusForbidden, "admin.order.stream", "error.forbidden", h.i18n)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	events, cancel := h.feed.Subscribe()
	defer cancel()
	h.logger.Info("admin subscribed to order feed", "admin_id", claims.UserID)

	// reader: keeps pong deadlines fresh and notices the client leaving
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(streamPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !ok {
				// dropped by the hub for falling behind
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "slow consumer"))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
