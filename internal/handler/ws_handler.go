package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/John-Sie/YangBeiKTV/internal/middleware"
	"github.com/John-Sie/YangBeiKTV/internal/ws"
	apperrors "github.com/John-Sie/YangBeiKTV/pkg/errors"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

func (h *Handler) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || middleware.OriginAllowed(h.AllowedOrigins, origin)
		},
	}
}

// WebSocket 变更推送。客户端收到 changed 事件后重新拉取对应数据
func (h *Handler) WebSocket(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.Hub.Limiter().Acquire(); err != nil {
		h.Log.Warn("websocket connection limit exceeded", logger.String("user_id", userID))
		handleError(c, apperrors.ErrServiceUnavailable.WithDetails(gin.H{
			"available": h.Hub.Limiter().Available(),
		}))
		return
	}

	conn, err := h.upgrader().Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Warn("websocket upgrade failed", logger.Error(err))
		h.Hub.Limiter().Release()
		return
	}

	client := ws.NewClient(uuid.New().String(), userID, conn, h.Hub)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
