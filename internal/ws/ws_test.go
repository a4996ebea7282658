package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

func TestConnectionLimiter(t *testing.T) {
	t.Run("Acquire and Release", func(t *testing.T) {
		limiter := NewConnectionLimiter(2)
		assert.NoError(t, limiter.Acquire())
		assert.NoError(t, limiter.Acquire())
		assert.ErrorIs(t, limiter.Acquire(), ErrConnectionLimitExceeded)

		limiter.Release()
		assert.Equal(t, int32(1), limiter.CurrentCount())
		assert.Equal(t, int32(1), limiter.Available())
	})

	t.Run("Release never goes negative", func(t *testing.T) {
		limiter := NewConnectionLimiter(1)
		limiter.Release()
		assert.Equal(t, int32(0), limiter.CurrentCount())
	})

	t.Run("Default max connections", func(t *testing.T) {
		assert.Equal(t, int32(DefaultMaxConnections), NewConnectionLimiter(0).MaxConnections())
	})
}

// startHub 启动 hub 与一个最小化的升级服务
func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(10, logger.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.Limiter().Acquire())
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.Limiter().Release()
			return
		}
		c := NewClient(r.URL.Query().Get("id"), "", conn, hub)
		hub.Register(c)
		go c.ReadPump()
		go c.WritePump()
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestHub_NotifyChanged(t *testing.T) {
	hub, url := startHub(t)

	conns := make([]*websocket.Conn, 2)
	for i, id := range []string{"c1", "c2"} {
		conn, _, err := websocket.DefaultDialer.Dial(url+"?id="+id, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		conns[i] = conn
	}
	require.Eventually(t, func() bool { return hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.NotifyChanged(notify.TableRequests)

	for _, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, EventChanged, ev.Type)
		assert.Equal(t, notify.TableRequests, ev.Table)
	}
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, url := startHub(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?id=c1", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(0), hub.Limiter().CurrentCount())
}
