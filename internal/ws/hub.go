// Package ws 通过 WebSocket 把数据变更推送给浏览器。
//
// 推送内容与通知通道一致，只告诉前端哪张表变了，前端自行重新拉取。
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/internal/notify"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// EventChanged 数据变更事件类型
const EventChanged = "changed"

// Event 推送给前端的事件
type Event struct {
	Type  string       `json:"type"`
	Table notify.Table `json:"table"`
	At    time.Time    `json:"at"`
}

// Hub WebSocket连接管理器
type Hub struct {
	log     logger.Logger
	limiter *ConnectionLimiter

	mu      sync.RWMutex
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
}

// NewHub 创建连接管理器
func NewHub(maxConnections int, log logger.Logger) *Hub {
	return &Hub{
		log:        log.WithFields(logger.String("component", "ws")),
		limiter:    NewConnectionLimiter(maxConnections),
		clients:    make(map[string]*Client),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		broadcast:  make(chan []byte, 256),
	}
}

// Limiter 连接限制器
func (h *Hub) Limiter() *ConnectionLimiter {
	return h.limiter
}

// Run 事件循环，ctx 取消后断开全部连接
func (h *Hub) Run(ctx context.Context) {
	h.log.Info("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.ID] = c
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(n))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.ID]; ok {
				delete(h.clients, c.ID)
				h.limiter.Release()
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(n))
		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*Client, 0, len(h.clients))
			for _, c := range h.clients {
				targets = append(targets, c)
			}
			h.mu.RUnlock()
			for _, c := range targets {
				c.enqueue(msg)
			}
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		c.close()
		delete(h.clients, id)
		h.limiter.Release()
	}
	metrics.WebSocketClients.Set(0)
	h.log.Info("websocket hub stopped")
}

// Register 注册连接
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister 注销连接
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

// Count 当前连接数
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// NotifyChanged 广播某张表变更，缓冲满时丢弃（前端有定时刷新兜底）
func (h *Hub) NotifyChanged(table notify.Table) {
	msg, err := json.Marshal(Event{Type: EventChanged, Table: table, At: time.Now().UTC()})
	if err != nil {
		h.log.Error("marshal event failed", logger.Error(err))
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.Warn("broadcast channel full, event dropped", logger.String("table", string(table)))
	}
}
