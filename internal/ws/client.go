package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

const (
	// WriteWait 写入超时时间
	WriteWait = 10 * time.Second
	// PongWait Pong响应等待时间
	PongWait = 60 * time.Second
	// PingPeriod Ping发送周期（必须小于PongWait）
	PingPeriod = 30 * time.Second
	// MaxMessageSize 客户端只发心跳，消息很小
	MaxMessageSize = 4 * 1024
)

// Client 一个浏览器连接。只推送，不处理业务消息
type Client struct {
	ID     string
	UserID string // 未登录为空

	conn *websocket.Conn
	send chan []byte
	hub  *Hub
	log  logger.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewClient 创建连接对象
func NewClient(id, userID string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		conn:   conn,
		send:   make(chan []byte, 64),
		hub:    hub,
		log:    hub.log.WithFields(logger.String("conn_id", id)),
		done:   make(chan struct{}),
	}
}

// enqueue 非阻塞发送，缓冲满时断开慢连接
func (c *Client) enqueue(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.log.Warn("send buffer full, closing")
		c.close()
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// ReadPump 读取消息泵，只用于检测断线和处理 Pong
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.close()
	}()

	c.conn.SetReadLimit(MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug("websocket read error", logger.Error(err))
			}
			return
		}
	}
}

// WritePump 写入消息泵
func (c *Client) WritePump() {
	ticker := time.NewTicker(PingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Debug("websocket write error", logger.Error(err))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
