package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/John-Sie/YangBeiKTV/internal/metrics"
	"github.com/John-Sie/YangBeiKTV/pkg/logger"
)

// RedisChannel 基于 Redis Pub/Sub 的通知通道，多实例之间共享变更
type RedisChannel struct {
	rdb    redis.UniversalClient
	prefix string
	log    logger.Logger
	reg    *registry

	reconnectInterval time.Duration

	ready     chan struct{}
	readyOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	published  atomic.Int64
	received   atomic.Int64
	reconnects atomic.Int64
}

// NewRedisChannel 创建 Redis 通知通道，频道名为 prefix:table
func NewRedisChannel(rdb redis.UniversalClient, prefix string, log logger.Logger) *RedisChannel {
	return &RedisChannel{
		rdb:               rdb,
		prefix:            prefix,
		log:               log.WithFields(logger.String("component", "notify")),
		reg:               newRegistry(),
		reconnectInterval: 2 * time.Second,
		ready:             make(chan struct{}),
	}
}

func (c *RedisChannel) channel(table Table) string {
	return c.prefix + ":" + string(table)
}

// Publish 发布变更，消息体只有表名
func (c *RedisChannel) Publish(ctx context.Context, table Table) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	if err := c.rdb.Publish(ctx, c.channel(table), string(table)).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", table, err)
	}
	c.published.Add(1)
	return nil
}

// Subscribe 注册本地回调。Start 之前或之后都可以调用。
func (c *RedisChannel) Subscribe(table Table, onChange func()) (*Subscription, error) {
	return c.reg.add(table, onChange)
}

// Ready 第一次订阅成功后关闭
func (c *RedisChannel) Ready() <-chan struct{} {
	return c.ready
}

// Start 启动订阅循环（自动重连）
func (c *RedisChannel) Start(ctx context.Context) {
	subCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.subscribeLoop(subCtx)
}

// Stop 停止订阅循环并等待退出
func (c *RedisChannel) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	c.wg.Wait()
}

func (c *RedisChannel) subscribeLoop(ctx context.Context) {
	defer c.wg.Done()

	first := true
	for {
		if ctx.Err() != nil {
			return
		}

		ps := c.rdb.PSubscribe(ctx, c.prefix+":*")
		if _, err := ps.Receive(ctx); err != nil {
			_ = ps.Close()
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("subscribe failed, retrying", logger.Error(err))
			if !c.sleep(ctx) {
				return
			}
			continue
		}

		c.readyOnce.Do(func() { close(c.ready) })
		if !first {
			// 断线期间的通知可能丢失，重连后让所有订阅者全量刷新一次
			c.reconnects.Add(1)
			c.log.Info("resubscribed, forcing full refresh")
			c.reg.dispatchAll()
		}
		first = false

		c.consume(ctx, ps)
		_ = ps.Close()

		if ctx.Err() != nil {
			return
		}
		if !c.sleep(ctx) {
			return
		}
	}
}

func (c *RedisChannel) consume(ctx context.Context, ps *redis.PubSub) {
	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				c.log.Warn("pubsub channel closed")
				return
			}
			table := Table(strings.TrimPrefix(msg.Channel, c.prefix+":"))
			if !table.Valid() {
				continue
			}
			c.received.Add(1)
			metrics.ChangeNotifications.WithLabelValues(string(table)).Inc()
			c.reg.dispatch(table)
		}
	}
}

func (c *RedisChannel) sleep(ctx context.Context) bool {
	timer := time.NewTimer(c.reconnectInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Stats 通道统计
type Stats struct {
	Published  int64 `json:"published"`
	Received   int64 `json:"received"`
	Reconnects int64 `json:"reconnects"`
}

// GetStats 获取统计
func (c *RedisChannel) GetStats() Stats {
	return Stats{
		Published:  c.published.Load(),
		Received:   c.received.Load(),
		Reconnects: c.reconnects.Load(),
	}
}
