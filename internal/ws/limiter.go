package ws

import (
	"errors"
	"sync/atomic"
)

// DefaultMaxConnections 默认最大连接数
const DefaultMaxConnections = 1000

// ErrConnectionLimitExceeded 超过连接上限
var ErrConnectionLimitExceeded = errors.New("connection limit exceeded")

// ConnectionLimiter 连接数限制器
type ConnectionLimiter struct {
	max     int32
	current atomic.Int32
}

// NewConnectionLimiter 创建连接限制器，max <= 0 使用默认值
func NewConnectionLimiter(max int) *ConnectionLimiter {
	if max <= 0 {
		max = DefaultMaxConnections
	}
	return &ConnectionLimiter{max: int32(max)}
}

// Acquire 占用一个连接名额
func (l *ConnectionLimiter) Acquire() error {
	for {
		cur := l.current.Load()
		if cur >= l.max {
			return ErrConnectionLimitExceeded
		}
		if l.current.CompareAndSwap(cur, cur+1) {
			return nil
		}
	}
}

// Release 释放名额
func (l *ConnectionLimiter) Release() {
	if l.current.Add(-1) < 0 {
		l.current.Store(0)
	}
}

// CurrentCount 当前连接数
func (l *ConnectionLimiter) CurrentCount() int32 {
	return l.current.Load()
}

// Available 剩余名额
func (l *ConnectionLimiter) Available() int32 {
	return l.max - l.current.Load()
}

// MaxConnections 连接上限
func (l *ConnectionLimiter) MaxConnections() int32 {
	return l.max
}
