// Package notify 数据变更通知通道。
//
// 通知只携带表名，不携带数据；订阅方收到后自行重新拉取完整快照。
package notify

import (
	"context"
	"sync"
	"sync/atomic"
)

// Table 被监听的表
type Table string

const (
	TableSongs     Table = "songs"
	TableRequests  Table = "requests"
	TableUsers     Table = "users"
	TableFeedbacks Table = "feedbacks"
)

// Valid 是否为已知表
func (t Table) Valid() bool {
	switch t {
	case TableSongs, TableRequests, TableUsers, TableFeedbacks:
		return true
	}
	return false
}

// Publisher 发布变更
type Publisher interface {
	Publish(ctx context.Context, table Table) error
}

// Channel 变更通知通道
type Channel interface {
	Publisher
	Subscribe(table Table, onChange func()) (*Subscription, error)
}

// Subscription 订阅句柄
type Subscription struct {
	table  Table
	id     uint64
	closed atomic.Bool
	once   sync.Once
	remove func(Table, uint64)
}

// Table 订阅的表
func (s *Subscription) Table() Table {
	return s.table
}

// Unsubscribe 取消订阅，可重复调用。返回后不会再有新的回调开始执行。
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.remove(s.table, s.id)
	})
}

type listener struct {
	sub *Subscription
	fn  func()
}

// registry 本地回调表，Redis 与内存实现共用
type registry struct {
	mu        sync.RWMutex
	nextID    uint64
	listeners map[Table]map[uint64]listener
}

func newRegistry() *registry {
	return &registry{listeners: make(map[Table]map[uint64]listener)}
}

func (r *registry) add(table Table, fn func()) (*Subscription, error) {
	if !table.Valid() {
		return nil, ErrUnknownTable
	}
	if fn == nil {
		return nil, ErrNilCallback
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	sub := &Subscription{table: table, id: r.nextID, remove: r.remove}
	if r.listeners[table] == nil {
		r.listeners[table] = make(map[uint64]listener)
	}
	r.listeners[table][sub.id] = listener{sub: sub, fn: fn}
	return sub, nil
}

func (r *registry) remove(table Table, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.listeners[table], id)
}

// dispatch 回调在锁外执行，回调内可以安全地取消订阅
func (r *registry) dispatch(table Table) int {
	r.mu.RLock()
	fns := make([]listener, 0, len(r.listeners[table]))
	for _, l := range r.listeners[table] {
		fns = append(fns, l)
	}
	r.mu.RUnlock()

	n := 0
	for _, l := range fns {
		if l.sub.closed.Load() {
			continue
		}
		l.fn()
		n++
	}
	return n
}

func (r *registry) dispatchAll() {
	for _, t := range []Table{TableSongs, TableRequests, TableUsers, TableFeedbacks} {
		r.dispatch(t)
	}
}

func (r *registry) count(table Table) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.listeners[table])
}
