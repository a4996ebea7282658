package notify

import "context"

// MemoryChannel 进程内通道，单实例部署和测试使用。Publish 同步执行回调。
type MemoryChannel struct {
	reg *registry
}

// NewMemoryChannel 创建进程内通道
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{reg: newRegistry()}
}

// Publish 通知所有订阅者
func (c *MemoryChannel) Publish(_ context.Context, table Table) error {
	if !table.Valid() {
		return ErrUnknownTable
	}
	c.reg.dispatch(table)
	return nil
}

// Subscribe 订阅表变更
func (c *MemoryChannel) Subscribe(table Table, onChange func()) (*Subscription, error) {
	return c.reg.add(table, onChange)
}
