package condition

import (
	"sync"

	"github.com/dep2p/go-dcps/pkg/types"
)

// StatusCondition 实体状态条件
//
// 触发值 = 当前状态 & 启用掩码 != 0。
type StatusCondition struct {
	mu sync.Mutex

	owner    types.InstanceHandle
	enabled  types.StatusMask
	status   types.StatusMask
	deferred bool
	deleted  bool
	waitsets map[*WaitSet]struct{}
}

// NewStatusCondition 创建状态条件，默认启用全部状态
func NewStatusCondition(owner types.InstanceHandle) *StatusCondition {
	return &StatusCondition{
		owner:    owner,
		enabled:  types.StatusMaskAll,
		waitsets: make(map[*WaitSet]struct{}),
	}
}

// Owner 返回所属实体句柄
func (c *StatusCondition) Owner() types.InstanceHandle {
	return c.owner
}

// EnabledStatuses 返回启用的状态掩码
func (c *StatusCondition) EnabledStatuses() types.StatusMask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// SetEnabledStatuses 设置启用的状态掩码
func (c *StatusCondition) SetEnabledStatuses(mask types.StatusMask) {
	c.mu.Lock()
	c.enabled = mask
	c.mu.Unlock()
	c.Notify()
}

// Status 返回当前状态
func (c *StatusCondition) Status() types.StatusMask {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// TriggerValue 返回触发值
func (c *StatusCondition) TriggerValue() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status&c.enabled != 0
}

// Raise 置位状态但不唤醒等待方，返回置位后是否触发
func (c *StatusCondition) Raise(mask types.StatusMask) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return false
	}
	c.status |= mask
	return c.status&c.enabled != 0
}

// Clear 清除状态位
func (c *StatusCondition) Clear(mask types.StatusMask) {
	c.mu.Lock()
	c.status &^= mask
	c.mu.Unlock()
}

// Deferred 检查条件是否在延迟队列中
func (c *StatusCondition) Deferred() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deferred
}

// Deleted 检查条件是否已销毁
func (c *StatusCondition) Deleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deleted
}

// Delete 销毁条件并从所有等待集摘除
//
// 调用方负责先从 Dispatcher 撤销，或改用 Dispatcher.Retire。重复调用无副作用。
func (c *StatusCondition) Delete() {
	if c.markDeleted() {
		c.detachAll()
	}
}

// markDeleted 标记销毁，首次标记返回 true
func (c *StatusCondition) markDeleted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return false
	}
	c.deleted = true
	return true
}

// detachAll 从所有等待集摘除，只在标记销毁后调用
func (c *StatusCondition) detachAll() {
	c.mu.Lock()
	sets := make([]*WaitSet, 0, len(c.waitsets))
	for ws := range c.waitsets {
		sets = append(sets, ws)
	}
	c.waitsets = nil
	c.mu.Unlock()

	for _, ws := range sets {
		ws.remove(c)
	}
}

func (c *StatusCondition) setDeferred(v bool) {
	c.mu.Lock()
	c.deferred = v
	c.mu.Unlock()
}

// markDeferred 未销毁时标记待通知并返回 true
func (c *StatusCondition) markDeferred() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return false
	}
	c.deferred = true
	return true
}

func (c *StatusCondition) attach(ws *WaitSet) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleted {
		return ErrConditionDeleted
	}
	c.waitsets[ws] = struct{}{}
	return nil
}

func (c *StatusCondition) detach(ws *WaitSet) {
	c.mu.Lock()
	if c.waitsets != nil {
		delete(c.waitsets, ws)
	}
	c.mu.Unlock()
}

// Notify 立即唤醒挂接的等待集
func (c *StatusCondition) Notify() {
	c.mu.Lock()
	if c.deleted {
		c.mu.Unlock()
		return
	}
	sets := make([]*WaitSet, 0, len(c.waitsets))
	for ws := range c.waitsets {
		sets = append(sets, ws)
	}
	c.mu.Unlock()

	for _, ws := range sets {
		ws.notify()
	}
}
