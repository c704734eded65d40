package condition

import (
	"context"
	"sync"
)

// WaitSet 等待集
type WaitSet struct {
	mu    sync.Mutex
	conds map[*StatusCondition]struct{}

	// wake 容量为 1，多次唤醒合并
	wake chan struct{}
}

// NewWaitSet 创建等待集
func NewWaitSet() *WaitSet {
	return &WaitSet{
		conds: make(map[*StatusCondition]struct{}),
		wake:  make(chan struct{}, 1),
	}
}

// Attach 挂接条件
func (ws *WaitSet) Attach(c *StatusCondition) error {
	if err := c.attach(ws); err != nil {
		return err
	}
	ws.mu.Lock()
	ws.conds[c] = struct{}{}
	ws.mu.Unlock()
	ws.notify()
	return nil
}

// Detach 摘除条件
func (ws *WaitSet) Detach(c *StatusCondition) error {
	ws.mu.Lock()
	_, ok := ws.conds[c]
	delete(ws.conds, c)
	ws.mu.Unlock()
	if !ok {
		return ErrNotAttached
	}
	c.detach(ws)
	return nil
}

// Conditions 返回挂接的条件数
func (ws *WaitSet) Conditions() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.conds)
}

// Wait 阻塞直到至少一个条件触发或 ctx 结束
func (ws *WaitSet) Wait(ctx context.Context) ([]*StatusCondition, error) {
	for {
		if triggered := ws.triggered(); len(triggered) > 0 {
			return triggered, nil
		}
		select {
		case <-ws.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (ws *WaitSet) triggered() []*StatusCondition {
	ws.mu.Lock()
	conds := make([]*StatusCondition, 0, len(ws.conds))
	for c := range ws.conds {
		conds = append(conds, c)
	}
	ws.mu.Unlock()

	var out []*StatusCondition
	for _, c := range conds {
		if c.TriggerValue() {
			out = append(out, c)
		}
	}
	return out
}

func (ws *WaitSet) remove(c *StatusCondition) {
	ws.mu.Lock()
	delete(ws.conds, c)
	ws.mu.Unlock()
	ws.notify()
}

func (ws *WaitSet) notify() {
	select {
	case ws.wake <- struct{}{}:
	default:
	}
}
