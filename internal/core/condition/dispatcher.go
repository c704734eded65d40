package condition

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-dcps/pkg/lib/log"
	"github.com/dep2p/go-dcps/pkg/types"
)

var logger = log.Logger("core/condition")

// DefaultFlushInterval 默认刷新间隔
const DefaultFlushInterval = 50 * time.Millisecond

type pendingSignal struct {
	owner types.InstanceHandle
	cond  *StatusCondition
}

// ============================================================================
//                              Dispatcher 延迟通知注册表
// ============================================================================

// Dispatcher 延迟通知注册表
//
// Defer 登记待通知条件，Flush 统一唤醒。同一 (owner, cond) 只登记一次。
type Dispatcher struct {
	clock    clock.Clock
	interval time.Duration

	mu      sync.Mutex
	pending []pendingSignal

	runMu   sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewDispatcher 创建注册表
//
// clk 为 nil 时使用系统时钟；interval <= 0 时使用 DefaultFlushInterval。
func NewDispatcher(clk clock.Clock, interval time.Duration) *Dispatcher {
	if clk == nil {
		clk = clock.New()
	}
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &Dispatcher{
		clock:    clk,
		interval: interval,
	}
}

// Defer 登记一次延迟通知
//
// 已销毁的条件不登记；销毁检查与登记在同一临界区内完成。
func (d *Dispatcher) Defer(owner types.InstanceHandle, c *StatusCondition) {
	if c == nil {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.pending {
		if p.owner == owner && p.cond == c {
			return
		}
	}
	if !c.markDeferred() {
		return
	}
	d.pending = append(d.pending, pendingSignal{owner: owner, cond: c})
}

// Undo 撤销 (owner, cond) 的所有待通知，返回是否有撤销
func (d *Dispatcher) Undo(owner types.InstanceHandle, c *StatusCondition) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.undoLocked(owner, c)
}

// Retire 撤销 (owner, cond) 的待通知并销毁条件，返回是否有撤销
//
// 撤销与销毁在同一临界区内完成，之后并发的 Defer 不会再登记该条件。
func (d *Dispatcher) Retire(owner types.InstanceHandle, c *StatusCondition) bool {
	d.mu.Lock()
	removed := d.undoLocked(owner, c)
	c.markDeleted()
	d.mu.Unlock()

	c.detachAll()
	return removed
}

func (d *Dispatcher) undoLocked(owner types.InstanceHandle, c *StatusCondition) bool {
	kept := d.pending[:0]
	removed := false
	for _, p := range d.pending {
		if p.owner == owner && p.cond == c {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	for i := len(kept); i < len(d.pending); i++ {
		d.pending[i] = pendingSignal{}
	}
	d.pending = kept

	if removed {
		c.setDeferred(false)
	}
	return removed
}

// Pending 返回待通知数
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush 投递所有待通知，返回投递数
func (d *Dispatcher) Flush() int {
	d.mu.Lock()
	batch := d.pending
	d.pending = nil
	for _, p := range batch {
		p.cond.setDeferred(false)
	}
	d.mu.Unlock()

	for _, p := range batch {
		p.cond.Notify()
	}
	return len(batch)
}

// Start 启动后台刷新协程
func (d *Dispatcher) Start() error {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	if d.running {
		return ErrDispatcherRunning
	}

	d.stopCh = make(chan struct{})
	d.doneCh = make(chan struct{})
	d.running = true

	ticker := d.clock.Ticker(d.interval)
	go d.loop(ticker, d.stopCh, d.doneCh)

	logger.Debug("延迟通知刷新协程启动", "interval", d.interval)
	return nil
}

// Stop 停止后台刷新协程并投递剩余通知；未运行时无操作
func (d *Dispatcher) Stop() {
	d.runMu.Lock()
	if !d.running {
		d.runMu.Unlock()
		return
	}
	close(d.stopCh)
	done := d.doneCh
	d.running = false
	d.runMu.Unlock()

	<-done
	if n := d.Flush(); n > 0 {
		logger.Debug("停止时投递剩余通知", "count", n)
	}
}

// Running 检查刷新协程是否在运行
func (d *Dispatcher) Running() bool {
	d.runMu.Lock()
	defer d.runMu.Unlock()
	return d.running
}

func (d *Dispatcher) loop(ticker *clock.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Flush()
		case <-stop:
			return
		}
	}
}
