package domain

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dep2p/go-dcps/internal/core/condition"
	"github.com/dep2p/go-dcps/internal/core/ledger"
	"github.com/dep2p/go-dcps/internal/core/qos"
	"github.com/dep2p/go-dcps/pkg/lib/log"
	"github.com/dep2p/go-dcps/pkg/types"
)

var logger = log.Logger("core/domain")

// Binder 参与者启用时的协议绑定
//
// Bind 在参与者锁内调用，实现不得回调参与者的加锁方法。
type Binder interface {
	Bind(p *Participant) error
}

// Options 注册表选项
type Options struct {
	// MaxParticipants 参与者上限，0 表示不限制
	MaxParticipants int

	// Binder 启用时的协议绑定，可为 nil
	Binder Binder

	// Dispatcher 状态条件延迟通知，可为 nil（直接唤醒）
	Dispatcher *condition.Dispatcher

	// Ledger 用户数据等共享字符串
	Ledger *ledger.Ledger

	// QosPolicy 参与者 QoS 校验策略
	QosPolicy qos.Policy
}

// ============================================================================
//                              Registry 注册表
// ============================================================================

// Registry 参与者注册表
type Registry struct {
	opts Options

	mu       sync.Mutex
	byDomain map[types.DomainID]*Participant
	byHandle map[types.InstanceHandle]*Participant

	nextHandle atomic.Uint64
}

// NewRegistry 创建注册表
func NewRegistry(opts Options) *Registry {
	if opts.Ledger == nil {
		opts.Ledger = ledger.New()
	}
	return &Registry{
		opts:     opts,
		byDomain: make(map[types.DomainID]*Participant),
		byHandle: make(map[types.InstanceHandle]*Participant),
	}
}

// Ledger 返回注册表使用的共享字符串账本
func (r *Registry) Ledger() *ledger.Ledger {
	return r.opts.Ledger
}

// Dispatcher 返回延迟通知注册表，可能为 nil
func (r *Registry) Dispatcher() *condition.Dispatcher {
	return r.opts.Dispatcher
}

func (r *Registry) allocHandle() types.InstanceHandle {
	return types.InstanceHandle(r.nextHandle.Add(1))
}

// Create 分配并挂接参与者记录，返回时记录已加锁
//
// 域号非法返回 ErrBadParameter；域内已有参与者（包括已关闭未摘除的）
// 或达到上限返回 ErrOutOfResources。
func (r *Registry) Create(domain types.DomainID) (*Locked, error) {
	if !domain.Valid() {
		return nil, fmt.Errorf("%w: domain id %d out of range", types.ErrBadParameter, domain)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byDomain[domain]; exists {
		return nil, fmt.Errorf("%w: %s already has a participant", types.ErrOutOfResources, domain)
	}
	if limit := r.opts.MaxParticipants; limit > 0 && len(r.byHandle) >= limit {
		return nil, fmt.Errorf("%w: participant limit %d reached", types.ErrOutOfResources, limit)
	}

	p := newParticipant(r, r.allocHandle(), domain)
	p.mu.Lock()

	r.byDomain[domain] = p
	r.byHandle[p.handle] = p

	logger.Debug("参与者记录已分配", "domain", domain, "handle", p.handle)
	return &Locked{p: p, r: r, fresh: true}, nil
}

// Acquire 获取已有参与者的锁
//
// 可能无限期阻塞在参与者锁上。取得锁后发现已删除返回 ErrAlreadyDeleted。
func (r *Registry) Acquire(p *Participant) (*Locked, error) {
	if err := r.Resolve(p); err != nil {
		return nil, err
	}
	p.mu.Lock()
	if p.deleted {
		p.mu.Unlock()
		return nil, types.ErrAlreadyDeleted
	}
	return &Locked{p: p, r: r}, nil
}

// Resolve 校验参与者属于本注册表且未删除
func (r *Registry) Resolve(p *Participant) error {
	if p == nil {
		return fmt.Errorf("%w: nil participant", types.ErrBadParameter)
	}
	if p.registry != r {
		return fmt.Errorf("%w: participant belongs to another registry", types.ErrBadParameter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.byHandle[p.handle] != p {
		return types.ErrAlreadyDeleted
	}
	return nil
}

// Get 按句柄查找参与者（不受关闭影响）
func (r *Registry) Get(h types.InstanceHandle) *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byHandle[h]
}

// Lookup 按域查找参与者，已关闭或不存在时返回 nil
func (r *Registry) Lookup(domain types.DomainID) *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byDomain[domain]
	if !ok || p.closed.Load() {
		return nil
	}
	return p
}

// Close 关闭参与者所在的域，之后的 Lookup 与子实体创建立即失败；不可撤销
//
// 按记录关闭：p 已被删除或不再挂接在其域上时返回 ErrAlreadyDeleted，
// 同域上后来创建的参与者不受影响。
func (r *Registry) Close(p *Participant) error {
	if p == nil {
		return fmt.Errorf("%w: nil participant", types.ErrBadParameter)
	}
	if p.registry != r {
		return fmt.Errorf("%w: participant belongs to another registry", types.ErrBadParameter)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byHandle[p.handle] != p {
		return types.ErrAlreadyDeleted
	}
	if r.byDomain[p.domain] == p && !p.closed.Swap(true) {
		logger.Debug("域已关闭", "domain", p.domain, "handle", p.handle)
	}
	return nil
}

// Detach 将参与者从域映射中摘除
func (r *Registry) Detach(p *Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.byDomain[p.domain] == p {
		delete(r.byDomain, p.domain)
	}
}

// Delete 释放记录并解锁，调用后 l 不可再用
func (r *Registry) Delete(l *Locked) {
	p := l.p

	r.mu.Lock()
	if r.byDomain[p.domain] == p {
		delete(r.byDomain, p.domain)
	}
	delete(r.byHandle, p.handle)
	r.mu.Unlock()

	p.deleted = true
	l.Release()

	logger.Debug("参与者记录已释放", "domain", p.domain, "handle", p.handle)
}

// Len 返回已分配的参与者数
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHandle)
}

// ============================================================================
//                              Locked 守卫
// ============================================================================

// Locked 持有参与者锁的守卫
//
// 构造路径上 Release 把参与者交给并发访问；Abort 在 Release 之前调用时
// 撤销分配，之后调用无操作。
type Locked struct {
	p        *Participant
	r        *Registry
	fresh    bool
	released bool
}

// Participant 返回被锁定的参与者
func (l *Locked) Participant() *Participant {
	return l.p
}

// Release 释放参与者锁，重复调用无操作
func (l *Locked) Release() {
	if l.released {
		return
	}
	l.released = true
	l.p.mu.Unlock()
}

// Abort 撤销未完成的构造；非构造路径上等同于 Release
func (l *Locked) Abort() {
	if l.released {
		return
	}
	if l.fresh {
		l.r.Delete(l)
		return
	}
	l.Release()
}
