package security

import (
	"sort"
	"sync"

	"github.com/dep2p/go-dcps/pkg/types"
)

// ============================================================================
//                              策略数据
// ============================================================================

// Perms 分区权限
type Perms struct {
	Read      bool
	Write     bool
	Blacklist bool
}

// Partition 分区授权
type Partition struct {
	Name  string
	Perms Perms
}

// DomainRule 域规则
type DomainRule struct {
	// Secure 是否为安全域（需要令牌）
	Secure bool

	// Capabilities 域安全能力
	Capabilities Capability
}

// Cookie 策略参与者标识
type Cookie uintptr

type participantRule struct {
	name       string
	partitions map[string]Perms
}

// ============================================================================
//                              Policy 策略存储
// ============================================================================

// Policy 访问控制策略
//
// 每次生效的修改都会递增 Version；UpdateStart/UpdateDone 之间的修改
// 合并为一次版本递增。
type Policy struct {
	mu sync.RWMutex

	version  uint64
	updating bool
	dirty    bool

	domains      map[types.DomainID]DomainRule
	participants map[Cookie]*participantRule
	byName       map[string]Cookie
	nextCookie   Cookie
}

// NewPolicy 创建空策略
func NewPolicy() *Policy {
	return &Policy{
		domains:      make(map[types.DomainID]DomainRule),
		participants: make(map[Cookie]*participantRule),
		byName:       make(map[string]Cookie),
		nextCookie:   1,
	}
}

// Version 返回策略版本
func (p *Policy) Version() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.version
}

// UpdateStart 开始批量更新
func (p *Policy) UpdateStart() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.updating {
		return ErrUpdateInProgress
	}
	p.updating = true
	return nil
}

// UpdateDone 结束批量更新
func (p *Policy) UpdateDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updating = false
	if p.dirty {
		p.version++
		p.dirty = false
	}
}

// changed 记录一次修改，调用方需持有写锁
func (p *Policy) changed() {
	if p.updating {
		p.dirty = true
		return
	}
	p.version++
}

// AddDomain 添加或替换域规则
func (p *Policy) AddDomain(id types.DomainID, rule DomainRule) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.domains[id] = rule
	p.changed()
}

// AddParticipant 添加策略参与者，已存在时返回原 cookie
func (p *Policy) AddParticipant(name string) (Cookie, error) {
	if name == "" {
		return 0, ErrNoIdentity
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.byName[name]; ok {
		return c, nil
	}
	c := p.nextCookie
	p.nextCookie++
	p.participants[c] = &participantRule{
		name:       name,
		partitions: make(map[string]Perms),
	}
	p.byName[name] = c
	p.changed()
	return c, nil
}

// AddPartition 为策略参与者添加分区授权
func (p *Policy) AddPartition(c Cookie, name string, perms Perms) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rule, ok := p.participants[c]
	if !ok {
		return ErrUnknownCookie
	}
	rule.partitions[name] = perms
	p.changed()
	return nil
}

// Flush 清空所有规则
func (p *Policy) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.domains = make(map[types.DomainID]DomainRule)
	p.participants = make(map[Cookie]*participantRule)
	p.byName = make(map[string]Cookie)
	p.changed()
}

// Domain 查询域规则
func (p *Policy) Domain(id types.DomainID) (DomainRule, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	rule, ok := p.domains[id]
	return rule, ok
}

// Partitions 返回策略参与者的分区授权（按名称排序）
func (p *Policy) Partitions(name string) ([]Partition, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	c, ok := p.byName[name]
	if !ok {
		return nil, false
	}
	rule := p.participants[c]
	out := make([]Partition, 0, len(rule.partitions))
	for n, perms := range rule.partitions {
		out = append(out, Partition{Name: n, Perms: perms})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, true
}
