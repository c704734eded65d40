package domain

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/dep2p/go-dcps/internal/core/condition"
	"github.com/dep2p/go-dcps/internal/core/ledger"
	"github.com/dep2p/go-dcps/internal/core/security"
	"github.com/dep2p/go-dcps/pkg/types"
)

// Security 参与者安全字段
//
// 非安全域下全部为零值；安全域下两个令牌各自可缺省。
type Security struct {
	Enabled      bool
	Permissions  security.PermissionsHandle
	Capabilities security.Capability

	// Locations 安全定位信息
	Locations []string

	IdentityToken    *ledger.String
	PermissionsToken *ledger.String
}

// SecurityInfo 安全字段快照
type SecurityInfo struct {
	Enabled          bool
	Permissions      security.PermissionsHandle
	Capabilities     security.Capability
	Locations        []string
	IdentityToken    []byte
	PermissionsToken []byte
}

// Contents 构造窗口内写入参与者的内容
type Contents struct {
	Qos      types.DomainParticipantQos
	Listener *types.Listener
	Mask     types.StatusMask

	TopicQos      types.TopicQos
	PublisherQos  types.PublisherQos
	SubscriberQos types.SubscriberQos

	Security   Security
	UserData   *ledger.String
	EntityName *ledger.String
	Relays     []string
}

// ============================================================================
//                              Participant 参与者
// ============================================================================

// Participant 域参与者
type Participant struct {
	registry *Registry
	handle   types.InstanceHandle
	domain   types.DomainID
	guid     types.GUIDPrefix

	closed atomic.Bool

	mu sync.Mutex

	entityFactory types.EntityFactoryQosPolicy
	userData      *ledger.String
	entityName    *ledger.String

	topicQos      types.TopicQos
	publisherQos  types.PublisherQos
	subscriberQos types.SubscriberQos

	enabled  bool
	listener *types.Listener
	mask     types.StatusMask
	status   types.StatusMask
	cond     *condition.StatusCondition

	relays   []string
	security Security

	publishers  map[types.InstanceHandle]*Publisher
	subscribers map[types.InstanceHandle]*Subscriber

	deleted bool
}

func newParticipant(r *Registry, h types.InstanceHandle, domain types.DomainID) *Participant {
	p := &Participant{
		registry:    r,
		handle:      h,
		domain:      domain,
		publishers:  make(map[types.InstanceHandle]*Publisher),
		subscribers: make(map[types.InstanceHandle]*Subscriber),
	}
	id := uuid.New()
	copy(p.guid[:], id[:len(p.guid)])
	return p
}

// Handle 返回实例句柄
func (p *Participant) Handle() types.InstanceHandle { return p.handle }

// Domain 返回域号
func (p *Participant) Domain() types.DomainID { return p.domain }

// GUIDPrefix 返回 GUID 前缀
func (p *Participant) GUIDPrefix() types.GUIDPrefix { return p.guid }

// IsClosed 检查所在域是否已关闭
func (p *Participant) IsClosed() bool { return p.closed.Load() }

// IsDeleted 检查参与者是否已删除
func (p *Participant) IsDeleted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.deleted
}

// Qos 返回参与者 QoS 快照
func (p *Participant) Qos() types.DomainParticipantQos {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.qosLocked()
}

func (p *Participant) qosLocked() types.DomainParticipantQos {
	q := types.DomainParticipantQos{EntityFactory: p.entityFactory}
	if p.userData != nil {
		q.UserData.Value = p.userData.Bytes()
	}
	return q
}

// SetQos 替换参与者 QoS
func (p *Participant) SetQos(q *types.DomainParticipantQos) error {
	if err := p.registry.opts.QosPolicy.ValidParticipantQos(q); err != nil {
		return err
	}

	l := p.registry.opts.Ledger
	next := l.Intern(q.UserData.Value)

	p.mu.Lock()
	if p.deleted {
		p.mu.Unlock()
		l.Release(next)
		return types.ErrAlreadyDeleted
	}
	prev := p.userData
	p.userData = next
	p.entityFactory = q.EntityFactory
	p.mu.Unlock()

	l.Release(prev)
	return nil
}

// UserData 返回用户数据拷贝
func (p *Participant) UserData() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.userData == nil {
		return nil
	}
	return p.userData.Bytes()
}

// EntityName 返回实体名，未配置时为空
func (p *Participant) EntityName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.entityName == nil {
		return ""
	}
	return p.entityName.String()
}

// Enabled 检查是否已启用
func (p *Participant) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Enable 启用参与者，已启用时无操作
//
// 启用时执行协议绑定；参与者 QoS 要求自动启用时一并启用已有子实体。
func (p *Participant) Enable() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleted {
		return types.ErrAlreadyDeleted
	}
	if p.enabled {
		return nil
	}
	if b := p.registry.opts.Binder; b != nil {
		if err := b.Bind(p); err != nil {
			return fmt.Errorf("bind participant %d: %w", p.handle, err)
		}
	}
	p.enabled = true

	if p.entityFactory.AutoEnableCreatedEntities {
		for _, pub := range p.publishers {
			pub.enabled = true
		}
		for _, sub := range p.subscribers {
			sub.enabled = true
		}
	}
	return nil
}

// Listener 返回监听器拷贝，未设置时 ok 为 false
func (p *Participant) Listener() (types.Listener, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return types.Listener{}, false
	}
	return *p.listener, true
}

// StatusMask 返回监听器状态掩码
func (p *Participant) StatusMask() types.StatusMask {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mask
}

// SetListener 替换监听器与掩码，listener 为 nil 时清除
func (p *Participant) SetListener(listener *types.Listener, mask types.StatusMask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleted {
		return types.ErrAlreadyDeleted
	}
	p.listener = copyListener(listener)
	p.mask = mask
	return nil
}

// StatusCondition 返回状态条件，首次调用时创建
func (p *Participant) StatusCondition() (*condition.StatusCondition, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deleted {
		return nil, types.ErrAlreadyDeleted
	}
	if p.cond == nil {
		p.cond = condition.NewStatusCondition(p.handle)
		if p.status != 0 {
			p.cond.Raise(p.status)
		}
	}
	return p.cond, nil
}

// ChangeStatus 置位状态
//
// 状态条件存在时登记延迟通知；掩码命中时在锁外回调监听器。
func (p *Participant) ChangeStatus(changed types.StatusMask) error {
	p.mu.Lock()
	if p.deleted {
		p.mu.Unlock()
		return types.ErrAlreadyDeleted
	}
	p.status |= changed
	cond := p.cond
	var notify func(types.InstanceHandle, types.StatusMask)
	if p.listener != nil && p.mask&changed != 0 {
		notify = p.listener.OnStatusChanged
	}
	masked := p.mask & changed
	p.mu.Unlock()

	if cond != nil && cond.Raise(changed) {
		if d := p.registry.opts.Dispatcher; d != nil {
			d.Defer(p.handle, cond)
		} else {
			cond.Notify()
		}
	}
	if notify != nil {
		notify(p.handle, masked)
	}
	return nil
}

// Relays 返回中继地址拷贝
func (p *Participant) Relays() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.relays...)
}

// Security 返回安全字段快照
func (p *Participant) Security() SecurityInfo {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.security
	info := SecurityInfo{
		Enabled:      s.Enabled,
		Permissions:  s.Permissions,
		Capabilities: s.Capabilities,
		Locations:    append([]string(nil), s.Locations...),
	}
	if s.IdentityToken != nil {
		info.IdentityToken = s.IdentityToken.Bytes()
	}
	if s.PermissionsToken != nil {
		info.PermissionsToken = s.PermissionsToken.Bytes()
	}
	return info
}

// DefaultTopicQos 返回子主题默认 QoS
func (p *Participant) DefaultTopicQos() types.TopicQos {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topicQos.Clone()
}

// SetDefaultTopicQos 设置子主题默认 QoS
func (p *Participant) SetDefaultTopicQos(q types.TopicQos) {
	p.mu.Lock()
	p.topicQos = q.Clone()
	p.mu.Unlock()
}

// DefaultPublisherQos 返回子发布者默认 QoS
func (p *Participant) DefaultPublisherQos() types.PublisherQos {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.publisherQos.Clone()
}

// SetDefaultPublisherQos 设置子发布者默认 QoS
func (p *Participant) SetDefaultPublisherQos(q types.PublisherQos) {
	p.mu.Lock()
	p.publisherQos = q.Clone()
	p.mu.Unlock()
}

// DefaultSubscriberQos 返回子订阅者默认 QoS
func (p *Participant) DefaultSubscriberQos() types.SubscriberQos {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.subscriberQos.Clone()
}

// SetDefaultSubscriberQos 设置子订阅者默认 QoS
func (p *Participant) SetDefaultSubscriberQos(q types.SubscriberQos) {
	p.mu.Lock()
	p.subscriberQos = q.Clone()
	p.mu.Unlock()
}

func copyListener(l *types.Listener) *types.Listener {
	if l == nil {
		return nil
	}
	cp := *l
	return &cp
}

// ============================================================================
//                              Locked: 构造与销毁窗口
// ============================================================================

// Populate 写入构造内容，所有权转给参与者
func (l *Locked) Populate(c Contents) {
	p := l.p
	p.entityFactory = c.Qos.EntityFactory
	p.userData = c.UserData
	p.entityName = c.EntityName
	p.listener = copyListener(c.Listener)
	p.mask = c.Mask
	p.topicQos = c.TopicQos.Clone()
	p.publisherQos = c.PublisherQos.Clone()
	p.subscriberQos = c.SubscriberQos.Clone()
	p.security = c.Security
	p.relays = append([]string(nil), c.Relays...)
}

// HasChildren 检查是否仍有发布者或订阅者
func (l *Locked) HasChildren() bool {
	return len(l.p.publishers) > 0 || len(l.p.subscribers) > 0
}

// Enabled 检查是否已启用
func (l *Locked) Enabled() bool {
	return l.p.enabled
}

// TakeStatusCondition 取走状态条件
func (l *Locked) TakeStatusCondition() *condition.StatusCondition {
	c := l.p.cond
	l.p.cond = nil
	return c
}

// TakeSecurity 取走安全字段
func (l *Locked) TakeSecurity() Security {
	s := l.p.security
	l.p.security = Security{}
	return s
}

// TakeUserData 取走用户数据
func (l *Locked) TakeUserData() *ledger.String {
	s := l.p.userData
	l.p.userData = nil
	return s
}

// TakeEntityName 取走实体名
func (l *Locked) TakeEntityName() *ledger.String {
	s := l.p.entityName
	l.p.entityName = nil
	return s
}

// TakeRelays 取走中继地址表
func (l *Locked) TakeRelays() []string {
	r := l.p.relays
	l.p.relays = nil
	return r
}
