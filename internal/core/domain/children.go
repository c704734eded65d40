package domain

import (
	"fmt"

	"github.com/dep2p/go-dcps/pkg/types"
)

// Publisher 发布者
type Publisher struct {
	handle      types.InstanceHandle
	participant *Participant
	qos         types.PublisherQos
	enabled     bool
}

// Handle 返回实例句柄
func (pub *Publisher) Handle() types.InstanceHandle { return pub.handle }

// Participant 返回所属参与者
func (pub *Publisher) Participant() *Participant { return pub.participant }

// Qos 返回 QoS 拷贝
func (pub *Publisher) Qos() types.PublisherQos {
	pub.participant.mu.Lock()
	defer pub.participant.mu.Unlock()
	return pub.qos.Clone()
}

// Enabled 检查是否已启用
func (pub *Publisher) Enabled() bool {
	pub.participant.mu.Lock()
	defer pub.participant.mu.Unlock()
	return pub.enabled
}

// Subscriber 订阅者
type Subscriber struct {
	handle      types.InstanceHandle
	participant *Participant
	qos         types.SubscriberQos
	enabled     bool
}

// Handle 返回实例句柄
func (sub *Subscriber) Handle() types.InstanceHandle { return sub.handle }

// Participant 返回所属参与者
func (sub *Subscriber) Participant() *Participant { return sub.participant }

// Qos 返回 QoS 拷贝
func (sub *Subscriber) Qos() types.SubscriberQos {
	sub.participant.mu.Lock()
	defer sub.participant.mu.Unlock()
	return sub.qos.Clone()
}

// Enabled 检查是否已启用
func (sub *Subscriber) Enabled() bool {
	sub.participant.mu.Lock()
	defer sub.participant.mu.Unlock()
	return sub.enabled
}

// ============================================================================
//                              子实体管理
// ============================================================================

// canAttachLocked 检查是否允许挂接新子实体，调用方持有参与者锁
func (p *Participant) canAttachLocked() error {
	if p.deleted {
		return types.ErrAlreadyDeleted
	}
	if p.closed.Load() {
		return fmt.Errorf("%w: %s is closed", types.ErrPreconditionNotMet, p.domain)
	}
	return nil
}

// CreatePublisher 创建发布者，qos 为 nil 时使用参与者的默认发布者 QoS
func (p *Participant) CreatePublisher(qos *types.PublisherQos) (*Publisher, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.canAttachLocked(); err != nil {
		return nil, err
	}
	q := p.publisherQos
	if qos != nil {
		q = *qos
	}
	pub := &Publisher{
		handle:      p.registry.allocHandle(),
		participant: p,
		qos:         q.Clone(),
		enabled:     p.enabled && p.entityFactory.AutoEnableCreatedEntities,
	}
	p.publishers[pub.handle] = pub
	return pub, nil
}

// DeletePublisher 删除发布者，不属于本参与者时返回 ErrPreconditionNotMet
//
// 域关闭后仍允许删除，以便排空子实体后重试删除参与者。
func (p *Participant) DeletePublisher(pub *Publisher) error {
	if pub == nil {
		return types.ErrBadParameter
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleted {
		return types.ErrAlreadyDeleted
	}
	if p.publishers[pub.handle] != pub {
		return fmt.Errorf("%w: publisher %d not owned by participant %d", types.ErrPreconditionNotMet, pub.handle, p.handle)
	}
	delete(p.publishers, pub.handle)
	return nil
}

// CreateSubscriber 创建订阅者，qos 为 nil 时使用参与者的默认订阅者 QoS
func (p *Participant) CreateSubscriber(qos *types.SubscriberQos) (*Subscriber, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.canAttachLocked(); err != nil {
		return nil, err
	}
	q := p.subscriberQos
	if qos != nil {
		q = *qos
	}
	sub := &Subscriber{
		handle:      p.registry.allocHandle(),
		participant: p,
		qos:         q.Clone(),
		enabled:     p.enabled && p.entityFactory.AutoEnableCreatedEntities,
	}
	p.subscribers[sub.handle] = sub
	return sub, nil
}

// DeleteSubscriber 删除订阅者，不属于本参与者时返回 ErrPreconditionNotMet
func (p *Participant) DeleteSubscriber(sub *Subscriber) error {
	if sub == nil {
		return types.ErrBadParameter
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.deleted {
		return types.ErrAlreadyDeleted
	}
	if p.subscribers[sub.handle] != sub {
		return fmt.Errorf("%w: subscriber %d not owned by participant %d", types.ErrPreconditionNotMet, sub.handle, p.handle)
	}
	delete(p.subscribers, sub.handle)
	return nil
}

// HasChildren 检查是否仍有发布者或订阅者
func (p *Participant) HasChildren() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.publishers) > 0 || len(p.subscribers) > 0
}

// Children 返回发布者与订阅者数量
func (p *Participant) Children() (publishers, subscribers int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.publishers), len(p.subscribers)
}
