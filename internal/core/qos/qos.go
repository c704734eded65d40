// Package qos 实现参与者级 QoS 的默认值与合法性校验
//
// 只覆盖参与者层面的规则；主题、发布者、订阅者的 QoS 校验不在本包范围内，
// 本包只提供它们的进程级默认值，供参与者创建时快照。
package qos

import (
	"fmt"
	"time"

	"github.com/dep2p/go-dcps/pkg/types"
)

// DefaultMaxUserDataSize 用户数据默认上限（字节）
const DefaultMaxUserDataSize = 4096

// ============================================================================
//                              Policy 校验策略
// ============================================================================

// Policy 参与者 QoS 校验策略
type Policy struct {
	// MaxUserDataSize 用户数据最大长度，<= 0 表示使用默认值
	MaxUserDataSize int
}

// DefaultPolicy 返回默认校验策略
func DefaultPolicy() Policy {
	return Policy{MaxUserDataSize: DefaultMaxUserDataSize}
}

func (p Policy) maxUserData() int {
	if p.MaxUserDataSize <= 0 {
		return DefaultMaxUserDataSize
	}
	return p.MaxUserDataSize
}

// ValidParticipantQos 校验参与者 QoS
//
// nil 返回 ErrBadParameter；用户数据超长返回 ErrInvalidQos。
func (p Policy) ValidParticipantQos(q *types.DomainParticipantQos) error {
	if q == nil {
		return types.ErrBadParameter
	}
	if n := len(q.UserData.Value); n > p.maxUserData() {
		return fmt.Errorf("%w: user data %d bytes exceeds limit %d", types.ErrInvalidQos, n, p.maxUserData())
	}
	return nil
}

// Resolve 解析调用方传入的 QoS
//
// 传入哨兵值（nil）时返回 current 的拷贝，否则校验后返回传入值的拷贝。
// 返回值与调用方和 current 都不共享内存。
func (p Policy) Resolve(q *types.DomainParticipantQos, current types.DomainParticipantQos) (types.DomainParticipantQos, error) {
	if q == types.ParticipantQosDefault {
		return current.Clone(), nil
	}
	if err := p.ValidParticipantQos(q); err != nil {
		return types.DomainParticipantQos{}, err
	}
	return q.Clone(), nil
}

// ============================================================================
//                              内置默认值
// ============================================================================

// DefaultParticipantQos 内置参与者默认 QoS：空用户数据，自动启用子实体
func DefaultParticipantQos() types.DomainParticipantQos {
	return types.DomainParticipantQos{
		EntityFactory: types.EntityFactoryQosPolicy{AutoEnableCreatedEntities: true},
	}
}

// DefaultFactoryQos 内置工厂 QoS：自动启用新建参与者
func DefaultFactoryQos() types.DomainParticipantFactoryQos {
	return types.DomainParticipantFactoryQos{
		EntityFactory: types.EntityFactoryQosPolicy{AutoEnableCreatedEntities: true},
	}
}

// DefaultTopicQos 进程级主题默认 QoS
func DefaultTopicQos() types.TopicQos {
	return types.TopicQos{
		Durability: types.DurabilityVolatile,
		Reliability: types.ReliabilityQosPolicy{
			Kind:            types.ReliabilityBestEffort,
			MaxBlockingTime: 100 * time.Millisecond,
		},
		History: types.HistoryQosPolicy{Depth: 1},
	}
}

// DefaultPublisherQos 进程级发布者默认 QoS
func DefaultPublisherQos() types.PublisherQos {
	return types.PublisherQos{
		EntityFactory: types.EntityFactoryQosPolicy{AutoEnableCreatedEntities: true},
	}
}

// DefaultSubscriberQos 进程级订阅者默认 QoS
func DefaultSubscriberQos() types.SubscriberQos {
	return types.SubscriberQos{
		EntityFactory: types.EntityFactoryQosPolicy{AutoEnableCreatedEntities: true},
	}
}
