package types

import "time"

// ============================================================================
//                              参与者 QoS
// ============================================================================

// UserDataQosPolicy 用户数据策略（不透明字节序列）
type UserDataQosPolicy struct {
	Value []byte
}

// EntityFactoryQosPolicy 实体工厂策略
type EntityFactoryQosPolicy struct {
	// AutoEnableCreatedEntities 创建的子实体是否自动启用
	AutoEnableCreatedEntities bool
}

// DomainParticipantQos 参与者 QoS
type DomainParticipantQos struct {
	UserData      UserDataQosPolicy
	EntityFactory EntityFactoryQosPolicy
}

// ParticipantQosDefault 表示"使用调用时刻的工厂默认 QoS"的哨兵值
//
// 用于 CreateParticipant 时表示使用默认值；
// 用于 SetDefaultParticipantQos 时表示恢复内置默认值。
// 该值不会动态跟踪之后对默认值的修改。
var ParticipantQosDefault *DomainParticipantQos

// Clone 深拷贝参与者 QoS
func (q DomainParticipantQos) Clone() DomainParticipantQos {
	out := q
	if q.UserData.Value != nil {
		out.UserData.Value = append([]byte(nil), q.UserData.Value...)
	}
	return out
}

// Equal 比较两个参与者 QoS 是否相等
func (q DomainParticipantQos) Equal(other DomainParticipantQos) bool {
	if q.EntityFactory != other.EntityFactory {
		return false
	}
	if len(q.UserData.Value) != len(other.UserData.Value) {
		return false
	}
	for i := range q.UserData.Value {
		if q.UserData.Value[i] != other.UserData.Value[i] {
			return false
		}
	}
	return true
}

// DomainParticipantFactoryQos 参与者工厂 QoS
type DomainParticipantFactoryQos struct {
	EntityFactory EntityFactoryQosPolicy
}

// ============================================================================
//                              子实体默认 QoS
// ============================================================================

// DurabilityKind 持久性类型
type DurabilityKind int

const (
	// DurabilityVolatile 不保留历史数据
	DurabilityVolatile DurabilityKind = iota
	// DurabilityTransientLocal 为迟到的读者保留历史数据
	DurabilityTransientLocal
	// DurabilityTransient 由持久化服务保留（进程内）
	DurabilityTransient
	// DurabilityPersistent 由持久化服务保留（持久存储）
	DurabilityPersistent
)

// ReliabilityKind 可靠性类型
type ReliabilityKind int

const (
	// ReliabilityBestEffort 尽力而为
	ReliabilityBestEffort ReliabilityKind = iota + 1
	// ReliabilityReliable 可靠传输
	ReliabilityReliable
)

// ReliabilityQosPolicy 可靠性策略
type ReliabilityQosPolicy struct {
	Kind            ReliabilityKind
	MaxBlockingTime time.Duration
}

// HistoryQosPolicy 历史策略
type HistoryQosPolicy struct {
	// KeepAll 为 true 时忽略 Depth
	KeepAll bool
	Depth   int
}

// TopicQos 主题 QoS（子集）
type TopicQos struct {
	TopicData   []byte
	Durability  DurabilityKind
	Reliability ReliabilityQosPolicy
	History     HistoryQosPolicy
}

// Clone 深拷贝
func (q TopicQos) Clone() TopicQos {
	out := q
	if q.TopicData != nil {
		out.TopicData = append([]byte(nil), q.TopicData...)
	}
	return out
}

// PublisherQos 发布者 QoS（子集）
type PublisherQos struct {
	Partition     []string
	GroupData     []byte
	EntityFactory EntityFactoryQosPolicy
}

// Clone 深拷贝
func (q PublisherQos) Clone() PublisherQos {
	out := q
	if q.Partition != nil {
		out.Partition = append([]string(nil), q.Partition...)
	}
	if q.GroupData != nil {
		out.GroupData = append([]byte(nil), q.GroupData...)
	}
	return out
}

// SubscriberQos 订阅者 QoS（子集）
type SubscriberQos struct {
	Partition     []string
	GroupData     []byte
	EntityFactory EntityFactoryQosPolicy
}

// Clone 深拷贝
func (q SubscriberQos) Clone() SubscriberQos {
	out := q
	if q.Partition != nil {
		out.Partition = append([]string(nil), q.Partition...)
	}
	if q.GroupData != nil {
		out.GroupData = append([]byte(nil), q.GroupData...)
	}
	return out
}
