// Package types 定义 go-dcps 的公共数据结构
//
// 这是整个系统的最底层包，不依赖任何其他 go-dcps 内部包。
// 所有类型都是纯值类型，用于在各模块间传递数据。
//
// # 文件组织
//
// 基础类型:
//   - ids.go      - DomainID, InstanceHandle, GUIDPrefix
//   - enums.go    - StatusMask, ReturnCode
//   - errors.go   - 公共错误定义及 ReturnCode 映射
//
// QoS 类型:
//   - qos.go      - DomainParticipantQos, DomainParticipantFactoryQos,
//     TopicQos, PublisherQos, SubscriberQos
//
// 回调类型:
//   - listener.go - Listener
package types
