package dcps

import (
	"github.com/dep2p/go-dcps/internal/core/domain"
	"github.com/dep2p/go-dcps/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              版本信息
// ════════════════════════════════════════════════════════════════════════════

// Version 当前版本
const Version = "v0.1.0"

// BuildInfo 构建信息（通过 ldflags 注入）
var (
	// GitCommit Git 提交哈希
	GitCommit string

	// BuildDate 构建日期
	BuildDate string
)

// VersionInfo 返回完整版本信息字符串
func VersionInfo() string {
	info := "go-dcps " + Version
	if GitCommit != "" {
		info += " (" + GitCommit[:min(8, len(GitCommit))] + ")"
	}
	if BuildDate != "" {
		info += " built " + BuildDate
	}
	return info
}

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

type (
	// Participant 域参与者
	Participant = domain.Participant

	// Publisher 发布者
	Publisher = domain.Publisher

	// Subscriber 订阅者
	Subscriber = domain.Subscriber

	// DomainID 域号
	DomainID = types.DomainID

	// InstanceHandle 实例句柄
	InstanceHandle = types.InstanceHandle

	// StatusMask 状态掩码
	StatusMask = types.StatusMask

	// ReturnCode DCPS 返回码
	ReturnCode = types.ReturnCode

	// Listener 参与者监听器
	Listener = types.Listener

	// ParticipantQos 参与者 QoS
	ParticipantQos = types.DomainParticipantQos

	// FactoryQos 工厂 QoS
	FactoryQos = types.DomainParticipantFactoryQos
)

// StatusMaskNone 不关注任何状态
const StatusMaskNone = types.StatusMaskNone

// StatusMaskAll 关注所有状态
const StatusMaskAll = types.StatusMaskAll

// MaxDomainID 允许的最大域号
const MaxDomainID = types.MaxDomainID

// ParticipantQosDefault 创建时表示"使用工厂当前默认 QoS"，
// 设置默认值时表示"恢复内置默认值"
var ParticipantQosDefault = types.ParticipantQosDefault

// ReturnCodeOf 将错误映射为 DCPS 返回码
func ReturnCodeOf(err error) ReturnCode {
	return types.ReturnCodeOf(err)
}
