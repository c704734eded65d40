package types

import "fmt"

// ============================================================================
//                              StatusMask - 状态掩码
// ============================================================================

// StatusMask 实体状态位掩码
type StatusMask uint32

// 状态位定义（与 DDS 规范中的编号一致）
const (
	StatusInconsistentTopic       StatusMask = 1 << 0
	StatusOfferedDeadlineMissed   StatusMask = 1 << 1
	StatusRequestedDeadlineMissed StatusMask = 1 << 2
	StatusOfferedIncompatibleQos  StatusMask = 1 << 5
	StatusRequestedIncompatible   StatusMask = 1 << 6
	StatusSampleLost              StatusMask = 1 << 7
	StatusSampleRejected          StatusMask = 1 << 8
	StatusDataOnReaders           StatusMask = 1 << 9
	StatusDataAvailable           StatusMask = 1 << 10
	StatusLivelinessLost          StatusMask = 1 << 11
	StatusLivelinessChanged       StatusMask = 1 << 12
	StatusPublicationMatched      StatusMask = 1 << 13
	StatusSubscriptionMatched     StatusMask = 1 << 14

	// StatusMaskNone 不关注任何状态
	StatusMaskNone StatusMask = 0

	// StatusMaskAll 关注所有状态
	StatusMaskAll StatusMask = 0xffffffff
)

// Has 检查掩码是否包含指定状态
func (m StatusMask) Has(s StatusMask) bool {
	return m&s != 0
}

// ============================================================================
//                              ReturnCode - 返回码
// ============================================================================

// ReturnCode DCPS 操作返回码
type ReturnCode int

const (
	// RetcodeOK 成功
	RetcodeOK ReturnCode = iota
	// RetcodeError 通用错误
	RetcodeError
	// RetcodeUnsupported 不支持
	RetcodeUnsupported
	// RetcodeBadParameter 参数错误
	RetcodeBadParameter
	// RetcodePreconditionNotMet 前置条件不满足
	RetcodePreconditionNotMet
	// RetcodeOutOfResources 资源不足
	RetcodeOutOfResources
	// RetcodeNotEnabled 实体未启用
	RetcodeNotEnabled
	// RetcodeImmutablePolicy 策略不可修改
	RetcodeImmutablePolicy
	// RetcodeInconsistentPolicy 策略不一致
	RetcodeInconsistentPolicy
	// RetcodeAlreadyDeleted 实体已删除（无效句柄）
	RetcodeAlreadyDeleted
	// RetcodeTimeout 超时
	RetcodeTimeout
	// RetcodeNoData 无数据
	RetcodeNoData
	// RetcodeAccessDenied 访问被拒绝
	RetcodeAccessDenied
)

// String 返回返回码的字符串表示
func (r ReturnCode) String() string {
	switch r {
	case RetcodeOK:
		return "OK"
	case RetcodeError:
		return "ERROR"
	case RetcodeUnsupported:
		return "UNSUPPORTED"
	case RetcodeBadParameter:
		return "BAD_PARAMETER"
	case RetcodePreconditionNotMet:
		return "PRECONDITION_NOT_MET"
	case RetcodeOutOfResources:
		return "OUT_OF_RESOURCES"
	case RetcodeNotEnabled:
		return "NOT_ENABLED"
	case RetcodeImmutablePolicy:
		return "IMMUTABLE_POLICY"
	case RetcodeInconsistentPolicy:
		return "INCONSISTENT_POLICY"
	case RetcodeAlreadyDeleted:
		return "ALREADY_DELETED"
	case RetcodeTimeout:
		return "TIMEOUT"
	case RetcodeNoData:
		return "NO_DATA"
	case RetcodeAccessDenied:
		return "ACCESS_DENIED"
	default:
		return fmt.Sprintf("RETCODE(%d)", int(r))
	}
}
