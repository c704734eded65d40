// Package types 定义 go-dcps 的基础类型
//
// 本文件定义所有公共错误类型。
package types

import "errors"

// ============================================================================
//                              DCPS 通用错误
// ============================================================================

var (
	// ErrBadParameter 参数错误（如必填指针为空）
	ErrBadParameter = errors.New("bad parameter")

	// ErrInvalidQos QoS 不满足合法性规则
	ErrInvalidQos = errors.New("invalid qos")

	// ErrInconsistentPolicy QoS 策略不一致
	ErrInconsistentPolicy = errors.New("inconsistent policy")

	// ErrPreconditionNotMet 前置条件不满足（如仍有子实体）
	ErrPreconditionNotMet = errors.New("precondition not met")

	// ErrOutOfResources 资源不足（注册表分配失败）
	ErrOutOfResources = errors.New("out of resources")

	// ErrAlreadyDeleted 实体已删除或句柄无效
	ErrAlreadyDeleted = errors.New("entity already deleted")

	// ErrNotEnabled 实体未启用
	ErrNotEnabled = errors.New("entity not enabled")

	// ErrAccessDenied 安全策略拒绝
	ErrAccessDenied = errors.New("access denied")
)

// ============================================================================
//                              ReturnCode 映射
// ============================================================================

// ReturnCodeOf 将错误映射为 DCPS 返回码
//
// nil 映射为 RetcodeOK；无法识别的错误映射为 RetcodeError。
// 包装过的错误（fmt.Errorf("%w")）同样可以被识别。
func ReturnCodeOf(err error) ReturnCode {
	switch {
	case err == nil:
		return RetcodeOK
	case errors.Is(err, ErrBadParameter):
		return RetcodeBadParameter
	case errors.Is(err, ErrInvalidQos), errors.Is(err, ErrInconsistentPolicy):
		return RetcodeInconsistentPolicy
	case errors.Is(err, ErrPreconditionNotMet):
		return RetcodePreconditionNotMet
	case errors.Is(err, ErrOutOfResources):
		return RetcodeOutOfResources
	case errors.Is(err, ErrAlreadyDeleted):
		return RetcodeAlreadyDeleted
	case errors.Is(err, ErrNotEnabled):
		return RetcodeNotEnabled
	case errors.Is(err, ErrAccessDenied):
		return RetcodeAccessDenied
	default:
		return RetcodeError
	}
}
