package security

import "errors"

var (
	// ErrSecurityDisabled 安全子系统未启用
	ErrSecurityDisabled = errors.New("security: disabled")

	// ErrNoIdentity 未配置本地身份
	ErrNoIdentity = errors.New("security: no local identity")

	// ErrUnknownPermissions 未知的权限句柄
	ErrUnknownPermissions = errors.New("security: unknown permissions handle")

	// ErrTokenTooLarge 令牌超过 MaxTokenSize
	ErrTokenTooLarge = errors.New("security: token too large")

	// ErrUnknownCookie 未知的策略参与者 cookie
	ErrUnknownCookie = errors.New("security: unknown policy participant")

	// ErrUpdateInProgress 已处于批量更新中
	ErrUpdateInProgress = errors.New("security: policy update already in progress")
)
