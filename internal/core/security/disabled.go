package security

import "github.com/dep2p/go-dcps/pkg/types"

// Disabled 非安全模式的 Gatekeeper
//
// 放行所有域且从不标记为安全域。
type Disabled struct{}

var _ Gatekeeper = Disabled{}

// ValidateLocalPermissions 返回无权限句柄
func (Disabled) ValidateLocalPermissions(types.DomainID, Identity) (PermissionsHandle, error) {
	return PermissionsNil, nil
}

// CheckCreateParticipant 总是放行
func (Disabled) CheckCreateParticipant(PermissionsHandle, types.DomainID, *types.DomainParticipantQos) (Decision, error) {
	return Decision{}, nil
}

// IdentityToken 非安全模式不派生令牌
func (Disabled) IdentityToken(Identity) ([]byte, error) {
	return nil, ErrSecurityDisabled
}

// PermissionsToken 非安全模式不派生令牌
func (Disabled) PermissionsToken(PermissionsHandle) ([]byte, error) {
	return nil, ErrSecurityDisabled
}
